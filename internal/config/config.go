package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration parses "90s" style YAML values into a time.Duration.
type Duration time.Duration

// UnmarshalYAML accepts either a duration string or a bare integer of
// seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if secs, err := strconv.Atoi(s); err == nil {
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the plain time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Futu struct {
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
		Enabled bool   `yaml:"enabled"`
	} `yaml:"futu"`
	AlphaVantage struct {
		APIKey string `yaml:"api_key"`
	} `yaml:"alphavantage"`
	LLM struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"llm"`
	Data struct {
		PortfolioFile string `yaml:"portfolio_file"`
		ProfileFile   string `yaml:"profile_file"`
		SampleFile    string `yaml:"sample_file"`
		SQLitePath    string `yaml:"sqlite_path"`
	} `yaml:"data"`
	Cache struct {
		ResultTTL Duration `yaml:"result_ttl"`
		ProbeTTL  Duration `yaml:"probe_ttl"`
	} `yaml:"cache"`
	Watch struct {
		Cron string `yaml:"cron"`
	} `yaml:"watch"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A .env file in the working directory is loaded first so that
// keys can live outside the YAML.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FUTU_HOST"); v != "" {
		cfg.Futu.Host = v
	}
	if v := os.Getenv("FUTU_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Futu.Port = port
		}
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Data.SQLitePath = v
	}

	// Defaults
	if cfg.Futu.Host == "" {
		cfg.Futu.Host = "127.0.0.1"
	}
	if cfg.Futu.Port == 0 {
		cfg.Futu.Port = 11111
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-3.5-turbo"
	}
	if cfg.Data.PortfolioFile == "" {
		cfg.Data.PortfolioFile = "data/portfolio.json"
	}
	if cfg.Data.ProfileFile == "" {
		cfg.Data.ProfileFile = "data/user_profile.json"
	}
	if cfg.Data.SampleFile == "" {
		cfg.Data.SampleFile = "data/sample_data.csv"
	}
	if cfg.Data.SQLitePath == "" {
		cfg.Data.SQLitePath = "data/botinvest.db"
	}
	if cfg.Cache.ResultTTL == 0 {
		cfg.Cache.ResultTTL = Duration(5 * time.Minute)
	}
	if cfg.Cache.ProbeTTL == 0 {
		cfg.Cache.ProbeTTL = Duration(10 * time.Second)
	}
	if cfg.Watch.Cron == "" {
		cfg.Watch.Cron = "0 */15 * * * *"
	}

	return cfg, nil
}
