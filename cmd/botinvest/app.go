package main

import (
	"flag"
	"fmt"

	log "github.com/sirupsen/logrus"

	"botinvest/internal/advisor"
	"botinvest/internal/config"
	"botinvest/internal/fetcher"
	"botinvest/internal/ledger"
	"botinvest/internal/profile"
	"botinvest/internal/provider"
)

// app bundles the wired components every subcommand draws from.
type app struct {
	cfg     *config.Config
	fetcher *fetcher.Fetcher
	trader  *ledger.PaperTrader
	journal *ledger.Journal
	advisor *advisor.Advisor
	profile *profile.Profile
}

// newApp loads config and wires the data pipeline, the paper ledger and the
// advisory client. The sqlite journal is best-effort.
func newApp() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	f := fetcher.New(fetcher.Config{
		Gateway:        provider.NewFutuProvider(cfg.Futu.Host, cfg.Futu.Port),
		GatewayEnabled: cfg.Futu.Enabled,
		General:        provider.NewYahooProvider(cfg.Proxy),
		Extras: []provider.Provider{
			provider.NewStooqProvider(),
			provider.NewAlphaVantageProvider(cfg.AlphaVantage.APIKey),
		},
		SamplePath: cfg.Data.SampleFile,
		ResultTTL:  cfg.Cache.ResultTTL.Std(),
		ProbeTTL:   cfg.Cache.ProbeTTL.Std(),
	})

	var journal *ledger.Journal
	if cfg.Data.SQLitePath != "" {
		if journal, err = ledger.OpenJournal(cfg.Data.SQLitePath); err != nil {
			log.Warnf("trade journal unavailable: %v", err)
			journal = nil
		}
	}

	return &app{
		cfg:     cfg,
		fetcher: f,
		trader:  ledger.NewPaperTrader(cfg.Data.PortfolioFile, journal),
		journal: journal,
		advisor: advisor.New(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model),
		profile: profile.Load(cfg.Data.ProfileFile),
	}, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
	}
}

// sourceFlags are the data-source selectors shared by the market commands.
type sourceFlags struct {
	source  string
	offline bool
}

func (s *sourceFlags) register(f *flag.FlagSet) {
	f.StringVar(&s.source, "source", fetcher.SourceAuto, "data source: auto, futu, yahoo, stooq or alphavantage")
	f.BoolVar(&s.offline, "offline", false, "fall back to the bundled sample data when every source fails")
}

func (s *sourceFlags) opts() fetcher.Options {
	return fetcher.Options{Source: s.source, AllowLocalFallback: s.offline}
}
