// Package profile stores the user's trading principles and strategy notes.
// The advisor feeds the principles into every prompt.
package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

type data struct {
	Principles    []string `json:"principles"`
	StrategyNotes string   `json:"strategy_notes"`
}

// Profile is a small JSON-backed store. Missing or corrupt files fall back
// to the seeded defaults.
type Profile struct {
	mu   sync.Mutex
	path string
	data data
}

func defaults() data {
	return data{
		Principles: []string{
			"永远顺势而为，不逆势抄底",
			"单笔交易亏损控制在总资金的 2% 以内",
			"看不懂的行情就空仓",
		},
		StrategyNotes: "偏好右侧突破交易，关注成交量配合。",
	}
}

// Load reads the profile at path, seeding defaults when absent or corrupt.
func Load(path string) *Profile {
	p := &Profile{path: path, data: defaults()}
	raw, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	var d data
	if err := json.Unmarshal(raw, &d); err != nil {
		log.Warnf("profile file %s is corrupt: %v, using defaults", path, err)
		return p
	}
	p.data = d
	return p
}

// PrinciplesText returns the principles as one newline-joined block.
func (p *Profile) PrinciplesText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return strings.Join(p.data.Principles, "\n")
}

// Notes returns the strategy notes.
func (p *Profile) Notes() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.StrategyNotes
}

// SavePrinciples replaces the principles from a multi-line text, skipping
// blank lines, and persists.
func (p *Profile) SavePrinciples(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var list []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			list = append(list, line)
		}
	}
	p.data.Principles = list
	return p.save()
}

// SaveNotes replaces the strategy notes and persists.
func (p *Profile) SaveNotes(notes string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.StrategyNotes = notes
	return p.save()
}

func (p *Profile) save() error {
	raw, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(p.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(p.path, raw, 0o644)
}
