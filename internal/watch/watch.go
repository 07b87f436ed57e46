// Package watch revalues the paper portfolio on a cron schedule and writes
// the valuations to the trade journal.
package watch

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"botinvest/internal/fetcher"
	"botinvest/internal/ledger"
)

// Watcher runs periodic portfolio valuations.
type Watcher struct {
	cron    *cron.Cron
	fetcher *fetcher.Fetcher
	trader  *ledger.PaperTrader
	journal *ledger.Journal
	opts    fetcher.Options
	ctx     context.Context
}

// New builds a watcher. journal may be nil, in which case valuations are
// only logged.
func New(ctx context.Context, f *fetcher.Fetcher, trader *ledger.PaperTrader, journal *ledger.Journal, opts fetcher.Options) *Watcher {
	return &Watcher{
		cron:    cron.New(cron.WithSeconds()),
		fetcher: f,
		trader:  trader,
		journal: journal,
		opts:    opts,
		ctx:     ctx,
	}
}

// Register schedules the valuation task.
func (w *Watcher) Register(spec string) error {
	if _, err := w.cron.AddFunc(spec, w.revalue); err != nil {
		return fmt.Errorf("register valuation task: %w", err)
	}
	return nil
}

// Start starts the scheduler.
func (w *Watcher) Start() {
	w.cron.Start()
	log.Info("watcher started")
}

// Stop stops the scheduler gracefully.
func (w *Watcher) Stop() {
	w.cron.Stop()
	log.Info("watcher stopped")
}

// RunOnce values the portfolio immediately and returns the total. Positions
// whose price cannot be fetched are valued at cost.
func (w *Watcher) RunOnce() float64 {
	account := w.trader.Account()
	prices := make(map[string]float64, len(account.Positions))
	for tk := range account.Positions {
		price, err := w.fetcher.CurrentPrice(w.ctx, tk, w.opts)
		if err != nil {
			log.Warnf("valuation price for %s unavailable: %v", tk, err)
			continue
		}
		prices[tk] = price
	}
	total := w.trader.TotalValue(prices)
	if w.journal != nil {
		if err := w.journal.RecordValuation(total, account.Cash); err != nil {
			log.Errorf("record valuation: %v", err)
		}
	}
	return total
}

func (w *Watcher) revalue() {
	log.Infof("portfolio valued at %.2f", w.RunOnce())
}
