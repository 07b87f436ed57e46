// Package ledger owns the simulated trading account: buy/sell with exact
// weighted-average cost-basis accounting, and a full JSON snapshot persisted
// after every mutation.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"botinvest/internal/model"
	"botinvest/internal/ticker"
)

// InsufficientFundsError is returned when a buy costs more than the
// available cash. The account is left untouched.
type InsufficientFundsError struct {
	Cost float64
	Cash float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: need %.2f, have %.2f", e.Cost, e.Cash)
}

// InsufficientPositionError is returned when a sell exceeds the held
// quantity. The account is left untouched.
type InsufficientPositionError struct {
	Ticker    string
	Held      float64
	Requested float64
}

func (e *InsufficientPositionError) Error() string {
	return fmt.Sprintf("insufficient position in %s: hold %g, want to sell %g", e.Ticker, e.Held, e.Requested)
}

// PaperTrader mutates a persisted paper-trading account. All operations run
// under one mutex so load-mutate-save is a critical section; the snapshot on
// disk never diverges from the in-memory history.
type PaperTrader struct {
	mu      sync.Mutex
	path    string
	journal *Journal
	account *model.Account
}

// NewPaperTrader loads the account snapshot from path, substituting a fresh
// default account when the file is missing or corrupt. The optional journal
// receives an append-only copy of every trade; it may be nil.
func NewPaperTrader(path string, journal *Journal) *PaperTrader {
	return &PaperTrader{path: path, journal: journal, account: loadAccount(path)}
}

func loadAccount(path string) *model.Account {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("read portfolio file: %v, starting fresh", err)
		}
		return model.NewAccount(model.DefaultInitialCash)
	}
	var acc model.Account
	if err := json.Unmarshal(data, &acc); err != nil {
		log.Warnf("portfolio file %s is corrupt: %v, starting fresh", path, err)
		return model.NewAccount(model.DefaultInitialCash)
	}
	if acc.Positions == nil {
		acc.Positions = make(map[string]model.Position)
	}
	if acc.History == nil {
		acc.History = []model.Trade{}
	}
	return &acc
}

// Account returns a deep copy of the current state. Callers never get a
// handle they could mutate behind the ledger's back.
func (t *PaperTrader) Account() model.Account {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *PaperTrader) snapshot() model.Account {
	acc := model.Account{
		Cash:      t.account.Cash,
		Positions: make(map[string]model.Position, len(t.account.Positions)),
		History:   make([]model.Trade, len(t.account.History)),
	}
	for k, v := range t.account.Positions {
		acc.Positions[k] = v
	}
	copy(acc.History, t.account.History)
	return acc
}

// validateOrder rejects non-positive quantities and prices before any state
// is touched. A zero-qty fill would leave a position the account must never
// hold, and a NaN average cost is unmarshalable.
func validateOrder(action string, qty, price float64) error {
	if !(qty > 0) {
		return fmt.Errorf("%s: quantity must be positive, got %g", action, qty)
	}
	if !(price > 0) {
		return fmt.Errorf("%s: price must be positive, got %g", action, price)
	}
	return nil
}

// Buy debits cash, recomputes the weighted-average cost of the position and
// persists the account. Fails with InsufficientFundsError when the cost
// exceeds available cash.
func (t *PaperTrader) Buy(rawTicker string, qty, price float64) (string, error) {
	if err := validateOrder("buy", qty, price); err != nil {
		return "", err
	}
	sym := ticker.Normalize(rawTicker)
	t.mu.Lock()
	defer t.mu.Unlock()

	cost := qty * price
	if cost > t.account.Cash {
		return "", &InsufficientFundsError{Cost: cost, Cash: t.account.Cash}
	}

	t.account.Cash -= cost
	pos := t.account.Positions[sym]
	totalCost := pos.Qty*pos.AvgCost + cost
	pos.Qty += qty
	pos.AvgCost = totalCost / pos.Qty
	t.account.Positions[sym] = pos

	trade := model.NewTrade(model.ActionBuy, sym, qty, price)
	t.account.History = append(t.account.History, trade)
	if err := t.save(); err != nil {
		return "", err
	}
	t.record(trade)
	return fmt.Sprintf("bought %g %s @ %.2f", qty, sym, price), nil
}

// Sell credits cash and decrements the position, removing it entirely at
// zero quantity. The average cost is never changed by a sell. Fails with
// InsufficientPositionError when the held quantity is too small.
func (t *PaperTrader) Sell(rawTicker string, qty, price float64) (string, error) {
	if err := validateOrder("sell", qty, price); err != nil {
		return "", err
	}
	sym := ticker.Normalize(rawTicker)
	t.mu.Lock()
	defer t.mu.Unlock()

	pos, ok := t.account.Positions[sym]
	if !ok || pos.Qty < qty {
		return "", &InsufficientPositionError{Ticker: sym, Held: pos.Qty, Requested: qty}
	}

	t.account.Cash += qty * price
	pos.Qty -= qty
	if pos.Qty == 0 {
		delete(t.account.Positions, sym)
	} else {
		t.account.Positions[sym] = pos
	}

	trade := model.NewTrade(model.ActionSell, sym, qty, price)
	t.account.History = append(t.account.History, trade)
	if err := t.save(); err != nil {
		return "", err
	}
	t.record(trade)
	return fmt.Sprintf("sold %g %s @ %.2f", qty, sym, price), nil
}

// TotalValue marks the account to market with the given price map.
func (t *PaperTrader) TotalValue(currentPrices map[string]float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.account.TotalValue(currentPrices)
}

// save writes the full snapshot through a temp file and renames it over the
// target, so a crash mid-write cannot truncate the ledger. Save failures
// propagate: silently losing a trade record is worse than failing loudly.
func (t *PaperTrader) save() error {
	data, err := json.MarshalIndent(t.account, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (t *PaperTrader) record(trade model.Trade) {
	if t.journal == nil {
		return
	}
	if err := t.journal.RecordTrade(trade, t.account.Cash); err != nil {
		log.Errorf("journal trade: %v", err)
	}
}
