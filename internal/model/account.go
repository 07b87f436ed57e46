package model

import "time"

// TradeTimeLayout is the timestamp format used in the persisted ledger file.
const TradeTimeLayout = "2006-01-02 15:04:05"

// Trade actions.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
)

// Trade is one append-only history record.
type Trade struct {
	Date   string  `json:"date"`
	Action string  `json:"action"`
	Ticker string  `json:"ticker"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// NewTrade stamps a trade record with the current time.
func NewTrade(action, ticker string, qty, price float64) Trade {
	return Trade{
		Date:   time.Now().Format(TradeTimeLayout),
		Action: action,
		Ticker: ticker,
		Qty:    qty,
		Price:  price,
		Amount: qty * price,
	}
}

// Position is an open holding. A position with Qty 0 never appears in the
// account map; it is removed instead.
type Position struct {
	Qty     float64 `json:"qty"`
	AvgCost float64 `json:"avg_cost"`
}

// Account holds the simulated trading account state. All mutation goes
// through the ledger; nothing else touches Positions or History.
type Account struct {
	Cash      float64             `json:"cash"`
	Positions map[string]Position `json:"positions"`
	History   []Trade             `json:"history"`
}

// DefaultInitialCash is the endowment of a fresh account.
const DefaultInitialCash = 100000.0

// NewAccount creates an empty account with the given cash endowment.
func NewAccount(initialCash float64) *Account {
	return &Account{
		Cash:      initialCash,
		Positions: make(map[string]Position),
		History:   []Trade{},
	}
}

// TotalValue computes cash plus mark-to-market value of open positions.
// Positions without a live price are valued at their average cost, so the
// result is best-effort when the price map is incomplete.
func (a *Account) TotalValue(currentPrices map[string]float64) float64 {
	marketValue := 0.0
	for ticker, pos := range a.Positions {
		price, ok := currentPrices[ticker]
		if !ok {
			price = pos.AvgCost
		}
		marketValue += pos.Qty * price
	}
	return a.Cash + marketValue
}
