package ledger

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"botinvest/internal/model"
)

// Journal is an append-only sqlite record of trades and valuation
// snapshots, kept next to the JSON snapshot for later analysis. The JSON
// file stays the source of truth; the journal is best-effort.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenJournal opens (or creates) the sqlite database and runs migrations.
func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Infof("trade journal opened: %s", dbPath)
	return j, nil
}

func (j *Journal) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			trade_date TEXT,
			action     TEXT,
			ticker     TEXT,
			qty        REAL,
			price      REAL,
			amount     REAL,
			cash_after REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,

		`CREATE TABLE IF NOT EXISTS valuations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp    INTEGER NOT NULL,
			total_value  REAL,
			cash         REAL,
			market_value REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_ts ON valuations(timestamp)`,
	}
	for _, s := range stmts {
		if _, err := j.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordTrade appends one executed trade with the cash balance after it.
func (j *Journal) RecordTrade(tr model.Trade, cashAfter float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`INSERT INTO trades
		(timestamp, trade_date, action, ticker, qty, price, amount, cash_after)
		VALUES (?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), tr.Date, tr.Action, tr.Ticker, tr.Qty, tr.Price, tr.Amount, cashAfter,
	)
	return err
}

// RecordValuation appends one mark-to-market snapshot.
func (j *Journal) RecordValuation(totalValue, cash float64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(`INSERT INTO valuations
		(timestamp, total_value, cash, market_value)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), totalValue, cash, totalValue-cash,
	)
	return err
}

func (j *Journal) Close() error {
	return j.db.Close()
}
