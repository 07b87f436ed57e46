package watch

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botinvest/internal/fetcher"
	"botinvest/internal/ledger"
	"botinvest/internal/model"
)

type fixedProvider struct {
	close float64
}

func (p *fixedProvider) Name() string { return "fixed" }

func (p *fixedProvider) History(_ context.Context, _ string, _ model.Period, _ model.Interval) (model.BarSeries, error) {
	return model.BarSeries{
		Bars:   []model.Bar{{Time: time.Now(), Close: p.close}},
		Source: "fixed",
	}, nil
}

func TestRunOnceValuesPositionsAtMarket(t *testing.T) {
	trader := ledger.NewPaperTrader(filepath.Join(t.TempDir(), "portfolio.json"), nil)
	_, err := trader.Buy("AAPL", 10, 100)
	require.NoError(t, err)

	f := fetcher.New(fetcher.Config{General: &fixedProvider{close: 120}, ResultTTL: -1})
	w := New(context.Background(), f, trader, nil, fetcher.Options{})

	// 99000 cash after the buy, plus 10 shares marked at 120.
	assert.InDelta(t, 100200.0, w.RunOnce(), 1e-9)
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	trader := ledger.NewPaperTrader(filepath.Join(t.TempDir(), "portfolio.json"), nil)
	w := New(context.Background(), fetcher.New(fetcher.Config{}), trader, nil, fetcher.Options{})
	assert.Error(t, w.Register("not a cron spec"))
	assert.NoError(t, w.Register("0 */15 * * * *"))
}
