package screener

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botinvest/internal/fetcher"
	"botinvest/internal/model"
	"botinvest/internal/provider"
)

// poolProvider serves a canned series per symbol.
type poolProvider struct {
	series map[string]model.BarSeries
}

func (p *poolProvider) Name() string { return "pool" }

func (p *poolProvider) History(_ context.Context, symbol string, _ model.Period, _ model.Interval) (model.BarSeries, error) {
	s, ok := p.series[symbol]
	if !ok {
		return model.BarSeries{}, provider.ErrNoData
	}
	return s, nil
}

func seriesFromCloses(closes []float64) model.BarSeries {
	bars := make([]model.Bar, len(closes))
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = model.Bar{Time: base.AddDate(0, 0, i), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return model.BarSeries{Bars: bars, Source: "test"}
}

// drifting builds 70 bars that trend up with alternating pullbacks, which
// keeps RSI in the 40..70 band while the price stays above the 60-day mean.
func drifting() model.BarSeries {
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 100 + 0.25*float64(i) + 2*float64(i%2)
	}
	return seriesFromCloses(closes)
}

func declining() model.BarSeries {
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	return seriesFromCloses(closes)
}

func flat() model.BarSeries {
	closes := make([]float64, 70)
	for i := range closes {
		closes[i] = 100
	}
	return seriesFromCloses(closes)
}

func newTestScreener(pool StockPool, series map[string]model.BarSeries) *Screener {
	f := fetcher.New(fetcher.Config{
		General:   &poolProvider{series: series},
		ResultTTL: -1,
	})
	s := New(f)
	s.Pool = pool
	return s
}

func TestRunBucketsByHorizon(t *testing.T) {
	s := newTestScreener(
		StockPool{US: []string{"UPTREND", "OVERSOLD", "SIDEWAYS"}},
		map[string]model.BarSeries{
			"UPTREND":  drifting(),
			"OVERSOLD": declining(),
			"SIDEWAYS": flat(),
		},
	)

	res, err := s.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, res.LongTerm, 1)
	assert.Equal(t, "UPTREND", res.LongTerm[0].Ticker)
	assert.Equal(t, "Bullish", res.LongTerm[0].Trend)

	require.Len(t, res.ShortTerm, 1)
	assert.Equal(t, "OVERSOLD", res.ShortTerm[0].Ticker)
	assert.Equal(t, "Bearish", res.ShortTerm[0].Trend)
	assert.Less(t, res.ShortTerm[0].RSI, 30.0)

	require.Len(t, res.WatchList, 1)
	assert.Equal(t, "SIDEWAYS", res.WatchList[0].Ticker)
}

func TestRunSkipsUnfetchableAndShortHistories(t *testing.T) {
	short := seriesFromCloses([]float64{1, 2, 3})
	s := newTestScreener(
		StockPool{US: []string{"MISSING", "SHORT", "SIDEWAYS"}},
		map[string]model.BarSeries{
			"SHORT":    short,
			"SIDEWAYS": flat(),
		},
	)

	res, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.LongTerm)
	assert.Empty(t, res.ShortTerm)
	require.Len(t, res.WatchList, 1)
}

func TestRunReportsProgress(t *testing.T) {
	s := newTestScreener(
		StockPool{US: []string{"SIDEWAYS"}},
		map[string]model.BarSeries{"SIDEWAYS": flat()},
	)

	var calls []string
	_, err := s.Run(context.Background(), func(done, total int, tk string) {
		assert.Equal(t, 1, total)
		calls = append(calls, tk)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SIDEWAYS", ""}, calls)
}

func TestClassifyBreakout(t *testing.T) {
	// A long slide, then one bar closing back above the 20-day mean.
	closes := make([]float64, 70)
	for i := 0; i < 69; i++ {
		closes[i] = 200 - float64(i)
	}
	closes[69] = 160

	c, bucket := classify("BRK", seriesFromCloses(closes))
	var res Result
	list := bucket(&res)
	*list = append(*list, c)
	require.Len(t, res.ShortTerm, 1)
	assert.Contains(t, res.ShortTerm[0].Reason, "20日均线")
}

func TestRunHonorsCancel(t *testing.T) {
	s := newTestScreener(
		StockPool{US: []string{"SIDEWAYS"}},
		map[string]model.BarSeries{"SIDEWAYS": flat()},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, nil)
	assert.Error(t, err)
}
