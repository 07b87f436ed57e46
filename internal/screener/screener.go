// Package screener scans a curated stock pool and buckets candidates by
// trade horizon.
package screener

import (
	"context"
	"math"

	log "github.com/sirupsen/logrus"

	"botinvest/internal/analysis"
	"botinvest/internal/fetcher"
	"botinvest/internal/model"
)

// StockPool is the curated watch universe, split by market.
type StockPool struct {
	US []string
	HK []string
}

// DefaultPool returns the built-in selection of liquid US and HK names.
func DefaultPool() StockPool {
	return StockPool{
		US: []string{
			"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "TSLA", "META", "NFLX",
			"JPM", "BAC",
			"KO", "PEP", "MCD",
			"PFE", "JNJ",
		},
		HK: []string{
			"0700.HK", "9988.HK", "3690.HK", "1810.HK",
			"1211.HK", "0941.HK", "0005.HK",
		},
	}
}

// All returns every ticker in the pool, US first.
func (p StockPool) All() []string {
	all := make([]string, 0, len(p.US)+len(p.HK))
	all = append(all, p.US...)
	return append(all, p.HK...)
}

// Candidate is one screened ticker with the values that qualified it.
type Candidate struct {
	Ticker string  `json:"ticker"`
	Price  float64 `json:"price"`
	RSI    float64 `json:"rsi"`
	Trend  string  `json:"trend"`
	Reason string  `json:"reason,omitempty"`
}

// Result groups candidates by horizon.
type Result struct {
	LongTerm  []Candidate `json:"long_term"`
	ShortTerm []Candidate `json:"short_term"`
	WatchList []Candidate `json:"watch_list"`
}

// Progress reports scan position to the caller, e.g. for a progress bar.
type Progress func(done, total int, ticker string)

// Screener runs indicator screens over the pool using the shared fetcher.
type Screener struct {
	Fetcher *fetcher.Fetcher
	Pool    StockPool
	Opts    fetcher.Options
}

// New builds a screener over the default pool.
func New(f *fetcher.Fetcher) *Screener {
	return &Screener{Fetcher: f, Pool: DefaultPool()}
}

// minBars is the history floor for the 60-day trend average.
const minBars = 60

// Run screens every pool ticker on six months of daily bars. Tickers whose
// history cannot be fetched or is too short are skipped, not failed.
func (s *Screener) Run(ctx context.Context, progress Progress) (Result, error) {
	var res Result
	tickers := s.Pool.All()
	for i, tk := range tickers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if progress != nil {
			progress(i, len(tickers), tk)
		}
		series, err := s.Fetcher.GetHistory(ctx, tk, model.Period6Mo, model.IntervalDaily, s.Opts)
		if err != nil {
			log.Debugf("screener: skipping %s: %v", tk, err)
			continue
		}
		if len(series.Bars) < minBars {
			continue
		}
		c, bucket := classify(tk, series)
		list := bucket(&res)
		*list = append(*list, c)
	}
	if progress != nil {
		progress(len(tickers), len(tickers), "")
	}
	return res, nil
}

type bucketFn func(*Result) *[]Candidate

// classify applies the screen rules to one ticker's history.
func classify(tk string, series model.BarSeries) (Candidate, bucketFn) {
	n := len(series.Bars)
	last, prev := n-1, n-2

	sma20 := analysis.SMA(series, 20)
	sma60 := analysis.SMA(series, 60)
	rsi := analysis.RSI(series, 14)

	price := series.Bars[last].Close
	c := Candidate{Ticker: tk, Price: price, RSI: rsi[last], Trend: "Bearish"}
	if price > sma60[last] {
		c.Trend = "Bullish"
	}

	switch {
	// Steady long-term uptrend without overheated momentum.
	case price > sma60[last] && c.RSI > 40 && c.RSI < 70:
		c.Reason = "长期上升趋势稳健，估值适中"
		return c, func(r *Result) *[]Candidate { return &r.LongTerm }
	// Oversold bounce setup.
	case c.RSI < 30:
		c.Reason = "RSI超卖 (<30)，存在反弹需求"
		return c, func(r *Result) *[]Candidate { return &r.ShortTerm }
	// Fresh breakout above the 20-day average.
	case price > sma20[last] && !math.IsNaN(sma20[prev]) && series.Bars[prev].Close <= sma20[prev]:
		c.Reason = "突破 20日均线"
		return c, func(r *Result) *[]Candidate { return &r.ShortTerm }
	default:
		return c, func(r *Result) *[]Candidate { return &r.WatchList }
	}
}
