// Package fetcher orchestrates the multi-provider fetch pipeline: provider
// ordering, retry with backoff, result/probe caching and the local sample
// fallback.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"botinvest/internal/cache"
	"botinvest/internal/model"
	"botinvest/internal/provider"
	"botinvest/internal/ticker"
)

// SourceAuto lets the fetcher walk the full provider chain.
const SourceAuto = "auto"

const (
	defaultResultTTL = 5 * time.Minute
	defaultProbeTTL  = 10 * time.Second
	retryAttempts    = 3
	retryBackoffBase = 1500 * time.Millisecond
)

// GatewayProvider is the broker-quote gateway: a provider that can also be
// health-probed without a full fetch.
type GatewayProvider interface {
	provider.Provider
	provider.Prober
}

// ProbeResult is a cached gateway health-probe outcome.
type ProbeResult struct {
	Available bool
	Message   string
}

// Options select the source and fallback behavior for a single request.
type Options struct {
	// Source pins one provider by name, or SourceAuto for the full chain.
	Source string
	// AllowLocalFallback permits returning the bundled sample dataset when
	// every provider has failed.
	AllowLocalFallback bool
}

// Config wires a Fetcher.
type Config struct {
	// Gateway is the broker-quote gateway, or nil when not configured.
	Gateway GatewayProvider
	// GatewayEnabled gates the gateway in auto mode without unwiring it.
	GatewayEnabled bool
	// General is the wide-coverage market-data API (the only provider that
	// gets the retry-with-backoff treatment).
	General provider.Provider
	// Extras are the supplementary sources, tried in order after General.
	Extras []provider.Provider
	// SamplePath points at the local sample CSV; empty disables fallback.
	SamplePath string

	ResultTTL time.Duration
	ProbeTTL  time.Duration
}

// Fetcher is the resilient history fetcher. Safe for concurrent use.
type Fetcher struct {
	cfg     Config
	byName  map[string]provider.Provider
	results *cache.Cache[model.BarSeries]
	probes  *cache.Cache[ProbeResult]

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Fetcher from cfg, applying default TTLs where unset.
func New(cfg Config) *Fetcher {
	if cfg.ResultTTL == 0 {
		cfg.ResultTTL = defaultResultTTL
	}
	if cfg.ProbeTTL == 0 {
		cfg.ProbeTTL = defaultProbeTTL
	}
	f := &Fetcher{
		cfg:     cfg,
		byName:  make(map[string]provider.Provider),
		results: cache.New[model.BarSeries](cfg.ResultTTL),
		probes:  cache.New[ProbeResult](cfg.ProbeTTL),
		sleep:   sleepCtx,
	}
	if cfg.Gateway != nil {
		f.byName[cfg.Gateway.Name()] = cfg.Gateway
	}
	if cfg.General != nil {
		f.byName[cfg.General.Name()] = cfg.General
	}
	for _, p := range cfg.Extras {
		f.byName[p.Name()] = p
	}
	return f
}

// GetHistory fetches daily history for a ticker in any supported spelling.
// It returns provider.ErrNoData when the chain (and fallback, if allowed)
// is exhausted; that is the explicit "no data" result, not a fault.
func (f *Fetcher) GetHistory(ctx context.Context, rawTicker string, period model.Period, interval model.Interval, opts Options) (model.BarSeries, error) {
	symbol := ticker.Normalize(rawTicker)
	if symbol == "" {
		return model.BarSeries{}, provider.ErrNoData
	}
	if opts.Source == "" {
		opts.Source = SourceAuto
	}
	key := strings.Join([]string{symbol, string(period), string(interval), opts.Source, f.gatewayKey()}, "|")
	return f.results.GetOrCompute(key, func() (model.BarSeries, error) {
		return f.fetch(ctx, symbol, period, interval, opts)
	})
}

func (f *Fetcher) gatewayKey() string {
	if g, ok := f.cfg.Gateway.(*provider.FutuProvider); ok && g != nil {
		return fmt.Sprintf("%s:%d", g.Host, g.Port)
	}
	return ""
}

func (f *Fetcher) fetch(ctx context.Context, symbol string, period model.Period, interval model.Interval, opts Options) (model.BarSeries, error) {
	// Pinned source: attempt only that provider. The caller's intent is not
	// widened to auto mode when it fails; only the local sample may step in.
	if opts.Source != SourceAuto {
		p, ok := f.byName[opts.Source]
		if !ok {
			return model.BarSeries{}, fmt.Errorf("unknown data source %q", opts.Source)
		}
		series, err := f.attempt(ctx, p, symbol, period, interval)
		if err == nil {
			return series, nil
		}
		log.Warnf("%s fetch for %s failed: %v", p.Name(), symbol, err)
		if opts.AllowLocalFallback {
			if sample, serr := f.loadSample(); serr == nil {
				return sample, nil
			}
		}
		return model.BarSeries{}, err
	}

	// Auto mode: gateway first (avoids rate limits on the general API), but
	// only when its cached health probe says it is reachable.
	if f.cfg.Gateway != nil && f.cfg.GatewayEnabled {
		if probe := f.ProbeGateway(ctx); probe.Available {
			series, err := f.cfg.Gateway.History(ctx, symbol, period, interval)
			if err == nil {
				return series, nil
			}
			log.Warnf("%s fetch for %s failed: %v", f.cfg.Gateway.Name(), symbol, err)
		} else {
			log.Infof("skipping %s: %s", f.cfg.Gateway.Name(), probe.Message)
		}
	}

	if f.cfg.General != nil {
		series, err := f.attemptWithRetry(ctx, f.cfg.General, symbol, period, interval)
		if err == nil {
			return series, nil
		}
		if ctx.Err() != nil {
			return model.BarSeries{}, ctx.Err()
		}
		log.Warnf("%s fetch for %s failed: %v", f.cfg.General.Name(), symbol, err)
	}

	for _, p := range f.cfg.Extras {
		series, err := p.History(ctx, symbol, period, interval)
		if err == nil {
			return series, nil
		}
		if ctx.Err() != nil {
			return model.BarSeries{}, ctx.Err()
		}
		log.Warnf("%s fetch for %s failed: %v", p.Name(), symbol, err)
	}

	if opts.AllowLocalFallback {
		if sample, err := f.loadSample(); err == nil {
			log.Infof("falling back to local sample data for %s", symbol)
			return sample, nil
		}
	}
	return model.BarSeries{}, provider.ErrNoData
}

// attempt runs one provider, applying the retry policy only to the general
// market-data API.
func (f *Fetcher) attempt(ctx context.Context, p provider.Provider, symbol string, period model.Period, interval model.Interval) (model.BarSeries, error) {
	if f.cfg.General != nil && p.Name() == f.cfg.General.Name() {
		return f.attemptWithRetry(ctx, p, symbol, period, interval)
	}
	return p.History(ctx, symbol, period, interval)
}

// attemptWithRetry retries rate-limited failures with linearly increasing
// backoff. Permanent failures and plain errors abort immediately.
func (f *Fetcher) attemptWithRetry(ctx context.Context, p provider.Provider, symbol string, period model.Period, interval model.Interval) (model.BarSeries, error) {
	var lastErr error
	for i := 0; i < retryAttempts; i++ {
		series, err := p.History(ctx, symbol, period, interval)
		if err == nil {
			return series, nil
		}
		lastErr = err
		if !provider.IsRateLimited(err) {
			return model.BarSeries{}, err
		}
		if i < retryAttempts-1 {
			backoff := time.Duration(i+1) * retryBackoffBase
			log.Warnf("%s rate limited, retrying in %s", p.Name(), backoff)
			if serr := f.sleep(ctx, backoff); serr != nil {
				return model.BarSeries{}, serr
			}
		}
	}
	return model.BarSeries{}, lastErr
}

// ProbeGateway returns the cached gateway health state, probing on expiry.
func (f *Fetcher) ProbeGateway(ctx context.Context) ProbeResult {
	if f.cfg.Gateway == nil {
		return ProbeResult{Available: false, Message: "gateway not configured"}
	}
	res, err := f.probes.GetOrCompute(f.gatewayKey(), func() (ProbeResult, error) {
		ok, msg := f.cfg.Gateway.Probe(ctx)
		return ProbeResult{Available: ok, Message: msg}, nil
	})
	if err != nil {
		return ProbeResult{Available: false, Message: err.Error()}
	}
	return res
}

// CurrentPrice returns the latest close for a ticker via the normal
// pipeline. Used for mark-to-market valuation.
func (f *Fetcher) CurrentPrice(ctx context.Context, rawTicker string, opts Options) (float64, error) {
	series, err := f.GetHistory(ctx, rawTicker, model.Period1Mo, model.IntervalDaily, opts)
	if err != nil {
		return 0, err
	}
	return series.Last().Close, nil
}

func (f *Fetcher) loadSample() (model.BarSeries, error) {
	if f.cfg.SamplePath == "" {
		return model.BarSeries{}, errors.New("no sample dataset configured")
	}
	return LoadSample(f.cfg.SamplePath)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
