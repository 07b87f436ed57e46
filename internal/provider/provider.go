// Package provider contains the market-data source abstraction and its four
// concrete implementations. Every provider normalizes its raw response into
// the canonical bar shape; the fetcher never sees a provider-specific row.
package provider

import (
	"context"

	"botinvest/internal/model"
)

// Provider fetches OHLCV history for one symbol. Implementations classify
// their failures through the error types in errors.go so callers can decide
// between retrying the same source and moving to the next one.
type Provider interface {
	Name() string
	History(ctx context.Context, symbol string, period model.Period, interval model.Interval) (model.BarSeries, error)
}

// Prober is implemented by providers that can be health-checked cheaply,
// without performing a full fetch.
type Prober interface {
	Probe(ctx context.Context) (available bool, message string)
}
