package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"botinvest/internal/model"
)

// AlphaVantageProvider fetches daily history from the Alpha Vantage REST
// API. The free tier is tight on quota, so this sits last in the fallback
// chain. Like stooq it only covers the US market and self-rejects suffixed
// symbols without a network call.
type AlphaVantageProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewAlphaVantageProvider(apiKey string) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		BaseURL: "https://www.alphavantage.co",
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 25 * time.Second},
	}
}

func (a *AlphaVantageProvider) Name() string { return "alphavantage" }

func (a *AlphaVantageProvider) History(ctx context.Context, symbol string, period model.Period, _ model.Interval) (model.BarSeries, error) {
	if a.APIKey == "" {
		return model.BarSeries{}, &PermanentError{Provider: a.Name(), Reason: "api key not configured"}
	}
	if strings.Contains(symbol, ".") {
		return model.BarSeries{}, &PermanentError{Provider: a.Name(), Reason: fmt.Sprintf("symbol %s outside US market", symbol)}
	}

	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY_ADJUSTED")
	q.Set("symbol", symbol)
	q.Set("apikey", a.APIKey)
	q.Set("outputsize", "compact")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/query?"+q.Encode(), nil)
	if err != nil {
		return model.BarSeries{}, err
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return model.BarSeries{}, &TransientError{Provider: a.Name(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.BarSeries{}, &TransientError{Provider: a.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var payload struct {
		Note        string                       `json:"Note"`
		Information string                       `json:"Information"`
		Series      map[string]map[string]string `json:"Time Series (Daily)"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return model.BarSeries{}, &TransientError{Provider: a.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	// The API reports quota exhaustion inside a 200 response.
	if payload.Note != "" || payload.Information != "" {
		return model.BarSeries{}, &TransientError{Provider: a.Name(), RateLimited: true, Err: fmt.Errorf("quota message: %s%s", payload.Note, payload.Information)}
	}
	if len(payload.Series) == 0 {
		return model.BarSeries{}, ErrNoData
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -period.Days())
	bars := make([]model.Bar, 0, len(payload.Series))
	for day, row := range payload.Series {
		ts, err := time.Parse("2006-01-02", day)
		if err != nil || ts.Before(cutoff) {
			continue
		}
		bars = append(bars, model.Bar{
			Time:   ts,
			Open:   avField(row, "1. open"),
			High:   avField(row, "2. high"),
			Low:    avField(row, "3. low"),
			Close:  avField(row, "4. close"),
			Volume: avField(row, "6. volume"),
		})
	}
	if len(bars) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return model.BarSeries{Bars: bars, Source: a.Name()}, nil
}

func avField(row map[string]string, key string) float64 {
	v, _ := strconv.ParseFloat(row[key], 64)
	return v
}
