package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"botinvest/internal/model"
)

// StooqProvider fetches daily history CSVs from stooq.com. Coverage outside
// the US market is unreliable, so suffixed symbols are rejected up front
// without a network call.
type StooqProvider struct {
	BaseURL string
	Client  *http.Client
}

func NewStooqProvider() *StooqProvider {
	return &StooqProvider{
		BaseURL: "https://stooq.com",
		Client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (s *StooqProvider) Name() string { return "stooq" }

func (s *StooqProvider) History(ctx context.Context, symbol string, period model.Period, _ model.Interval) (model.BarSeries, error) {
	if strings.Contains(symbol, ".") {
		return model.BarSeries{}, &PermanentError{Provider: s.Name(), Reason: fmt.Sprintf("symbol %s outside US market", symbol)}
	}

	endpoint := fmt.Sprintf("%s/q/d/l/?s=%s.us&i=d", s.BaseURL, strings.ToLower(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.BarSeries{}, err
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return model.BarSeries{}, &TransientError{Provider: s.Name(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.BarSeries{}, &TransientError{Provider: s.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	bars, err := parseStooqCSV(resp.Body)
	if err != nil {
		return model.BarSeries{}, &TransientError{Provider: s.Name(), Err: err}
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -period.Days())
	trimmed := bars[:0]
	for _, b := range bars {
		if !b.Time.Before(cutoff) {
			trimmed = append(trimmed, b)
		}
	}
	if len(trimmed) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	return model.BarSeries{Bars: trimmed, Source: s.Name()}, nil
}

// parseStooqCSV decodes the Date,Open,High,Low,Close,Volume export format.
// Rows are already in ascending date order.
func parseStooqCSV(r interface{ Read([]byte) (int, error) }) ([]model.Bar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("csv missing %s column", required)
		}
	}

	bars := make([]model.Bar, 0, len(records)-1)
	for _, row := range records[1:] {
		ts, err := time.Parse("2006-01-02", row[col["date"]])
		if err != nil {
			continue
		}
		b := model.Bar{
			Time:  ts,
			Open:  parseFloat(row, col, "open"),
			High:  parseFloat(row, col, "high"),
			Low:   parseFloat(row, col, "low"),
			Close: parseFloat(row, col, "close"),
		}
		if i, ok := col["volume"]; ok && i < len(row) {
			b.Volume, _ = strconv.ParseFloat(row[i], 64)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func parseFloat(row []string, col map[string]int, name string) float64 {
	i := col[name]
	if i >= len(row) {
		return 0
	}
	v, _ := strconv.ParseFloat(row[i], 64)
	return v
}
