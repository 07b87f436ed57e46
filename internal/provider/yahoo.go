package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"botinvest/internal/model"
)

// YahooProvider fetches history from the Yahoo Finance public chart API.
// It is the general source covering US, HK and mainland-China symbols, and
// the one most prone to rate limiting under repeated calls.
type YahooProvider struct {
	BaseURL string
	Client  *http.Client
}

// NewYahooProvider creates a provider with optional proxy support.
func NewYahooProvider(proxyURL string) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooProvider{
		BaseURL: "https://query1.finance.yahoo.com",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (y *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// columnAt reads one quote column, tolerating arrays shorter than the
// timestamp list (truncated responses serve null or missing tails).
func columnAt(col []interface{}, i int) float64 {
	if i >= len(col) {
		return 0
	}
	return toFloat(col[i])
}

// yahooRange maps a lookback period to the chart API's range parameter.
func yahooRange(period model.Period) string {
	switch period {
	case model.Period1Mo:
		return "1mo"
	case model.Period3Mo:
		return "3mo"
	case model.Period6Mo:
		return "6mo"
	case model.Period1Y:
		return "1y"
	case model.PeriodYTD:
		return "ytd"
	case model.Period2Y:
		return "2y"
	case model.Period5Y:
		return "5y"
	case model.Period10Y:
		return "10y"
	case model.PeriodMax:
		return "max"
	}
	return "1y"
}

func (y *YahooProvider) History(ctx context.Context, symbol string, period model.Period, interval model.Interval) (model.BarSeries, error) {
	iv := "1d"
	if !interval.IsDaily() {
		iv = string(interval)
	}
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		y.BaseURL, url.PathEscape(symbol), iv, yahooRange(period))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.BarSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return model.BarSeries{}, &TransientError{Provider: y.Name(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.BarSeries{}, &TransientError{Provider: y.Name(), Err: fmt.Errorf("read body: %w", err)}
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || strings.Contains(string(body), "Too Many Requests"):
		return model.BarSeries{}, &TransientError{Provider: y.Name(), RateLimited: true, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusNotFound:
		return model.BarSeries{}, &PermanentError{Provider: y.Name(), Reason: fmt.Sprintf("symbol %s not found", symbol)}
	case resp.StatusCode != http.StatusOK:
		return model.BarSeries{}, &TransientError{Provider: y.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.BarSeries{}, &TransientError{Provider: y.Name(), Err: fmt.Errorf("decode chart: %w", err)}
	}
	if chart.Chart.Error != nil {
		return model.BarSeries{}, &PermanentError{Provider: y.Name(), Reason: chart.Chart.Error.Description}
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return model.BarSeries{}, ErrNoData
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	quote := result.Indicators.Quote[0]
	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := columnAt(quote.Open, i)
		h := columnAt(quote.High, i)
		l := columnAt(quote.Low, i)
		c := columnAt(quote.Close, i)
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null or truncated bars (holidays etc.)
		}
		bars = append(bars, model.Bar{
			Time: time.Unix(ts, 0), Open: o, High: h, Low: l, Close: c,
			Volume: columnAt(quote.Volume, i),
		})
	}
	if len(bars) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return model.BarSeries{Bars: bars, Source: y.Name()}, nil
}
