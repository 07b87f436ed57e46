package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"botinvest/internal/model"
	"botinvest/internal/ticker"
)

// FutuProvider fetches daily candlesticks from a locally running Futu OpenD
// quote gateway. The gateway only serves daily bars; any other interval is
// coerced. Symbols are addressed in broker-prefixed form (HK.00700).
type FutuProvider struct {
	Host   string
	Port   int
	Client *http.Client
}

// NewFutuProvider creates a provider against the given gateway endpoint.
func NewFutuProvider(host string, port int) *FutuProvider {
	return &FutuProvider{
		Host:   host,
		Port:   port,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *FutuProvider) Name() string { return "futu" }

func (f *FutuProvider) baseURL() string {
	return fmt.Sprintf("http://%s:%d", f.Host, f.Port)
}

// futuKLineResponse is the gateway's history-kline response shape.
type futuKLineResponse struct {
	RetCode int    `json:"ret_code"`
	RetMsg  string `json:"ret_msg"`
	Data    []struct {
		TimeKey string  `json:"time_key"`
		Open    float64 `json:"open"`
		High    float64 `json:"high"`
		Low     float64 `json:"low"`
		Close   float64 `json:"close"`
		Volume  float64 `json:"volume"`
	} `json:"data"`
}

func (f *FutuProvider) History(ctx context.Context, symbol string, period model.Period, _ model.Interval) (model.BarSeries, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -period.Days())

	q := url.Values{}
	q.Set("code", ticker.ToBrokerCode(symbol))
	q.Set("start", start.Format("2006-01-02"))
	q.Set("end", end.Format("2006-01-02"))
	q.Set("ktype", "K_DAY")
	q.Set("autype", "qfq")

	endpoint := f.baseURL() + "/api/v1/history/kline?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.BarSeries{}, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.BarSeries{}, &TransientError{Provider: f.Name(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.BarSeries{}, &TransientError{Provider: f.Name(), Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var kl futuKLineResponse
	if err := json.NewDecoder(resp.Body).Decode(&kl); err != nil {
		return model.BarSeries{}, &TransientError{Provider: f.Name(), Err: fmt.Errorf("decode kline: %w", err)}
	}
	if kl.RetCode != 0 {
		return model.BarSeries{}, &PermanentError{Provider: f.Name(), Reason: fmt.Sprintf("gateway ret_code %d: %s", kl.RetCode, kl.RetMsg)}
	}
	if len(kl.Data) == 0 {
		return model.BarSeries{}, ErrNoData
	}

	bars := make([]model.Bar, 0, len(kl.Data))
	for _, row := range kl.Data {
		ts, err := time.Parse("2006-01-02 15:04:05", row.TimeKey)
		if err != nil {
			if ts, err = time.Parse("2006-01-02", row.TimeKey); err != nil {
				continue
			}
		}
		bars = append(bars, model.Bar{
			Time: ts, Open: row.Open, High: row.High, Low: row.Low,
			Close: row.Close, Volume: row.Volume,
		})
	}
	if len(bars) == 0 {
		return model.BarSeries{}, ErrNoData
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return model.BarSeries{Bars: bars, Source: f.Name()}, nil
}

// futuStateResponse is the gateway's global-state response shape.
type futuStateResponse struct {
	RetCode int    `json:"ret_code"`
	RetMsg  string `json:"ret_msg"`
}

// Probe checks whether the gateway answers its global-state endpoint. It is
// deliberately cheap so callers can pre-flight the gateway on every refresh.
func (f *FutuProvider) Probe(ctx context.Context) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL()+"/api/v1/global-state", nil)
	if err != nil {
		return false, err.Error()
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("cannot reach OpenD at %s:%d: %v", f.Host, f.Port, err)
	}
	defer resp.Body.Close()

	var state futuStateResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return false, fmt.Sprintf("bad global-state response: %v", err)
	}
	if state.RetCode != 0 {
		return false, fmt.Sprintf("OpenD ret_code %d: %s", state.RetCode, state.RetMsg)
	}
	return true, "OpenD available"
}
