package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botinvest/internal/model"
)

func TestYahooParsesChartResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1767571200,1767657600,1767744000],
			"indicators":{"quote":[{"open":[100,101,0],"high":[102,103,0],"low":[99,100,0],
			"close":[101,102,0],"volume":[1000,1100,0]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	series, err := y.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", series.Source)
	// The all-zero holiday row is dropped.
	require.Len(t, series.Bars, 2)
	assert.Equal(t, 101.0, series.Bars[0].Close)
	assert.True(t, series.Bars[0].Time.Before(series.Bars[1].Time))
}

func TestYahooTruncatedQuoteArrays(t *testing.T) {
	// Three timestamps but two-element OHLC columns and no volume array at
	// all. The short tail is dropped; the response must never panic.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1767571200,1767657600,1767744000],
			"indicators":{"quote":[{"open":[100,101],"high":[102,103],"low":[99,100],
			"close":[101,102]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	series, err := y.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	require.NoError(t, err)
	require.Len(t, series.Bars, 2)
	assert.Equal(t, 102.0, series.Bars[1].Close)
	assert.Equal(t, 0.0, series.Bars[1].Volume)
}

func TestYahooEmptyQuoteColumnsIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1767571200],
			"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	_, err := y.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooRateLimitClassifiedTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("Too Many Requests"))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	_, err := y.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsRateLimited(err), "429 must classify as rate-limited, got %v", err)
}

func TestYahooAPIErrorClassifiedPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	_, err := y.History(context.Background(), "NOPE", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsPermanent(err))
}

func TestYahooEmptyResultIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	_, err := y.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestYahooYTDRangeParameter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ytd", r.URL.Query().Get("range"))
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1767571200],
			"indicators":{"quote":[{"open":[100],"high":[102],"low":[99],"close":[101],"volume":[1000]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahooProvider("")
	y.BaseURL = srv.URL
	_, err := y.History(context.Background(), "AAPL", model.PeriodYTD, model.IntervalDaily)
	require.NoError(t, err)
}

func TestStooqSelfRejectsSuffixedSymbols(t *testing.T) {
	s := NewStooqProvider()
	s.BaseURL = "http://127.0.0.1:1" // any network call would fail loudly
	_, err := s.History(context.Background(), "0700.HK", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsPermanent(err), "non-US symbol must be rejected without a network call")
}

func TestStooqParsesCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aapl.us", r.URL.Query().Get("s"))
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n2026-08-26,100,102,99,101,5000\n2026-08-27,101,103,100,102,6000\n"))
	}))
	defer srv.Close()

	s := NewStooqProvider()
	s.BaseURL = srv.URL
	series, err := s.History(context.Background(), "AAPL", model.Period1Y, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, "stooq", series.Source)
	require.Len(t, series.Bars, 2)
	assert.Equal(t, 102.0, series.Bars[1].Close)
	assert.Equal(t, 6000.0, series.Bars[1].Volume)
}

func TestStooqOldRowsTrimmedToPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Date,Open,High,Low,Close,Volume\n2001-01-02,10,11,9,10,100\n2026-08-27,101,103,100,102,6000\n"))
	}))
	defer srv.Close()

	s := NewStooqProvider()
	s.BaseURL = srv.URL
	series, err := s.History(context.Background(), "AAPL", model.Period1Mo, model.IntervalDaily)
	require.NoError(t, err)
	require.Len(t, series.Bars, 1)
}

func TestAlphaVantageRequiresKey(t *testing.T) {
	a := NewAlphaVantageProvider("")
	_, err := a.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsPermanent(err))
}

func TestAlphaVantageSelfRejectsSuffixedSymbols(t *testing.T) {
	a := NewAlphaVantageProvider("key")
	a.BaseURL = "http://127.0.0.1:1"
	_, err := a.History(context.Background(), "600519.SS", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsPermanent(err))
}

func TestAlphaVantageParsesDailySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"Time Series (Daily)":{
			"2026-08-27":{"1. open":"101","2. high":"103","3. low":"100","4. close":"102","6. volume":"6000"},
			"2026-08-26":{"1. open":"100","2. high":"102","3. low":"99","4. close":"101","6. volume":"5000"}}}`))
	}))
	defer srv.Close()

	a := NewAlphaVantageProvider("key")
	a.BaseURL = srv.URL
	series, err := a.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	require.NoError(t, err)
	require.Len(t, series.Bars, 2)
	assert.True(t, series.Bars[0].Time.Before(series.Bars[1].Time), "bars must be ascending")
	assert.Equal(t, 101.0, series.Bars[0].Close)
}

func TestAlphaVantageQuotaNoteIsRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	a := NewAlphaVantageProvider("key")
	a.BaseURL = srv.URL
	_, err := a.History(context.Background(), "AAPL", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsRateLimited(err))
}

func TestFutuHistoryAndProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/global-state":
			w.Write([]byte(`{"ret_code":0,"ret_msg":"ok"}`))
		case "/api/v1/history/kline":
			assert.Equal(t, "HK.00700", r.URL.Query().Get("code"))
			w.Write([]byte(`{"ret_code":0,"data":[
				{"time_key":"2026-08-26 00:00:00","open":320,"high":325,"low":318,"close":324,"volume":1e6},
				{"time_key":"2026-08-27 00:00:00","open":324,"high":330,"low":322,"close":328,"volume":1.2e6}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newFutuAgainst(t, srv.URL)
	ok, msg := f.Probe(context.Background())
	assert.True(t, ok, msg)

	series, err := f.History(context.Background(), "0700.HK", model.Period6Mo, model.IntervalDaily)
	require.NoError(t, err)
	assert.Equal(t, "futu", series.Source)
	require.Len(t, series.Bars, 2)
	assert.Equal(t, 328.0, series.Bars[1].Close)
}

func TestFutuGatewayErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ret_code":-1,"ret_msg":"code not supported"}`))
	}))
	defer srv.Close()

	f := newFutuAgainst(t, srv.URL)
	_, err := f.History(context.Background(), "XXX", model.Period6Mo, model.IntervalDaily)
	assert.True(t, IsPermanent(err))
}

func TestFutuProbeUnreachable(t *testing.T) {
	f := NewFutuProvider("127.0.0.1", 1)
	ok, msg := f.Probe(context.Background())
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

// newFutuAgainst points a FutuProvider at a test server URL.
func newFutuAgainst(t *testing.T, rawURL string) *FutuProvider {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return NewFutuProvider(u.Hostname(), port)
}
