package model

import (
	"strings"
	"time"
)

// Period is a bounded lookback window for history requests ("6mo", "1y", ...).
type Period string

const (
	Period1Mo Period = "1mo"
	Period3Mo Period = "3mo"
	Period6Mo Period = "6mo"
	Period1Y  Period = "1y"
	Period2Y  Period = "2y"
	Period5Y  Period = "5y"
	Period10Y Period = "10y"
	PeriodYTD Period = "ytd"
	PeriodMax Period = "max"
)

// periodDays maps a period to a calendar-day lookback wide enough to cover
// the trading days it names (weekends and holidays included).
var periodDays = map[Period]int{
	Period1Mo: 35,
	Period3Mo: 120,
	Period6Mo: 220,
	Period1Y:  420,
	Period2Y:  800,
	Period5Y:  2000,
	Period10Y: 4000,
	PeriodMax: 8000,
}

// Days returns the calendar-day lookback for the period. "ytd" is the days
// elapsed since January 1. Unknown periods default to one year.
func (p Period) Days() int {
	key := Period(strings.ToLower(strings.TrimSpace(string(p))))
	if key == PeriodYTD {
		return time.Now().YearDay()
	}
	if d, ok := periodDays[key]; ok {
		return d
	}
	return 420
}

// Interval is the bar granularity. Only daily bars are supported; providers
// coerce anything else to daily.
type Interval string

const IntervalDaily Interval = "1d"

// IsDaily reports whether the interval names daily granularity under any of
// its accepted spellings.
func (iv Interval) IsDaily() bool {
	switch strings.ToLower(strings.TrimSpace(string(iv))) {
	case "", "1d", "1day", "day":
		return true
	}
	return false
}
