package analysis

import (
	"fmt"
	"math"

	"botinvest/internal/model"
)

// Snapshot condenses the latest bar and its indicator values into the shape
// the advisor and the CLI report on.
type Snapshot struct {
	Close      float64
	ChangePct  float64
	SMA5       float64
	SMA20      float64
	RSI14      float64
	ATR14      float64
	Support    float64
	Resistance float64
}

// Summarize computes the standard indicator set and returns the latest row.
// Indicator slots that have not warmed up yet stay NaN.
func Summarize(series model.BarSeries) Snapshot {
	n := len(series.Bars)
	snap := Snapshot{
		Close: math.NaN(), ChangePct: math.NaN(),
		SMA5: math.NaN(), SMA20: math.NaN(), RSI14: math.NaN(),
		ATR14: math.NaN(), Support: math.NaN(), Resistance: math.NaN(),
	}
	if n == 0 {
		return snap
	}
	last := n - 1
	snap.Close = series.Bars[last].Close
	if n > 1 && series.Bars[last-1].Close != 0 {
		prev := series.Bars[last-1].Close
		snap.ChangePct = (snap.Close - prev) / prev * 100
	}
	snap.SMA5 = SMA(series, 5)[last]
	snap.SMA20 = SMA(series, 20)[last]
	snap.RSI14 = RSI(series, 14)[last]
	snap.ATR14 = ATR(series, 14)[last]
	support, resistance := SupportResistance(series, 20)
	snap.Support = support[last]
	snap.Resistance = resistance[last]
	return snap
}

// ContextString renders the snapshot as the market-context line handed to
// the advisory chat service.
func (s Snapshot) ContextString(ticker string) string {
	return fmt.Sprintf("Ticker: %s, Price: %.2f, Change: %.2f%%, RSI: %.2f, MA5: %.2f, ATR: %.2f, Support: %.2f, Resistance: %.2f",
		ticker, s.Close, s.ChangePct, s.RSI14, s.SMA5, s.ATR14, s.Support, s.Resistance)
}
