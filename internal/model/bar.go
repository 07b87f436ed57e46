package model

import "time"

// Bar represents a single OHLCV candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// SourceLocalSample tags series loaded from the bundled sample dataset.
const SourceLocalSample = "local_sample"

// BarSeries is an ordered (ascending by time) sequence of bars together
// with the name of the provider that produced it.
type BarSeries struct {
	Bars   []Bar
	Source string
}

// Empty reports whether the series carries no bars. An empty series is the
// "no data" state; providers never return one as a success value.
func (s BarSeries) Empty() bool { return len(s.Bars) == 0 }

// Last returns the most recent bar. Callers must check Empty first.
func (s BarSeries) Last() Bar { return s.Bars[len(s.Bars)-1] }

// Closes extracts the close column in bar order.
func (s BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}
