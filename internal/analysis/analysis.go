// Package analysis derives indicator columns from a bar series: moving
// averages, RSI, ATR and rolling support/resistance. Pure functions of the
// input series; warm-up slots are NaN.
package analysis

import (
	"math"

	"botinvest/internal/model"
)

// SMA computes the simple moving average of closes over period. The first
// period-1 slots are NaN.
func SMA(series model.BarSeries, period int) []float64 {
	closes := series.Closes()
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= period {
			sum -= closes[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// RSI computes the Wilder-smoothed relative strength index of closes.
// Slots before the first full period are NaN.
func RSI(series model.BarSeries, period int) []float64 {
	closes := series.Closes()
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// ATR computes the average true range over period as a rolling mean of the
// true range. The true range of the first bar is its high-low span.
func ATR(series model.BarSeries, period int) []float64 {
	bars := series.Bars
	out := nanSlice(len(bars))
	if period <= 0 || len(bars) < period {
		return out
	}
	tr := make([]float64, len(bars))
	for i, b := range bars {
		tr[i] = b.High - b.Low
		if i > 0 {
			prevClose := bars[i-1].Close
			tr[i] = math.Max(tr[i], math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
		}
	}
	sum := 0.0
	for i, v := range tr {
		sum += v
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// SupportResistance computes rolling support (window-low) and resistance
// (window-high) levels.
func SupportResistance(series model.BarSeries, window int) (support, resistance []float64) {
	bars := series.Bars
	support = nanSlice(len(bars))
	resistance = nanSlice(len(bars))
	if window <= 0 || len(bars) < window {
		return support, resistance
	}
	for i := window - 1; i < len(bars); i++ {
		lo := math.Inf(1)
		hi := math.Inf(-1)
		for j := i - window + 1; j <= i; j++ {
			lo = math.Min(lo, bars[j].Low)
			hi = math.Max(hi, bars[j].High)
		}
		support[i] = lo
		resistance[i] = hi
	}
	return support, resistance
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
