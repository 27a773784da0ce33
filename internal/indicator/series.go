package indicator

import (
	"math"

	"niftydata/internal/model"
)

// Series helpers drive the streaming indicators across a full ascending slice
// of bars, returning one value per row with NaN where the window has not yet
// filled. Recomputing whole columns this way (rather than patching the tail)
// is what keeps stored features correct when the provider revises bars.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Closes extracts the close column.
func Closes(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i := range bars {
		out[i] = bars[i].Close
	}
	return out
}

// SMASeries returns the simple moving average of bar closes.
func SMASeries(bars []model.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	sma := NewSMA(period)
	for i := range bars {
		sma.Update(bars[i])
		if sma.Ready() {
			out[i] = sma.Value()
		}
	}
	return out
}

// EMASeries returns the exponential moving average of bar closes.
func EMASeries(bars []model.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	ema := NewEMA(period)
	for i := range bars {
		ema.Update(bars[i])
		if ema.Ready() {
			out[i] = ema.Value()
		}
	}
	return out
}

// RSISeries returns Wilder's RSI of bar closes.
func RSISeries(bars []model.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	rsi := NewRSI(period)
	for i := range bars {
		rsi.Update(bars[i])
		if rsi.Ready() {
			out[i] = rsi.Value()
		}
	}
	return out
}

// ATRSeries returns Wilder's average true range.
func ATRSeries(bars []model.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	atr := NewATR(period)
	for i := range bars {
		atr.Update(bars[i])
		if atr.Ready() {
			out[i] = atr.Value()
		}
	}
	return out
}

// LinRegSeries returns the least-squares regression value of bar closes.
func LinRegSeries(bars []model.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	lr := NewLinReg(period)
	for i := range bars {
		lr.Update(bars[i])
		if lr.Ready() {
			out[i] = lr.Value()
		}
	}
	return out
}

// ROCSeries returns the rate of change of bar closes over n bars, in percent.
func ROCSeries(bars []model.Bar, n int) []float64 {
	out := nanSlice(len(bars))
	for i := n; i < len(bars); i++ {
		prev := bars[i-n].Close
		if prev == 0 {
			continue
		}
		out[i] = (bars[i].Close - prev) / prev * 100
	}
	return out
}

// Diff returns vals[i] - vals[i-n], NaN-propagating.
func Diff(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	for i := n; i < len(vals); i++ {
		out[i] = vals[i] - vals[i-n]
	}
	return out
}

// RollingMean returns the n-window mean of an arbitrary series. A window
// containing any NaN yields NaN, matching a full-window rolling mean over a
// column with unfilled leading values.
func RollingMean(vals []float64, n int) []float64 {
	out := nanSlice(len(vals))
	for i := n - 1; i < len(vals); i++ {
		sum := 0.0
		ok := true
		for j := i - n + 1; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				ok = false
				break
			}
			sum += vals[j]
		}
		if ok {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// RollingStdev returns the n-window sample standard deviation of bar closes.
func RollingStdev(bars []model.Bar, n int) []float64 {
	out := nanSlice(len(bars))
	for i := n - 1; i < len(bars); i++ {
		mean := 0.0
		for j := i - n + 1; j <= i; j++ {
			mean += bars[j].Close
		}
		mean /= float64(n)

		variance := 0.0
		for j := i - n + 1; j <= i; j++ {
			d := bars[j].Close - mean
			variance += d * d
		}
		out[i] = math.Sqrt(variance / float64(n-1))
	}
	return out
}

// VWAPSeries returns the day-session volume-weighted average price: the
// cumulative close×volume over cumulative volume, reset at each calendar-date
// boundary. Where cumulative volume is zero (index feeds often report zero
// volume) the bar's own close is used to avoid division by zero.
func VWAPSeries(bars []model.Bar) []float64 {
	out := nanSlice(len(bars))
	var cumPV, cumV float64
	curDate := ""
	for i := range bars {
		d := bars[i].Date()
		if d != curDate {
			curDate = d
			cumPV, cumV = 0, 0
		}
		cumPV += bars[i].Close * float64(bars[i].Volume)
		cumV += float64(bars[i].Volume)
		if cumV == 0 {
			out[i] = bars[i].Close
		} else {
			out[i] = cumPV / cumV
		}
	}
	return out
}

// VolumeSMASeries returns the n-window mean of bar volumes.
func VolumeSMASeries(bars []model.Bar, n int) []float64 {
	out := nanSlice(len(bars))
	sma := NewSMA(n)
	for i := range bars {
		sma.Push(float64(bars[i].Volume))
		if sma.Ready() {
			out[i] = sma.Value()
		}
	}
	return out
}
