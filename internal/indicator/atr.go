package indicator

import (
	"math"

	"niftydata/internal/model"
)

// ATR calculates Average True Range using Wilder's smoothing. The first bar
// contributes no true range (no prior close), so the value becomes ready
// after period+1 bars, matching the RSI warm-up shape.
type ATR struct {
	period    int
	count     int
	prevClose float64
	sum       float64
	current   float64
}

// NewATR creates a new ATR indicator with the given period (typically 14).
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string { return "ATR" }

func (a *ATR) Update(bar model.Bar) {
	a.count++

	if a.count == 1 {
		a.prevClose = bar.Close
		return
	}

	tr := bar.High - bar.Low
	if hc := math.Abs(bar.High - a.prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(bar.Low - a.prevClose); lc > tr {
		tr = lc
	}
	a.prevClose = bar.Close

	if a.count <= a.period+1 {
		// Accumulation phase: SMA seed over the first period true ranges
		a.sum += tr
		if a.count == a.period+1 {
			a.current = a.sum / float64(a.period)
		}
		return
	}

	p := float64(a.period)
	a.current = (a.current*(p-1) + tr) / p
}

func (a *ATR) Value() float64 { return a.current }
func (a *ATR) Ready() bool    { return a.count > a.period }
