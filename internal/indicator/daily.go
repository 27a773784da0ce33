package indicator

import (
	"math"

	"niftydata/internal/model"
)

// ComputeDaily applies the daily ruleset to an ascending-sorted series.
// Series shorter than MinHistory come back with only the raw OHLCV populated.
func ComputeDaily(bars []model.Bar) []model.DailyRow {
	rows := make([]model.DailyRow, len(bars))
	nan := math.NaN()
	for i := range bars {
		rows[i].Bar = bars[i]
		rows[i].RSI14, rows[i].RSISlope = nan, nan
		rows[i].EMA20, rows[i].EMA20Slope = nan, nan
	}
	if len(bars) < MinHistory {
		return rows
	}

	rsi := RSISeries(bars, 14)
	rsiSlope := Diff(rsi, 3)
	ema20 := EMASeries(bars, 20)
	emaSlope := Diff(ema20, 3)

	for i := range bars {
		r := &rows[i]
		r.RSI14 = rsi[i]
		r.RSISlope = rsiSlope[i]
		r.EMA20 = ema20[i]
		r.EMA20Slope = emaSlope[i]
		if bars[i].Close > ema20[i] {
			r.TrendFlag = model.TrendBullish
		} else {
			// NaN comparisons are false, so warm-up rows read bearish,
			// matching the reference column before the average fills
			r.TrendFlag = model.TrendBearish
		}
	}

	return rows
}
