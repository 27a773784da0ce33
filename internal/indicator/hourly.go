package indicator

import (
	"math"

	"niftydata/internal/model"
)

// ComputeHourly applies the intraday ruleset to an ascending-sorted series and
// returns one enriched row per bar. Series shorter than MinHistory come back
// with only the raw OHLCV populated. Every column at row i depends only on
// rows at or before i.
func ComputeHourly(bars []model.Bar) []model.HourlyRow {
	rows := make([]model.HourlyRow, len(bars))
	for i := range bars {
		rows[i].Bar = bars[i]
		blankHourly(&rows[i])
	}
	if len(bars) < MinHistory {
		return rows
	}

	// RSI family
	rsi := RSISeries(bars, 14)
	rsiSMA := RollingMean(rsi, 14)
	rsiSlope := Diff(rsi, 3)

	// Rate of change
	roc7 := ROCSeries(bars, 7)
	roc9 := ROCSeries(bars, 9)
	roc21 := ROCSeries(bars, 21)

	// Moving averages and regression line
	ema7 := EMASeries(bars, 7)
	ema9 := EMASeries(bars, 9)
	ema20 := EMASeries(bars, 20)
	ema50 := EMASeries(bars, 50)
	ema100 := EMASeries(bars, 100)
	sma25 := SMASeries(bars, 25)
	lsma25 := LinRegSeries(bars, 25)

	// Bollinger bands (20, 2σ)
	bbMid := SMASeries(bars, 20)
	bbStd := RollingStdev(bars, 20)
	bbUpper := nanSlice(len(bars))
	bbLower := nanSlice(len(bars))
	bbWidth := nanSlice(len(bars))
	for i := range bars {
		if math.IsNaN(bbMid[i]) || math.IsNaN(bbStd[i]) {
			continue
		}
		bbUpper[i] = bbMid[i] + 2*bbStd[i]
		bbLower[i] = bbMid[i] - 2*bbStd[i]
		if bbMid[i] != 0 {
			bbWidth[i] = (bbUpper[i] - bbLower[i]) / bbMid[i]
		}
	}
	bbWidthAvg := RollingMean(bbWidth, 20)
	bbUpperSlope := Diff(bbUpper, 1)
	bbLowerSlope := Diff(bbLower, 1)

	// Volatility
	atr := ATRSeries(bars, 14)

	// Session VWAP and volume
	vwap := VWAPSeries(bars)
	volAvg := VolumeSMASeries(bars, 20)

	for i := range bars {
		r := &rows[i]
		close := bars[i].Close

		r.RSI14 = rsi[i]
		r.RSISMA14 = rsiSMA[i]
		r.RSIDiff = rsi[i] - rsiSMA[i]
		r.RSISlope = rsiSlope[i]
		r.RSIDist50 = rsi[i] - 50
		switch {
		case rsi[i] > 70:
			r.RSIZone = model.ZoneOverbought
		case rsi[i] < 30:
			r.RSIZone = model.ZoneOversold
		default:
			// NaN comparisons are false, so warm-up rows land here too
			r.RSIZone = model.ZoneNeutral
		}

		r.ROC7 = roc7[i]
		r.ROC9 = roc9[i]
		r.ROC21 = roc21[i]
		r.ROC7Pos = boolFlag(roc7[i] > 0)
		r.ROCDiff721 = roc7[i] - roc21[i]

		r.EMA7 = ema7[i]
		r.EMA9 = ema9[i]
		r.EMA20 = ema20[i]
		r.EMA50 = ema50[i]
		r.EMA100 = ema100[i]
		r.SMA25 = sma25[i]
		r.LSMA25 = lsma25[i]

		r.CloseGtLSMA = boolFlag(close > lsma25[i])
		r.CloseLtLSMA = boolFlag(close < lsma25[i])
		r.ClosePctLSMA = pctAbove(close, lsma25[i])
		r.LSMADiff = close - lsma25[i]
		r.ClosePctSMA25 = pctAbove(close, sma25[i])

		if !math.IsNaN(ema100[i]) {
			switch {
			case ema20[i] > ema50[i] && ema50[i] > ema100[i]:
				r.EMAAlignment = model.TrendBullish
			case ema20[i] < ema50[i] && ema50[i] < ema100[i]:
				r.EMAAlignment = model.TrendBearish
			default:
				r.EMAAlignment = model.TrendMixed
			}
		}

		r.BBUpper = bbUpper[i]
		r.BBLower = bbLower[i]
		r.BBMiddle = bbMid[i]
		r.BBWidth = bbWidth[i]
		r.BBSqueeze = boolFlag(bbWidth[i] < bbWidthAvg[i])
		r.BBRange = bbUpper[i] - bbLower[i]
		r.BBUpperSlope = bbUpperSlope[i]
		r.BBLowerSlope = bbLowerSlope[i]
		if rng := bbUpper[i] - bbLower[i]; !math.IsNaN(rng) && rng != 0 {
			r.BBPosition = (close - bbLower[i]) / rng
		}

		r.ATR14 = atr[i]
		if close != 0 {
			r.ATRPct = atr[i] / close * 100
		}

		r.VWAP = vwap[i]
		r.ClosePctVWAP = pctAbove(close, vwap[i])

		// Breakouts against the prior 5 bars, excluding the current one
		if i >= 5 {
			hi, lo := bars[i-5].High, bars[i-5].Low
			for j := i - 4; j < i; j++ {
				if bars[j].High > hi {
					hi = bars[j].High
				}
				if bars[j].Low < lo {
					lo = bars[j].Low
				}
			}
			r.BreakHigh5 = boolFlag(close > hi)
			r.BreakLow5 = boolFlag(close < lo)
		}

		r.VolAvg20 = volAvg[i]
		if !math.IsNaN(volAvg[i]) && volAvg[i] != 0 {
			r.VolRelAvg = float64(bars[i].Volume) / volAvg[i]
		}
	}

	return rows
}

// blankHourly initializes every derived column to its "not computed" value.
func blankHourly(r *model.HourlyRow) {
	nan := math.NaN()
	r.RSI14, r.RSISMA14, r.RSIDiff, r.RSISlope, r.RSIDist50 = nan, nan, nan, nan, nan
	r.ROC7, r.ROC9, r.ROC21, r.ROCDiff721 = nan, nan, nan, nan
	r.EMA7, r.EMA9, r.EMA20, r.EMA50, r.EMA100 = nan, nan, nan, nan, nan
	r.SMA25, r.LSMA25 = nan, nan
	r.ClosePctLSMA, r.LSMADiff, r.ClosePctSMA25 = nan, nan, nan
	r.BBUpper, r.BBLower, r.BBMiddle, r.BBWidth = nan, nan, nan, nan
	r.BBPosition, r.BBRange, r.BBUpperSlope, r.BBLowerSlope = nan, nan, nan, nan
	r.ATR14, r.ATRPct = nan, nan
	r.VWAP, r.ClosePctVWAP = nan, nan
	r.VolAvg20, r.VolRelAvg = nan, nan
}

func boolFlag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// pctAbove returns how far v sits above base, in percent of base.
func pctAbove(v, base float64) float64 {
	if base == 0 {
		return math.NaN()
	}
	return (v - base) / base * 100
}
