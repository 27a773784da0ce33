package model

// Derived numeric columns use NaN to mean "not computed yet" (under-filled
// window). The store maps NaN to SQL NULL on write and NULL back to NaN on
// read, so historical rows keep nulls until a recompute reaches them.

// Label values for the forward-return target column.
const (
	LabelCall     = "CALL"
	LabelPut      = "PUT"
	LabelSideways = "SIDEWAYS"
)

// Trend / alignment classifications shared by the hourly and daily rulesets.
const (
	TrendBullish = "BULLISH"
	TrendBearish = "BEARISH"
	TrendMixed   = "MIXED"
)

// RSI zone classifications.
const (
	ZoneOverbought = "Overbought"
	ZoneOversold   = "Oversold"
	ZoneNeutral    = "Neutral"
)

// HourlyRow is an hourly bar enriched with the intraday indicator ruleset and
// the forward-return target. String columns use "" for NULL.
type HourlyRow struct {
	Bar

	RSI14    float64
	RSISMA14 float64
	RSIDiff  float64
	RSISlope float64
	RSIDist50 float64
	RSIZone  string

	ROC7       float64
	ROC9       float64
	ROC21      float64
	ROC7Pos    int64
	ROCDiff721 float64

	EMA7   float64
	EMA9   float64
	EMA20  float64
	EMA50  float64
	EMA100 float64
	SMA25  float64
	LSMA25 float64

	CloseGtLSMA  int64
	CloseLtLSMA  int64
	ClosePctLSMA float64
	LSMADiff     float64
	ClosePctSMA25 float64
	EMAAlignment string

	BBUpper      float64
	BBLower      float64
	BBMiddle     float64
	BBWidth      float64
	BBSqueeze    int64
	BBPosition   float64
	BBRange      float64
	BBUpperSlope float64
	BBLowerSlope float64

	ATR14  float64
	ATRPct float64

	VWAP         float64
	ClosePctVWAP float64

	BreakHigh5 int64
	BreakLow5  int64

	VolAvg20  float64
	VolRelAvg float64

	Target string
}

// DailyRow is a daily bar enriched with the daily indicator ruleset.
type DailyRow struct {
	Bar

	RSI14      float64
	RSISlope   float64
	EMA20      float64
	EMA20Slope float64
	TrendFlag  string
}

// EncodeSignal maps a target label to its integer encoding for the merged
// feature table: PUT=0, SIDEWAYS=1, CALL=2. ok is false for an absent label.
func EncodeSignal(target string) (int64, bool) {
	switch target {
	case LabelPut:
		return 0, true
	case LabelSideways:
		return 1, true
	case LabelCall:
		return 2, true
	}
	return 0, false
}

// EncodeTrend maps a daily trend flag to its merged-table encoding:
// BEARISH=-1, BULLISH=1. ok is false for an absent flag.
func EncodeTrend(flag string) (int64, bool) {
	switch flag {
	case TrendBearish:
		return -1, true
	case TrendBullish:
		return 1, true
	}
	return 0, false
}
