package model

// MergedTable is the denormalized feature table keyed by the hourly timestamp.
const MergedTable = "features_merged"

// MergedRow is an hourly row joined with the daily-derived columns for its
// calendar date. Daily columns are NaN when no daily row exists for the date
// yet; the trend flag carries its merged-table encoding (-1/1).
type MergedRow struct {
	HourlyRow

	DailyRSI14      float64
	DailyRSISlope   float64
	DailyEMA20      float64
	DailyEMA20Slope float64
	DailyTrend      float64
}
