// Package indicator computes technical indicators over sorted OHLCV series.
//
// The streaming types (SMA, EMA, RSI, ATR, LinReg) implement the Indicator
// interface and update in O(1) or O(period) per bar. The series functions in
// series.go drive them over a full slice, producing per-row values with NaN
// for positions whose window has not filled. hourly.go and daily.go apply the
// full rulesets used by the pipeline.
package indicator

import "niftydata/internal/model"

// MinHistory is the warm-up threshold: series shorter than this are returned
// without any indicator columns, since under-filled windows produce garbage.
const MinHistory = 50

// Indicator is the interface for all streaming technical indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "SMA", "RSI").
	Name() string

	// Update feeds a new bar and recalculates.
	Update(bar model.Bar)

	// Value returns the current calculated value. Undefined before Ready.
	Value() float64

	// Ready returns true when enough data has been accumulated.
	Ready() bool
}
