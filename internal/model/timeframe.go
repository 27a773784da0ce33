package model

import "fmt"

// Timeframe is a sampling granularity for the bar tables.
type Timeframe string

const (
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF1d  Timeframe = "1d"
	TF1wk Timeframe = "1wk"
)

// Timeframes lists every tracked timeframe in fetch order.
var Timeframes = []Timeframe{TF15m, TF1h, TF1d, TF1wk}

// ParseTimeframe validates a timeframe string from external input.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TF15m, TF1h, TF1d, TF1wk:
		return Timeframe(s), nil
	}
	return "", fmt.Errorf("unknown timeframe %q", s)
}

// Table returns the sqlite table name backing this timeframe.
func (tf Timeframe) Table() string {
	return "nifty_" + string(tf)
}

// Interval returns the provider interval parameter for this timeframe.
func (tf Timeframe) Interval() string {
	return string(tf)
}

// MaxLookbackDays returns the provider's maximum history window for this
// timeframe. 0 means unbounded.
func (tf Timeframe) MaxLookbackDays() int {
	switch tf {
	case TF15m:
		return 60
	case TF1h:
		return 730
	}
	return 0
}

// Intraday reports whether this timeframe uses the intraday indicator ruleset.
func (tf Timeframe) Intraday() bool {
	return tf == TF15m || tf == TF1h
}
