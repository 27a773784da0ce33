package model

import "time"

// TimestampLayout is the sortable exchange-local timestamp format used as the
// primary key in every bar table. Bare dates in query bounds expand to the
// start or end of that day.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-date join key format (date column).
const DateLayout = "2006-01-02"

// Bar is one OHLCV record at a given timestamp and timeframe. TS is always
// exchange-local (IST); the date-based join between the hourly and daily
// tables depends on every timestamp being in the same zone.
type Bar struct {
	TS     time.Time `json:"timestamp"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Timestamp returns the bar's primary-key string.
func (b *Bar) Timestamp() string {
	return b.TS.Format(TimestampLayout)
}

// Date returns the bar's calendar-date join key.
func (b *Bar) Date() string {
	return b.TS.Format(DateLayout)
}
