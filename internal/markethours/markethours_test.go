package markethours

import (
	"testing"
	"time"
)

func ist(y int, mo time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, mo, d, h, mi, s, 0, IST)
}

func TestIsMarketOpen_Boundaries(t *testing.T) {
	// 2026-09-02 is a Wednesday.
	cases := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"one second before open", ist(2026, time.September, 2, 9, 14, 59), false},
		{"exact open", ist(2026, time.September, 2, 9, 15, 0), true},
		{"mid session", ist(2026, time.September, 2, 12, 0, 0), true},
		{"exact close", ist(2026, time.September, 2, 15, 30, 0), true},
		{"one second after close", ist(2026, time.September, 2, 15, 30, 1), false},
		{"saturday mid day", ist(2026, time.September, 5, 11, 0, 0), false},
		{"sunday at open instant", ist(2026, time.September, 6, 9, 15, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsMarketOpen(tc.t); got != tc.want {
				t.Errorf("IsMarketOpen(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestIsMarketOpen_ConvertsZones(t *testing.T) {
	// 06:00 UTC on a Wednesday is 11:30 IST — inside the session.
	utc := time.Date(2026, time.September, 2, 6, 0, 0, 0, time.UTC)
	if !IsMarketOpen(utc) {
		t.Error("expected 06:00 UTC weekday to be within IST session")
	}
}

func TestNextOpen(t *testing.T) {
	// Friday after close → Monday 09:15.
	friEvening := ist(2026, time.September, 4, 18, 0, 0)
	next := NextOpen(friEvening)
	want := ist(2026, time.September, 7, 9, 15, 0)
	if !next.Equal(want) {
		t.Errorf("NextOpen(fri evening) = %v, want %v", next, want)
	}

	// Weekday pre-open → same day 09:15.
	wedMorning := ist(2026, time.September, 2, 8, 0, 0)
	next = NextOpen(wedMorning)
	want = ist(2026, time.September, 2, 9, 15, 0)
	if !next.Equal(want) {
		t.Errorf("NextOpen(wed morning) = %v, want %v", next, want)
	}
}
