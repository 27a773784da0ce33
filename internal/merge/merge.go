// Package merge keeps the features_merged table consistent with the hourly
// and daily tables. It is the explicit form of a fire-on-write trigger: the
// scheduler calls OnHourlyChange after touching hourly rows and OnDailyChange
// after touching daily rows, and the merged record for each affected hourly
// timestamp is re-derived from the current state of both sources.
package merge

import (
	"context"
	"fmt"
	"math"

	"niftydata/internal/model"
	"niftydata/internal/store/sqlite"
)

// Synchronizer maintains the merged feature table.
type Synchronizer struct {
	store *sqlite.Store
}

// New creates a synchronizer over the shared store.
func New(store *sqlite.Store) *Synchronizer {
	return &Synchronizer{store: store}
}

// OnHourlyChange re-derives and upserts the merged record for every changed
// hourly row. Daily columns are looked up by the row's calendar date against
// the daily table as it stands now; a date with no daily row yet leaves them
// NULL rather than failing the merge.
func (s *Synchronizer) OnHourlyChange(ctx context.Context, rows []model.HourlyRow) error {
	if len(rows) == 0 {
		return nil
	}

	// One daily lookup per distinct date, not per row.
	type dailyLookup struct {
		row   model.DailyRow
		found bool
	}
	cache := make(map[string]dailyLookup)

	merged := make([]model.MergedRow, 0, len(rows))
	for i := range rows {
		date := rows[i].Date()
		dl, ok := cache[date]
		if !ok {
			row, found, err := s.store.DailyByDate(ctx, date)
			if err != nil {
				return fmt.Errorf("merge daily lookup %s: %w", date, err)
			}
			dl = dailyLookup{row: row, found: found}
			cache[date] = dl
		}
		merged = append(merged, buildMerged(rows[i], dl.row, dl.found))
	}

	if err := s.store.UpsertMergedRows(ctx, merged); err != nil {
		return fmt.Errorf("merge upsert: %w", err)
	}
	return nil
}

// OnDailyChange recomputes the merged records for every hourly row sharing
// one of the changed calendar dates, since their daily lookups went stale.
func (s *Synchronizer) OnDailyChange(ctx context.Context, dates []string) error {
	for _, date := range dates {
		hourly, err := s.store.HourlyByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("merge hourly by date %s: %w", date, err)
		}
		if len(hourly) == 0 {
			continue
		}
		if err := s.OnHourlyChange(ctx, hourly); err != nil {
			return err
		}
	}
	return nil
}

// buildMerged assembles one merged record from an hourly row and its date's
// daily row, if any.
func buildMerged(hr model.HourlyRow, daily model.DailyRow, found bool) model.MergedRow {
	m := model.MergedRow{HourlyRow: hr}
	nan := math.NaN()
	m.DailyRSI14, m.DailyRSISlope = nan, nan
	m.DailyEMA20, m.DailyEMA20Slope = nan, nan
	m.DailyTrend = nan

	if !found {
		return m
	}

	m.DailyRSI14 = daily.RSI14
	m.DailyRSISlope = daily.RSISlope
	m.DailyEMA20 = daily.EMA20
	m.DailyEMA20Slope = daily.EMA20Slope
	if v, ok := model.EncodeTrend(daily.TrendFlag); ok {
		m.DailyTrend = float64(v)
	}
	return m
}
