package merge

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"niftydata/internal/markethours"
	"niftydata/internal/model"
	"niftydata/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mkHourly(ts string, close float64, target string) model.HourlyRow {
	parsed, err := time.ParseInLocation(model.TimestampLayout, ts, markethours.IST)
	if err != nil {
		panic(err)
	}
	r := model.HourlyRow{Bar: model.Bar{
		TS: parsed, Open: close, High: close + 1, Low: close - 1, Close: close, Volume: 100,
	}}
	nan := math.NaN()
	r.RSI14, r.RSISMA14, r.RSIDiff, r.RSISlope, r.RSIDist50 = 55, nan, nan, nan, 5
	r.ROC7, r.ROC9, r.ROC21, r.ROCDiff721 = nan, nan, nan, nan
	r.EMA7, r.EMA9, r.EMA20, r.EMA50, r.EMA100 = nan, nan, nan, nan, nan
	r.SMA25, r.LSMA25 = nan, nan
	r.ClosePctLSMA, r.LSMADiff, r.ClosePctSMA25 = nan, nan, nan
	r.BBUpper, r.BBLower, r.BBMiddle, r.BBWidth = nan, nan, nan, nan
	r.BBPosition, r.BBRange, r.BBUpperSlope, r.BBLowerSlope = nan, nan, nan, nan
	r.ATR14, r.ATRPct = nan, nan
	r.VWAP, r.ClosePctVWAP = nan, nan
	r.VolAvg20, r.VolRelAvg = nan, nan
	r.Target = target
	return r
}

func mkDaily(ts string, rsi float64, trend string) model.DailyRow {
	parsed, err := time.ParseInLocation(model.TimestampLayout, ts, markethours.IST)
	if err != nil {
		panic(err)
	}
	return model.DailyRow{
		Bar:        model.Bar{TS: parsed, Open: 100, High: 101, Low: 99, Close: 100, Volume: 100},
		RSI14:      rsi,
		RSISlope:   1.5,
		EMA20:      21400,
		EMA20Slope: -2.5,
		TrendFlag:  trend,
	}
}

func readMerged(t *testing.T, s *sqlite.Store) []map[string]any {
	t.Helper()
	rows, err := s.QueryTable(context.Background(), model.MergedTable, sqlite.QueryOpts{})
	if err != nil {
		t.Fatalf("read merged: %v", err)
	}
	return rows
}

func TestOnHourlyChangeJoinsDailyByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	syn := New(s)

	daily := mkDaily("2024-01-02 00:00:00", 61.5, model.TrendBullish)
	if err := s.UpsertDailyRows(ctx, []model.DailyRow{daily}); err != nil {
		t.Fatalf("daily upsert: %v", err)
	}

	hourly := []model.HourlyRow{
		mkHourly("2024-01-02 10:15:00", 21500, model.LabelCall),
		mkHourly("2024-01-02 11:15:00", 21510, model.LabelPut),
	}
	if err := syn.OnHourlyChange(ctx, hourly); err != nil {
		t.Fatalf("merge: %v", err)
	}

	rows := readMerged(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 merged rows, got %d", len(rows))
	}
	// newest first
	row := rows[0]
	if row["timestamp"] != "2024-01-02 11:15:00" {
		t.Fatalf("unexpected row order: %v", row["timestamp"])
	}
	if got := row["daily_rsi_14"].(float64); got != 61.5 {
		t.Errorf("daily_rsi_14: expected 61.5, got %v", got)
	}
	if got := row["daily_trend_flag"].(int64); got != 1 {
		t.Errorf("daily_trend_flag: expected 1 for BULLISH, got %v", got)
	}
	if got := row["signal"].(int64); got != 0 {
		t.Errorf("signal: expected 0 for PUT, got %v", got)
	}
	if got := rows[1]["signal"].(int64); got != 2 {
		t.Errorf("signal: expected 2 for CALL, got %v", got)
	}
}

func TestOnHourlyChangeMissingDailyLeavesNulls(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	syn := New(s)

	hourly := []model.HourlyRow{mkHourly("2024-01-02 10:15:00", 21500, "")}
	if err := syn.OnHourlyChange(ctx, hourly); err != nil {
		t.Fatalf("merge: %v", err)
	}

	rows := readMerged(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 merged row, got %d", len(rows))
	}
	if rows[0]["daily_rsi_14"] != nil {
		t.Errorf("daily_rsi_14: expected NULL without a daily row, got %v", rows[0]["daily_rsi_14"])
	}
	if rows[0]["signal"] != nil {
		t.Errorf("signal: expected NULL for unlabeled row, got %v", rows[0]["signal"])
	}
}

func TestOnDailyChangeBackfillsExistingMergedRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	syn := New(s)

	// hourly rows merge first, before any daily row exists for the date
	hourly := []model.HourlyRow{
		mkHourly("2024-01-02 10:15:00", 21500, model.LabelSideways),
		mkHourly("2024-01-02 11:15:00", 21510, model.LabelSideways),
	}
	if err := s.UpsertHourlyRows(ctx, hourly); err != nil {
		t.Fatalf("hourly upsert: %v", err)
	}
	if err := syn.OnHourlyChange(ctx, hourly); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if rows := readMerged(t, s); rows[0]["daily_rsi_14"] != nil {
		t.Fatal("expected NULL daily columns before the daily row lands")
	}

	// the daily row arrives later; its date's merged rows go stale
	daily := mkDaily("2024-01-02 00:00:00", 48.2, model.TrendBearish)
	if err := s.UpsertDailyRows(ctx, []model.DailyRow{daily}); err != nil {
		t.Fatalf("daily upsert: %v", err)
	}
	if err := syn.OnDailyChange(ctx, []string{"2024-01-02"}); err != nil {
		t.Fatalf("daily change: %v", err)
	}

	rows := readMerged(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 merged rows, got %d", len(rows))
	}
	for _, row := range rows {
		if got := row["daily_rsi_14"].(float64); got != 48.2 {
			t.Errorf("daily_rsi_14: expected backfilled 48.2, got %v", got)
		}
		if got := row["daily_trend_flag"].(int64); got != -1 {
			t.Errorf("daily_trend_flag: expected -1 for BEARISH, got %v", got)
		}
	}
}

func TestBuildMergedEncodesTrend(t *testing.T) {
	hr := mkHourly("2024-01-02 10:15:00", 21500, "")

	m := buildMerged(hr, mkDaily("2024-01-02 00:00:00", 50, model.TrendBullish), true)
	if m.DailyTrend != 1 {
		t.Errorf("BULLISH: expected 1, got %v", m.DailyTrend)
	}

	m = buildMerged(hr, mkDaily("2024-01-02 00:00:00", 50, model.TrendBearish), true)
	if m.DailyTrend != -1 {
		t.Errorf("BEARISH: expected -1, got %v", m.DailyTrend)
	}

	// warm-up daily rows have no flag yet
	m = buildMerged(hr, mkDaily("2024-01-02 00:00:00", 50, ""), true)
	if !math.IsNaN(m.DailyTrend) {
		t.Errorf("absent flag: expected NaN, got %v", m.DailyTrend)
	}

	m = buildMerged(hr, model.DailyRow{}, false)
	if !math.IsNaN(m.DailyRSI14) || !math.IsNaN(m.DailyTrend) {
		t.Error("missing daily row: expected NaN daily columns")
	}
}
