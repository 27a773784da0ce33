package indicator

import (
	"math"
	"testing"

	"niftydata/internal/model"
)

func TestComputeDailyBelowMinHistory(t *testing.T) {
	bars := makeBars(wavyCloses(MinHistory - 1)...)
	rows := ComputeDaily(bars)

	for i, r := range rows {
		if !math.IsNaN(r.RSI14) || !math.IsNaN(r.EMA20) {
			t.Errorf("row %d: expected raw-only row under min history", i)
		}
		if r.TrendFlag != "" {
			t.Errorf("row %d: expected empty trend flag, got %q", i, r.TrendFlag)
		}
	}
}

func TestComputeDailyTrendFlag(t *testing.T) {
	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 20000 + 50*float64(i)
	}
	rows := ComputeDaily(makeBars(rising...))

	last := rows[len(rows)-1]
	if math.IsNaN(last.EMA20) {
		t.Fatal("ema_20 should be computed at the last row")
	}
	if last.TrendFlag != model.TrendBullish {
		t.Errorf("rising series: expected %q, got %q", model.TrendBullish, last.TrendFlag)
	}

	falling := make([]float64, 60)
	for i := range falling {
		falling[i] = 23000 - 50*float64(i)
	}
	rows = ComputeDaily(makeBars(falling...))
	last = rows[len(rows)-1]
	if last.TrendFlag != model.TrendBearish {
		t.Errorf("falling series: expected %q, got %q", model.TrendBearish, last.TrendFlag)
	}

	// before the average fills, the close > NaN comparison reads bearish
	if rows[3].TrendFlag != model.TrendBearish {
		t.Errorf("warm-up rows: expected %q, got %q", model.TrendBearish, rows[3].TrendFlag)
	}
}

func TestComputeDailySlopes(t *testing.T) {
	bars := makeBars(wavyCloses(60)...)
	rows := ComputeDaily(bars)

	last := rows[len(rows)-1]
	prev := rows[len(rows)-4]
	if math.IsNaN(last.RSISlope) || math.IsNaN(last.EMA20Slope) {
		t.Fatal("slopes should be computed at the last row")
	}
	if !almostEqual(last.RSISlope, last.RSI14-prev.RSI14) {
		t.Errorf("rsi_slope: expected %.4f, got %.4f", last.RSI14-prev.RSI14, last.RSISlope)
	}
	if !almostEqual(last.EMA20Slope, last.EMA20-prev.EMA20) {
		t.Errorf("ema_20_slope: expected %.4f, got %.4f", last.EMA20-prev.EMA20, last.EMA20Slope)
	}
}
