package indicator

import (
	"math"
	"testing"
	"time"

	"niftydata/internal/markethours"
	"niftydata/internal/model"
)

func makeBars(closes ...float64) []model.Bar {
	base := time.Date(2024, 1, 2, 9, 15, 0, 0, markethours.IST)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			TS:     base.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMASeries(t *testing.T) {
	bars := makeBars(1, 2, 3, 4, 5)
	got := SMASeries(bars, 3)

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("expected NaN before window fills, got %v %v", got[0], got[1])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(got[i+2], w) {
			t.Errorf("sma[%d]: expected %.4f, got %.4f", i+2, w, got[i+2])
		}
	}
}

func TestEMASeries(t *testing.T) {
	bars := makeBars(1, 2, 3, 4, 5)
	got := EMASeries(bars, 3)

	if !math.IsNaN(got[1]) {
		t.Errorf("expected NaN before seed, got %v", got[1])
	}
	// seed = SMA(1,2,3) = 2; alpha = 2/(3+1) = 0.5
	// ema[3] = 2 + 0.5*(4-2) = 3; ema[4] = 3 + 0.5*(5-3) = 4
	if !almostEqual(got[2], 2) {
		t.Errorf("ema seed: expected 2, got %.4f", got[2])
	}
	if !almostEqual(got[3], 3) || !almostEqual(got[4], 4) {
		t.Errorf("ema continuation: expected 3, 4, got %.4f, %.4f", got[3], got[4])
	}
}

func TestRSISeriesExtremes(t *testing.T) {
	up := makeBars(10, 11, 12, 13, 14, 15)
	gotUp := RSISeries(up, 3)
	if !almostEqual(gotUp[5], 100) {
		t.Errorf("all-gains RSI: expected 100, got %.4f", gotUp[5])
	}

	down := makeBars(15, 14, 13, 12, 11, 10)
	gotDown := RSISeries(down, 3)
	if !almostEqual(gotDown[5], 0) {
		t.Errorf("all-losses RSI: expected 0, got %.4f", gotDown[5])
	}

	if !math.IsNaN(gotUp[2]) {
		t.Errorf("expected NaN before RSI window fills, got %v", gotUp[2])
	}
}

func TestROCSeries(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}
	closes[7] = 110
	bars := makeBars(closes...)

	got := ROCSeries(bars, 7)
	if !math.IsNaN(got[6]) {
		t.Errorf("expected NaN before lag fills, got %v", got[6])
	}
	// (110 - 100) / 100 * 100 = 10
	if !almostEqual(got[7], 10) {
		t.Errorf("roc[7]: expected 10, got %.4f", got[7])
	}
}

func TestLinRegSeriesLinearInput(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 50 + 2*float64(i)
	}
	bars := makeBars(closes...)

	got := LinRegSeries(bars, 5)
	// perfectly linear input: fitted value at window end equals the close
	for i := 4; i < len(bars); i++ {
		if !almostEqual(got[i], closes[i]) {
			t.Errorf("linreg[%d]: expected %.4f, got %.4f", i, closes[i], got[i])
		}
	}
}

func TestATRSeriesConstantRange(t *testing.T) {
	bars := makeBars(100, 100, 100, 100, 100, 100)
	// every bar has high=101, low=99: TR = 2 throughout
	got := ATRSeries(bars, 3)
	if !math.IsNaN(got[2]) {
		t.Errorf("expected NaN before ATR seeds, got %v", got[2])
	}
	for i := 3; i < len(bars); i++ {
		if !almostEqual(got[i], 2) {
			t.Errorf("atr[%d]: expected 2, got %.4f", i, got[i])
		}
	}
}

func TestRollingStdevIsSample(t *testing.T) {
	bars := makeBars(1, 2, 3, 4)
	got := RollingStdev(bars, 3)
	// sample stdev of {1,2,3} = sqrt(2/2) = 1
	if !almostEqual(got[2], 1) {
		t.Errorf("stdev[2]: expected 1, got %.4f", got[2])
	}
	// {2,3,4} has the same spread
	if !almostEqual(got[3], 1) {
		t.Errorf("stdev[3]: expected 1, got %.4f", got[3])
	}
}

func TestRollingMeanNaNWindow(t *testing.T) {
	vals := []float64{math.NaN(), 2, 4, 6}
	got := RollingMean(vals, 2)
	if !math.IsNaN(got[1]) {
		t.Errorf("window containing NaN should stay NaN, got %v", got[1])
	}
	if !almostEqual(got[2], 3) || !almostEqual(got[3], 5) {
		t.Errorf("clean windows: expected 3, 5, got %v, %v", got[2], got[3])
	}
}

func TestVWAPSeriesResetsPerDate(t *testing.T) {
	day1 := time.Date(2024, 1, 2, 10, 15, 0, 0, markethours.IST)
	day2 := time.Date(2024, 1, 3, 9, 15, 0, 0, markethours.IST)
	bars := []model.Bar{
		{TS: day1, Close: 100, High: 101, Low: 99, Volume: 100},
		{TS: day1.Add(time.Hour), Close: 200, High: 201, Low: 199, Volume: 100},
		{TS: day2, Close: 50, High: 51, Low: 49, Volume: 100},
	}

	got := VWAPSeries(bars)
	if !almostEqual(got[0], 100) {
		t.Errorf("vwap[0]: expected 100, got %.4f", got[0])
	}
	if !almostEqual(got[1], 150) {
		t.Errorf("vwap[1]: expected 150, got %.4f", got[1])
	}
	// new calendar date resets the accumulation
	if !almostEqual(got[2], 50) {
		t.Errorf("vwap[2]: expected reset to 50, got %.4f", got[2])
	}
}

func TestVWAPSeriesZeroVolume(t *testing.T) {
	bars := makeBars(100, 110)
	for i := range bars {
		bars[i].Volume = 0
	}
	got := VWAPSeries(bars)
	// index feeds report zero volume; fall back to the bar's own close
	if !almostEqual(got[0], 100) || !almostEqual(got[1], 110) {
		t.Errorf("zero-volume vwap: expected closes, got %v, %v", got[0], got[1])
	}
}

func TestDiff(t *testing.T) {
	got := Diff([]float64{10, 12, 15, 19}, 3)
	if !math.IsNaN(got[2]) {
		t.Errorf("expected NaN before lag fills, got %v", got[2])
	}
	if !almostEqual(got[3], 9) {
		t.Errorf("diff[3]: expected 9, got %.4f", got[3])
	}
}
