package label

import (
	"testing"
	"time"

	"niftydata/internal/markethours"
	"niftydata/internal/model"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		ret  float64
		want string
	}{
		{0.0045, model.LabelCall},
		{0.004, model.LabelSideways}, // boundary is exclusive
		{0.003, model.LabelSideways},
		{0, model.LabelSideways},
		{-0.004, model.LabelSideways},
		{-0.0045, model.LabelPut},
	}
	for _, c := range cases {
		if got := Classify(c.ret); got != c.want {
			t.Errorf("Classify(%v): expected %s, got %s", c.ret, c.want, got)
		}
	}
}

func TestGenerateForwardReturn(t *testing.T) {
	// close 3 bars ahead of index 0 is 104.5: +4.5% => CALL
	closes := []float64{100, 100.5, 101, 104.5, 100.2, 100.1, 95.0}
	got := Generate(closes)

	if got[0] != model.LabelCall {
		t.Errorf("index 0: expected CALL, got %q", got[0])
	}
	// (100.1 - 100.5) / 100.5 = -0.398%, just inside the band
	if got[1] != model.LabelSideways {
		t.Errorf("index 1: expected SIDEWAYS, got %q", got[1])
	}
	// (95 - 101) / 101 = -5.9% => PUT
	if got[2] != model.LabelPut {
		t.Errorf("index 2: expected PUT, got %q", got[2])
	}
}

func TestGenerateLastRowsUnlabeled(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105}
	got := Generate(closes)

	for i := len(closes) - Horizon; i < len(closes); i++ {
		if got[i] != "" {
			t.Errorf("index %d: expected no label without a future bar, got %q", i, got[i])
		}
	}
	for i := 0; i < len(closes)-Horizon; i++ {
		if got[i] == "" {
			t.Errorf("index %d: expected a label", i)
		}
	}
}

func TestGenerateShortSeries(t *testing.T) {
	got := Generate([]float64{100, 101})
	for i, g := range got {
		if g != "" {
			t.Errorf("index %d: expected no label on short series, got %q", i, g)
		}
	}
}

func TestApply(t *testing.T) {
	base := time.Date(2024, 1, 2, 10, 15, 0, 0, markethours.IST)
	closes := []float64{100, 100, 100, 105, 100, 100}
	rows := make([]model.HourlyRow, len(closes))
	for i := range rows {
		rows[i].TS = base.Add(time.Duration(i) * time.Hour)
		rows[i].Close = closes[i]
	}

	Apply(rows)

	if rows[0].Target != model.LabelCall {
		t.Errorf("row 0: expected CALL, got %q", rows[0].Target)
	}
	if rows[1].Target != model.LabelSideways {
		t.Errorf("row 1: expected SIDEWAYS, got %q", rows[1].Target)
	}
	if rows[5].Target != "" {
		t.Errorf("row 5: expected unlabeled, got %q", rows[5].Target)
	}
}
