package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"niftydata/internal/model"
)

func chartJSON(timestamps string, quote string) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"timestamp": [%s],
				"indicators": {"quote": [%s]}
			}],
			"error": null
		}
	}`, timestamps, quote)
}

func TestFetchParsesAndNormalizes(t *testing.T) {
	// 2024-01-02 10:15:00 IST == 1704170700 UTC epoch
	const t0 = 1704170700
	body := chartJSON(
		fmt.Sprintf("%d, %d, %d", t0+3600, t0, t0+7200),
		`{
			"open":   [101.0, 100.0, 102.0],
			"high":   [103.0, 102.0, 104.0],
			"low":    [100.0,  99.0, 101.0],
			"close":  [102.0, 101.0, 103.0],
			"volume": [500, null, 700]
		}`)

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("interval") != "1h" {
			t.Errorf("interval: expected 1h, got %q", r.URL.Query().Get("interval"))
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Symbol: "^NSEI"})
	bars, err := c.Fetch(context.Background(), model.TF1h, 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if !strings.HasSuffix(gotPath, "/v8/finance/chart/^NSEI") {
		t.Errorf("unexpected request path %q", gotPath)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}

	// out-of-order input comes back ascending
	if bars[0].Timestamp() != "2024-01-02 10:15:00" {
		t.Errorf("first bar: expected 2024-01-02 10:15:00 IST, got %s", bars[0].Timestamp())
	}
	if !bars[0].TS.Before(bars[1].TS) || !bars[1].TS.Before(bars[2].TS) {
		t.Error("bars should be ascending by timestamp")
	}

	// null volume fills with zero; index feeds often omit it
	if bars[0].Volume != 0 {
		t.Errorf("null volume: expected 0, got %d", bars[0].Volume)
	}
	if bars[1].Volume != 500 {
		t.Errorf("volume: expected 500, got %d", bars[1].Volume)
	}
	if bars[0].Close != 101.0 {
		t.Errorf("close: expected 101.0, got %v", bars[0].Close)
	}
}

func TestFetchSkipsNullSlots(t *testing.T) {
	const t0 = 1704170700
	body := chartJSON(
		fmt.Sprintf("%d, %d", t0, t0+3600),
		`{
			"open":   [100.0, null],
			"high":   [102.0, null],
			"low":    [99.0,  null],
			"close":  [101.0, null],
			"volume": [500, null]
		}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Symbol: "^NSEI"})
	bars, err := c.Fetch(context.Background(), model.TF1h, 5)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected the halted slot skipped, got %d bars", len(bars))
	}
}

func TestFetchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Symbol: "^BOGUS"})
	_, err := c.Fetch(context.Background(), model.TF1d, 5)
	if err == nil {
		t.Fatal("expected error from provider error payload")
	}
	if !strings.Contains(err.Error(), "Not Found") {
		t.Errorf("error should carry the provider code, got %v", err)
	}
}

func TestFetchHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Symbol: "^NSEI"})
	_, err := c.Fetch(context.Background(), model.TF15m, 5)
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestClampPeriod(t *testing.T) {
	cases := []struct {
		tf   model.Timeframe
		days int
		want int
	}{
		{model.TF15m, 100, 60},  // intraday provider cap
		{model.TF15m, 30, 30},   // under the cap
		{model.TF15m, 0, 60},    // "max" still bounded
		{model.TF1h, 3650, 730}, // hourly cap
		{model.TF1d, 3650, 3650},
		{model.TF1d, 0, 0}, // unbounded max
		{model.TF1wk, 30, 30},
	}
	for _, c := range cases {
		if got := clampPeriod(c.tf, c.days); got != c.want {
			t.Errorf("clampPeriod(%s, %d): expected %d, got %d", c.tf, c.days, c.want, got)
		}
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Symbol: "^NSEI", Timeout: 50 * time.Millisecond})
	_, err := c.Fetch(context.Background(), model.TF1h, 5)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
