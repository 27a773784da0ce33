// Package fetch pulls OHLCV bars for one instrument from a Yahoo-Finance
// style chart endpoint and normalizes them for the pipeline: every timestamp
// converted to exchange-local IST, missing volume filled with zero, results
// ascending by timestamp. All downstream keys and the calendar-date join
// assume that single zone.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"niftydata/internal/markethours"
	"niftydata/internal/model"
)

// Config configures the provider client.
type Config struct {
	BaseURL string // e.g. "https://query1.finance.yahoo.com"
	Symbol  string // e.g. "^NSEI"
	Timeout time.Duration
}

// Client fetches bars over HTTP. It holds no state beyond the connection
// pool; a failed or empty fetch is "no update this cycle", never fatal.
type Client struct {
	httpc   *http.Client
	baseURL string
	symbol  string
}

// New creates a provider client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpc:   &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		symbol:  cfg.Symbol,
	}
}

// chart API response shape. Quote entries can be null for halted periods, so
// everything inside is a pointer.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns bars for a timeframe covering the last periodDays days
// (0 = maximum available). The window is clamped to the timeframe's provider
// limit before the request goes out. Results are ascending by timestamp.
func (c *Client) Fetch(ctx context.Context, tf model.Timeframe, periodDays int) ([]model.Bar, error) {
	days := clampPeriod(tf, periodDays)

	now := time.Now()
	period1 := int64(0)
	if days > 0 {
		period1 = now.AddDate(0, 0, -days).Unix()
	}

	q := url.Values{}
	q.Set("interval", tf.Interval())
	q.Set("period1", strconv.FormatInt(period1, 10))
	q.Set("period2", strconv.FormatInt(now.Unix(), 10))
	q.Set("includePrePost", "false")

	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(c.symbol) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", tf, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; niftydata/1.0)")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", tf, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: provider status %d", tf, resp.StatusCode)
	}

	var cr chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("fetch %s: decode: %w", tf, err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("fetch %s: provider error %s: %s",
			tf, cr.Chart.Error.Code, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := cr.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]model.Bar, 0, len(result.Timestamp))
	for i, epoch := range result.Timestamp {
		o := at(quote.Open, i)
		h := at(quote.High, i)
		l := at(quote.Low, i)
		cl := at(quote.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			continue // halted or not-yet-filled slot
		}

		var vol int64
		if v := atI(quote.Volume, i); v != nil {
			vol = *v
		}

		bars = append(bars, model.Bar{
			TS:     time.Unix(epoch, 0).In(markethours.IST),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *cl,
			Volume: vol,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TS.Before(bars[j].TS) })
	return bars, nil
}

// clampPeriod bounds the lookback window to what the provider allows for the
// timeframe. 0 stays 0 (max) only for unbounded timeframes.
func clampPeriod(tf model.Timeframe, days int) int {
	max := tf.MaxLookbackDays()
	if max == 0 {
		return days
	}
	if days == 0 || days > max {
		return max
	}
	return days
}

func at(vals []*float64, i int) *float64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}

func atI(vals []*int64, i int) *int64 {
	if i >= len(vals) {
		return nil
	}
	return vals[i]
}
