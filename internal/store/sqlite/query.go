package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"niftydata/internal/markethours"
	"niftydata/internal/model"
)

// QueryOpts filters a table read. Bounds are inclusive timestamp strings; a
// bare YYYY-MM-DD expands to that day's start (Start) or end (End). Limit 0
// means no cap.
type QueryOpts struct {
	Start string
	End   string
	Limit int
}

func (o QueryOpts) where() (string, []any) {
	var conds []string
	var params []any
	if o.Start != "" {
		start := o.Start
		if len(start) == len(model.DateLayout) {
			start += " 00:00:00"
		}
		conds = append(conds, "timestamp >= ?")
		params = append(params, start)
	}
	if o.End != "" {
		end := o.End
		if len(end) == len(model.DateLayout) {
			end += " 23:59:59"
		}
		conds = append(conds, "timestamp <= ?")
		params = append(params, end)
	}
	if len(conds) == 0 {
		return "", params
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

// QueryBarsAsc reads the raw OHLCV columns of a timeframe table in ascending
// timestamp order — the shape the indicator engine and label generator want.
func (s *Store) QueryBarsAsc(ctx context.Context, tf model.Timeframe) ([]model.Bar, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT timestamp, open, high, low, close, volume FROM %s ORDER BY timestamp ASC",
		tf.Table()))
	if err != nil {
		return nil, fmt.Errorf("sqlite query %s: %w", tf.Table(), err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		var ts string
		var o, h, l, c sql.NullFloat64
		var v sql.NullInt64
		if err := rows.Scan(&ts, &o, &h, &l, &c, &v); err != nil {
			return nil, fmt.Errorf("sqlite scan %s: %w", tf.Table(), err)
		}
		t, err := time.ParseInLocation(model.TimestampLayout, ts, markethours.IST)
		if err != nil {
			return nil, fmt.Errorf("sqlite bad timestamp %q: %w", ts, err)
		}
		b.TS = t
		b.Open, b.High, b.Low, b.Close = o.Float64, h.Float64, l.Float64, c.Float64
		b.Volume = v.Int64
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// DailyByDate returns the enriched daily row whose date matches, preferring
// the most recent timestamp if duplicates exist. found is false when the date
// has no daily row yet.
func (s *Store) DailyByDate(ctx context.Context, date string) (row model.DailyRow, found bool, err error) {
	q := `SELECT timestamp, open, high, low, close, volume,
		rsi_14, rsi_slope, ema_20, ema_20_slope, trend_flag
		FROM nifty_1d WHERE date = ? ORDER BY timestamp DESC LIMIT 1`

	var ts string
	var o, h, l, c sql.NullFloat64
	var v sql.NullInt64
	var rsi, rsiSlope, ema, emaSlope sql.NullFloat64
	var trend sql.NullString

	err = s.db.QueryRowContext(ctx, q, date).Scan(&ts, &o, &h, &l, &c, &v,
		&rsi, &rsiSlope, &ema, &emaSlope, &trend)
	if err == sql.ErrNoRows {
		return row, false, nil
	}
	if err != nil {
		return row, false, fmt.Errorf("sqlite daily lookup %s: %w", date, err)
	}

	t, err := time.ParseInLocation(model.TimestampLayout, ts, markethours.IST)
	if err != nil {
		return row, false, fmt.Errorf("sqlite bad timestamp %q: %w", ts, err)
	}
	row.TS = t
	row.Open, row.High, row.Low, row.Close = o.Float64, h.Float64, l.Float64, c.Float64
	row.Volume = v.Int64
	row.RSI14 = scanF(rsi)
	row.RSISlope = scanF(rsiSlope)
	row.EMA20 = scanF(ema)
	row.EMA20Slope = scanF(emaSlope)
	row.TrendFlag = scanS(trend)
	return row, true, nil
}

// HourlyByDate reads the enriched hourly rows sharing a calendar date, in
// ascending order. Used when a daily change invalidates that date's merged
// rows.
func (s *Store) HourlyByDate(ctx context.Context, date string) ([]model.HourlyRow, error) {
	q := "SELECT " + strings.Join(hourlyCols(), ", ") +
		" FROM nifty_1h WHERE date = ? ORDER BY timestamp ASC"

	rows, err := s.db.QueryContext(ctx, q, date)
	if err != nil {
		return nil, fmt.Errorf("sqlite hourly by date %s: %w", date, err)
	}
	defer rows.Close()

	var out []model.HourlyRow
	for rows.Next() {
		r, err := scanHourly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestTimestamp returns the newest stored key for a timeframe, "" if the
// table is empty.
func (s *Store) LatestTimestamp(ctx context.Context, tf model.Timeframe) (string, error) {
	var ts sql.NullString
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT MAX(timestamp) FROM %s", tf.Table())).Scan(&ts)
	if err != nil {
		return "", fmt.Errorf("sqlite latest %s: %w", tf.Table(), err)
	}
	return ts.String, nil
}

// QueryTable reads every column of a table most-recent-first, range-filtered
// and capped per opts. Rows come back as column→value maps so callers see new
// indicator columns without a schema change here; the dashboard boundary is
// read-only and column-agnostic by design.
func (s *Store) QueryTable(ctx context.Context, table string, opts QueryOpts) ([]map[string]any, error) {
	where, params := opts.where()
	q := "SELECT * FROM " + table + where + " ORDER BY timestamp DESC"
	if opts.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, params...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite scan %s: %w", table, err)
		}
		rec := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
			} else {
				rec[c] = vals[i]
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// scanHourly reads one row positioned by rows.Next, in hourlyCols order.
func scanHourly(rows *sql.Rows) (model.HourlyRow, error) {
	var r model.HourlyRow
	var ts, date string
	var o, h, l, c sql.NullFloat64
	var vol sql.NullInt64
	var rsi14, rsiSMA, rsiDiff, rsiSlope, rsiDist sql.NullFloat64
	var rsiZone sql.NullString
	var roc7, roc9, roc21 sql.NullFloat64
	var roc7Pos sql.NullInt64
	var rocDiff sql.NullFloat64
	var ema7, ema9, ema20, ema50, ema100, sma25, lsma25 sql.NullFloat64
	var gtLSMA, ltLSMA sql.NullInt64
	var pctLSMA, lsmaDiff, pctSMA25 sql.NullFloat64
	var alignment sql.NullString
	var bbU, bbL, bbM, bbW sql.NullFloat64
	var bbSq sql.NullInt64
	var bbPos, bbRange, bbUS, bbLS sql.NullFloat64
	var atr, atrPct, vwap, pctVWAP sql.NullFloat64
	var brkHi, brkLo sql.NullInt64
	var volAvg, volRel sql.NullFloat64
	var target sql.NullString

	err := rows.Scan(&ts, &date, &o, &h, &l, &c, &vol,
		&rsi14, &rsiSMA, &rsiDiff, &rsiSlope, &rsiDist, &rsiZone,
		&roc7, &roc9, &roc21, &roc7Pos, &rocDiff,
		&ema7, &ema9, &ema20, &ema50, &ema100, &sma25, &lsma25,
		&gtLSMA, &ltLSMA, &pctLSMA, &lsmaDiff, &pctSMA25, &alignment,
		&bbU, &bbL, &bbM, &bbW, &bbSq, &bbPos, &bbRange, &bbUS, &bbLS,
		&atr, &atrPct, &vwap, &pctVWAP, &brkHi, &brkLo, &volAvg, &volRel,
		&target)
	if err != nil {
		return r, fmt.Errorf("sqlite scan hourly: %w", err)
	}

	t, err := time.ParseInLocation(model.TimestampLayout, ts, markethours.IST)
	if err != nil {
		return r, fmt.Errorf("sqlite bad timestamp %q: %w", ts, err)
	}
	r.TS = t
	r.Open, r.High, r.Low, r.Close = o.Float64, h.Float64, l.Float64, c.Float64
	r.Volume = vol.Int64

	r.RSI14, r.RSISMA14, r.RSIDiff = scanF(rsi14), scanF(rsiSMA), scanF(rsiDiff)
	r.RSISlope, r.RSIDist50 = scanF(rsiSlope), scanF(rsiDist)
	r.RSIZone = scanS(rsiZone)
	r.ROC7, r.ROC9, r.ROC21 = scanF(roc7), scanF(roc9), scanF(roc21)
	r.ROC7Pos = roc7Pos.Int64
	r.ROCDiff721 = scanF(rocDiff)
	r.EMA7, r.EMA9, r.EMA20 = scanF(ema7), scanF(ema9), scanF(ema20)
	r.EMA50, r.EMA100 = scanF(ema50), scanF(ema100)
	r.SMA25, r.LSMA25 = scanF(sma25), scanF(lsma25)
	r.CloseGtLSMA, r.CloseLtLSMA = gtLSMA.Int64, ltLSMA.Int64
	r.ClosePctLSMA, r.LSMADiff, r.ClosePctSMA25 = scanF(pctLSMA), scanF(lsmaDiff), scanF(pctSMA25)
	r.EMAAlignment = scanS(alignment)
	r.BBUpper, r.BBLower, r.BBMiddle, r.BBWidth = scanF(bbU), scanF(bbL), scanF(bbM), scanF(bbW)
	r.BBSqueeze = bbSq.Int64
	r.BBPosition, r.BBRange = scanF(bbPos), scanF(bbRange)
	r.BBUpperSlope, r.BBLowerSlope = scanF(bbUS), scanF(bbLS)
	r.ATR14, r.ATRPct = scanF(atr), scanF(atrPct)
	r.VWAP, r.ClosePctVWAP = scanF(vwap), scanF(pctVWAP)
	r.BreakHigh5, r.BreakLow5 = brkHi.Int64, brkLo.Int64
	r.VolAvg20, r.VolRelAvg = scanF(volAvg), scanF(volRel)
	r.Target = scanS(target)
	return r, nil
}
