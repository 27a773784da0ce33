package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"niftydata/internal/model"
)

// UpsertBars stores raw OHLCV bars for a timeframe. Insert-or-overwrite keyed
// by timestamp; only the OHLCV columns are touched on conflict, so enriched
// columns written by a later pass survive the next raw fetch. The batch is a
// single transaction: all rows land or none do.
func (s *Store) UpsertBars(ctx context.Context, tf model.Timeframe, bars []model.Bar) error {
	if len(bars) == 0 {
		return nil
	}
	return s.inTx(ctx, upsertSQL(tf.Table(), barCols), func(stmt *sql.Stmt) error {
		for i := range bars {
			b := &bars[i]
			_, err := stmt.ExecContext(ctx,
				b.Timestamp(), b.Date(), b.Open, b.High, b.Low, b.Close, b.Volume)
			if err != nil {
				return fmt.Errorf("bar %s: %w", b.Timestamp(), err)
			}
		}
		return nil
	})
}

// UpsertHourlyRows stores fully enriched hourly rows, overwriting every
// column except the key.
func (s *Store) UpsertHourlyRows(ctx context.Context, rows []model.HourlyRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.inTx(ctx, upsertSQL(model.TF1h.Table(), hourlyCols()), func(stmt *sql.Stmt) error {
		for i := range rows {
			if _, err := stmt.ExecContext(ctx, hourlyBind(&rows[i])...); err != nil {
				return fmt.Errorf("hourly row %s: %w", rows[i].Timestamp(), err)
			}
		}
		return nil
	})
}

// UpsertDailyRows stores fully enriched daily rows.
func (s *Store) UpsertDailyRows(ctx context.Context, rows []model.DailyRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.inTx(ctx, upsertSQL(model.TF1d.Table(), dailyCols()), func(stmt *sql.Stmt) error {
		for i := range rows {
			r := &rows[i]
			_, err := stmt.ExecContext(ctx,
				r.Timestamp(), r.Date(), r.Open, r.High, r.Low, r.Close, r.Volume,
				nullF(r.RSI14), nullF(r.RSISlope), nullF(r.EMA20), nullF(r.EMA20Slope),
				nullS(r.TrendFlag), nil)
			if err != nil {
				return fmt.Errorf("daily row %s: %w", r.Timestamp(), err)
			}
		}
		return nil
	})
}

// UpsertMergedRows stores complete merged feature records keyed by the hourly
// timestamp.
func (s *Store) UpsertMergedRows(ctx context.Context, rows []model.MergedRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.inTx(ctx, upsertSQL(model.MergedTable, mergedCols()), func(stmt *sql.Stmt) error {
		for i := range rows {
			r := &rows[i]
			args := hourlyBind(&r.HourlyRow)

			var signal any
			if v, ok := model.EncodeSignal(r.Target); ok {
				signal = v
			}
			args = append(args, signal,
				nullF(r.DailyRSI14), nullF(r.DailyRSISlope),
				nullF(r.DailyEMA20), nullF(r.DailyEMA20Slope),
				nullF(r.DailyTrend))

			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("merged row %s: %w", r.Timestamp(), err)
			}
		}
		return nil
	})
}

// inTx runs fn with a prepared statement inside one transaction.
func (s *Store) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// hourlyBind flattens an hourly row in hourlyCols order.
func hourlyBind(r *model.HourlyRow) []any {
	return []any{
		r.Timestamp(), r.Date(), r.Open, r.High, r.Low, r.Close, r.Volume,
		nullF(r.RSI14), nullF(r.RSISMA14), nullF(r.RSIDiff), nullF(r.RSISlope),
		nullF(r.RSIDist50), nullS(r.RSIZone),
		nullF(r.ROC7), nullF(r.ROC9), nullF(r.ROC21), r.ROC7Pos, nullF(r.ROCDiff721),
		nullF(r.EMA7), nullF(r.EMA9), nullF(r.EMA20), nullF(r.EMA50), nullF(r.EMA100),
		nullF(r.SMA25), nullF(r.LSMA25),
		r.CloseGtLSMA, r.CloseLtLSMA, nullF(r.ClosePctLSMA), nullF(r.LSMADiff),
		nullF(r.ClosePctSMA25), nullS(r.EMAAlignment),
		nullF(r.BBUpper), nullF(r.BBLower), nullF(r.BBMiddle), nullF(r.BBWidth),
		r.BBSqueeze, nullF(r.BBPosition), nullF(r.BBRange),
		nullF(r.BBUpperSlope), nullF(r.BBLowerSlope),
		nullF(r.ATR14), nullF(r.ATRPct),
		nullF(r.VWAP), nullF(r.ClosePctVWAP),
		r.BreakHigh5, r.BreakLow5,
		nullF(r.VolAvg20), nullF(r.VolRelAvg),
		nullS(r.Target),
	}
}
