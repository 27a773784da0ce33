// Package scheduler drives the periodic update cycle: fetch raw bars for
// every timeframe, recompute hourly and daily features over full history,
// stamp forward labels, and rebuild the merged feature table.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"niftydata/internal/indicator"
	"niftydata/internal/label"
	"niftydata/internal/markethours"
	"niftydata/internal/merge"
	"niftydata/internal/metrics"
	"niftydata/internal/model"
	"niftydata/internal/store/redis"
	"niftydata/internal/store/sqlite"
)

// Fetcher retrieves raw OHLCV bars for one timeframe.
type Fetcher interface {
	Fetch(ctx context.Context, tf model.Timeframe, periodDays int) ([]model.Bar, error)
}

// fetchWindowDays is the rolling fetch window per timeframe. Upserts make
// the overlap with already-stored bars harmless.
func fetchWindowDays(tf model.Timeframe) int {
	if tf == model.TF1wk {
		return 30
	}
	return 5
}

// Scheduler runs update cycles on a fixed interval.
type Scheduler struct {
	fetcher  Fetcher
	store    *sqlite.Store
	sync     *merge.Synchronizer
	cache    *redis.Writer         // optional
	metrics  *metrics.Metrics      // optional
	health   *metrics.HealthStatus // optional
	interval time.Duration

	mu sync.Mutex // one cycle at a time
}

// New creates a Scheduler. cache, m, and health may be nil.
func New(fetcher Fetcher, store *sqlite.Store, syn *merge.Synchronizer, cache *redis.Writer, m *metrics.Metrics, health *metrics.HealthStatus, interval time.Duration) *Scheduler {
	return &Scheduler{
		fetcher:  fetcher,
		store:    store,
		sync:     syn,
		cache:    cache,
		metrics:  m,
		health:   health,
		interval: interval,
	}
}

// Run executes one cycle immediately, then one per interval until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle performs one full update cycle. Failures in one timeframe or
// stage are logged and do not stop the rest of the cycle.
func (s *Scheduler) RunCycle(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	now := start.In(markethours.IST)
	open := markethours.IsMarketOpen(now)

	if s.metrics != nil {
		if open {
			s.metrics.MarketState.Set(1)
		} else {
			s.metrics.MarketState.Set(0)
		}
	}
	if s.health != nil {
		s.health.SetMarketOpen(open)
	}

	slog.Info("cycle start", "component", "scheduler", "market", markethours.StatusString(now))

	ev := redis.CycleEvent{
		At:         now.Format(model.TimestampLayout),
		MarketOpen: open,
		Bars:       make(map[string]int),
		Errors:     make(map[string]string),
	}

	for _, tf := range model.Timeframes {
		n, err := s.updateTimeframe(ctx, tf)
		ev.Bars[string(tf)] = n
		if err != nil {
			ev.Errors[string(tf)] = err.Error()
		}
	}

	var cycleErr string
	if err := s.processDaily(ctx); err != nil {
		cycleErr = err.Error()
		slog.Error("daily processing failed", "component", "scheduler", "error", err)
		if s.metrics != nil {
			s.metrics.ProcessErrors.Inc()
		}
	}
	merged, err := s.processHourly(ctx)
	if err != nil {
		cycleErr = err.Error()
		slog.Error("hourly processing failed", "component", "scheduler", "error", err)
		if s.metrics != nil {
			s.metrics.ProcessErrors.Inc()
		}
	}
	ev.Merged = merged

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.CyclesTotal.Inc()
		s.metrics.CycleDur.Observe(elapsed.Seconds())
		s.metrics.LastCycleUnix.Set(float64(time.Now().Unix()))
		s.metrics.MergedRows.Add(float64(merged))
	}
	if s.health != nil {
		s.health.SetLastCycle(time.Now(), cycleErr)
	}
	s.cache.PublishCycle(ctx, ev)

	slog.Info("cycle done", "component", "scheduler",
		"elapsed", elapsed.Round(time.Millisecond),
		"merged", merged,
		"errors", len(ev.Errors))
}

// Backfill fetches up to days of history for every timeframe (the provider
// clamp per timeframe still applies), then runs the processing stages once.
func (s *Scheduler) Backfill(ctx context.Context, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, tf := range model.Timeframes {
		bars, err := s.fetcher.Fetch(ctx, tf, days)
		if err != nil {
			slog.Warn("backfill fetch failed", "component", "scheduler", "timeframe", tf, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch %s: %w", tf, err)
			}
			continue
		}
		if err := s.store.UpsertBars(ctx, tf, bars); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("upsert %s: %w", tf, err)
			}
			continue
		}
		slog.Info("backfilled", "component", "scheduler", "timeframe", tf, "bars", len(bars))
	}

	if err := s.processDaily(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := s.processHourly(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// updateTimeframe fetches the recent window for one timeframe and upserts
// the raw bars. Returns the number of bars written.
func (s *Scheduler) updateTimeframe(ctx context.Context, tf model.Timeframe) (int, error) {
	bars, err := s.fetcher.Fetch(ctx, tf, fetchWindowDays(tf))
	if err != nil {
		slog.Warn("fetch failed", "component", "scheduler", "timeframe", tf, "error", err)
		if s.metrics != nil {
			s.metrics.FetchErrors.WithLabelValues(string(tf)).Inc()
		}
		return 0, fmt.Errorf("fetch %s: %w", tf, err)
	}
	if len(bars) == 0 {
		slog.Warn("fetch returned no bars", "component", "scheduler", "timeframe", tf)
		if s.metrics != nil {
			s.metrics.FetchErrors.WithLabelValues(string(tf)).Inc()
		}
		return 0, fmt.Errorf("fetch %s: empty response", tf)
	}

	commitStart := time.Now()
	if err := s.store.UpsertBars(ctx, tf, bars); err != nil {
		if s.metrics != nil {
			s.metrics.StoreErrors.WithLabelValues(string(tf)).Inc()
		}
		return 0, fmt.Errorf("upsert %s: %w", tf, err)
	}
	if s.metrics != nil {
		s.metrics.SQLiteCommit.Observe(time.Since(commitStart).Seconds())
		s.metrics.BarsUpserted.WithLabelValues(string(tf)).Add(float64(len(bars)))
	}

	s.cache.SetLatestBar(ctx, tf, bars[len(bars)-1])

	slog.Info("bars updated", "component", "scheduler", "timeframe", tf, "bars", len(bars))
	return len(bars), nil
}

// processDaily recomputes daily indicators over full history. It runs
// before hourly processing so the merged rows join against fresh daily
// values.
func (s *Scheduler) processDaily(ctx context.Context) error {
	bars, err := s.store.QueryBarsAsc(ctx, model.TF1d)
	if err != nil {
		return fmt.Errorf("load daily bars: %w", err)
	}
	if len(bars) == 0 {
		return nil
	}

	computeStart := time.Now()
	rows := indicator.ComputeDaily(bars)
	if s.metrics != nil {
		s.metrics.ComputeDur.Observe(time.Since(computeStart).Seconds())
	}

	if err := s.store.UpsertDailyRows(ctx, rows); err != nil {
		return fmt.Errorf("upsert daily rows: %w", err)
	}
	return nil
}

// processHourly recomputes hourly indicators and labels over full history,
// then rebuilds the merged feature rows. Returns the number of merged rows
// written.
func (s *Scheduler) processHourly(ctx context.Context) (int, error) {
	bars, err := s.store.QueryBarsAsc(ctx, model.TF1h)
	if err != nil {
		return 0, fmt.Errorf("load hourly bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, nil
	}

	computeStart := time.Now()
	rows := indicator.ComputeHourly(bars)
	label.Apply(rows)
	if s.metrics != nil {
		s.metrics.ComputeDur.Observe(time.Since(computeStart).Seconds())
	}

	if err := s.store.UpsertHourlyRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("upsert hourly rows: %w", err)
	}
	if err := s.sync.OnHourlyChange(ctx, rows); err != nil {
		return 0, fmt.Errorf("merge hourly rows: %w", err)
	}
	return len(rows), nil
}
