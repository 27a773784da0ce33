// Command updater runs the periodic data pipeline: fetch Nifty 50 bars for
// every timeframe, recompute indicators and labels, and keep the merged
// feature table in sync. Exposes Prometheus metrics and /healthz.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"niftydata/config"
	"niftydata/internal/fetch"
	"niftydata/internal/logger"
	"niftydata/internal/merge"
	"niftydata/internal/metrics"
	"niftydata/internal/scheduler"
	redisstore "niftydata/internal/store/redis"
	sqlitestore "niftydata/internal/store/sqlite"
)

func main() {
	cfg := config.Load()
	logger.Init("updater", logger.ParseLevel(cfg.LogLevel))
	slog.Info("starting", "component", "updater", "symbol", cfg.Symbol, "interval", cfg.UpdateInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- SQLite store ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	store, err := sqlitestore.New(sqlitestore.Config{Path: cfg.SQLitePath})
	if err != nil {
		slog.Error("sqlite init failed", "component", "updater", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("sqlite ready", "component", "updater", "path", cfg.SQLitePath)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	health.SetSQLiteOK(true)
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Redis cache (optional) ----
	var cache *redisstore.Writer
	if cfg.RedisAddr != "" {
		cache, err = redisstore.New(redisstore.WriterConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			slog.Warn("redis init failed, continuing without redis", "component", "updater", "error", err)
			cache = nil
			health.SetRedisConnected(false)
		} else {
			health.SetRedisConnected(true)
			defer cache.Close()
		}
	}

	if cache != nil {
		health.StartLivenessChecker(ctx, cache.Client(), store.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, store.DB(), 10*time.Second)
	}

	// ---- Pipeline ----
	fetcher := fetch.New(fetch.Config{
		BaseURL: cfg.ProviderBaseURL,
		Symbol:  cfg.Symbol,
		Timeout: cfg.FetchTimeout,
	})
	syn := merge.New(store)
	sched := scheduler.New(fetcher, store, syn, cache, prom, health, cfg.UpdateInterval)

	go sched.Run(ctx)

	<-sigCh
	slog.Info("shutting down", "component", "updater")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)
}
