// Command backfill seeds the database with historical bars for every
// timeframe, then computes indicators, labels, and merged features once.
// Intraday history is limited by the provider (60 days for 15m, 730 for 1h).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"niftydata/config"
	"niftydata/internal/fetch"
	"niftydata/internal/logger"
	"niftydata/internal/merge"
	"niftydata/internal/scheduler"
	sqlitestore "niftydata/internal/store/sqlite"
)

func main() {
	days := flag.Int("days", 3650, "history to request per timeframe (provider clamps apply)")
	flag.Parse()

	cfg := config.Load()
	logger.Init("backfill", logger.ParseLevel(cfg.LogLevel))
	slog.Info("starting", "component", "backfill", "symbol", cfg.Symbol, "days", *days)

	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	store, err := sqlitestore.New(sqlitestore.Config{Path: cfg.SQLitePath})
	if err != nil {
		slog.Error("sqlite init failed", "component", "backfill", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	fetcher := fetch.New(fetch.Config{
		BaseURL: cfg.ProviderBaseURL,
		Symbol:  cfg.Symbol,
		Timeout: cfg.FetchTimeout,
	})
	syn := merge.New(store)
	sched := scheduler.New(fetcher, store, syn, nil, nil, nil, 0)

	if err := sched.Backfill(context.Background(), *days); err != nil {
		slog.Error("backfill finished with errors", "component", "backfill", "error", err)
		os.Exit(1)
	}
	slog.Info("backfill complete", "component", "backfill")
}
