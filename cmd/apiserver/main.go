// Command apiserver serves stored bars and merged features over HTTP and
// relays update-cycle events from Redis pub/sub to WebSocket clients.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"niftydata/config"
	"niftydata/internal/api"
	"niftydata/internal/logger"
	redisstore "niftydata/internal/store/redis"
	sqlitestore "niftydata/internal/store/sqlite"
	"niftydata/internal/stream"
)

func main() {
	cfg := config.Load()
	logger.Init("apiserver", logger.ParseLevel(cfg.LogLevel))
	slog.Info("starting", "component", "apiserver", "addr", cfg.APIAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	store, err := sqlitestore.NewReader(cfg.SQLitePath)
	if err != nil {
		slog.Error("sqlite open failed", "component", "apiserver", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// ---- Cycle event stream (optional, needs Redis) ----
	var hub *stream.Hub
	if cfg.RedisAddr != "" {
		reader, err := redisstore.NewReader(redisstore.WriterConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			slog.Warn("redis init failed, stream disabled", "component", "apiserver", "error", err)
		} else {
			defer reader.Close()
			hub = stream.NewHub()
			go hub.Run(ctx, reader.SubscribeCycles(ctx))
		}
	}

	srv := api.NewServer(cfg.APIAddr, store, hub)
	srv.Start()

	<-sigCh
	slog.Info("shutting down", "component", "apiserver")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Stop(shutdownCtx)
}
