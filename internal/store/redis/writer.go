// Package redis caches the latest bar per timeframe and fans update-cycle
// summaries out to subscribers over pub/sub. The cache is best-effort: the
// pipeline keeps running when Redis is down, SQLite stays the source of truth.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"niftydata/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	// CycleChannel carries one JSON CycleEvent per completed update cycle.
	CycleChannel = "pub:cycle"

	defaultLatestTTL = 30 * time.Minute
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// CycleEvent is the pub/sub payload published after every update cycle.
type CycleEvent struct {
	At         string           `json:"at"` // IST timestamp, "2006-01-02 15:04:05"
	MarketOpen bool             `json:"market_open"`
	Bars       map[string]int   `json:"bars"`   // timeframe -> bars upserted
	Errors     map[string]string `json:"errors,omitempty"` // timeframe -> fetch/store error
	Merged     int              `json:"merged"` // merged feature rows rewritten
}

// Writer caches latest bars and publishes cycle events.
type Writer struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis connected", "component", "redis", "addr", cfg.Addr)
	return &Writer{client: client}, nil
}

// SetLatestBar caches the newest bar for a timeframe under
// bar:<timeframe>:latest with a TTL. Nil receiver is a no-op so callers can
// run without Redis.
func (w *Writer) SetLatestBar(ctx context.Context, tf model.Timeframe, bar model.Bar) {
	if w == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Timestamp string  `json:"timestamp"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Close     float64 `json:"close"`
		Volume    int64   `json:"volume"`
	}{
		Timestamp: bar.Timestamp(),
		Open:      bar.Open,
		High:      bar.High,
		Low:       bar.Low,
		Close:     bar.Close,
		Volume:    bar.Volume,
	})
	if err != nil {
		return
	}
	key := "bar:" + string(tf) + ":latest"
	if err := w.client.Set(ctx, key, payload, defaultLatestTTL).Err(); err != nil {
		slog.Warn("redis set latest bar failed", "component", "redis", "timeframe", tf, "error", err)
	}
}

// PublishCycle publishes a cycle summary on CycleChannel. Nil receiver is a
// no-op.
func (w *Writer) PublishCycle(ctx context.Context, ev CycleEvent) {
	if w == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := w.client.Publish(ctx, CycleChannel, payload).Err(); err != nil {
		slog.Warn("redis publish cycle failed", "component", "redis", "error", err)
	}
}

// Close closes the Redis client.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	return w.client.Close()
}
