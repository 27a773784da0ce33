package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Reader subscribes to cycle events published by the updater. The API server
// uses it to feed websocket clients.
type Reader struct {
	client *goredis.Client
}

// NewReader creates a Redis reader and pings the server.
func NewReader(cfg WriterConfig) (*Reader, error) {
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
	return &Reader{client: client}, nil
}

// Client returns the underlying Redis client for health checks.
func (r *Reader) Client() *goredis.Client { return r.client }

// SubscribeCycles subscribes to CycleChannel and delivers raw JSON payloads
// on the returned channel until ctx is cancelled.
func (r *Reader) SubscribeCycles(ctx context.Context) <-chan []byte {
	out := make(chan []byte, 16)
	sub := r.client.Subscribe(ctx, CycleChannel)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					// drop when the consumer lags; these are snapshots
				}
			}
		}
	}()
	return out
}

// LatestBar returns the cached latest-bar JSON for a timeframe table key,
// or nil when absent.
func (r *Reader) LatestBar(ctx context.Context, tf string) ([]byte, error) {
	val, err := r.client.Get(ctx, "bar:"+tf+":latest").Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Close closes the Redis client.
func (r *Reader) Close() error { return r.client.Close() }
