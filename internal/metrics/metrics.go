// Package metrics exposes Prometheus instrumentation and a health endpoint
// for the update pipeline.
package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the updater.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	CycleDur       prometheus.Histogram
	FetchErrors    *prometheus.CounterVec // labels: timeframe
	StoreErrors    *prometheus.CounterVec // labels: timeframe
	BarsUpserted   *prometheus.CounterVec // labels: timeframe
	ProcessErrors  prometheus.Counter
	ComputeDur     prometheus.Histogram
	SQLiteCommit   prometheus.Histogram
	MergedRows     prometheus.Counter
	MarketState    prometheus.Gauge // 0=closed, 1=open
	LastCycleUnix  prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "updater_cycles_total",
			Help: "Total update cycles completed",
		}),
		CycleDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "updater_cycle_duration_seconds",
			Help:    "End-to-end update cycle latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "updater_fetch_errors_total",
			Help: "Provider fetch failures or empty responses (by timeframe)",
		}, []string{"timeframe"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "updater_store_errors_total",
			Help: "Bar upsert failures (by timeframe)",
		}, []string{"timeframe"}),
		BarsUpserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "updater_bars_upserted_total",
			Help: "Bars written to the store (by timeframe)",
		}, []string{"timeframe"}),
		ProcessErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "updater_process_errors_total",
			Help: "Indicator/label/merge stage failures",
		}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "updater_indicator_compute_duration_seconds",
			Help:    "Indicator and label recompute latency per cycle",
			Buckets: prometheus.DefBuckets,
		}),
		SQLiteCommit: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "updater_sqlite_commit_duration_seconds",
			Help:    "SQLite batch commit latency",
			Buckets: prometheus.DefBuckets,
		}),
		MergedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "updater_merged_rows_total",
			Help: "Merged feature rows re-derived",
		}),
		MarketState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updater_market_state",
			Help: "Market session state (0=closed, 1=open)",
		}),
		LastCycleUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "updater_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDur,
		m.FetchErrors,
		m.StoreErrors,
		m.BarsUpserted,
		m.ProcessErrors,
		m.ComputeDur,
		m.SQLiteCommit,
		m.MergedRows,
		m.MarketState,
		m.LastCycleUnix,
	)

	return m
}

// HealthStatus represents the updater's health.
type HealthStatus struct {
	mu sync.RWMutex

	SQLiteOK       bool
	RedisConnected bool
	MarketOpen     bool
	LastCycleAt    time.Time
	LastCycleErr   string

	SQLiteLatencyMs float64
	RedisLatencyMs  float64
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetSQLiteOK(v bool) {
	h.mu.Lock()
	h.SQLiteOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetMarketOpen(v bool) {
	h.mu.Lock()
	h.MarketOpen = v
	h.mu.Unlock()
}

// SetLastCycle records the completion time and outcome of the latest cycle.
func (h *HealthStatus) SetLastCycle(t time.Time, errMsg string) {
	h.mu.Lock()
	h.LastCycleAt = t
	h.LastCycleErr = errMsg
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks until ctx is done.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SQLiteOK {
		overallStatus = "unhealthy"
		httpCode = http.StatusServiceUnavailable
	}

	lastCycle := ""
	if !h.LastCycleAt.IsZero() {
		lastCycle = h.LastCycleAt.Format(time.RFC3339)
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		SQLiteOK        bool    `json:"sqlite_ok"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		MarketOpen      bool    `json:"market_open"`
		LastCycleAt     string  `json:"last_cycle_at"`
		LastCycleError  string  `json:"last_cycle_error,omitempty"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		MarketOpen:      h.MarketOpen,
		LastCycleAt:     lastCycle,
		LastCycleError:  h.LastCycleErr,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("metrics server listening", "component", "metrics", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("metrics server error", "component", "metrics", "error", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
