// Package api serves the stored bars and merged features over HTTP and
// streams update-cycle events over WebSocket.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"niftydata/internal/markethours"
	"niftydata/internal/model"
	"niftydata/internal/store/sqlite"
	"niftydata/internal/stream"
)

const defaultLimit = 200

// Server serves the read API.
type Server struct {
	store *sqlite.Store
	hub   *stream.Hub
	srv   *http.Server
}

// NewServer builds the API server. hub may be nil when Redis is unavailable;
// the /api/stream endpoint then rejects connections.
func NewServer(addr string, store *sqlite.Store, hub *stream.Hub) *Server {
	s := &Server{store: store, hub: hub}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/data", s.handleData)
	mux.HandleFunc("/api/merged", s.handleMerged)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/stream", s.handleStream)

	s.srv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("api server listening", "component", "api", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("api server error", "component", "api", "error", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

// handleData returns rows from one timeframe table, newest first.
// Query params: timeframe (required), start, end, limit.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	tf, err := model.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := parseQueryOpts(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.store.QueryTable(r.Context(), tf.Table(), opts)
	if err != nil {
		slog.Error("query failed", "component", "api", "table", tf.Table(), "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeSuccess(w, rows)
}

// handleMerged returns rows from the merged feature table, newest first.
func (s *Server) handleMerged(w http.ResponseWriter, r *http.Request) {
	opts, err := parseQueryOpts(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.store.QueryTable(r.Context(), model.MergedTable, opts)
	if err != nil {
		slog.Error("query failed", "component", "api", "table", model.MergedTable, "error", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeSuccess(w, rows)
}

// handleStatus reports server time in IST and market session state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now().In(markethours.IST)
	writeSuccess(w, map[string]any{
		"server_time":   now.Format(model.TimestampLayout),
		"market_open":   markethours.IsMarketOpen(now),
		"market_status": markethours.StatusString(now),
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "stream unavailable")
		return
	}
	s.hub.HandleWS(w, r)
}

func parseQueryOpts(r *http.Request) (sqlite.QueryOpts, error) {
	q := r.URL.Query()
	opts := sqlite.QueryOpts{
		Start: q.Get("start"),
		End:   q.Get("end"),
		Limit: defaultLimit,
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return opts, errInvalidLimit
		}
		opts.Limit = n
	}
	return opts, nil
}

var errInvalidLimit = &apiError{"limit must be a positive integer"}

type apiError struct{ msg string }

func (e *apiError) Error() string { return e.msg }

func writeSuccess(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "error",
		"message": msg,
	})
}
