// Package sqlite implements the timeframe store: one upsert-keyed table per
// timeframe plus the merged feature table, in a single SQLite file.
//
// The store is the only mutable state in the pipeline. Writes go through
// batch transactions with INSERT ... ON CONFLICT upserts so re-applying a
// fetch is idempotent and provider revisions of pending bars overwrite in
// place. The schema is additive-only: new indicator columns appear as NULL on
// historical rows until a recompute reaches them.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Config configures the SQLite store.
type Config struct {
	Path string // path to the database file, e.g. "data/nifty50_data.db"
}

// Store wraps the single shared database handle. Construct once at process
// start, close at shutdown.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// New opens the database with WAL mode, initializes the schema, and pins the
// pool to a single writer connection.
func New(cfg Config) (*Store, error) {
	db, err := open(cfg.Path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	slog.Info("opened database", "component", "sqlite", "path", cfg.Path)
	return &Store{db: db}, nil
}

// NewReader opens the database for concurrent read-only access (the
// dashboard/API process). It never writes and never runs migrations.
func NewReader(path string) (*Store, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	slog.Info("opened database read-only", "component", "sqlite", "path", path)
	return &Store{db: db}, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	return db, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// upsertSQL builds an INSERT ... ON CONFLICT(timestamp) DO UPDATE statement
// covering exactly the given columns. Columns outside the list are left
// untouched on conflict, which is what lets a raw OHLCV fetch land without
// nulling out indicator columns written by a later pass.
func upsertSQL(table string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	var sets []string
	for _, c := range cols {
		if c == "timestamp" {
			continue
		}
		sets = append(sets, c+"=excluded."+c)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(timestamp) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), placeholders, strings.Join(sets, ", "),
	)
}

// nullF converts a float column value for binding: NaN and ±Inf become NULL.
func nullF(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// nullS converts a string column value for binding: "" becomes NULL.
func nullS(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// scanF converts a nullable float back to the in-memory NaN convention.
func scanF(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// scanS converts a nullable string back to the in-memory "" convention.
func scanS(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
