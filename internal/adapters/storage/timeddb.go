package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gymbios/internal/adapters/http/perf"
)

// SQLDB is what every store is built on. *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is used when no threshold is configured.
const DefaultSlowQueryMs = 50

// TimedDB times every statement, logs slow ones and feeds the perf collector.
// Collector rows are keyed by operation and table, e.g. "select member".
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	slow      time.Duration
}

// NewTimedDB wraps db. collector may be nil.
// POST: statements at or above slowQueryMs log slow_query at WARN (DefaultSlowQueryMs when <= 0)
func NewTimedDB(db *sql.DB, collector *perf.Collector, slowQueryMs int) *TimedDB {
	if slowQueryMs <= 0 {
		slowQueryMs = DefaultSlowQueryMs
	}
	return &TimedDB{db: db, collector: collector, slow: time.Duration(slowQueryMs) * time.Millisecond}
}

func (t *TimedDB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	ms := float64(elapsed.Microseconds()) / 1000.0
	key := statementKey(query)
	if elapsed >= t.slow {
		slog.Warn("slow_query", "statement", key, "query", firstLine(query), "duration_ms", ms)
	}
	if t.collector == nil {
		return
	}
	e := perf.Entry{Kind: perf.KindQuery, Path: key, DurationMs: ms, Timestamp: start}
	if err != nil && err != sql.ErrNoRows {
		e.StatusCode = 500
	}
	t.collector.Record(e)
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

// QueryRowContext times only the round trip; a scan error is not seen here.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start, row.Err())
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", start, err)
	return tx, err
}

// InTx runs fn in a transaction, committing on nil and rolling back otherwise.
func InTx(ctx context.Context, db SQLDB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

var tableRe = regexp.MustCompile(`(?i)\b(?:from|into|update|table)\s+(?:if\s+not\s+exists\s+)?([a-z_][a-z0-9_]*)`)

// statementKey reduces SQL to "<verb> <first table>", e.g. "update product".
func statementKey(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "empty"
	}
	verb := strings.ToLower(fields[0])
	if m := tableRe.FindStringSubmatch(query); m != nil {
		return verb + " " + strings.ToLower(m[1])
	}
	return verb
}

func firstLine(q string) string {
	const limit = 120
	q = strings.TrimSpace(q)
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		q = q[:i]
	}
	if len(q) > limit {
		q = q[:limit]
	}
	return q
}
