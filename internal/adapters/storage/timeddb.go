package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sportsday/internal/adapters/http/perf"
)

// SQLDB is the subset of *sql.DB the registration stores use.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is the latency above which a statement logs at WARN.
const DefaultSlowQuery = 50 * time.Millisecond

var dbTracer = otel.Tracer("sportsday/internal/adapters/storage")

// TimedDB instruments every statement run through it: a child span named
// after the SQL verb, a slog line (WARN when slow) and a perf entry.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	slow      time.Duration
}

// TimedOption configures a TimedDB.
type TimedOption func(*TimedDB)

// WithCollector records statement durations into c.
func WithCollector(c *perf.Collector) TimedOption {
	return func(t *TimedDB) { t.collector = c }
}

// WithSlowQuery sets the slow-statement threshold. Non-positive values keep
// DefaultSlowQuery.
func WithSlowQuery(d time.Duration) TimedOption {
	return func(t *TimedDB) {
		if d > 0 {
			t.slow = d
		}
	}
}

// NewTimedDB wraps db.
// PRE: db is an open connection pool
// POST: Returns a TimedDB; Close closes db
func NewTimedDB(db *sql.DB, opts ...TimedOption) *TimedDB {
	t := &TimedDB{db: db, slow: DefaultSlowQuery}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ExecContext runs a statement that returns no rows.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, done := t.begin(ctx, "exec", query)
	res, err := t.db.ExecContext(ctx, query, args...)
	done(err)
	return res, err
}

// QueryContext runs a statement that returns rows.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, done := t.begin(ctx, "query", query)
	rows, err := t.db.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext runs a single-row query. Its error only surfaces on Scan,
// so the entry is always recorded as a success.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	ctx, done := t.begin(ctx, "query_row", query)
	row := t.db.QueryRowContext(ctx, query, args...)
	done(nil)
	return row
}

// Close closes the underlying pool.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// begin opens the statement span and returns the func that ends it.
// The recorded op is "<method>:<VERB>", e.g. "query_row:SELECT".
func (t *TimedDB) begin(ctx context.Context, method, query string) (context.Context, func(error)) {
	verb := statementVerb(query)
	op := method + ":" + verb
	ctx, span := dbTracer.Start(ctx, "db."+strings.ToLower(verb),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.operation", verb)),
	)
	start := time.Now()

	return ctx, func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, op)
		}
		span.End()
		t.observe(op, start, elapsed, err)
	}
}

func (t *TimedDB) observe(op string, start time.Time, elapsed time.Duration, err error) {
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	switch {
	case err != nil:
		slog.Debug("query_failed", "op", op, "duration_ms", durationMs, "error", err)
	case elapsed >= t.slow:
		slog.Warn("slow_query", "op", op, "duration_ms", durationMs)
	default:
		slog.Debug("query", "op", op, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       op,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// statementVerb returns the leading SQL keyword, upper-cased.
func statementVerb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
