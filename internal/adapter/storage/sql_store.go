package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	_ "modernc.org/sqlite"

	"github.com/rl1809/warehouse/internal/config"
	"github.com/rl1809/warehouse/internal/core/domain"
	"github.com/rl1809/warehouse/internal/platform/observability"
	"github.com/rl1809/warehouse/internal/port"
)

var _ port.RecordStore = (*SQLStore)(nil)

// SQLStore executes parameterized statements against MySQL or SQLite. Each call
// checks out its own connection and returns it before returning.
type SQLStore struct {
	db     *sql.DB
	driver string
	tracer observability.Tracer
}

func NewSQLStore(db *sql.DB, driver string, tracer observability.Tracer) *SQLStore {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &SQLStore{db: db, driver: driver, tracer: tracer}
}

// Open connects to the configured backend and verifies it with a ping.
func Open(ctx context.Context, cfg config.StoreConfig, tracer observability.Tracer) (*SQLStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dsn, err := cfg.DataSourceName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	return NewSQLStore(db, cfg.Driver, tracer), nil
}

func (s *SQLStore) Driver() string {
	return s.driver
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) Exec(ctx context.Context, query string, args ...any) (port.ExecResult, error) {
	ctx, span := s.startSpan(ctx, "store.exec", query)
	defer span.End()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return port.ExecResult{}, fail(span, "acquire connection", err)
	}
	defer conn.Close()

	result, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return port.ExecResult{}, fail(span, "exec", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return port.ExecResult{}, fail(span, "rows affected", err)
	}
	// not every statement yields an insert id
	lastID, _ := result.LastInsertId()

	span.SetAttributes(attribute.Int64("db.rows_affected", affected))
	return port.ExecResult{RowsAffected: affected, LastInsertID: lastID}, nil
}

func (s *SQLStore) Query(ctx context.Context, query string, scan func(port.Row) error, args ...any) error {
	ctx, span := s.startSpan(ctx, "store.query", query)
	defer span.End()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fail(span, "acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fail(span, "query", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fail(span, "scan", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return fail(span, "iterate rows", err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", count))
	return nil
}

func (s *SQLStore) startSpan(ctx context.Context, name, query string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", s.driver),
		attribute.String("db.statement", query),
	)
	return ctx, span
}

func fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	return &domain.StoreError{Op: op, Cause: err}
}
