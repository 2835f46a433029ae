package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var dbTracer = otel.Tracer("fintrack.db")

// DB wraps sql.DB so repository queries are traced.
type DB struct {
	*sql.DB
}

// New opens a postgres connection pool and verifies it.
func New(connStr string) (*DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// QueryContext wraps sql.DB.QueryContext with tracing.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ctx, span := startQuerySpan(ctx, "db.Query", query)
	defer span.End()

	rows, err := db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with tracing. The span stays
// open until Scan, where sql.Row surfaces all errors.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow {
	ctx, span := startQuerySpan(ctx, "db.QueryRow", query)
	return &tracedRow{row: db.DB.QueryRowContext(ctx, query, args...), span: span}
}

// ExecContext wraps sql.DB.ExecContext with tracing.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, span := startQuerySpan(ctx, "db.Exec", query)
	defer span.End()

	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// WithinTx runs fn inside one database transaction under a named span.
// Any error from fn rolls the whole transaction back; commit errors are
// reported as the unit of work failing.
func (db *DB) WithinTx(ctx context.Context, name string, fn func(tx *sql.Tx) error) error {
	ctx, span := dbTracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
	))
	defer span.End()

	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			span.RecordError(rbErr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type tracedRow struct {
	row  *sql.Row
	span trace.Span
}

func (r *tracedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, err.Error())
		}
		r.span.End()
		r.span = nil
	}
	return err
}

func startQuerySpan(ctx context.Context, op, query string) (context.Context, trace.Span) {
	return dbTracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", sqlVerb(query)),
		attribute.String("db.statement", sanitizeQuery(query)),
	))
}

// sanitizeQuery strips quoted literals so traces never carry user data;
// parameterized $N placeholders are safe as-is.
func sanitizeQuery(q string) string {
	var b strings.Builder
	b.Grow(len(q))

	inLiteral := false
	for i := 0; i < len(q); i++ {
		if q[i] == '\'' {
			if inLiteral && i+1 < len(q) && q[i+1] == '\'' {
				i++ // escaped quote inside literal
				continue
			}
			if !inLiteral {
				b.WriteString("'?'")
			}
			inLiteral = !inLiteral
			continue
		}
		if !inLiteral {
			b.WriteByte(q[i])
		}
	}

	s := b.String()
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}

func sqlVerb(q string) string {
	q = strings.TrimSpace(q)
	if idx := strings.IndexByte(q, ' '); idx > 0 {
		return strings.ToUpper(q[:idx])
	}
	return strings.ToUpper(q)
}
