package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NotebookValidator/internal/config"
	"NotebookValidator/internal/domain"
	"NotebookValidator/internal/ports"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Store persists pipeline entities in SQLite or Postgres.
type Store struct {
	db      *sql.DB
	sb      sq.StatementBuilderType
	dialect string
}

var (
	_ ports.ListRepository     = (*Store)(nil)
	_ ports.PaperRepository    = (*Store)(nil)
	_ ports.NotebookRepository = (*Store)(nil)
	_ ports.TaskRepository     = (*Store)(nil)
	_ ports.AuditRepository    = (*Store)(nil)
)

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	var (
		db       *sql.DB
		err      error
		dialect  string
		lockPath string
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("dsn required for sqlite database")
		}
		dialect = DriverSQLite
		lockPath = cfg.DSN + ".lock"
		db, err = openSQLite(ctx, cfg.DSN)
	case DriverMemory:
		dialect = DriverSQLite
		db, err = openSQLite(ctx, ":memory:")
	case DriverPostgres:
		dialect = DriverPostgres
		db, err = openPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := MigrateUp(db, dialect, lockPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return NewFromDB(db, dialect), nil
}

// NewFromDB wraps an existing connection whose schema is already migrated.
func NewFromDB(db *sql.DB, dialect string) *Store {
	var placeholder sq.PlaceholderFormat = sq.Question
	if dialect == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &Store{
		db:      db,
		sb:      sq.StatementBuilder.PlaceholderFormat(placeholder),
		dialect: dialect,
	}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps per-connection pragmas in force and gives
	// :memory: databases one shared schema.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

func openPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required for postgres database")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) exec(ctx context.Context, builder sq.Sqlizer) (sql.Result, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) query(ctx context.Context, builder sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryContext(ctx, query, args...)
}

func (s *Store) queryRow(ctx context.Context, builder sq.Sqlizer) (*sql.Row, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.db.QueryRowContext(ctx, query, args...), nil
}

// expectRow turns an update that touched nothing into domain.ErrNotFound.
func expectRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}
