package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFiles embed.FS

// MigrateUp applies all pending migrations for the dialect. When lockPath is
// set, a file lock keeps concurrent processes from migrating the same file.
func MigrateUp(db *sql.DB, dialect, lockPath string) error {
	if lockPath != "" {
		lock := flock.New(lockPath)
		if err := lock.Lock(); err != nil {
			return fmt.Errorf("lock %s: %w", lockPath, err)
		}
		defer func() { _ = lock.Unlock() }()
	}

	m, release, err := newMigrate(db, dialect)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration left the schema dirty.
func SchemaVersion(db *sql.DB, dialect string) (uint, bool, error) {
	m, release, err := newMigrate(db, dialect)
	if err != nil {
		return 0, false, err
	}
	defer release()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// newMigrate builds a migrate instance over db. The instance is never closed
// because that would close db, which the caller owns; release frees what the
// instance holds instead.
func newMigrate(db *sql.DB, dialect string) (*migrate.Migrate, func(), error) {
	sourceDriver, err := iofs.New(migrationFiles, "migrations/"+dialect)
	if err != nil {
		return nil, nil, fmt.Errorf("create migration source: %w", err)
	}

	release := func() { _ = sourceDriver.Close() }

	var dbDriver database.Driver
	switch dialect {
	case DriverSQLite:
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DriverPostgres:
		ctx := context.Background()
		var conn *sql.Conn
		conn, err = db.Conn(ctx)
		if err != nil {
			break
		}
		release = func() {
			_ = sourceDriver.Close()
			_ = conn.Close()
		}
		dbDriver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
	default:
		err = fmt.Errorf("no migrations for dialect %s", dialect)
	}
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialect, dbDriver)
	if err != nil {
		release()
		return nil, nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, release, nil
}

// Version reports the schema version of the store.
func (s *Store) Version() (uint, bool, error) {
	return SchemaVersion(s.db, s.dialect)
}
