package datalayer

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	sqliteMigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) the fallback store under dataDir.
// It is used when Postgres is not configured, typically with dataDir on a
// persistent volume mount.
func OpenSQLite(dataDir string) (*sql.DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	path := filepath.Join(dataDir, "manga.db")
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

// MigrateSQLite runs the shared migrations against the SQLite store.
// The SQL is kept portable between Postgres and SQLite.
func MigrateSQLite(db *sql.DB) (err error) {
	driver, derr := sqliteMigrate.WithInstance(db, &sqliteMigrate.Config{})
	if derr != nil {
		return derr
	}

	src, serr := iofs.New(migrationsFS, "migrations")
	if serr != nil {
		return serr
	}

	m, merr := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if merr != nil {
		return merr
	}

	// m.Close would close the caller's *sql.DB through the driver, so
	// only the source is released here.
	defer func() {
		err = errors.Join(err, src.Close())
	}()

	if upErr := m.Up(); upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return upErr
	}
	return nil
}
