package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

// Open connects to the table store. For sqlite3 source is a file path, for
// pgx a DSN. SQLite gets a single connection so writes serialize in the
// pool instead of failing with SQLITE_BUSY.
func Open(ctx context.Context, driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver != config.DriverSQLite {
		return db, nil
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Bootstrap opens the store, runs migrations and returns the handle with a
// manager for its dialect.
func Bootstrap(ctx context.Context, driver, source string) (*sql.DB, *SQLRepositoryManager, error) {
	m, err := NewRepositoryManager(driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := Open(ctx, driver, source)
	if err != nil {
		return nil, nil, err
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, m, nil
}
