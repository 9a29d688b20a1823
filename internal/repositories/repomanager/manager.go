// Package repomanager opens the table store, applies the embedded goose
// migrations for its dialect and vends repositories bound to a DBTX.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/archivist/internal/config"
	"github.com/dmitrijs2005/archivist/internal/dbx"
	"github.com/dmitrijs2005/archivist/internal/migrations"
	"github.com/dmitrijs2005/archivist/internal/repositories/consents"
	"github.com/dmitrijs2005/archivist/internal/repositories/highlights"
	"github.com/dmitrijs2005/archivist/internal/repositories/meta"
	"github.com/dmitrijs2005/archivist/internal/repositories/points"
	"github.com/pressly/goose/v3"
)

// Tables are the tables the archivist cannot work without.
var Tables = []string{"highlights_anonymized", "user_points", "user_privacy"}

type RepositoryManager interface {
	Dialect() string
	RunMigrations(ctx context.Context, db *sql.DB) error
	Highlights(db dbx.DBTX) highlights.Repository
	Points(db dbx.DBTX) points.Repository
	Consents(db dbx.DBTX) consents.Repository
	Meta(db dbx.DBTX) meta.Repository
}

// SQLRepositoryManager serves both SQLite and PostgreSQL; the repositories
// use one SQL text for the two dialects.
type SQLRepositoryManager struct {
	dialect string
}

// NewRepositoryManager accepts "sqlite3" or "pgx".
func NewRepositoryManager(dialect string) (*SQLRepositoryManager, error) {
	switch dialect {
	case config.DriverSQLite, config.DriverPostgres:
		return &SQLRepositoryManager{dialect: dialect}, nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", dialect)
}

func (m *SQLRepositoryManager) Dialect() string { return m.dialect }

func (m *SQLRepositoryManager) Highlights(db dbx.DBTX) highlights.Repository {
	return highlights.NewRepository(db)
}

func (m *SQLRepositoryManager) Points(db dbx.DBTX) points.Repository {
	return points.NewRepository(db)
}

func (m *SQLRepositoryManager) Consents(db dbx.DBTX) consents.Repository {
	return consents.NewRepository(db)
}

func (m *SQLRepositoryManager) Meta(db dbx.DBTX) meta.Repository {
	return meta.NewRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// RunMigrations applies every pending migration of the manager's dialect.
// Running it on an up-to-date schema is a no-op.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, migrations.Dir(m.dialect))
}

// MissingTables probes each required table and returns those that cannot
// be queried. The probe is plain SQL so it works on every dialect.
func MissingTables(ctx context.Context, db dbx.DBTX) []string {
	var missing []string
	for _, t := range Tables {
		var n int64
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t).Scan(&n); err != nil {
			missing = append(missing, t)
		}
	}
	return missing
}
