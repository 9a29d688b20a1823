package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/archivist/internal/config"
	"github.com/dmitrijs2005/archivist/internal/repositories/consents"
	"github.com/dmitrijs2005/archivist/internal/repositories/highlights"
	"github.com/dmitrijs2005/archivist/internal/repositories/meta"
	"github.com/dmitrijs2005/archivist/internal/repositories/points"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestNewRepositoryManager(t *testing.T) {
	for _, d := range []string{config.DriverSQLite, config.DriverPostgres} {
		m, err := NewRepositoryManager(d)
		require.NoError(t, err)
		assert.Equal(t, d, m.Dialect())
		var _ RepositoryManager = m
	}

	_, err := NewRepositoryManager("mysql")
	require.Error(t, err)
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	m, err := NewRepositoryManager(config.DriverSQLite)
	require.NoError(t, err)

	var _ highlights.Repository = m.Highlights(db)
	var _ points.Repository = m.Points(db)
	var _ consents.Repository = m.Consents(db)
	var _ meta.Repository = m.Meta(db)

	assert.NotNil(t, m.Highlights(db))
	assert.NotNil(t, m.Points(db))
	assert.NotNil(t, m.Consents(db))
	assert.NotNil(t, m.Meta(db))
}

func TestRunMigrations_UsesDialectDir(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	m, _ := NewRepositoryManager(config.DriverPostgres)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "postgres", gotDir)

	m, _ = NewRepositoryManager(config.DriverSQLite)
	require.NoError(t, m.RunMigrations(context.Background(), db))
	assert.Equal(t, "sqlite", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}

	m, _ := NewRepositoryManager(config.DriverSQLite)
	require.EqualError(t, m.RunMigrations(context.Background(), db), "boom")
}

func TestMissingTables_Mock(t *testing.T) {
	db, mock := newDB(t)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM highlights_anonymized$`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(0)))
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM user_points$`).
		WillReturnError(errors.New("no such table: user_points"))
	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM user_privacy$`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(2)))

	assert.Equal(t, []string{"user_points"}, MissingTables(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBootstrap_SQLite_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	db, m, err := Bootstrap(ctx, config.DriverSQLite, path)
	require.NoError(t, err)
	assert.Empty(t, MissingTables(ctx, db))

	var journal string
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journal))
	assert.Equal(t, "wal", journal)
	require.NoError(t, db.Close())

	db, _, err = Bootstrap(ctx, config.DriverSQLite, path)
	require.NoError(t, err, "second bootstrap must be a no-op")
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_%'`).Scan(&n))
	assert.Equal(t, 4, n)
	assert.Equal(t, config.DriverSQLite, m.Dialect())
}

func TestMissingTables_EmptyDatabase(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, Tables, MissingTables(ctx, db))
}

func TestBootstrap_Errors(t *testing.T) {
	_, _, err := Bootstrap(context.Background(), "mysql", "x")
	require.Error(t, err)

	_, _, err = Bootstrap(context.Background(), config.DriverSQLite, filepath.Join(t.TempDir(), "no", "such", "dir", "x.db"))
	require.Error(t, err)
}
