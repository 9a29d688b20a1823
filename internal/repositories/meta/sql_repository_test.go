package meta

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(db), mock
}

const (
	getQ = `(?s)^SELECT\s+meta_value\s+FROM\s+archivist_meta\s+WHERE\s+meta_key\s*=\s*\$1$`
	putQ = `(?s)INSERT\s+INTO\s+archivist_meta\s*\(meta_key,\s*meta_value\)\s+VALUES\s*\(\$1,\s*\$2\)\s+ON\s+CONFLICT\(meta_key\)\s+DO\s+UPDATE`
)

func TestGet_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).WithArgs("privacy_salt").
		WillReturnRows(sqlmock.NewRows([]string{"meta_value"}).AddRow("abc"))

	v, err := repo.Get(context.Background(), "privacy_salt")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).WithArgs("k").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "k")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(getQ).WithArgs("k").WillReturnError(errors.New("db down"))

	_, err := repo.Get(context.Background(), "k")
	require.ErrorContains(t, err, "failed to get meta[k]: db down")
}

func TestPut(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(putQ).WithArgs("k", "v").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Put(context.Background(), "k", "v"))

	mock.ExpectExec(putQ).WithArgs("k", "v").WillReturnError(errors.New("locked"))
	require.ErrorContains(t, repo.Put(context.Background(), "k", "v"), "failed to put meta[k]")

	require.NoError(t, mock.ExpectationsWereMet())
}
