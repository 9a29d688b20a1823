package meta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/dbx"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Get returns common.ErrorNotFound when key has never been written.
func (r *SQLRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT meta_value FROM archivist_meta WHERE meta_key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLRepository) Put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO archivist_meta (meta_key, meta_value) VALUES ($1, $2)
		ON CONFLICT(meta_key) DO UPDATE SET meta_value = excluded.meta_value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to put meta[%s]: %w", key, err)
	}
	return nil
}
