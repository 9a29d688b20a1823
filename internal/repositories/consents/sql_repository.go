package consents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/dbx"
	"github.com/dmitrijs2005/archivist/internal/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Get returns common.ErrorNotFound when the user never decided.
func (r *SQLRepository) Get(ctx context.Context, userID string) (*models.ConsentRecord, error) {
	query := `SELECT user_id, consent, data_retention_days, updated_at FROM user_privacy WHERE user_id = $1`

	rec := &models.ConsentRecord{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&rec.UserID, &rec.Consent, &rec.RetentionDays, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consent: %w", err)
	}
	return rec, nil
}

// Upsert overwrites any earlier decision of the same user.
func (r *SQLRepository) Upsert(ctx context.Context, rec *models.ConsentRecord) error {
	query := `
		INSERT INTO user_privacy (user_id, consent, data_retention_days, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT(user_id) DO UPDATE SET
			consent = excluded.consent,
			data_retention_days = excluded.data_retention_days,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, rec.UserID, rec.Consent, rec.RetentionDays, rec.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert consent: %w", err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_privacy WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete consent: %w", err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_privacy`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear consents: %w", err)
	}
	return res.RowsAffected()
}
