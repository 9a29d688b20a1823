// Package consents persists the opt-in decision of each hashed user in the
// user_privacy table.
package consents

import (
	"context"

	"github.com/dmitrijs2005/archivist/internal/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.ConsentRecord, error)
	Upsert(ctx context.Context, rec *models.ConsentRecord) error
	Delete(ctx context.Context, userID string) error
	Clear(ctx context.Context) (int64, error)
}
