// Package points is the per-user points ledger.
package points

import (
	"context"
	"time"

	"github.com/dmitrijs2005/archivist/internal/models"
)

type Repository interface {
	// Add credits delta points in one statement, creating the row on first
	// award, and returns the new totals.
	Add(ctx context.Context, userID string, delta int64, incrementHighlights bool, now time.Time) (*models.UserPoints, error)
	Get(ctx context.Context, userID string) (*models.UserPoints, error)
	// Top returns at most limit rows, highest points first.
	Top(ctx context.Context, limit int) ([]models.UserPoints, error)
	Delete(ctx context.Context, userID string) error
	Clear(ctx context.Context) (int64, error)
}
