// Package highlights is the archive of anonymized, scored messages.
package highlights

import (
	"context"
	"time"

	"github.com/dmitrijs2005/archivist/internal/models"
)

type Repository interface {
	// Insert stores h and returns the id assigned by the store.
	Insert(ctx context.Context, h *models.Highlight) (int64, error)
	// TopSince returns qualifying highlights created at or after since,
	// best sentiment first, then most reactions.
	TopSince(ctx context.Context, since time.Time, limit int) ([]models.Highlight, error)
	// All returns every archived row in id order.
	All(ctx context.Context) ([]models.Highlight, error)
	Count(ctx context.Context) (int64, error)
	// DeleteOlderThan removes rows created strictly before cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteByAuthor(ctx context.Context, hashedAuthorID string) (int64, error)
	Clear(ctx context.Context) (int64, error)
}
