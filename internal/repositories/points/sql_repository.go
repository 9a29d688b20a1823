package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// Add accumulates in the database rather than in Go, so two concurrent
// awards for the same user cannot overwrite each other.
func (r *SQLRepository) Add(ctx context.Context, userID string, delta int64, incrementHighlights bool, now time.Time) (*models.UserPoints, error) {
	query := `
		INSERT INTO user_points (user_id, points, highlights_created, votes_cast, last_updated)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT(user_id) DO UPDATE SET
			points = user_points.points + excluded.points,
			highlights_created = user_points.highlights_created + excluded.highlights_created,
			last_updated = excluded.last_updated
		RETURNING user_id, points, highlights_created, votes_cast
	`
	var highlights int64
	if incrementHighlights {
		highlights = 1
	}

	p := &models.UserPoints{LastUpdated: now.UTC()}
	err := r.db.QueryRowContext(ctx, query, userID, delta, highlights, p.LastUpdated).
		Scan(&p.UserID, &p.Points, &p.HighlightsCreated, &p.VotesCast)
	if err != nil {
		return nil, fmt.Errorf("failed to add points: %w", err)
	}
	return p, nil
}

// Get returns common.ErrorNotFound when the user has never been awarded.
func (r *SQLRepository) Get(ctx context.Context, userID string) (*models.UserPoints, error) {
	query := `SELECT user_id, points, highlights_created, votes_cast, last_updated FROM user_points WHERE user_id = $1`

	p := &models.UserPoints{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&p.UserID, &p.Points, &p.HighlightsCreated, &p.VotesCast, &p.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get points: %w", err)
	}
	return p, nil
}

func (r *SQLRepository) Top(ctx context.Context, limit int) ([]models.UserPoints, error) {
	query := `SELECT user_id, points, highlights_created, votes_cast, last_updated FROM user_points
		ORDER BY points DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select leaderboard: %w", err)
	}
	defer rows.Close()

	result := []models.UserPoints{}
	for rows.Next() {
		var p models.UserPoints
		if err := rows.Scan(&p.UserID, &p.Points, &p.HighlightsCreated, &p.VotesCast, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan points row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points rows: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_points WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_points`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear points: %w", err)
	}
	return res.RowsAffected()
}
