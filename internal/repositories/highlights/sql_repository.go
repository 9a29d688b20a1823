package highlights

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/archivist/internal/dbx"
	"github.com/dmitrijs2005/archivist/internal/models"
)

const columns = `id, hashed_author_id, channel_type, anonymized_content, sentiment_score, reaction_count, is_highlight, created_at`

type SQLRepository struct {
	db dbx.DBTX
}

func NewRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Insert(ctx context.Context, h *models.Highlight) (int64, error) {
	query := `
		INSERT INTO highlights_anonymized
			(hashed_author_id, channel_type, anonymized_content, sentiment_score, reaction_count, is_highlight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		h.HashedAuthorID, h.ChannelType, h.AnonymizedContent, h.SentimentScore,
		h.ReactionCount, h.IsHighlight, h.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert highlight: %w", err)
	}
	h.ID = id
	return id, nil
}

func (r *SQLRepository) TopSince(ctx context.Context, since time.Time, limit int) ([]models.Highlight, error) {
	query := `SELECT ` + columns + ` FROM highlights_anonymized
		WHERE created_at >= $1 AND is_highlight = $2
		ORDER BY sentiment_score DESC, reaction_count DESC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, since.UTC(), true, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select top highlights: %w", err)
	}
	return scanAll(rows)
}

func (r *SQLRepository) All(ctx context.Context) ([]models.Highlight, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM highlights_anonymized ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select highlights: %w", err)
	}
	return scanAll(rows)
}

func (r *SQLRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM highlights_anonymized`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count highlights: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM highlights_anonymized WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old highlights: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) DeleteByAuthor(ctx context.Context, hashedAuthorID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM highlights_anonymized WHERE hashed_author_id = $1`, hashedAuthorID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete author highlights: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM highlights_anonymized`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear highlights: %w", err)
	}
	return res.RowsAffected()
}

func scanAll(rows *sql.Rows) ([]models.Highlight, error) {
	defer rows.Close()

	result := []models.Highlight{}
	for rows.Next() {
		var h models.Highlight
		err := rows.Scan(&h.ID, &h.HashedAuthorID, &h.ChannelType, &h.AnonymizedContent,
			&h.SentimentScore, &h.ReactionCount, &h.IsHighlight, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan highlight row: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate highlight rows: %w", err)
	}
	return result, nil
}
