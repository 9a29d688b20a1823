package archivist

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/dbx"
	"github.com/dmitrijs2005/archivist/internal/metrics"
	"github.com/dmitrijs2005/archivist/internal/models"
)

// DefaultLeaderboardLimit applies when a caller asks for no limit.
const DefaultLeaderboardLimit = 10

type PointsOptions struct {
	IncrementHighlights bool
}

// AddPoints credits delta points to userID. Points never decrease, so a
// negative delta is rejected.
func (s *Service) AddPoints(ctx context.Context, userID string, delta int64, opts PointsOptions) (*models.UserPoints, error) {
	if delta < 0 {
		return nil, fmt.Errorf("%w: negative points delta %d", common.ErrorInvalidArgument, delta)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", common.ErrorInvalidArgument)
	}

	hashed := s.hasher.Hash(userID)
	now := s.clock.Now()

	var result *models.UserPoints
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, err := s.repomanager.Points(tx).Add(ctx, hashed, delta, opts.IncrementHighlights, now)
		if err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, s.storageError("add_points", err)
	}

	metrics.PointsAwardedTotal.Add(float64(delta))
	return result, nil
}

// GetUserPoints returns the totals of userID, all zero when the user has
// never been awarded.
func (s *Service) GetUserPoints(ctx context.Context, userID string) (*models.UserPoints, error) {
	hashed := s.hasher.Hash(userID)

	p, err := s.repomanager.Points(s.db).Get(ctx, hashed)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.UserPoints{UserID: hashed}, nil
	}
	if err != nil {
		return nil, s.storageError("get_points", err)
	}
	return p, nil
}

// GetLeaderboard returns at most limit users ordered by points, highest
// first. Ties keep the order of the store.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]models.UserPoints, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	rows, err := s.repomanager.Points(s.db).Top(ctx, limit)
	if err != nil {
		return nil, s.storageError("leaderboard", err)
	}
	return rows, nil
}
