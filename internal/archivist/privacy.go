package archivist

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/dbx"
	"github.com/dmitrijs2005/archivist/internal/privacy"
)

// SetConsent records an explicit opt-in or opt-out, replacing any earlier
// decision.
func (s *Service) SetConsent(ctx context.Context, userID string, consent bool) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", common.ErrorInvalidArgument)
	}
	if err := s.gate.Set(ctx, userID, consent); err != nil {
		return s.storageError("set_consent", err)
	}
	s.log.Info(ctx, "consent updated", "consent", consent)
	return nil
}

func (s *Service) CheckConsent(ctx context.Context, userID string) (privacy.ConsentState, error) {
	state, err := s.gate.Check(ctx, userID)
	if err != nil {
		return privacy.ConsentUnset, s.storageError("check_consent", err)
	}
	return state, nil
}

// ResetConsent forgets the decision of userID without touching the rest of
// their data.
func (s *Service) ResetConsent(ctx context.Context, userID string) error {
	if err := s.gate.Forget(ctx, userID); err != nil {
		return s.storageError("reset_consent", err)
	}
	return nil
}

// ErasureResult reports what DeleteUserData removed.
type ErasureResult struct {
	Highlights int64 `json:"highlights"`
}

// DeleteUserData erases every row that belongs to userID: archived
// highlights, points and the consent record, in one transaction.
func (s *Service) DeleteUserData(ctx context.Context, userID string) (ErasureResult, error) {
	if userID == "" {
		return ErasureResult{}, fmt.Errorf("%w: empty user id", common.ErrorInvalidArgument)
	}
	hashed := s.hasher.Hash(userID)

	var res ErasureResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		n, err := s.repomanager.Highlights(tx).DeleteByAuthor(ctx, hashed)
		if err != nil {
			return err
		}
		res.Highlights = n

		if err := s.repomanager.Points(tx).Delete(ctx, hashed); err != nil {
			return err
		}
		return s.repomanager.Consents(tx).Delete(ctx, hashed)
	})
	if err != nil {
		return ErasureResult{}, s.storageError("delete_user_data", err)
	}

	s.log.Info(ctx, "user data erased", "highlights", res.Highlights)
	return res, nil
}

// ClearResult counts the rows ClearAll removed per table.
type ClearResult struct {
	Highlights int64 `json:"highlights"`
	Points     int64 `json:"points"`
	Consents   int64 `json:"consents"`
}

// ClearAll empties the highlight archive, the points ledger and the consent
// table. The privacy salt is kept so later hashes stay linkable.
func (s *Service) ClearAll(ctx context.Context) (ClearResult, error) {
	var res ClearResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if res.Highlights, err = s.repomanager.Highlights(tx).Clear(ctx); err != nil {
			return err
		}
		if res.Points, err = s.repomanager.Points(tx).Clear(ctx); err != nil {
			return err
		}
		res.Consents, err = s.repomanager.Consents(tx).Clear(ctx)
		return err
	})
	if err != nil {
		return ClearResult{}, s.storageError("clear_all", err)
	}

	s.log.Warn(ctx, "archive cleared",
		"highlights", res.Highlights,
		"points", res.Points,
		"consents", res.Consents,
	)
	return res, nil
}
