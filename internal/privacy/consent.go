package privacy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/models"
	"github.com/jonboulle/clockwork"
)

// ConsentState is the tri-state opt-in decision of a user.
type ConsentState int

const (
	// ConsentUnset means the user was never asked.
	ConsentUnset ConsentState = iota
	ConsentGranted
	ConsentDenied
)

func (s ConsentState) String() string {
	switch s {
	case ConsentGranted:
		return "granted"
	case ConsentDenied:
		return "denied"
	default:
		return "unset"
	}
}

// Allowed reports whether analysis may run. Only an explicit grant counts.
func (s ConsentState) Allowed() bool {
	return s == ConsentGranted
}

func (s ConsentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DefaultRetentionDays is written into new consent records.
const DefaultRetentionDays = 30

// ConsentStore persists consent records keyed by hashed user id.
type ConsentStore interface {
	Get(ctx context.Context, userID string) (*models.ConsentRecord, error)
	Upsert(ctx context.Context, rec *models.ConsentRecord) error
	Delete(ctx context.Context, userID string) error
}

// Gate answers "may this user's messages be analyzed". It hashes raw ids
// before they reach the store.
type Gate struct {
	store  ConsentStore
	hasher *Hasher
	clock  clockwork.Clock
}

func NewGate(store ConsentStore, hasher *Hasher, clock clockwork.Clock) *Gate {
	return &Gate{store: store, hasher: hasher, clock: clock}
}

// Check returns the consent state of userID.
func (g *Gate) Check(ctx context.Context, userID string) (ConsentState, error) {
	rec, err := g.store.Get(ctx, g.hasher.Hash(userID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ConsentUnset, nil
		}
		return ConsentUnset, fmt.Errorf("check consent: %w", err)
	}
	if rec.Consent {
		return ConsentGranted, nil
	}
	return ConsentDenied, nil
}

// Set records an explicit decision, overwriting any earlier one.
func (g *Gate) Set(ctx context.Context, userID string, consent bool) error {
	rec := &models.ConsentRecord{
		UserID:        g.hasher.Hash(userID),
		Consent:       consent,
		RetentionDays: DefaultRetentionDays,
		UpdatedAt:     g.clock.Now().UTC(),
	}
	if err := g.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("set consent: %w", err)
	}
	return nil
}

// Forget removes the decision so the user is back to ConsentUnset.
func (g *Gate) Forget(ctx context.Context, userID string) error {
	if err := g.store.Delete(ctx, g.hasher.Hash(userID)); err != nil {
		return fmt.Errorf("forget consent: %w", err)
	}
	return nil
}
