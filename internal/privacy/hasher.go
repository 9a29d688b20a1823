// Package privacy holds the identity hasher and the opt-in consent gate.
package privacy

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/archivist/internal/common"
	"github.com/dmitrijs2005/archivist/internal/shared"
)

// HashLength is the number of hex characters kept from the digest.
const HashLength = 16

// SaltMetaKey is the meta key under which a generated salt is persisted.
const SaltMetaKey = "privacy_salt"

const generatedSaltBytes = 32

// Hasher turns external user ids into stable pseudonyms.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher for salt. An empty salt is rejected because it
// would make pseudonyms trivially reversible by dictionary.
func NewHasher(salt string) (*Hasher, error) {
	if salt == "" {
		return nil, fmt.Errorf("%w: empty privacy salt", common.ErrorInvalidConfig)
	}
	return &Hasher{salt: salt}, nil
}

// Hash returns the first HashLength hex characters of SHA-256(id + salt).
func (h *Hasher) Hash(userID string) string {
	sum := sha256.Sum256([]byte(userID + h.salt))
	return hex.EncodeToString(sum[:])[:HashLength]
}

// MetaStore is the key/value storage a generated salt is kept in.
type MetaStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}

// ResolveSalt picks the process salt. A configured salt always wins and is
// never written to storage. Otherwise a salt persisted by an earlier run is
// reused, and on first start a random one is generated and stored.
// The boolean reports whether a new salt was generated.
func ResolveSalt(ctx context.Context, configured string, store MetaStore) (string, bool, error) {
	if configured != "" {
		return configured, false, nil
	}

	salt, err := store.Get(ctx, SaltMetaKey)
	switch {
	case err == nil && salt != "":
		return salt, false, nil
	case err != nil && !errors.Is(err, common.ErrorNotFound):
		return "", false, fmt.Errorf("load salt: %w", err)
	}

	salt, err = shared.MakeRandHexString(generatedSaltBytes)
	if err != nil {
		return "", false, fmt.Errorf("generate salt: %w", err)
	}
	if err := store.Put(ctx, SaltMetaKey, salt); err != nil {
		return "", false, fmt.Errorf("store salt: %w", err)
	}
	return salt, true, nil
}
