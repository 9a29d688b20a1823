// Package meta stores small key/value settings the archivist keeps next to
// its data, such as a generated privacy salt.
package meta

import "context"

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
}
