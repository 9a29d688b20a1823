// Package common defines sentinel errors shared by the archivist layers.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal        = errors.New("internal error")
	ErrorInvalidArgument = errors.New("invalid argument")
	ErrorUnauthorized    = errors.New("unauthorized")

	// Startup errors.
	ErrorInvalidConfig = errors.New("invalid configuration")
)
