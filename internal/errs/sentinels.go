// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels across repo/service layers.
var (
	// ErrIncomplete indicates a builder was asked to build with required fields unset.
	ErrIncomplete = errors.New("incomplete")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRowsAffected indicates an update or delete matched no row.
	// It wraps ErrNotFound so callers that do not care about the difference can match either.
	ErrNoRowsAffected = fmt.Errorf("%w: no rows affected", ErrNotFound)

	// ErrConstraint indicates a foreign key, not-null or check constraint rejected a write.
	ErrConstraint = errors.New("constraint violation")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnavailable indicates the store could not be reached or the pool is exhausted.
	ErrUnavailable = errors.New("store unavailable")

	// ErrStore indicates any other backing-store failure.
	ErrStore = errors.New("store error")

	// ErrInvalid indicates malformed input rejected before reaching the store.
	ErrInvalid = errors.New("invalid")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated user lacks access to a resource.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
