package embed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrBackend wraps embedding backend failures that survived all retries.
	ErrBackend = errors.New("embedding backend failure")

	// ErrDimensionMismatch is returned when the backend produces a vector
	// whose length differs from the configured dimension. This signals a
	// model/config mismatch and is never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
