package chunk

import "errors"

var (
	// ErrUnknownStrategy is returned by New for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// ErrInvalidChunkSize is returned when the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("chunk size must be greater than 0")

	// ErrInvalidOverlap is returned when the overlap is negative or does not
	// leave the window room to advance.
	ErrInvalidOverlap = errors.New("chunk overlap must be non-negative and smaller than chunk size")

	// ErrSplitterRequired is returned when the semantic strategy is requested
	// without a split signal.
	ErrSplitterRequired = errors.New("semantic strategy requires a splitter")
)
