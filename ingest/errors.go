package ingest

import "errors"

var (
	// ErrExtraction indicates text could not be extracted from the file.
	ErrExtraction = errors.New("text extraction failed")

	// ErrUnknownMode indicates an unrecognized query mode.
	ErrUnknownMode = errors.New("unknown query mode")

	// ErrEmptyBatch is returned when a batch contains no documents.
	ErrEmptyBatch = errors.New("batch contains no documents")
)
