package jobs

import "errors"

var (
	// ErrJobNotFound indicates the job does not exist or has expired.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidTotal is returned when a job is created with a non-positive
	// document count.
	ErrInvalidTotal = errors.New("total documents must be greater than 0")
)
