package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrMaxFailures is returned when the max failure limit is reached.
	ErrMaxFailures = errors.New("runner: max failures reached")

	// ErrInvalidFilter is returned when the case filter does not compile.
	ErrInvalidFilter = errors.New("runner: invalid filter")

	// ErrUnknownFormat is returned for an unrecognised output format.
	ErrUnknownFormat = errors.New("runner: unknown format")

	// Test errors for use in unit tests.
	errTestStop = errors.New("test: stop")
)
