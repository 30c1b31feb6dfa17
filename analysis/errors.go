package analysis

import "errors"

// Sentinel errors.
var (
	// ErrEmptyEdgeField is returned when an edge has an empty source, relationship or target.
	ErrEmptyEdgeField = errors.New("analysis: empty edge field")

	// ErrMalformedSchema is returned when a compact schema string cannot be parsed.
	ErrMalformedSchema = errors.New("analysis: malformed schema string")
)
