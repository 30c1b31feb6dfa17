package relcheck

import "errors"

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .relcheck.yaml is found.
	ErrConfigNotFound = errors.New("relcheck: no .relcheck.yaml found")

	// ErrUnknownSource is returned when an unknown schema source is requested.
	ErrUnknownSource = errors.New("relcheck: unknown schema source")

	// ErrNoSchema is returned when no schema file or edges are configured.
	ErrNoSchema = errors.New("relcheck: no schema configured")

	// ErrUnknownRewriteMode is returned for an unrecognised rewrite mode name.
	ErrUnknownRewriteMode = errors.New("relcheck: unknown rewrite mode")
)

// Match failures. Every failed Outcome unwraps to exactly one of these.
var (
	ErrUnknownRelationship = errors.New("no relationship type is known to the schema")
	ErrUnknownClass        = errors.New("no node label is known to the schema")
	ErrAmbiguousDirection  = errors.New("relationship has arrows in both directions")
	ErrNoSchemaMatch       = errors.New("pattern matches the schema in neither direction")
)
