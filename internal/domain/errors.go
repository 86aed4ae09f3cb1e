package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common search failures.
var (
	// ErrSuperseded is the cancellation cause of a resolution whose boundary
	// was re-keyed by a newer request from the same client.
	ErrSuperseded = errors.New("resolution superseded by a newer query")

	// ErrInvalidCatalog is returned when a catalog file fails to parse or validate.
	ErrInvalidCatalog = errors.New("invalid image catalog")

	// ErrKeyMismatch is returned when a boundary fetch carries a key that does
	// not belong to its query.
	ErrKeyMismatch = errors.New("boundary key does not match query")

	// ErrQueryTooLong is returned for queries above MaxQueryLength characters.
	ErrQueryTooLong = errors.New("query too long")
)
