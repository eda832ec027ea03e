package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrAlreadyResponded is the business-rule rejection raised when a user
	// responds to a post they already responded to. Kept separate from
	// ErrConflict so the client can show a specific, non-alarming message.
	ErrAlreadyResponded = errors.New("already responded")

	// ErrVersionConflict signals that a conditional write lost an
	// optimistic-concurrency race and may be retried.
	ErrVersionConflict = errors.New("version conflict")

	// ErrLocationRequired is returned when a proximity-filtered operation
	// is invoked without an origin location.
	ErrLocationRequired = errors.New("location required")

	// ErrMalformedCoordinates marks a single record whose stored coordinates
	// cannot be parsed. Batch operations skip such records instead of aborting.
	ErrMalformedCoordinates = errors.New("malformed coordinates")
)
