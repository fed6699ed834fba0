package domain

import "errors"

// Sentinel errors for expected business-rule failures. Services return these
// (possibly wrapped); controllers map them to HTTP status codes. Anything
// else is treated as an unexpected storage or connectivity fault.
var (
	// ErrUnauthorized means no verified identity was presented.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the identity is verified but lacks the role or
	// ownership required for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the referenced invitation, group, or host does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotUnavailable means the (date, guest group) slot is already claimed
	// by a non-rejected invitation or the group declared the date unavailable.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrDuplicateHostBooking means the host already holds a non-rejected
	// invitation on that date.
	ErrDuplicateHostBooking = errors.New("host already booked on this date")

	// ErrInvalidState means the invitation is not in the status the requested
	// transition requires.
	ErrInvalidState = errors.New("invalid invitation state")

	// ErrConstraintViolation means the store reported a uniqueness conflict
	// that does not map to a more specific booking error.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidInput means the request carried malformed or missing fields.
	ErrInvalidInput = errors.New("invalid input")
)
