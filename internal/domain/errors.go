package domain

import "errors"

// Error taxonomy for the job workflow. Services wrap these with context via
// fmt.Errorf("...: %w", Err...) and handlers translate them to HTTP status
// codes with errors.Is. Every failure leaves the store unchanged.
var (
	// ErrNotFound means an id referenced a nonexistent entity.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means the requested status change is not
	// permitted from the job's current state.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnauthorized means the actor lacks the role or ownership required
	// for the action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation means the input was malformed, e.g. missing required
	// job fields.
	ErrValidation = errors.New("validation failed")
)
