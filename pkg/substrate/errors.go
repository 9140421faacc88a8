package substrate

import "errors"

// Error kinds shared by substrate implementations and their callers.
// Specific errors wrap one of these; test with errors.Is.
var (
	// ErrNotFound indicates a team, objective or viewer binding does not exist.
	// Callers treat it as a normal, recoverable outcome.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a team or objective name is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState indicates an operation was called out of order
	// (e.g. showing a board without a title, using an unregistered team).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument indicates a missing or malformed argument.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
