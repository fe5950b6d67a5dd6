package progress

import "errors"

var (
	// ErrNotFound means a referenced roadmap, module or task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied means the roadmap belongs to someone else.
	ErrAccessDenied = errors.New("access denied")
	// ErrConflictingUpdate is returned when an optimistic version check loses a race.
	ErrConflictingUpdate = errors.New("conflicting concurrent update")
	// ErrStorageFailure wraps persistence errors surfaced to callers.
	ErrStorageFailure = errors.New("storage failure")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
