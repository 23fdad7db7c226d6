package repositories

import (
	"errors"
	"fmt"
)

// Error is the concrete RepositoryError implementation shared by storage backends.
type Error struct {
	Op          string
	Err         error
	NotFound    bool
	Conflict    bool
	Unavailable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "repository error"
	}
	if e.Op == "" {
		return fmt.Sprintf("repository: %v", e.Err)
	}
	return fmt.Sprintf("repository: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports the missing-record category.
func (e *Error) IsNotFound() bool { return e != nil && e.NotFound }

// IsConflict reports the uniqueness/concurrency conflict category.
func (e *Error) IsConflict() bool { return e != nil && e.Conflict }

// IsUnavailable reports the backend-unavailable category.
func (e *Error) IsUnavailable() bool { return e != nil && e.Unavailable }

// NewNotFound builds a not-found repository error.
func NewNotFound(op string, err error) *Error {
	return &Error{Op: op, Err: err, NotFound: true}
}

// NewConflict builds a conflict repository error.
func NewConflict(op string, err error) *Error {
	return &Error{Op: op, Err: err, Conflict: true}
}

// NewUnavailable builds an unavailable repository error.
func NewUnavailable(op string, err error) *Error {
	return &Error{Op: op, Err: err, Unavailable: true}
}

func asRepositoryError(err error) (RepositoryError, bool) {
	var repoErr RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr, true
	}
	return nil, false
}
