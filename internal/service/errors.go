package service

import "errors"

var (
	ErrMissingFields     = errors.New("missing required fields")
	ErrInvalidIdentifier = errors.New("invalid user ID")
	ErrWeakPassword      = errors.New("password must be at least 8 characters long and include a number and a special character")
	ErrNoUpdateFields    = errors.New("no data provided for update")
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrHashPassword      = errors.New("failed to hash password")
)

// StoreError wraps a failure reported by the database. Error returns the driver message unchanged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
