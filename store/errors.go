package store

import "errors"

var (
	// ErrNotFound is returned when a record doesn't exist: a lookup miss,
	// or the precondition of an Update on an absent key.
	ErrNotFound = errors.New("ripple: record not found")

	// ErrAlreadyExists is returned when attempting to create a record whose
	// key is already present. Expected under connect races; callers decide
	// whether to ignore it.
	ErrAlreadyExists = errors.New("ripple: record already exists")
)
