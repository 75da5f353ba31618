package service

import "errors"

var (
	// ErrEmptyMatrix is returned when a space is requested for a case without a usable data matrix.
	ErrEmptyMatrix = errors.New("data matrix is empty")
	// ErrNoProjections is returned when the builder is given no projection annotations.
	ErrNoProjections = errors.New("no projection annotations")
	// ErrMissingTable is returned when a table needed by a projection was not loaded.
	ErrMissingTable = errors.New("required table is missing")
	// ErrInvalidResourceKey is returned when an output key cannot be derived from a matrix key.
	ErrInvalidResourceKey = errors.New("invalid resource key")
	// ErrInvalidAnnotation is returned when a stored annotation does not match its declared type.
	ErrInvalidAnnotation = errors.New("invalid annotation")
)
