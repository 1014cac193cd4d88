package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file type no converter handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConverterUnavailable indicates no document converter is usable.
	// The conversion stage aborts before any work begins.
	ErrConverterUnavailable = errors.New("converter unavailable")

	// ErrGeneratorUnavailable indicates the text-generation service is
	// unreachable or the requested model is absent. Generator stages
	// abort before any work begins.
	ErrGeneratorUnavailable = errors.New("generator unavailable")

	// ErrNoRoots indicates a command that needs scan roots got none.
	ErrNoRoots = errors.New("no paths given")
)
