package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound    = errors.New("resource not found")
	ErrRunNotFound = fmt.Errorf("%w: run", ErrNotFound)

	// Input errors
	ErrMissingColumn   = errors.New("missing required column")
	ErrInvalidEncoding = errors.New("invalid loss encoding")
	ErrInvalidValue    = errors.New("invalid cell value")
	ErrUnknownSource   = errors.New("unknown data source profile")

	// Statistical errors
	ErrEmptyGroup       = errors.New("group has no usable observations")
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrLengthMismatch   = errors.New("paired samples differ in length")
)
