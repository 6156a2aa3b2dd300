package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks a malformed planning request or observation.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes which field of the input was rejected.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }
