package domain

import (
	"fmt"

	"github.com/containerd/errdefs"
)

// ValidationError reports a field that is outside its declared bounds.
type ValidationError struct {
	Field      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Constraint)
}

// Unwrap classifies the error as an invalid argument.
func (e *ValidationError) Unwrap() error {
	return errdefs.ErrInvalidArgument
}

// MissingFieldError reports a required field that is absent or blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing " + e.Field
}

// Unwrap classifies the error as an invalid argument.
func (e *MissingFieldError) Unwrap() error {
	return errdefs.ErrInvalidArgument
}
