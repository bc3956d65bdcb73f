package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInvalidInput covers malformed or empty observation data, wrong
	// shapes and missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericDegenerate covers singular matrices, zero pivots and zero-norm
	// vectors met during normalization.
	ErrNumericDegenerate = errors.New("numerically degenerate")

	// ErrNonConvergence marks an iteration that exhausted its budget. It is
	// never fatal: results carry a flag instead.
	ErrNonConvergence = errors.New("iteration did not converge")

	// Input shape errors
	ErrEmptyObservations = fmt.Errorf("%w: observations are empty", ErrInvalidInput)
	ErrMalformedPair     = fmt.Errorf("%w: observation must be an [origin, destination] pair", ErrInvalidInput)
	ErrShapeMismatch     = fmt.Errorf("%w: matrix shape does not match states", ErrInvalidInput)
	ErrMissingField      = fmt.Errorf("%w: missing required field", ErrInvalidInput)
)

// NewInvalidInputError builds an InvalidInput error naming the offending field.
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// NewDegenerateError builds a NumericDegenerate error for an operation.
func NewDegenerateError(op string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrNumericDegenerate, op, reason)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsNumericDegenerate(err error) bool {
	return errors.Is(err, ErrNumericDegenerate)
}

func IsNonConvergence(err error) bool {
	return errors.Is(err, ErrNonConvergence)
}
