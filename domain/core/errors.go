package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrInsufficientData marks a check that cannot run because the input
	// has fewer points or documents than the method requires. Non-fatal:
	// the check is skipped and the run continues.
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// ErrDegenerateInput marks structurally valid but unusable input
	// (zero variance, empty vocabulary, empty bucket). Non-fatal: the
	// affected check reports no anomalies.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrInvalidParameter marks configuration outside documented ranges.
	// Fatal for the run; validated before any detector starts.
	ErrInvalidParameter = errors.New("invalid detection parameter")

	// ErrRunCancelled marks a run that hit its time budget or was
	// cancelled by the caller; partial results are still returned.
	ErrRunCancelled = errors.New("detection run cancelled")

	ErrSourceNotFound = errors.New("data source not found")
)

// Error constructors with context
func NewInsufficientDataError(method string, need, got int) error {
	return fmt.Errorf("%w: %s requires %d points, got %d", ErrInsufficientData, method, need, got)
}

func NewDegenerateInputError(method, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrDegenerateInput, method, reason)
}

func NewInvalidParameterError(name string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidParameter, name, reason)
}

// Error checking helpers
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsDegenerateInput(err error) bool {
	return errors.Is(err, ErrDegenerateInput)
}

func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

// IsSkippable reports whether an error means a single check should be
// skipped rather than the whole run aborted.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrInsufficientData) || errors.Is(err, ErrDegenerateInput)
}
