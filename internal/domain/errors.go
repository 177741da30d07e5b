package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownScenario is returned for scenario keys missing from a catalogue.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrUnknownMethod is returned for optimization methods that do not exist.
	ErrUnknownMethod = errors.New("unknown optimization method")
	// ErrInsufficientData is returned when too few aligned observations remain.
	ErrInsufficientData = errors.New("insufficient data")
)

// OptimizationError reports an optimizer failure: infeasible constraints,
// a solver that did not converge, or inputs too thin to estimate from.
type OptimizationError struct {
	Method string
	Reason string
	Err    error
}

// NewOptimizationError builds an OptimizationError with a formatted reason.
func NewOptimizationError(method, format string, args ...interface{}) *OptimizationError {
	return &OptimizationError{Method: method, Reason: fmt.Sprintf(format, args...)}
}

func (e *OptimizationError) Error() string {
	if e.Method == "" {
		return "optimization failed: " + e.Reason
	}
	return fmt.Sprintf("%s optimization failed: %s", e.Method, e.Reason)
}

func (e *OptimizationError) Unwrap() error {
	return e.Err
}
