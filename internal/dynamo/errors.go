package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates an initial state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates the integration produced a non-finite state.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepRejected is returned by adaptive steppers when the local error
	// estimate exceeds tolerance.
	ErrStepRejected = errors.New("dynamo: adaptive step rejected")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   []float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.6g)", e.Wrapped, e.Step, e.Time)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// BoundsError reports a named parameter that failed validation.
func BoundsError(name string, value float64, rule string) error {
	return fmt.Errorf("%w: %s must be %s, got %g", ErrParameterBounds, name, rule, value)
}
