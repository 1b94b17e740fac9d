package physics

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSettings is reported while a World has no active Settings.
	ErrNoSettings = errors.New("physics: no active settings, simulation paused")

	// ErrInvalidTimestep indicates a non-positive or non-finite step size.
	ErrInvalidTimestep = errors.New("physics: timestep must be positive")

	ErrNilGeometry = errors.New("physics: shape has no geometry")

	ErrUnknownShape = errors.New("physics: unknown shape kind")

	ErrNotRegistered = errors.New("physics: entity not registered with world")
)

// StepError wraps an error with the tick it occurred on.
type StepError struct {
	Tick    uint64
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
