package impulse

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownBroadPhase indicates a broad-phase selector outside the known methods
	ErrUnknownBroadPhase = errors.New("impulse: unknown broad-phase method")

	// ErrUnknownNarrowPhase indicates a narrow-phase selector outside the known methods
	ErrUnknownNarrowPhase = errors.New("impulse: unknown narrow-phase method")

	// ErrUnknownIntegrator indicates an integrator selector without an implementation
	ErrUnknownIntegrator = errors.New("impulse: unknown integrator")
)

// UnsupportedShapeError is returned by a narrow phase that cannot handle a body's shape,
// such as the mesh narrow phase given a shape without a triangle mesh.
type UnsupportedShapeError struct {
	BodyID int
	Shape  string
	Phase  string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("impulse: %s narrow phase does not support shape %s of body %d", e.Phase, e.Shape, e.BodyID)
}

// StepError wraps the failures of one World.Step with the step context.
// The step itself ran to completion; Err joins every failure it met.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("impulse: step %d (t=%.4g): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
