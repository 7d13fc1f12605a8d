// Package integrator advances a single rigid body over one time step.
//
// Every integrator is a pure function of the body and the step size: it consumes the force and
// torque accumulated for the step and returns the body with a new pose and new momenta.
// Static bodies are returned unchanged.
package integrator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidStep indicates a non-positive or non-finite step size
	ErrInvalidStep = errors.New("integrator: step size must be positive and finite")

	// ErrNonFiniteState indicates the step produced NaN or Inf; the body is returned unchanged
	ErrNonFiniteState = errors.New("integrator: state diverged (NaN or Inf detected)")

	// ErrSingularJacobian indicates the implicit linear solve could not be performed;
	// the symplectic result is returned alongside it
	ErrSingularJacobian = errors.New("integrator: singular Jacobian in implicit solve")

	// ErrUnknownMethod is returned by ParseMethod
	ErrUnknownMethod = errors.New("integrator: unknown method")
)

// Func advances a body by dt
type Func func(rb actor.RigidBody, dt float64) (actor.RigidBody, error)

// Method selects one of the integrators
type Method int

const (
	Explicit Method = iota
	Symplectic
	Implicit
)

func (m Method) String() string {
	switch m {
	case Explicit:
		return "explicit"
	case Symplectic:
		return "symplectic"
	case Implicit:
		return "implicit"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod accepts the method names, case-insensitive
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "explicit", "explicit-euler":
		return Explicit, nil
	case "symplectic", "semi-implicit", "symplectic-euler":
		return Symplectic, nil
	case "implicit", "implicit-euler":
		return Implicit, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Func returns the integrator implementing the method, nil for an unknown method
func (m Method) Func() Func {
	switch m {
	case Explicit:
		return ExplicitEuler
	case Symplectic:
		return SymplecticEuler
	case Implicit:
		return ImplicitEuler
	}
	return nil
}

func checkStep(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidStep, dt)
	}
	return nil
}

// integrateOrientation returns normalize(q + 0.5·dt·(0,w)·q)
func integrateOrientation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	spin := mgl64.Quat{W: 0, V: w}.Mul(q).Scale(0.5 * dt)
	return q.Add(spin)
}

// gyroscopic returns w × (I_world·w)
func gyroscopic(rb *actor.RigidBody) mgl64.Vec3 {
	w := rb.AngularVelocity
	return w.Cross(rb.InertiaWorld().Mul3x1(w))
}

// finish re-normalizes the orientation and rejects a diverged state
func finish(original, next actor.RigidBody) (actor.RigidBody, error) {
	next.Transform.SetRotation(next.Transform.Rotation)
	if !next.IsFinite() {
		return original, ErrNonFiniteState
	}
	return next, nil
}
