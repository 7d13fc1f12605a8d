package integrator

import (
	"errors"
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// singularThreshold is the relative determinant under which the Jacobian is treated as singular
const singularThreshold = 1e-12

// ImplicitEuler integrates the linear part like SymplecticEuler and the angular part with one
// linearized backward-Euler step of the gyroscopic term, solved in the body frame.
// It is a single Newton step, not a converged implicit solve.
//
// A singular Jacobian returns the symplectic result together with ErrSingularJacobian.
func ImplicitEuler(rb actor.RigidBody, dt float64) (actor.RigidBody, error) {
	if err := checkStep(dt); err != nil {
		return rb, err
	}
	if rb.IsStatic() {
		return rb, nil
	}

	next := rb

	next.LinearMomentum = rb.LinearMomentum.Add(rb.Force().Mul(dt))
	next.Velocity = next.LinearMomentum.Mul(rb.MassInverse)

	// external torque is applied explicitly, the gyroscopic term implicitly
	w := rb.AngularVelocity.Add(rb.InverseInertiaWorld().Mul3x1(rb.Torque()).Mul(dt))
	q := rb.Transform.Rotation
	wb0 := rb.Transform.InverseRotation.Rotate(w)
	ib := rb.InertiaBody

	residual := wb0.Cross(ib.Mul3x1(wb0)).Mul(dt)
	jacobian := ib.Add(skew(wb0).Mul3(ib).Sub(skew(ib.Mul3x1(wb0))).Mul(dt))

	if isSingular(jacobian) {
		fallback, err := SymplecticEuler(rb, dt)
		return fallback, errors.Join(ErrSingularJacobian, err)
	}

	dw := jacobian.Inv().Mul3x1(residual.Mul(-1))
	wNew := q.Rotate(wb0.Add(dw))

	next.Transform.Position = rb.Transform.Position.Add(next.Velocity.Mul(dt))
	next.Transform.Rotation = integrateOrientation(q, wNew, dt)

	next, err := finish(rb, next)
	if err != nil {
		return next, err
	}
	next.AngularVelocity = wNew
	next.AngularMomentum = next.InertiaWorld().Mul3x1(wNew)

	return finish(rb, next)
}

// skew returns the cross-product matrix of v: skew(v)·u = v × u
func skew(v mgl64.Vec3) mgl64.Mat3 {
	// column-major
	return mgl64.Mat3{
		0, v.Z(), -v.Y(),
		-v.Z(), 0, v.X(),
		v.Y(), -v.X(), 0,
	}
}

func isSingular(m mgl64.Mat3) bool {
	scale := 0.0
	for _, x := range m {
		scale = math.Max(scale, math.Abs(x))
	}
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return true
	}

	return math.Abs(m.Det()) <= singularThreshold*scale*scale*scale
}
