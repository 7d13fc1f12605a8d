package integrator

import "github.com/akmonengine/impulse/actor"

// ExplicitEuler moves the pose with the velocities at the start of the step, then updates the
// momenta from the accumulated force and torque.
func ExplicitEuler(rb actor.RigidBody, dt float64) (actor.RigidBody, error) {
	if err := checkStep(dt); err != nil {
		return rb, err
	}
	if rb.IsStatic() {
		return rb, nil
	}

	next := rb

	next.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))
	next.Transform.Rotation = integrateOrientation(rb.Transform.Rotation, rb.AngularVelocity, dt)

	next.LinearMomentum = rb.LinearMomentum.Add(rb.Force().Mul(dt))
	next.AngularMomentum = rb.AngularMomentum.Add(rb.Torque().Sub(gyroscopic(&rb)).Mul(dt))

	next, err := finish(rb, next)
	if err != nil {
		return next, err
	}
	next.SyncVelocities()

	return finish(rb, next)
}

// SymplecticEuler updates the momenta and velocities first, then moves the pose with the
// new velocities.
func SymplecticEuler(rb actor.RigidBody, dt float64) (actor.RigidBody, error) {
	if err := checkStep(dt); err != nil {
		return rb, err
	}
	if rb.IsStatic() {
		return rb, nil
	}

	next := rb

	next.LinearMomentum = rb.LinearMomentum.Add(rb.Force().Mul(dt))
	next.AngularMomentum = rb.AngularMomentum.Add(rb.Torque().Sub(gyroscopic(&rb)).Mul(dt))
	next.SyncVelocities()

	next.Transform.Position = rb.Transform.Position.Add(next.Velocity.Mul(dt))
	next.Transform.Rotation = integrateOrientation(rb.Transform.Rotation, next.AngularVelocity, dt)

	next, err := finish(rb, next)
	if err != nil {
		return next, err
	}
	// angular velocity follows the momentum at the new orientation
	next.SyncVelocities()

	return finish(rb, next)
}
