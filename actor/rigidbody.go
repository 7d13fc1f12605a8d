package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidMass is returned when a dynamic body would get a non-positive or non-finite mass
var ErrInvalidMass = errors.New("actor: dynamic body requires a finite positive mass")

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and collisions
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic
)

func (t BodyType) String() string {
	switch t {
	case BodyTypeDynamic:
		return "dynamic"
	case BodyTypeStatic:
		return "static"
	}
	return fmt.Sprintf("BodyType(%d)", int(t))
}

// RigidBody represents a rigid body in the physics simulation.
// Momentum is the integrated state; velocities are derived from it.
type RigidBody struct {
	// ID is assigned by the world, used to key contact pairs
	ID int

	// Spatial properties
	Transform Transform

	// Linear motion
	Velocity       mgl64.Vec3 // m/s, world space
	LinearMomentum mgl64.Vec3 // Mass * Velocity

	// Angular motion
	AngularVelocity mgl64.Vec3 // rad/s, world space
	AngularMomentum mgl64.Vec3 // InertiaWorld * AngularVelocity

	Mass        float64
	MassInverse float64 // 0 for static bodies

	// Inertia tensor in body frame
	InertiaBody        mgl64.Mat3
	InverseInertiaBody mgl64.Mat3

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	BodyType BodyType

	// Collision shape
	Shape Shape
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored for static)
func NewRigidBody(transform Transform, shape Shape, bodyType BodyType, density float64) (*RigidBody, error) {
	transform.SetRotation(transform.Rotation)

	rb := &RigidBody{
		Transform: transform,
		Shape:     shape,
		BodyType:  bodyType,
	}

	if bodyType == BodyTypeStatic {
		// Static bodies have infinite mass and inertia
		rb.Mass = math.Inf(1)
		rb.MassInverse = 0
	} else {
		mass := shape.ComputeMass(density)
		if mass <= 0 || math.IsInf(mass, 0) || math.IsNaN(mass) {
			return nil, fmt.Errorf("%w: got %v (density %v)", ErrInvalidMass, mass, density)
		}
		rb.Mass = mass
		rb.MassInverse = 1.0 / mass
		rb.InertiaBody = shape.ComputeInertia(mass)
		rb.InverseInertiaBody = rb.InertiaBody.Inv()
	}

	rb.UpdateAABB()

	return rb, nil
}

// IsStatic reports whether the body never moves
func (rb *RigidBody) IsStatic() bool {
	return rb.BodyType == BodyTypeStatic
}

// UpdateAABB refreshes the cached world bounds of the shape
func (rb *RigidBody) UpdateAABB() {
	rb.Shape.ComputeAABB(rb.Transform)
}

// SetVelocity sets the linear velocity and the matching momentum
func (rb *RigidBody) SetVelocity(v mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.Velocity = v
	rb.LinearMomentum = v.Mul(rb.Mass)
}

// SetAngularVelocity sets the angular velocity and the matching angular momentum
func (rb *RigidBody) SetAngularVelocity(w mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.AngularVelocity = w
	rb.AngularMomentum = rb.InertiaWorld().Mul3x1(w)
}

// SyncVelocities derives both velocities from the momenta at the current orientation
func (rb *RigidBody) SyncVelocities() {
	rb.Velocity = rb.LinearMomentum.Mul(rb.MassInverse)
	rb.AngularVelocity = rb.InverseInertiaWorld().Mul3x1(rb.AngularMomentum)
}

// AddForce accumulates a force applied at the center of mass
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
}

// AddTorque accumulates a world-space torque
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
}

// AddForceAtPoint accumulates a force applied at a world-space point, with its induced torque
func (rb *RigidBody) AddForceAtPoint(force, point mgl64.Vec3) {
	if rb.IsStatic() {
		return
	}
	rb.accumulatedForce = rb.accumulatedForce.Add(force)
	rb.accumulatedTorque = rb.accumulatedTorque.Add(point.Sub(rb.Transform.Position).Cross(force))
}

// ClearForces resets the accumulators, done at the start of every step
func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// Force returns the accumulated force of the current step
func (rb *RigidBody) Force() mgl64.Vec3 {
	return rb.accumulatedForce
}

// Torque returns the accumulated torque of the current step
func (rb *RigidBody) Torque() mgl64.Vec3 {
	return rb.accumulatedTorque
}

// VelocityAt returns the velocity of the material point at world position p
func (rb *RigidBody) VelocityAt(p mgl64.Vec3) mgl64.Vec3 {
	return rb.Velocity.Add(rb.AngularVelocity.Cross(p.Sub(rb.Transform.Position)))
}

// KineticEnergy returns ½mv² + ½ωᵀIω, zero for static bodies
func (rb *RigidBody) KineticEnergy() float64 {
	if rb.IsStatic() {
		return 0
	}
	linear := 0.5 * rb.Mass * rb.Velocity.LenSqr()
	angular := 0.5 * rb.AngularVelocity.Dot(rb.InertiaWorld().Mul3x1(rb.AngularVelocity))

	return linear + angular
}

// SupportWorld returns the furthest point of the shape along a world-space direction
func (rb *RigidBody) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	localDirection := rb.Transform.InverseRotation.Rotate(direction)
	localSupport := rb.Shape.Support(localDirection)

	return rb.Transform.ToWorld(localSupport)
}

// InertiaWorld returns R * I_body * R^T
func (rb *RigidBody) InertiaWorld() mgl64.Mat3 {
	R := rb.Transform.RotationMatrix()
	return R.Mul3(rb.InertiaBody).Mul3(R.Transpose())
}

// InverseInertiaWorld returns R * I_body^-1 * R^T, zero for static bodies
func (rb *RigidBody) InverseInertiaWorld() mgl64.Mat3 {
	if rb.IsStatic() {
		return mgl64.Mat3{}
	}

	R := rb.Transform.RotationMatrix()
	return R.Mul3(rb.InverseInertiaBody).Mul3(R.Transpose())
}

// IsFinite reports whether pose and momenta are free of NaN and Inf
func (rb *RigidBody) IsFinite() bool {
	for _, v := range []mgl64.Vec3{rb.Transform.Position, rb.LinearMomentum, rb.AngularMomentum, rb.Velocity, rb.AngularVelocity} {
		if !finiteVec3(v) {
			return false
		}
	}
	q := rb.Transform.Rotation

	return finiteVec3(q.V) && !math.IsNaN(q.W) && !math.IsInf(q.W, 0)
}

func finiteVec3(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
