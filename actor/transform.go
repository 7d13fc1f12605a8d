package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform is the pose of a body: world-space center of mass and unit quaternion orientation
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a transform at position with the given orientation.
// The orientation is normalized; a zero quaternion falls back to identity.
func NewTransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	t := Transform{Position: position, Rotation: rotation}
	t.SetRotation(rotation)

	return t
}

// SetRotation normalizes and stores the orientation, keeping the cached inverse in sync
func (t *Transform) SetRotation(rotation mgl64.Quat) {
	if rotation.Len() < 1e-12 {
		rotation = mgl64.QuatIdent()
	}
	t.Rotation = rotation.Normalize()
	t.InverseRotation = t.Rotation.Inverse()
}

// ToWorld maps a local-space point to world space
func (t Transform) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// ToLocal maps a world-space point to local space
func (t Transform) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Conjugate().Rotate(world.Sub(t.Position))
}

// RotationMatrix returns R, the 3x3 rotation matrix of the orientation
func (t Transform) RotationMatrix() mgl64.Mat3 {
	return t.Rotation.Mat4().Mat3()
}
