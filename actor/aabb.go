package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box in world space
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// ContainsPoint checks if a point is inside the AABB, boundary included
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

// Overlaps checks if two AABBs overlap. Touching boxes overlap.
func (a AABB) Overlaps(other AABB) bool {
	// 3D overlap is the conjunction of the three 1D interval overlaps
	for axis := 0; axis < 3; axis++ {
		if !a.OverlapsOnAxis(other, axis) {
			return false
		}
	}

	return true
}

// OverlapsOnAxis checks the 1D interval overlap of both boxes projected on axis (0=X, 1=Y, 2=Z)
func (a AABB) OverlapsOnAxis(other AABB, axis int) bool {
	return a.Max[axis] >= other.Min[axis] && a.Min[axis] <= other.Max[axis]
}

// Interval returns the [min, max] projection of the box on the given axis
func (a AABB) Interval(axis int) (float64, float64) {
	return a.Min[axis], a.Max[axis]
}

// Extend grows the box so that it contains the point
func (a AABB) Extend(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = min(a.Min[i], point[i])
		a.Max[i] = max(a.Max[i], point[i])
	}

	return a
}

// Center returns the middle point of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}
