package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultSphereSubdivisions is the icosphere refinement used by NewSphere (162 vertices)
const DefaultSphereSubdivisions = 2

// Shape is the geometry collaborator of a rigid body
type Shape interface {
	// ComputeAABB calculates the world-space axis-aligned bounding box for the shape
	// at the given transform
	ComputeAABB(transform Transform)
	GetAABB() AABB
	// ComputeMass calculates mass data for the shape given a density
	ComputeMass(density float64) float64
	ComputeInertia(mass float64) mgl64.Mat3
	Support(direction mgl64.Vec3) mgl64.Vec3
	// CountHits counts the surface crossings of a world-space segment
	CountHits(ray Ray, transform Transform) int
	// ClosestHit returns the first surface crossing of a world-space segment
	ClosestHit(ray Ray, transform Transform) Hit
	// AsMesh exposes the triangle mesh of the shape, if it has one
	AsMesh() (*Mesh, bool)
}

// Box represents an oriented box collision shape
// The box is defined by its half-extents (half-width, half-height, half-depth)
type Box struct {
	HalfExtents mgl64.Vec3
	mesh        *Mesh
	aabb        AABB
}

// NewBox creates a box shape and its triangle mesh
func NewBox(halfExtents mgl64.Vec3) *Box {
	return &Box{
		HalfExtents: halfExtents,
		mesh:        newBoxMesh(halfExtents),
	}
}

func (b *Box) ComputeAABB(transform Transform) {
	b.aabb = b.mesh.Bounds(transform)
}

func (b *Box) GetAABB() AABB {
	return b.aabb
}

// ComputeMass calculates mass data for the box
func (b *Box) ComputeMass(density float64) float64 {
	// Volume = 8 * hx * hy * hz (full dimensions are 2*halfExtents)
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()

	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	// I = (m/12) * (d1² + d2²)
	factor := mass / 12.0

	return mgl64.Diag3(mgl64.Vec3{
		factor * (y*y + z*z),
		factor * (x*x + z*z),
		factor * (x*x + y*y),
	})
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

func (b *Box) CountHits(ray Ray, transform Transform) int {
	return b.mesh.CountHits(ray, transform)
}

func (b *Box) ClosestHit(ray Ray, transform Transform) Hit {
	return b.mesh.ClosestHit(ray, transform)
}

func (b *Box) AsMesh() (*Mesh, bool) {
	return b.mesh, b.mesh != nil
}

// Sphere represents a spherical collision shape.
// Collision queries run against its icosphere tessellation; mass and inertia are analytic.
type Sphere struct {
	Radius float64
	mesh   *Mesh
	aabb   AABB
}

// NewSphere creates a sphere with the default tessellation
func NewSphere(radius float64) *Sphere {
	return NewSphereWithSubdivisions(radius, DefaultSphereSubdivisions)
}

// NewSphereWithSubdivisions creates a sphere whose mesh is an icosahedron subdivided n times
func NewSphereWithSubdivisions(radius float64, subdivisions int) *Sphere {
	return &Sphere{
		Radius: radius,
		mesh:   newIcosphereMesh(radius, max(0, subdivisions)),
	}
}

// ComputeAABB calculates the axis-aligned bounding box for the sphere
func (s *Sphere) ComputeAABB(transform Transform) {
	// Sphere AABB is not affected by rotation, only by position
	radiusVec := mgl64.Vec3{s.Radius, s.Radius, s.Radius}

	s.aabb = AABB{
		Min: transform.Position.Sub(radiusVec),
		Max: transform.Position.Add(radiusVec),
	}
}

func (s *Sphere) GetAABB() AABB {
	return s.aabb
}

// ComputeMass calculates mass data for the sphere
func (s *Sphere) ComputeMass(density float64) float64 {
	// Volume of sphere = (4/3) * π * r³
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)

	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	// I = (2/5) * m * r² on every axis
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius

	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) CountHits(ray Ray, transform Transform) int {
	return s.mesh.CountHits(ray, transform)
}

func (s *Sphere) ClosestHit(ray Ray, transform Transform) Hit {
	return s.mesh.ClosestHit(ray, transform)
}

func (s *Sphere) AsMesh() (*Mesh, bool) {
	return s.mesh, s.mesh != nil
}
