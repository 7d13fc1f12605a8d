package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// triangleParallelEpsilon rejects rays lying in the plane of a triangle
	triangleParallelEpsilon = 1e-12
	// barycentricEpsilon widens triangles slightly so rays through shared edges are never missed.
	// Duplicate crossings are merged by CountHits.
	barycentricEpsilon = 1e-9
	// hitMergeEpsilon is the distance under which two crossings are the same surface crossing
	hitMergeEpsilon = 1e-9
)

// Ray is the segment Origin + t*Direction for t in [0, Length].
// Direction is expected to be normalized so that t is a distance.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Length    float64
}

// NewSegmentRay builds the ray covering the segment [start, end].
// ok is false for a zero-length segment.
func NewSegmentRay(start, end mgl64.Vec3) (Ray, bool) {
	d := end.Sub(start)
	length := d.Len()
	if length < 1e-12 || math.IsNaN(length) {
		return Ray{}, false
	}

	return Ray{Origin: start, Direction: d.Mul(1.0 / length), Length: length}, true
}

// At returns the point at parameter t
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is the result of a closest-hit query
type Hit struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3 // outward surface normal at Position, world space
	T        float64
	Valid    bool
}

// intersectTriangle is the Möller–Trumbore ray/triangle test. It returns the ray parameter of the
// crossing, whatever the triangle winding.
func intersectTriangle(origin, direction, v0, v1, v2 mgl64.Vec3) (float64, bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	p := direction.Cross(edge2)
	det := edge1.Dot(p)
	if math.Abs(det) < triangleParallelEpsilon {
		return 0, false
	}
	invDet := 1.0 / det

	s := origin.Sub(v0)
	u := s.Dot(p) * invDet
	if u < -barycentricEpsilon || u > 1+barycentricEpsilon {
		return 0, false
	}

	q := s.Cross(edge1)
	v := direction.Dot(q) * invDet
	if v < -barycentricEpsilon || u+v > 1+barycentricEpsilon {
		return 0, false
	}

	return edge2.Dot(q) * invDet, true
}
