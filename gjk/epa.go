package gjk

import (
	"errors"
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MaxEPAIterations bounds the polytope expansion; the best face so far is returned when hit
	MaxEPAIterations = 64
	// EPATolerance is the support gain under which the closest face is final
	EPATolerance = 1e-6
)

// ErrDegenerateSimplex is returned when no tetrahedron enclosing the origin can seed EPA,
// which happens for shapes that only touch.
var ErrDegenerateSimplex = errors.New("gjk: simplex does not enclose the origin")

type polytopeFace struct {
	a, b, c  int
	normal   mgl64.Vec3
	distance float64
}

type polytopeEdge struct {
	a, b int
}

// Penetration expands the simplex left by Intersect into the face of A - B closest to the
// origin. normal is a unit vector from A toward B and depth the distance A must move along
// -normal to separate.
func Penetration(a, b *actor.RigidBody, simplex *Simplex) (normal mgl64.Vec3, depth float64, err error) {
	if !completeSimplex(a, b, simplex) {
		return mgl64.Vec3{}, 0, ErrDegenerateSimplex
	}

	points := make([]mgl64.Vec3, 0, MaxEPAIterations+4)
	points = append(points, simplex.Points[:4]...)
	interior := points[0].Add(points[1]).Add(points[2]).Add(points[3]).Mul(0.25)

	faces := make([]polytopeFace, 0, 2*MaxEPAIterations)
	for _, f := range [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}} {
		face, ok := newPolytopeFace(points, f[0], f[1], f[2], interior)
		if !ok || face.distance < -EPATolerance {
			return mgl64.Vec3{}, 0, ErrDegenerateSimplex
		}
		faces = append(faces, face)
	}

	closest := faces[0]
	for i := 0; i < MaxEPAIterations; i++ {
		closest = closestFace(faces)

		p := MinkowskiSupport(a, b, closest.normal)
		if p.Dot(closest.normal)-closest.distance < EPATolerance {
			break
		}

		points = append(points, p)
		apex := len(points) - 1

		var horizon []polytopeEdge
		kept := faces[:0]
		for _, f := range faces {
			if f.normal.Dot(p.Sub(points[f.a])) > 0 {
				horizon = toggleEdge(horizon, f.a, f.b)
				horizon = toggleEdge(horizon, f.b, f.c)
				horizon = toggleEdge(horizon, f.c, f.a)
				continue
			}
			kept = append(kept, f)
		}
		faces = kept

		for _, e := range horizon {
			if face, ok := newPolytopeFace(points, e.a, e.b, apex, interior); ok {
				faces = append(faces, face)
			}
		}
		if len(faces) == 0 {
			break
		}
	}

	return closest.normal, math.Max(closest.distance, 0), nil
}

// completeSimplex grows a touching-contact simplex to a tetrahedron using axis supports
func completeSimplex(a, b *actor.RigidBody, simplex *Simplex) bool {
	directions := [6]mgl64.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, d := range directions {
		if simplex.Count == 4 {
			break
		}
		p := MinkowskiSupport(a, b, d)
		if extendsHull(simplex, p) {
			simplex.Points[simplex.Count] = p
			simplex.Count++
		}
	}
	if simplex.Count < 4 {
		return false
	}

	p := simplex.Points
	return math.Abs(p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Dot(p[3].Sub(p[0]))) > 1e-12
}

func extendsHull(simplex *Simplex, p mgl64.Vec3) bool {
	s := simplex.Points
	switch simplex.Count {
	case 0:
		return true
	case 1:
		return p.Sub(s[0]).LenSqr() > 1e-12
	case 2:
		return s[1].Sub(s[0]).Cross(p.Sub(s[0])).LenSqr() > 1e-12
	case 3:
		return math.Abs(s[1].Sub(s[0]).Cross(s[2].Sub(s[0])).Dot(p.Sub(s[0]))) > 1e-12
	}
	return false
}

// newPolytopeFace builds the face (i, j, k) with its normal pointing away from interior
func newPolytopeFace(points []mgl64.Vec3, i, j, k int, interior mgl64.Vec3) (polytopeFace, bool) {
	n := points[j].Sub(points[i]).Cross(points[k].Sub(points[i]))
	l := n.Len()
	if l < 1e-12 || math.IsNaN(l) {
		return polytopeFace{}, false
	}
	n = n.Mul(1 / l)
	if n.Dot(points[i].Sub(interior)) < 0 {
		n = n.Mul(-1)
		j, k = k, j
	}

	return polytopeFace{a: i, b: j, c: k, normal: n, distance: n.Dot(points[i])}, true
}

func closestFace(faces []polytopeFace) polytopeFace {
	best := faces[0]
	for _, f := range faces[1:] {
		if f.distance < best.distance {
			best = f
		}
	}
	return best
}

// toggleEdge adds the edge, or removes it when a neighbouring visible face already added it
func toggleEdge(edges []polytopeEdge, a, b int) []polytopeEdge {
	for i, e := range edges {
		if (e.a == b && e.b == a) || (e.a == a && e.b == b) {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, polytopeEdge{a: a, b: b})
}
