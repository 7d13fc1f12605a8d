package impulse

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/contact"
	"github.com/akmonengine/impulse/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// NarrowPhase turns a candidate pair into zero or more contacts.
// Implementations only read the bodies, so pairs may be evaluated concurrently.
type NarrowPhase interface {
	Collide(a, b *actor.RigidBody) ([]contact.Contact, error)
}

// NarrowPhaseMethod selects the narrow-phase strategy
type NarrowPhaseMethod int

const (
	// NarrowPhaseMesh casts every mesh edge against the other shape
	NarrowPhaseMesh NarrowPhaseMethod = iota
	// NarrowPhaseGJK runs GJK and EPA on the support functions
	NarrowPhaseGJK
)

func (m NarrowPhaseMethod) String() string {
	switch m {
	case NarrowPhaseMesh:
		return "mesh"
	case NarrowPhaseGJK:
		return "gjk"
	}
	return fmt.Sprintf("NarrowPhaseMethod(%d)", int(m))
}

// ParseNarrowPhase accepts the method names, case-insensitive
func ParseNarrowPhase(s string) (NarrowPhaseMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mesh", "ray", "parity":
		return NarrowPhaseMesh, nil
	case "gjk", "gjk-epa":
		return NarrowPhaseGJK, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNarrowPhase, s)
}

// Strategy returns the narrow phase implementing the method
func (m NarrowPhaseMethod) Strategy() (NarrowPhase, error) {
	switch m {
	case NarrowPhaseMesh:
		return MeshNarrowPhase{}, nil
	case NarrowPhaseGJK:
		return GJKNarrowPhase{}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownNarrowPhase, m)
}

// =============================================================================
// Mesh narrow phase
// =============================================================================

// MeshNarrowPhase classifies the edges of each mesh by the parity of their crossings with the
// other shape. An odd count means one endpoint is inside: a vertex-face contact. An even,
// non-zero count means the edge goes through: an edge-edge contact.
//
// Both role orders are evaluated. Vertex-face contacts win over edge-edge ones; between two
// edge-edge lists the shorter one is kept.
type MeshNarrowPhase struct{}

type directionContacts struct {
	vertexFace []contact.Contact
	edgeEdge   []contact.Contact
}

func (MeshNarrowPhase) Collide(a, b *actor.RigidBody) ([]contact.Contact, error) {
	meshA, ok := a.Shape.AsMesh()
	if !ok {
		return nil, &UnsupportedShapeError{BodyID: a.ID, Shape: fmt.Sprintf("%T", a.Shape), Phase: "mesh"}
	}
	meshB, ok := b.Shape.AsMesh()
	if !ok {
		return nil, &UnsupportedShapeError{BodyID: b.ID, Shape: fmt.Sprintf("%T", b.Shape), Phase: "mesh"}
	}

	forward := collideDirection(a, meshA, b, meshB)
	backward := collideDirection(b, meshB, a, meshA)

	return selectContacts(forward, backward), nil
}

func selectContacts(forward, backward directionContacts) []contact.Contact {
	if len(forward.vertexFace) > 0 || len(backward.vertexFace) > 0 {
		return append(forward.vertexFace, backward.vertexFace...)
	}

	switch {
	case len(forward.edgeEdge) > 0 && len(backward.edgeEdge) > 0:
		if len(backward.edgeEdge) < len(forward.edgeEdge) {
			return backward.edgeEdge
		}
		return forward.edgeEdge
	case len(forward.edgeEdge) > 0:
		return forward.edgeEdge
	}
	return backward.edgeEdge
}

// collideDirection casts the edges of first's mesh against second.
// The de-duplication sets live for this call only.
func collideDirection(first *actor.RigidBody, firstMesh *actor.Mesh, second *actor.RigidBody, secondMesh *actor.Mesh) directionContacts {
	var out directionContacts

	vertices := firstMesh.WorldVertices(first.Transform)
	var otherVertices []mgl64.Vec3

	penetratingVertices := make(map[int]struct{})
	penetratingEdges := make(map[actor.Edge]struct{})

	for face := range firstMesh.Faces {
		for _, edge := range firstMesh.Edges(face) {
			start, end := vertices[edge.Start], vertices[edge.End]
			ray, ok := actor.NewSegmentRay(start, end)
			if !ok {
				continue
			}

			hits := second.Shape.CountHits(ray, second.Transform)
			switch {
			case hits == 0:
				continue

			case hits%2 == 1:
				hit := second.Shape.ClosestHit(ray, second.Transform)
				if !hit.Valid {
					continue
				}
				vertex, depth := penetratingVertex(edge, start, end, hit)
				if !(depth > 0) {
					continue
				}
				if _, ok := penetratingVertices[vertex]; ok {
					continue
				}
				penetratingVertices[vertex] = struct{}{}

				out.vertexFace = append(out.vertexFace, contact.Contact{
					A:      first,
					B:      second,
					Point:  hit.Position,
					Normal: hit.Normal,
					Depth:  depth,
					Type:   contact.VertexFace,
				})

			default:
				key := edge.Key()
				if _, ok := penetratingEdges[key]; ok {
					continue
				}
				if otherVertices == nil {
					otherVertices = secondMesh.WorldVertices(second.Transform)
				}
				c, ok := edgeEdgeContact(start, end, second, secondMesh, otherVertices)
				if !ok {
					continue
				}
				penetratingEdges[key] = struct{}{}
				c.A = first
				out.edgeEdge = append(out.edgeEdge, c)
			}
		}
	}

	return out
}

// penetratingVertex picks the endpoint lying deeper behind the hit face.
// depth is the distance of that endpoint below the face plane.
func penetratingVertex(edge actor.Edge, start, end mgl64.Vec3, hit actor.Hit) (int, float64) {
	dStart := start.Sub(hit.Position).Dot(hit.Normal)
	dEnd := end.Sub(hit.Position).Dot(hit.Normal)

	if dStart <= dEnd {
		return edge.Start, -dStart
	}
	return edge.End, -dEnd
}

// edgeEdgeContact finds, among the edges of the second mesh, the one closest to the segment
// [start, end] that the segment passes behind. The normal is the cross product of both edges,
// turned to agree with the outward normal of the second mesh's face.
func edgeEdgeContact(start, end mgl64.Vec3, second *actor.RigidBody, secondMesh *actor.Mesh, vertices []mgl64.Vec3) (contact.Contact, bool) {
	var best contact.Contact
	bestDistance := math.Inf(1)
	found := false

	d1 := end.Sub(start)
	for face := range secondMesh.Faces {
		localNormal, ok := secondMesh.FaceNormal(face)
		if !ok {
			continue
		}
		faceNormal := second.Transform.Rotation.Rotate(localNormal)

		for _, edge := range secondMesh.Edges(face) {
			p, q := vertices[edge.Start], vertices[edge.End]
			d2 := q.Sub(p)

			s, t, ok := closestSegmentParameters(start, d1, p, d2)
			if !ok {
				continue
			}

			n := d1.Cross(d2)
			l := n.Len()
			if l < 1e-12 || math.IsNaN(l) {
				continue
			}
			n = n.Mul(1 / l)
			if n.Dot(faceNormal) < 0 {
				n = n.Mul(-1)
			}

			onFirst := start.Add(d1.Mul(s))
			onSecond := p.Add(d2.Mul(t))
			signed := onFirst.Sub(onSecond).Dot(n)
			if signed >= 0 {
				continue
			}

			if distance := onFirst.Sub(onSecond).Len(); distance < bestDistance {
				bestDistance = distance
				found = true
				best = contact.Contact{
					B:      second,
					Point:  onFirst.Add(onSecond).Mul(0.5),
					Normal: n,
					Depth:  -signed,
					Type:   contact.EdgeEdge,
					EdgeA:  d1.Normalize(),
					EdgeB:  d2.Normalize(),
				}
			}
		}
	}

	return best, found
}

// closestSegmentParameters returns the parameters of the closest points of the lines
// p1 + s·d1 and p2 + t·d2. ok is false for parallel lines or when a parameter falls
// outside [0, 1].
func closestSegmentParameters(p1, d1, p2, d2 mgl64.Vec3) (s, t float64, ok bool) {
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	b := d1.Dot(d2)
	c := d1.Dot(r)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	denom := a*e - b*b
	if denom <= 1e-12*a*e || a < 1e-24 || e < 1e-24 {
		return 0, 0, false
	}

	s = (b*f - c*e) / denom
	t = (a*f - b*c) / denom
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return 0, 0, false
	}

	return s, t, true
}

// =============================================================================
// GJK narrow phase
// =============================================================================

// GJKNarrowPhase reports a single vertex-face contact per overlapping pair, placed halfway
// into the penetration along the EPA normal. It works on any shape with a support function.
// Iteration caps and tolerances are gjk.MaxIterations, gjk.MaxEPAIterations and gjk.EPATolerance.
type GJKNarrowPhase struct{}

func (GJKNarrowPhase) Collide(a, b *actor.RigidBody) ([]contact.Contact, error) {
	simplex := gjk.SimplexPool.Get().(*gjk.Simplex)
	defer gjk.SimplexPool.Put(simplex)
	simplex.Reset()

	if !gjk.Intersect(a, b, simplex) {
		return nil, nil
	}

	normal, depth, err := gjk.Penetration(a, b, simplex)
	if errors.Is(err, gjk.ErrDegenerateSimplex) {
		// touching only
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !(depth > 0) {
		return nil, nil
	}

	return []contact.Contact{{
		A:      a,
		B:      b,
		Point:  a.SupportWorld(normal).Sub(normal.Mul(depth / 2)),
		Normal: normal.Mul(-1),
		Depth:  depth,
		Type:   contact.VertexFace,
	}}, nil
}
