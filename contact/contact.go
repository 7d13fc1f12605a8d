// Package contact holds the contacts produced by the narrow phase and turns them into
// equal and opposite force pairs on the touching bodies.
package contact

import (
	"fmt"
	"math"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Type identifies the feature pair that generated a contact
type Type int

const (
	// VertexFace is a vertex of one mesh lying inside the other shape
	VertexFace Type = iota
	// EdgeEdge is an edge crossing into and back out of the other shape
	EdgeEdge
)

func (t Type) String() string {
	switch t {
	case VertexFace:
		return "vertex-face"
	case EdgeEdge:
		return "edge-edge"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Contact is a single point of overlap between two bodies, rebuilt every step.
//
// Normal is the unit outward surface normal of B at Point: it points from B toward A,
// so resolution pushes A along +Normal and B along -Normal.
type Contact struct {
	A, B   *actor.RigidBody
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
	Type   Type

	// Edge directions of an EdgeEdge contact, diagnostic only
	EdgeA, EdgeB mgl64.Vec3
}

// IsFinite reports whether point, normal, and depth are usable
func (c Contact) IsFinite() bool {
	for _, v := range []mgl64.Vec3{c.Point, c.Normal} {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}

	return !math.IsNaN(c.Depth) && !math.IsInf(c.Depth, 0)
}
