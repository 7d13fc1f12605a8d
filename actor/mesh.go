package actor

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Face is a triangle given by three vertex indices, counter-clockwise seen from outside
type Face [3]int

// Edge is a directed edge between two vertex indices
type Edge struct {
	Start, End int
}

// Key returns the undirected form of the edge, smaller index first
func (e Edge) Key() Edge {
	if e.End < e.Start {
		return Edge{Start: e.End, End: e.Start}
	}
	return e
}

// Mesh is a closed triangle mesh in local space.
// Ray queries take the body transform and answer in world space.
type Mesh struct {
	Vertices []mgl64.Vec3
	Faces    []Face
}

// NewMesh builds a mesh and orients every face outward.
// The mesh must be convex and contain the local origin.
func NewMesh(vertices []mgl64.Vec3, faces []Face) *Mesh {
	m := &Mesh{Vertices: vertices, Faces: faces}
	m.orientOutward()

	return m
}

func (m *Mesh) orientOutward() {
	for i, f := range m.Faces {
		centroid := m.Vertices[f[0]].Add(m.Vertices[f[1]]).Add(m.Vertices[f[2]]).Mul(1.0 / 3.0)
		if m.rawNormal(f).Dot(centroid) < 0 {
			m.Faces[i] = Face{f[0], f[2], f[1]}
		}
	}
}

func (m *Mesh) rawNormal(f Face) mgl64.Vec3 {
	v0, v1, v2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// Edges returns the three directed edges of a face
func (m *Mesh) Edges(face int) [3]Edge {
	f := m.Faces[face]
	return [3]Edge{
		{Start: f[0], End: f[1]},
		{Start: f[1], End: f[2]},
		{Start: f[2], End: f[0]},
	}
}

// FaceNormal returns the unit outward normal of a face in local space.
// ok is false for a degenerate (zero-area) face.
func (m *Mesh) FaceNormal(face int) (mgl64.Vec3, bool) {
	n := m.rawNormal(m.Faces[face])
	l := n.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}, false
	}

	return n.Mul(1.0 / l), true
}

// WorldVertices returns every vertex transformed to world space
func (m *Mesh) WorldVertices(transform Transform) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		out[i] = transform.ToWorld(v)
	}

	return out
}

// Bounds returns the world-space AABB of the mesh under transform
func (m *Mesh) Bounds(transform Transform) AABB {
	if len(m.Vertices) == 0 {
		return AABB{Min: transform.Position, Max: transform.Position}
	}

	first := transform.ToWorld(m.Vertices[0])
	aabb := AABB{Min: first, Max: first}
	for _, v := range m.Vertices[1:] {
		aabb = aabb.Extend(transform.ToWorld(v))
	}

	return aabb
}

// Support returns the vertex furthest along direction, in local space
func (m *Mesh) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := math.Inf(-1)
	var support mgl64.Vec3
	for _, v := range m.Vertices {
		if d := v.Dot(direction); d > best {
			best = d
			support = v
		}
	}

	return support
}

type meshHit struct {
	t    float64
	face int
}

// hits returns every crossing of the segment with the mesh surface, sorted by t.
// The ray is moved to local space, t is unchanged since the transform is rigid.
func (m *Mesh) hits(ray Ray, transform Transform) []meshHit {
	origin := transform.ToLocal(ray.Origin)
	direction := transform.InverseRotation.Rotate(ray.Direction)

	var out []meshHit
	for i, f := range m.Faces {
		t, ok := intersectTriangle(origin, direction, m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]])
		if !ok || t < -hitMergeEpsilon || t > ray.Length+hitMergeEpsilon {
			continue
		}
		out = append(out, meshHit{t: t, face: i})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].t < out[j].t })

	return out
}

// CountHits counts how many times the segment crosses the surface.
// Crossings through a shared edge or vertex are reported by several triangles at the same t;
// they are merged so that the parity of the count stays meaningful.
func (m *Mesh) CountHits(ray Ray, transform Transform) int {
	hits := m.hits(ray, transform)
	count := 0
	last := math.Inf(-1)
	for _, h := range hits {
		if h.t-last > hitMergeEpsilon {
			count++
		}
		last = h.t
	}

	return count
}

// ClosestHit returns the first crossing along the segment with the outward face normal
func (m *Mesh) ClosestHit(ray Ray, transform Transform) Hit {
	for _, h := range m.hits(ray, transform) {
		n, ok := m.FaceNormal(h.face)
		if !ok {
			continue
		}

		return Hit{
			Position: ray.At(h.t),
			Normal:   transform.Rotation.Rotate(n),
			T:        h.t,
			Valid:    true,
		}
	}

	return Hit{}
}

// newBoxMesh builds the 12-triangle mesh of a box
func newBoxMesh(halfExtents mgl64.Vec3) *Mesh {
	hx, hy, hz := halfExtents.X(), halfExtents.Y(), halfExtents.Z()

	// vertex i has x sign from bit 0, y from bit 1, z from bit 2
	vertices := make([]mgl64.Vec3, 8)
	for i := range vertices {
		v := mgl64.Vec3{-hx, -hy, -hz}
		if i&1 != 0 {
			v[0] = hx
		}
		if i&2 != 0 {
			v[1] = hy
		}
		if i&4 != 0 {
			v[2] = hz
		}
		vertices[i] = v
	}

	faces := []Face{
		{1, 3, 7}, {1, 7, 5}, // +X
		{0, 4, 6}, {0, 6, 2}, // -X
		{2, 6, 7}, {2, 7, 3}, // +Y
		{0, 1, 5}, {0, 5, 4}, // -Y
		{4, 5, 7}, {4, 7, 6}, // +Z
		{0, 2, 3}, {0, 3, 1}, // -Z
	}

	return NewMesh(vertices, faces)
}

// newIcosphereMesh builds a sphere by subdividing an icosahedron
func newIcosphereMesh(radius float64, subdivisions int) *Mesh {
	t := (1.0 + math.Sqrt(5.0)) / 2.0
	vertices := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	faces := []Face{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	for i := range vertices {
		vertices[i] = vertices[i].Normalize()
	}

	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[Edge]int)
		midpoint := func(a, b int) int {
			key := Edge{Start: a, End: b}.Key()
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			vertices = append(vertices, vertices[a].Add(vertices[b]).Normalize())
			midpoints[key] = len(vertices) - 1
			return len(vertices) - 1
		}

		next := make([]Face, 0, len(faces)*4)
		for _, f := range faces {
			ab := midpoint(f[0], f[1])
			bc := midpoint(f[1], f[2])
			ca := midpoint(f[2], f[0])
			next = append(next,
				Face{f[0], ab, ca},
				Face{f[1], bc, ab},
				Face{f[2], ca, bc},
				Face{ab, bc, ca},
			)
		}
		faces = next
	}

	for i := range vertices {
		vertices[i] = vertices[i].Mul(radius)
	}

	return NewMesh(vertices, faces)
}
