package impulse

import (
	"math"
	"slices"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultCellSize is the edge length of a grid cell, a few body sizes
	DefaultCellSize = 4.0
	// DefaultGridCells is the number of hash buckets of a default grid
	DefaultGridCells = 4096
	// maxCellsPerBody caps the cells a single large body is inserted into; beyond it the body
	// is tested against every other body instead
	maxCellsPerBody = 4096
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies whose AABB touches it
type Cell struct {
	bodyIndices []int
}

// SpatialGrid is a uniform grid hashed into a fixed number of buckets.
// It is rebuilt from the bodies' AABBs every time pairs are requested.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
	// bodies too large for the grid
	oversized []int
}

// NewSpatialGrid creates a grid; numCells is rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	if !(cellSize > 0) {
		cellSize = DefaultCellSize
	}
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// CellSize returns the edge length of a cell
func (sg *SpatialGrid) CellSize() float64 {
	return sg.cellSize
}

// Insert adds a body to every cell its AABB spans
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	minCell, maxCell := sg.cellRange(body.Shape.GetAABB())
	if cellCount(minCell, maxCell) > maxCellsPerBody {
		sg.oversized = append(sg.oversized, bodyIndex)
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.oversized = sg.oversized[:0]
}

// Pairs rebuilds the grid and returns the pairs whose AABBs overlap.
// Bodies sharing a bucket are only candidates: hash collisions and cell sharing are filtered
// by the exact AABB test, so the result equals the BroadPhaseAABB one.
func (sg *SpatialGrid) Pairs(bodies []*actor.RigidBody) []Pair {
	sg.Clear()
	for i, body := range bodies {
		sg.Insert(i, body)
	}

	seen := make(map[Pair]struct{}, len(bodies))
	pairs := make([]Pair, 0, len(bodies))
	consider := func(i, j int) {
		if i == j {
			return
		}
		pair := makePair(i, j)
		if _, ok := seen[pair]; ok {
			return
		}
		seen[pair] = struct{}{}

		a, b := bodies[pair.I], bodies[pair.J]
		if eligible(a, b) && a.Shape.GetAABB().Overlaps(b.Shape.GetAABB()) {
			pairs = append(pairs, pair)
		}
	}

	for _, cell := range sg.cells {
		for n, i := range cell.bodyIndices {
			for _, j := range cell.bodyIndices[n+1:] {
				consider(i, j)
			}
		}
	}
	for _, i := range sg.oversized {
		for j := range bodies {
			consider(i, j)
		}
	}

	slices.SortFunc(pairs, comparePairs)

	return pairs
}

func (sg *SpatialGrid) cellRange(aabb actor.AABB) (CellKey, CellKey) {
	return sg.worldToCell(aabb.Min), sg.worldToCell(aabb.Max)
}

func cellCount(minCell, maxCell CellKey) int {
	dx := maxCell.X - minCell.X + 1
	dy := maxCell.Y - minCell.Y + 1
	dz := maxCell.Z - minCell.Z + 1
	if dx <= 0 || dy <= 0 || dz <= 0 {
		return math.MaxInt
	}
	if dx > maxCellsPerBody || dy > maxCellsPerBody || dz > maxCellsPerBody {
		return math.MaxInt
	}
	return dx * dy * dz
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell maps a cell to a bucket with the classic three-prime spatial hash
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
