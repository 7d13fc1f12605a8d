package impulse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/akmonengine/impulse/actor"
)

// BroadPhaseMethod selects how candidate pairs are pruned
type BroadPhaseMethod int

const (
	// BroadPhaseNone keeps every pair with a dynamic member
	BroadPhaseNone BroadPhaseMethod = iota
	// BroadPhaseAABB keeps the pairs whose bounding boxes overlap, testing all of them
	BroadPhaseAABB
	// BroadPhaseSweepAndPrune sorts the box intervals on each axis and intersects the overlaps
	BroadPhaseSweepAndPrune
	// BroadPhaseSpatialGrid hashes the boxes into a uniform grid
	BroadPhaseSpatialGrid
)

func (m BroadPhaseMethod) String() string {
	switch m {
	case BroadPhaseNone:
		return "none"
	case BroadPhaseAABB:
		return "aabb"
	case BroadPhaseSweepAndPrune:
		return "sap"
	case BroadPhaseSpatialGrid:
		return "grid"
	}
	return fmt.Sprintf("BroadPhaseMethod(%d)", int(m))
}

// ParseBroadPhase accepts the method names, case-insensitive
func ParseBroadPhase(s string) (BroadPhaseMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "all":
		return BroadPhaseNone, nil
	case "aabb":
		return BroadPhaseAABB, nil
	case "sap", "sweep-and-prune", "sweepandprune":
		return BroadPhaseSweepAndPrune, nil
	case "grid", "spatial-grid", "spatialgrid":
		return BroadPhaseSpatialGrid, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBroadPhase, s)
}

// Pair is an unordered candidate pair of body indices, I < J
type Pair struct {
	I, J int
}

func makePair(i, j int) Pair {
	if j < i {
		i, j = j, i
	}
	return Pair{I: i, J: j}
}

func comparePairs(a, b Pair) int {
	if a.I != b.I {
		return a.I - b.I
	}
	return a.J - b.J
}

// eligible reports whether a pair may ever need resolution
func eligible(a, b *actor.RigidBody) bool {
	return !a.IsStatic() || !b.IsStatic()
}

// BroadPhase returns the candidate pairs of bodies, sorted and without duplicates.
// The bodies' AABBs must be up to date. grid is only used by BroadPhaseSpatialGrid; a nil grid
// falls back to a default one.
func BroadPhase(method BroadPhaseMethod, bodies []*actor.RigidBody, grid *SpatialGrid) ([]Pair, error) {
	switch method {
	case BroadPhaseNone:
		return allPairs(bodies), nil
	case BroadPhaseAABB:
		return overlappingPairs(bodies), nil
	case BroadPhaseSweepAndPrune:
		return sweepAndPrune(bodies), nil
	case BroadPhaseSpatialGrid:
		if grid == nil {
			grid = NewSpatialGrid(DefaultCellSize, DefaultGridCells)
		}
		return grid.Pairs(bodies), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownBroadPhase, method)
}

func allPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies))
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if eligible(bodies[i], bodies[j]) {
				pairs = append(pairs, Pair{I: i, J: j})
			}
		}
	}
	return pairs
}

func overlappingPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies))
	for i := 0; i < len(bodies); i++ {
		aabb := bodies[i].Shape.GetAABB()
		for j := i + 1; j < len(bodies); j++ {
			if eligible(bodies[i], bodies[j]) && aabb.Overlaps(bodies[j].Shape.GetAABB()) {
				pairs = append(pairs, Pair{I: i, J: j})
			}
		}
	}
	return pairs
}

type interval struct {
	min, max float64
	index    int
}

// sweepAndPrune intersects the three per-axis overlap sets.
// Each axis is swept in order of interval start with an active list: an interval leaves the
// list once it ends before the current start, as no later interval can reach it.
func sweepAndPrune(bodies []*actor.RigidBody) []Pair {
	axisHits := make(map[Pair]uint8, len(bodies))
	intervals := make([]interval, len(bodies))
	active := make([]interval, 0, len(bodies))

	for axis := 0; axis < 3; axis++ {
		for i, body := range bodies {
			lo, hi := body.Shape.GetAABB().Interval(axis)
			intervals[i] = interval{min: lo, max: hi, index: i}
		}
		slices.SortFunc(intervals, func(a, b interval) int {
			switch {
			case a.min < b.min:
				return -1
			case a.min > b.min:
				return 1
			}
			return a.index - b.index
		})

		active = active[:0]
		for _, current := range intervals {
			kept := active[:0]
			for _, other := range active {
				if other.max < current.min {
					continue
				}
				kept = append(kept, other)

				pair := makePair(other.index, current.index)
				// a pair only counts on this axis if it overlapped on all previous ones
				if axisHits[pair] == uint8(axis) {
					axisHits[pair]++
				}
			}
			active = append(kept, current)
		}
	}

	pairs := make([]Pair, 0, len(axisHits))
	for pair, hits := range axisHits {
		if hits == 3 && eligible(bodies[pair.I], bodies[pair.J]) {
			pairs = append(pairs, pair)
		}
	}
	slices.SortFunc(pairs, comparePairs)

	return pairs
}
