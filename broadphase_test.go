package impulse

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func randomScene(tb testing.TB, seed int64, count int, extent float64) []*actor.RigidBody {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))

	bodies := make([]*actor.RigidBody, 0, count)
	for i := 0; i < count; i++ {
		position := mgl64.Vec3{rng.Float64() * extent, rng.Float64() * extent, rng.Float64() * extent}
		bodyType := actor.BodyTypeDynamic
		if rng.Intn(4) == 0 {
			bodyType = actor.BodyTypeStatic
		}

		if rng.Intn(2) == 0 {
			half := mgl64.Vec3{0.2 + rng.Float64()*2, 0.2 + rng.Float64()*2, 0.2 + rng.Float64()*2}
			rotation := mgl64.QuatRotate(rng.Float64()*3, mgl64.Vec3{rng.Float64(), 1, rng.Float64()}.Normalize())
			bodies = append(bodies, createRotatedBox(tb, position, half, rotation, bodyType))
		} else {
			bodies = append(bodies, createSphere(tb, position, 0.2+rng.Float64()*1.5, bodyType))
		}
	}
	return bodies
}

func mustBroadPhase(t *testing.T, method BroadPhaseMethod, bodies []*actor.RigidBody, grid *SpatialGrid) []Pair {
	t.Helper()
	pairs, err := BroadPhase(method, bodies, grid)
	if err != nil {
		t.Fatalf("BroadPhase(%v) error = %v", method, err)
	}
	return pairs
}

// =============================================================================
// Equivalence Tests
// =============================================================================

func TestBroadPhase_Equivalence(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		bodies := randomScene(t, seed, 80, 15)

		none := mustBroadPhase(t, BroadPhaseNone, bodies, nil)
		aabb := mustBroadPhase(t, BroadPhaseAABB, bodies, nil)
		sap := mustBroadPhase(t, BroadPhaseSweepAndPrune, bodies, nil)
		grid := mustBroadPhase(t, BroadPhaseSpatialGrid, bodies, NewSpatialGrid(2.0, 64))

		if !slices.Equal(sap, aabb) {
			t.Fatalf("seed %d: sweep and prune %d pairs, aabb %d pairs", seed, len(sap), len(aabb))
		}
		if !slices.Equal(grid, aabb) {
			t.Fatalf("seed %d: grid %d pairs, aabb %d pairs", seed, len(grid), len(aabb))
		}
		for _, p := range aabb {
			if _, found := slices.BinarySearchFunc(none, p, comparePairs); !found {
				t.Fatalf("seed %d: aabb pair %v missing from none", seed, p)
			}
		}
	}
}

func TestBroadPhase_PairsAreSortedAndEligible(t *testing.T) {
	bodies := randomScene(t, 42, 60, 10)

	for _, method := range []BroadPhaseMethod{BroadPhaseNone, BroadPhaseAABB, BroadPhaseSweepAndPrune, BroadPhaseSpatialGrid} {
		t.Run(method.String(), func(t *testing.T) {
			pairs := mustBroadPhase(t, method, bodies, nil)
			if !slices.IsSortedFunc(pairs, comparePairs) {
				t.Error("pairs are not sorted")
			}
			for i, p := range pairs {
				if p.I >= p.J {
					t.Errorf("pair %v is not ordered", p)
				}
				if i > 0 && pairs[i-1] == p {
					t.Errorf("pair %v is duplicated", p)
				}
				if bodies[p.I].IsStatic() && bodies[p.J].IsStatic() {
					t.Errorf("static pair %v", p)
				}
			}
		})
	}
}

func TestSweepAndPrune_LongInterval(t *testing.T) {
	// the long box overlaps the last one although the middle one ends before it starts
	bodies := []*actor.RigidBody{
		createBox(t, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{5, 1, 1}, actor.BodyTypeDynamic),
		createBox(t, mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{0.5, 1, 1}, actor.BodyTypeDynamic),
		createBox(t, mgl64.Vec3{3.5, 0, 0}, mgl64.Vec3{0.5, 1, 1}, actor.BodyTypeDynamic),
	}

	got := sweepAndPrune(bodies)
	want := []Pair{{0, 1}, {0, 2}}
	if !slices.Equal(got, want) {
		t.Errorf("sweepAndPrune() = %v, want %v", got, want)
	}
}

func TestBroadPhase_TouchingBoxesOverlap(t *testing.T) {
	bodies := []*actor.RigidBody{
		createBox(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic),
		createBox(t, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic),
	}

	for _, method := range []BroadPhaseMethod{BroadPhaseAABB, BroadPhaseSweepAndPrune, BroadPhaseSpatialGrid} {
		if pairs := mustBroadPhase(t, method, bodies, nil); len(pairs) != 1 {
			t.Errorf("%v: got %v, want one pair", method, pairs)
		}
	}
}

func TestBroadPhase_ExcludesStaticPairs(t *testing.T) {
	bodies := []*actor.RigidBody{
		createBox(t, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeStatic),
		createBox(t, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeStatic),
		createBox(t, mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{1, 1, 1}, actor.BodyTypeDynamic),
	}

	for _, method := range []BroadPhaseMethod{BroadPhaseNone, BroadPhaseAABB, BroadPhaseSweepAndPrune, BroadPhaseSpatialGrid} {
		got := mustBroadPhase(t, method, bodies, nil)
		want := []Pair{{0, 2}, {1, 2}}
		if !slices.Equal(got, want) {
			t.Errorf("%v: got %v, want %v", method, got, want)
		}
	}
}

func TestBroadPhase_UnknownMethod(t *testing.T) {
	if _, err := BroadPhase(BroadPhaseMethod(99), nil, nil); !errors.Is(err, ErrUnknownBroadPhase) {
		t.Errorf("error = %v, want ErrUnknownBroadPhase", err)
	}
}

func TestParseBroadPhase(t *testing.T) {
	tests := []struct {
		in   string
		want BroadPhaseMethod
	}{
		{"none", BroadPhaseNone},
		{"AABB", BroadPhaseAABB},
		{"sap", BroadPhaseSweepAndPrune},
		{"sweep-and-prune", BroadPhaseSweepAndPrune},
		{"grid", BroadPhaseSpatialGrid},
	}

	for _, tt := range tests {
		got, err := ParseBroadPhase(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseBroadPhase(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
		if back, err := ParseBroadPhase(got.String()); err != nil || back != got {
			t.Errorf("String() of %v does not parse back", got)
		}
	}

	if _, err := ParseBroadPhase("octree"); !errors.Is(err, ErrUnknownBroadPhase) {
		t.Errorf("error = %v, want ErrUnknownBroadPhase", err)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func benchmarkBroadPhase(b *testing.B, method BroadPhaseMethod) {
	bodies := randomScene(b, 0, 1000, 100)
	grid := NewSpatialGrid(6.0, 4096)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BroadPhase(method, bodies, grid); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBroadPhaseAABB(b *testing.B)          { benchmarkBroadPhase(b, BroadPhaseAABB) }
func BenchmarkBroadPhaseSweepAndPrune(b *testing.B) { benchmarkBroadPhase(b, BroadPhaseSweepAndPrune) }
func BenchmarkBroadPhaseSpatialGrid(b *testing.B)   { benchmarkBroadPhase(b, BroadPhaseSpatialGrid) }
