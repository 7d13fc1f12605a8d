package actor

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// BodyType Tests
// =============================================================================

func TestBodyType_Constants(t *testing.T) {
	if BodyTypeDynamic == BodyTypeStatic {
		t.Error("BodyTypeDynamic and BodyTypeStatic should have different values")
	}
	if BodyTypeDynamic.String() != "dynamic" || BodyTypeStatic.String() != "static" {
		t.Errorf("unexpected names %q %q", BodyTypeDynamic, BodyTypeStatic)
	}
}

// =============================================================================
// NewRigidBody Tests
// =============================================================================

func TestNewRigidBody_Dynamic(t *testing.T) {
	transform := NewTransformAt(mgl64.Vec3{1, 2, 3}, mgl64.QuatIdent())
	sphere := NewSphere(1.0)
	density := 2.0

	rb, err := NewRigidBody(transform, sphere, BodyTypeDynamic, density)
	if err != nil {
		t.Fatalf("NewRigidBody() error = %v", err)
	}

	expectedMass := sphere.ComputeMass(density)
	if !almostEqual(rb.Mass, expectedMass, 1e-10) {
		t.Errorf("Mass = %v, want %v", rb.Mass, expectedMass)
	}
	if !almostEqual(rb.MassInverse, 1.0/expectedMass, 1e-10) {
		t.Errorf("MassInverse = %v, want %v", rb.MassInverse, 1.0/expectedMass)
	}

	product := rb.InertiaBody.Mul3(rb.InverseInertiaBody)
	if !product.ApproxEqualThreshold(mgl64.Ident3(), 1e-9) {
		t.Errorf("InertiaBody * InverseInertiaBody = %v, want identity", product)
	}

	if rb.Shape.GetAABB() == (AABB{}) {
		t.Error("AABB should be computed on creation")
	}
}

func TestNewRigidBody_Static(t *testing.T) {
	rb, err := NewRigidBody(NewTransform(), NewBox(mgl64.Vec3{2, 2, 2}), BodyTypeStatic, 1.5)
	if err != nil {
		t.Fatalf("NewRigidBody() error = %v", err)
	}

	if !math.IsInf(rb.Mass, 1) {
		t.Errorf("Mass = %v, want +Inf for static body", rb.Mass)
	}
	if rb.MassInverse != 0 {
		t.Errorf("MassInverse = %v, want 0 for static body", rb.MassInverse)
	}
	if rb.InverseInertiaWorld() != (mgl64.Mat3{}) {
		t.Errorf("InverseInertiaWorld() = %v, want zero", rb.InverseInertiaWorld())
	}
}

func TestNewRigidBody_InvalidDensity(t *testing.T) {
	tests := []struct {
		name    string
		density float64
	}{
		{"zero", 0},
		{"negative", -1},
		{"infinite", math.Inf(1)},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRigidBody(NewTransform(), NewBox(mgl64.Vec3{1, 1, 1}), BodyTypeDynamic, tt.density)
			if !errors.Is(err, ErrInvalidMass) {
				t.Errorf("error = %v, want ErrInvalidMass", err)
			}
		})
	}
}

func TestNewRigidBody_NormalizesRotation(t *testing.T) {
	transform := Transform{Rotation: mgl64.Quat{W: 2, V: mgl64.Vec3{0, 2, 0}}}
	rb, err := NewRigidBody(transform, NewBox(mgl64.Vec3{1, 1, 1}), BodyTypeDynamic, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(rb.Transform.Rotation.Len(), 1, 1e-12) {
		t.Errorf("|rotation| = %v, want 1", rb.Transform.Rotation.Len())
	}
}

// =============================================================================
// Momentum / velocity Tests
// =============================================================================

func TestSetVelocity_UpdatesMomentum(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{}, BodyTypeDynamic)

	rb.SetVelocity(mgl64.Vec3{1, 2, 3})
	if !vec3AlmostEqual(rb.LinearMomentum, mgl64.Vec3{1, 2, 3}.Mul(rb.Mass), 1e-10) {
		t.Errorf("LinearMomentum = %v", rb.LinearMomentum)
	}

	rb.SetAngularVelocity(mgl64.Vec3{0, 1, 0})
	want := rb.InertiaWorld().Mul3x1(mgl64.Vec3{0, 1, 0})
	if !vec3AlmostEqual(rb.AngularMomentum, want, 1e-10) {
		t.Errorf("AngularMomentum = %v, want %v", rb.AngularMomentum, want)
	}

	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
	rb.SyncVelocities()
	if !vec3AlmostEqual(rb.Velocity, mgl64.Vec3{1, 2, 3}, 1e-10) {
		t.Errorf("SyncVelocities() Velocity = %v", rb.Velocity)
	}
	if !vec3AlmostEqual(rb.AngularVelocity, mgl64.Vec3{0, 1, 0}, 1e-10) {
		t.Errorf("SyncVelocities() AngularVelocity = %v", rb.AngularVelocity)
	}
}

func TestSetVelocity_StaticIgnored(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{}, BodyTypeStatic)
	rb.SetVelocity(mgl64.Vec3{1, 0, 0})
	rb.SetAngularVelocity(mgl64.Vec3{1, 0, 0})

	if rb.Velocity != (mgl64.Vec3{}) || rb.AngularVelocity != (mgl64.Vec3{}) {
		t.Error("static body must not get a velocity")
	}
}

// =============================================================================
// Force accumulation Tests
// =============================================================================

func TestAddForceAtPoint(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{1, 0, 0}, BodyTypeDynamic)

	rb.AddForceAtPoint(mgl64.Vec3{0, 10, 0}, mgl64.Vec3{2, 0, 0})

	if !vec3AlmostEqual(rb.Force(), mgl64.Vec3{0, 10, 0}, 1e-12) {
		t.Errorf("Force() = %v", rb.Force())
	}
	// r = (1,0,0), r × f = (0,0,10)
	if !vec3AlmostEqual(rb.Torque(), mgl64.Vec3{0, 0, 10}, 1e-12) {
		t.Errorf("Torque() = %v", rb.Torque())
	}

	rb.ClearForces()
	if rb.Force() != (mgl64.Vec3{}) || rb.Torque() != (mgl64.Vec3{}) {
		t.Error("ClearForces() should zero both accumulators")
	}
}

func TestAddForce_StaticIgnored(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{}, BodyTypeStatic)
	rb.AddForce(mgl64.Vec3{1, 1, 1})
	rb.AddTorque(mgl64.Vec3{1, 1, 1})
	rb.AddForceAtPoint(mgl64.Vec3{1, 1, 1}, mgl64.Vec3{3, 0, 0})

	if rb.Force() != (mgl64.Vec3{}) || rb.Torque() != (mgl64.Vec3{}) {
		t.Error("static body must not accumulate forces")
	}
}

func TestVelocityAt(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{}, BodyTypeDynamic)
	rb.SetVelocity(mgl64.Vec3{1, 0, 0})
	rb.SetAngularVelocity(mgl64.Vec3{0, 0, 1})

	// w × r = (0,0,1) × (0,1,0) = (-1,0,0)
	got := rb.VelocityAt(mgl64.Vec3{0, 1, 0})
	if !vec3AlmostEqual(got, mgl64.Vec3{0, 0, 0}, 1e-12) {
		t.Errorf("VelocityAt() = %v, want zero", got)
	}
}

// =============================================================================
// Inertia Tests
// =============================================================================

func TestInertiaWorld_WithRotation(t *testing.T) {
	shape := NewBox(mgl64.Vec3{1, 2, 3})
	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	rb, err := NewRigidBody(NewTransformAt(mgl64.Vec3{}, rotation), shape, BodyTypeDynamic, 1)
	if err != nil {
		t.Fatal(err)
	}

	world := rb.InertiaWorld()
	// a quarter turn around Z swaps the X and Y principal moments
	if !almostEqual(world.At(0, 0), rb.InertiaBody.At(1, 1), 1e-9) ||
		!almostEqual(world.At(1, 1), rb.InertiaBody.At(0, 0), 1e-9) {
		t.Errorf("InertiaWorld() = %v, body %v", world, rb.InertiaBody)
	}

	product := world.Mul3(rb.InverseInertiaWorld())
	if !product.ApproxEqualThreshold(mgl64.Ident3(), 1e-9) {
		t.Errorf("I_world * I_world^-1 = %v, want identity", product)
	}
}

func TestKineticEnergy(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{}, BodyTypeDynamic)
	rb.SetVelocity(mgl64.Vec3{2, 0, 0})

	want := 0.5 * rb.Mass * 4
	if !almostEqual(rb.KineticEnergy(), want, 1e-10) {
		t.Errorf("KineticEnergy() = %v, want %v", rb.KineticEnergy(), want)
	}

	static := newTestBox(t, mgl64.Vec3{}, BodyTypeStatic)
	if static.KineticEnergy() != 0 {
		t.Error("static body has no kinetic energy")
	}
}

func TestSupportWorld_Box_WithRotation(t *testing.T) {
	rotation := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	rb, err := NewRigidBody(NewTransformAt(mgl64.Vec3{5, 0, 0}, rotation), NewBox(mgl64.Vec3{1, 1, 1}), BodyTypeDynamic, 1)
	if err != nil {
		t.Fatal(err)
	}

	support := rb.SupportWorld(mgl64.Vec3{1, 0, 0})
	// a box corner points along +X after a 45° yaw
	if !almostEqual(support.X(), 5+math.Sqrt2, 1e-9) {
		t.Errorf("SupportWorld().X = %v, want %v", support.X(), 5+math.Sqrt2)
	}
}

func TestIsFinite(t *testing.T) {
	rb := newTestBox(t, mgl64.Vec3{}, BodyTypeDynamic)
	if !rb.IsFinite() {
		t.Fatal("fresh body should be finite")
	}
	rb.Velocity = mgl64.Vec3{math.NaN(), 0, 0}
	if rb.IsFinite() {
		t.Error("NaN velocity should be reported")
	}
}

// =============================================================================
// Helpers
// =============================================================================

func newTestBox(t *testing.T, position mgl64.Vec3, bodyType BodyType) *RigidBody {
	t.Helper()
	rb, err := NewRigidBody(NewTransformAt(position, mgl64.QuatIdent()), NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), bodyType, 1.0)
	if err != nil {
		t.Fatalf("NewRigidBody() error = %v", err)
	}
	return rb
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// Helper function to compare Vec3 with epsilon tolerance
func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}
