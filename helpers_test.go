package impulse

import (
	"math"
	"testing"

	"github.com/akmonengine/impulse/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Test helper functions
func createBox(tb testing.TB, position mgl64.Vec3, halfExtents mgl64.Vec3, bodyType actor.BodyType) *actor.RigidBody {
	tb.Helper()
	return createRotatedBox(tb, position, halfExtents, mgl64.QuatIdent(), bodyType)
}

func createRotatedBox(tb testing.TB, position mgl64.Vec3, halfExtents mgl64.Vec3, rotation mgl64.Quat, bodyType actor.BodyType) *actor.RigidBody {
	tb.Helper()
	rb, err := actor.NewRigidBody(actor.NewTransformAt(position, rotation), actor.NewBox(halfExtents), bodyType, 1.0)
	if err != nil {
		tb.Fatalf("NewRigidBody() error = %v", err)
	}
	return rb
}

func createSphere(tb testing.TB, position mgl64.Vec3, radius float64, bodyType actor.BodyType) *actor.RigidBody {
	tb.Helper()
	rb, err := actor.NewRigidBody(actor.NewTransformAt(position, mgl64.QuatIdent()), actor.NewSphere(radius), bodyType, 1.0)
	if err != nil {
		tb.Fatalf("NewRigidBody() error = %v", err)
	}
	return rb
}

// newTestWorld returns a world without gravity holding the bodies
func newTestWorld(bodies ...*actor.RigidBody) *World {
	w := NewWorld()
	w.Gravity = mgl64.Vec3{}
	for _, b := range bodies {
		w.AddBody(b)
	}
	return w
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}
