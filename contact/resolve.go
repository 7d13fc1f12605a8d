package contact

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrRestitution is returned for a restitution coefficient outside [0, 1]
	ErrRestitution = errors.New("contact: restitution must be in [0, 1]")
	// ErrStepSize is returned for a non-positive step size
	ErrStepSize = errors.New("contact: step size must be positive")
)

// Stats counts what Resolve did with each contact of the list
type Stats struct {
	Applied    int
	Separating int
	// Skipped contacts had non-finite data or no effective mass along the normal
	Skipped int
}

// Validate checks the restitution coefficient and the step size
func Validate(eps, dt float64) error {
	if !(eps >= 0 && eps <= 1) {
		return fmt.Errorf("%w: got %v", ErrRestitution, eps)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrStepSize, dt)
	}
	return nil
}

// RelativeVelocity returns n·(v_B(p) - v_A(p)). It is positive while the bodies approach.
func RelativeVelocity(c Contact) float64 {
	return c.Normal.Dot(c.B.VelocityAt(c.Point).Sub(c.A.VelocityAt(c.Point)))
}

// EffectiveMass returns K, the inverse mass seen by an impulse along the contact normal
func EffectiveMass(c Contact) float64 {
	rA := c.Point.Sub(c.A.Transform.Position)
	rB := c.Point.Sub(c.B.Transform.Position)

	angularA := c.A.InverseInertiaWorld().Mul3x1(rA.Cross(c.Normal)).Cross(rA)
	angularB := c.B.InverseInertiaWorld().Mul3x1(rB.Cross(c.Normal)).Cross(rB)

	return c.A.MassInverse + c.B.MassInverse + c.Normal.Dot(angularA) + c.Normal.Dot(angularB)
}

// Impulse returns j = -(1+eps)·vrel/K for an approaching contact.
// ok is false when the contact is separating or has no effective mass.
func Impulse(c Contact, eps float64) (j float64, ok bool) {
	vrel := RelativeVelocity(c)
	if vrel < 0 {
		return 0, false
	}

	k := EffectiveMass(c)
	if !(k > 0) {
		return 0, false
	}

	return -(1 + eps) * vrel / k, true
}

// Resolve applies, in list order, one impulse per approaching contact.
// The impulse is turned into the force j·n/dt: -force is applied at the contact point on A
// and +force on B, through the bodies' force accumulators.
func Resolve(contacts []Contact, eps, dt float64) (Stats, error) {
	var stats Stats

	if err := Validate(eps, dt); err != nil {
		return stats, err
	}

	for _, c := range contacts {
		if c.A == nil || c.B == nil || !c.IsFinite() {
			stats.Skipped++
			continue
		}

		vrel := RelativeVelocity(c)
		if math.IsNaN(vrel) {
			stats.Skipped++
			continue
		}
		if vrel < 0 {
			stats.Separating++
			continue
		}

		j, ok := Impulse(c, eps)
		if !ok || math.IsNaN(j) || math.IsInf(j, 0) {
			stats.Skipped++
			continue
		}

		force := c.Normal.Mul(j / dt)
		c.A.AddForceAtPoint(force.Mul(-1), c.Point)
		c.B.AddForceAtPoint(force, c.Point)
		stats.Applied++
	}

	return stats, nil
}
