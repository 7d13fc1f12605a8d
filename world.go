package impulse

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/contact"
	"github.com/akmonengine/impulse/integrator"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

const DefaultRestitution = 0.5

// DefaultGravity is the standard gravity along -Y
var DefaultGravity = mgl64.Vec3{0, -9.81, 0}

type World struct {
	// List of all rigid bodies in the world, indexed by the broad phase pairs
	Bodies []*actor.RigidBody
	// Gravity acceleration (m/s², or N/kg)
	Gravity mgl64.Vec3

	BroadPhase  BroadPhaseMethod
	NarrowPhase NarrowPhaseMethod
	Integrator  integrator.Method
	// Restitution is eps in [0, 1], 0 inelastic, 1 elastic
	Restitution float64

	SpatialGrid *SpatialGrid
	Workers     int

	// Logger receives per-step diagnostics, nil discards them
	Logger *slog.Logger
	Events Events

	nextID  int
	steps   int
	time    float64
	session Session
}

// NewWorld creates an empty world with standard gravity, sweep and prune, the mesh narrow
// phase and symplectic Euler.
func NewWorld() *World {
	return &World{
		Gravity:     DefaultGravity,
		BroadPhase:  BroadPhaseSweepAndPrune,
		NarrowPhase: NarrowPhaseMesh,
		Integrator:  integrator.Symplectic,
		Restitution: DefaultRestitution,
		SpatialGrid: NewSpatialGrid(DefaultCellSize, DefaultGridCells),
		Workers:     DEFAULT_WORKERS,
		Events:      NewEvents(),
	}
}

// AddBody adds a rigid body to the world and assigns its ID
func (w *World) AddBody(body *actor.RigidBody) {
	w.nextID++
	body.ID = w.nextID
	w.Bodies = append(w.Bodies, body)
}

// RemoveBody removes a rigid body from the world
func (w *World) RemoveBody(body *actor.RigidBody) {
	k := -1
	for i, b := range w.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		w.Bodies = append(w.Bodies[:k], w.Bodies[k+1:]...)
	}

	w.Events.forget(body)
}

// Steps returns the number of completed steps
func (w *World) Steps() int {
	return w.steps
}

// Time returns the simulated time
func (w *World) Time() float64 {
	return w.time
}

// Step advances the world by dt:
//  1. clear the force and torque accumulators
//  2. broad phase, narrow phase, contact resolution
//  3. add gravity to dynamic bodies
//  4. integrate every dynamic body
//  5. refresh the AABBs and emit the contact events
//
// Gravity is added after resolution, so contact forces are computed from the velocities at the
// start of the step. Invalid parameters abort the step before any body is touched. Any other
// failure, such as an unsupported shape or a diverged body, is collected and returned as a
// *StepError once the step is complete.
func (w *World) Step(dt float64) error {
	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	if w.Events.listeners == nil {
		w.Events = NewEvents()
	}

	if err := w.validate(dt); err != nil {
		return err
	}

	for _, body := range w.Bodies {
		body.ClearForces()
	}

	var errs []error
	contacts, err := w.ComputeCollisionDetection(w.BroadPhase, w.NarrowPhase, w.Restitution, dt)
	if err != nil {
		errs = append(errs, err)
	}

	w.applyGravity()
	errs = append(errs, w.integrate(w.Integrator.Func(), dt)...)

	for _, body := range w.Bodies {
		body.UpdateAABB()
	}

	w.Events.recordContacts(contacts)
	w.Events.flush()

	w.steps++
	w.time += dt

	if len(errs) > 0 {
		return &StepError{Step: w.steps, Time: w.time, Err: errors.Join(errs...)}
	}
	return nil
}

// validate rejects the parameters that would make the step meaningless
func (w *World) validate(dt float64) error {
	if err := contact.Validate(w.Restitution, dt); err != nil {
		return err
	}
	if _, err := w.NarrowPhase.Strategy(); err != nil {
		return err
	}
	if w.BroadPhase < BroadPhaseNone || w.BroadPhase > BroadPhaseSpatialGrid {
		return fmt.Errorf("%w: %v", ErrUnknownBroadPhase, w.BroadPhase)
	}
	if w.Integrator.Func() == nil {
		return fmt.Errorf("%w: %v", ErrUnknownIntegrator, w.Integrator)
	}
	return nil
}

func (w *World) applyGravity() {
	for _, body := range w.Bodies {
		if !body.IsStatic() {
			body.AddForce(w.Gravity.Mul(body.Mass))
		}
	}
}

// integrate advances every dynamic body. Bodies are independent, so they run on the workers.
func (w *World) integrate(fn integrator.Func, dt float64) []error {
	errs := make([]error, len(w.Bodies))

	task(w.Workers, w.Bodies, func(i int, body *actor.RigidBody) {
		if body.IsStatic() {
			return
		}
		next, err := fn(*body, dt)
		*body = next
		if err != nil {
			errs[i] = fmt.Errorf("body %d: %w", body.ID, err)
		}
	})

	var out []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, integrator.ErrSingularJacobian) {
			w.logger().Warn("implicit solve fell back to symplectic Euler", slog.Any("error", err))
		} else {
			w.logger().Warn("integration failed", slog.Any("error", err))
		}
		out = append(out, err)
	}

	return out
}

// TotalLinearMomentum sums the linear momentum of the dynamic bodies
func (w *World) TotalLinearMomentum() mgl64.Vec3 {
	var total mgl64.Vec3
	for _, body := range w.Bodies {
		if !body.IsStatic() {
			total = total.Add(body.LinearMomentum)
		}
	}
	return total
}

// TotalKineticEnergy sums the kinetic energy of every body
func (w *World) TotalKineticEnergy() float64 {
	total := 0.0
	for _, body := range w.Bodies {
		total += body.KineticEnergy()
	}
	return total
}

func (w *World) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return w.Logger
}
