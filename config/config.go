// Package config describes simulation scenes as YAML files and builds worlds from them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/actor"
	"github.com/akmonengine/impulse/integrator"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 0.002
	DefaultSteps       = 1000
	DefaultDensity     = 1.0
	DefaultRestitution = impulse.DefaultRestitution
	DefaultBroadPhase  = "sap"
	DefaultNarrowPhase = "mesh"
	DefaultIntegrator  = "symplectic"

	ShapeBox    = "box"
	ShapeSphere = "sphere"
)

// ErrInvalidScene is wrapped by every validation failure
var ErrInvalidScene = errors.New("config: invalid scene")

type Vec3 [3]float64

func (v Vec3) vec() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

func (v Vec3) finite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Rotation is an axis and an angle in degrees
type Rotation struct {
	Axis  Vec3    `yaml:"axis,flow"`
	Angle float64 `yaml:"angle"`
}

// Quat returns the rotation as a unit quaternion, identity for a zero angle or axis
func (r Rotation) Quat() mgl64.Quat {
	axis := r.Axis.vec()
	if r.Angle == 0 || axis.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(mgl64.DegToRad(r.Angle), axis.Normalize())
}

type Body struct {
	Name            string   `yaml:"name,omitempty"`
	Shape           string   `yaml:"shape"`
	HalfExtents     Vec3     `yaml:"half_extents,flow,omitempty"`
	Radius          float64  `yaml:"radius,omitempty"`
	Position        Vec3     `yaml:"position,flow"`
	Rotation        Rotation `yaml:"rotation,omitempty"`
	Velocity        Vec3     `yaml:"velocity,flow,omitempty"`
	AngularVelocity Vec3     `yaml:"angular_velocity,flow,omitempty"`
	// Density of a dynamic body, DefaultDensity when zero
	Density float64 `yaml:"density,omitempty"`
	Static  bool    `yaml:"static,omitempty"`
}

type Scene struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Dt          float64 `yaml:"dt"`
	Steps       int     `yaml:"steps"`
	Gravity     Vec3    `yaml:"gravity,flow"`
	BroadPhase  string  `yaml:"broad_phase"`
	NarrowPhase string  `yaml:"narrow_phase"`
	Integrator  string  `yaml:"integrator"`
	Restitution float64 `yaml:"restitution"`
	Workers     int     `yaml:"workers"`
	// CellSize of the spatial grid broad phase, impulse.DefaultCellSize when zero
	CellSize float64 `yaml:"cell_size,omitempty"`
	Bodies   []Body  `yaml:"bodies"`
}

// DefaultScene drops a box on a static ground box
func DefaultScene() *Scene {
	return &Scene{
		Name:        "default",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Gravity:     Vec3(impulse.DefaultGravity),
		BroadPhase:  DefaultBroadPhase,
		NarrowPhase: DefaultNarrowPhase,
		Integrator:  DefaultIntegrator,
		Restitution: DefaultRestitution,
		Workers:     impulse.DEFAULT_WORKERS,
		Bodies: []Body{
			ground(),
			{Name: "box", Shape: ShapeBox, HalfExtents: Vec3{0.5, 0.5, 0.5}, Position: Vec3{0, 2, 0}},
		},
	}
}

func ground() Body {
	return Body{
		Name:        "ground",
		Shape:       ShapeBox,
		HalfExtents: Vec3{10, 0.5, 10},
		Position:    Vec3{0, -0.5, 0},
		Static:      true,
	}
}

// Parse decodes a YAML scene over the defaults
func Parse(data []byte) (*Scene, error) {
	scene := DefaultScene()
	if err := yaml.Unmarshal(data, scene); err != nil {
		return nil, err
	}
	return scene, nil
}

func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	scene, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scene, nil
}

func Save(path string, scene *Scene) error {
	data, err := yaml.Marshal(scene)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the scene can be built and stepped
func (s *Scene) Validate() error {
	if !(s.Dt > 0) || math.IsInf(s.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidScene, s.Dt)
	}
	if s.Steps < 0 {
		return fmt.Errorf("%w: negative step count %d", ErrInvalidScene, s.Steps)
	}
	if !(s.Restitution >= 0 && s.Restitution <= 1) {
		return fmt.Errorf("%w: restitution must be in [0, 1], got %v", ErrInvalidScene, s.Restitution)
	}
	if !s.Gravity.finite() {
		return fmt.Errorf("%w: gravity %v", ErrInvalidScene, s.Gravity)
	}
	if s.CellSize < 0 {
		return fmt.Errorf("%w: negative cell size %v", ErrInvalidScene, s.CellSize)
	}
	if _, err := impulse.ParseBroadPhase(s.BroadPhase); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if _, err := impulse.ParseNarrowPhase(s.NarrowPhase); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if _, err := integrator.ParseMethod(s.Integrator); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	for i, b := range s.Bodies {
		if err := b.validate(); err != nil {
			return fmt.Errorf("%w: body %d (%s): %w", ErrInvalidScene, i, b.Name, err)
		}
	}
	return nil
}

func (b Body) validate() error {
	switch strings.ToLower(b.Shape) {
	case ShapeBox:
		for _, h := range b.HalfExtents {
			if !(h > 0) || math.IsInf(h, 0) {
				return fmt.Errorf("half extents must be positive, got %v", b.HalfExtents)
			}
		}
	case ShapeSphere:
		if !(b.Radius > 0) || math.IsInf(b.Radius, 0) {
			return fmt.Errorf("radius must be positive, got %v", b.Radius)
		}
	default:
		return fmt.Errorf("unknown shape %q", b.Shape)
	}

	if b.Density < 0 || math.IsNaN(b.Density) || math.IsInf(b.Density, 0) {
		return fmt.Errorf("density must be positive, got %v", b.Density)
	}
	for _, v := range []Vec3{b.Position, b.Velocity, b.AngularVelocity, b.Rotation.Axis} {
		if !v.finite() {
			return fmt.Errorf("non-finite vector %v", v)
		}
	}
	return nil
}

// Build validates the scene and returns a world holding its bodies, in order
func (s *Scene) Build() (*impulse.World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	w := impulse.NewWorld()
	w.Gravity = s.Gravity.vec()
	w.BroadPhase, _ = impulse.ParseBroadPhase(s.BroadPhase)
	w.NarrowPhase, _ = impulse.ParseNarrowPhase(s.NarrowPhase)
	w.Integrator, _ = integrator.ParseMethod(s.Integrator)
	w.Restitution = s.Restitution
	w.Workers = max(s.Workers, impulse.DEFAULT_WORKERS)
	if s.CellSize > 0 {
		w.SpatialGrid = impulse.NewSpatialGrid(s.CellSize, impulse.DefaultGridCells)
	}

	for i, b := range s.Bodies {
		body, err := b.build()
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, b.Name, err)
		}
		w.AddBody(body)
	}

	return w, nil
}

func (b Body) build() (*actor.RigidBody, error) {
	var shape actor.Shape
	switch strings.ToLower(b.Shape) {
	case ShapeBox:
		shape = actor.NewBox(b.HalfExtents.vec())
	case ShapeSphere:
		shape = actor.NewSphere(b.Radius)
	}

	bodyType := actor.BodyTypeDynamic
	if b.Static {
		bodyType = actor.BodyTypeStatic
	}
	density := b.Density
	if density == 0 {
		density = DefaultDensity
	}

	rb, err := actor.NewRigidBody(actor.NewTransformAt(b.Position.vec(), b.Rotation.Quat()), shape, bodyType, density)
	if err != nil {
		return nil, err
	}
	rb.SetVelocity(b.Velocity.vec())
	rb.SetAngularVelocity(b.AngularVelocity.vec())

	return rb, nil
}

// BodyIndex returns the position of the named body in Bodies, and in the built world
func (s *Scene) BodyIndex(name string) (int, bool) {
	for i, b := range s.Bodies {
		if b.Name == name {
			return i, true
		}
	}
	return -1, false
}
