package config

import (
	"slices"

	"github.com/akmonengine/impulse"
)

var presets = map[string]func() *Scene{
	"drop": func() *Scene {
		s := DefaultScene()
		s.Name = "drop"
		s.Description = "a tilted box and a sphere fall on the ground"
		s.Steps = 1500
		s.Restitution = 0.3
		s.Bodies = []Body{
			ground(),
			{
				Name: "box", Shape: ShapeBox, HalfExtents: Vec3{0.5, 0.5, 0.5},
				Position: Vec3{0.1, 3, 0.05},
				Rotation: Rotation{Axis: Vec3{1, 0, 1}, Angle: 20},
			},
			{Name: "ball", Shape: ShapeSphere, Radius: 0.5, Position: Vec3{2, 4, 0}},
		}
		return s
	},
	"collide": func() *Scene {
		s := DefaultScene()
		s.Name = "collide"
		s.Description = "two spheres meet head-on without gravity"
		s.Dt = 0.001
		s.Gravity = Vec3{}
		s.Restitution = 1
		s.Bodies = []Body{
			{Name: "left", Shape: ShapeSphere, Radius: 0.5, Position: Vec3{-2, 0, 0}, Velocity: Vec3{2, 0, 0}},
			{Name: "right", Shape: ShapeSphere, Radius: 0.5, Position: Vec3{2, 0, 0}, Velocity: Vec3{-2, 0, 0}},
		}
		return s
	},
	"stack": func() *Scene {
		s := DefaultScene()
		s.Name = "stack"
		s.Description = "three boxes stacked on the ground"
		s.Dt = 0.001
		s.Steps = 2000
		s.Restitution = 0
		s.BroadPhase = impulse.BroadPhaseSpatialGrid.String()
		s.CellSize = 2
		s.Bodies = []Body{ground()}
		for i, name := range []string{"bottom", "middle", "top"} {
			s.Bodies = append(s.Bodies, Body{
				Name: name, Shape: ShapeBox, HalfExtents: Vec3{0.5, 0.5, 0.5},
				Position: Vec3{0.05 * float64(i), 0.5 + float64(i), 0},
			})
		}
		return s
	},
	"spin": func() *Scene {
		s := DefaultScene()
		s.Name = "spin"
		s.Description = "a box spins in free space around its intermediate axis"
		s.Dt = 0.01
		s.Gravity = Vec3{}
		s.Integrator = "implicit"
		s.Bodies = []Body{{
			Name: "box", Shape: ShapeBox, HalfExtents: Vec3{1, 0.5, 0.25},
			AngularVelocity: Vec3{0.05, 4, 0.05},
		}}
		return s
	},
}

// GetPreset returns a fresh copy of a named scene, nil if there is none
func GetPreset(name string) *Scene {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

// ListPresets returns the preset names, sorted
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
