package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/config"
	"github.com/spf13/cobra"
)

// loadScene starts from the preset, then the config file, then the flags the user set
func loadScene(cmd *cobra.Command) (*config.Scene, error) {
	scene := config.DefaultScene()

	if preset != "" {
		scene = config.GetPreset(preset)
		if scene == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		scene = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		scene.Dt = dt
	}
	if flags.Changed("steps") {
		scene.Steps = steps
	}
	if flags.Changed("broad") {
		scene.BroadPhase = broadPhase
	}
	if flags.Changed("narrow") {
		scene.NarrowPhase = narrowPhase
	}
	if flags.Changed("integrator") {
		scene.Integrator = integrator
	}
	if flags.Changed("restitution") {
		scene.Restitution = restitution
	}
	if flags.Changed("workers") {
		scene.Workers = workers
	}

	if err := scene.Validate(); err != nil {
		return nil, err
	}
	return scene, nil
}

// simulate builds the scene and steps it, calling observe after every step.
// Step errors that leave the world usable are logged; the others stop the run.
func simulate(scene *config.Scene, logger *slog.Logger, observe func(step int, w *impulse.World)) (*impulse.World, error) {
	w, err := scene.Build()
	if err != nil {
		return nil, err
	}
	w.Logger = logger

	if observe != nil {
		observe(0, w)
	}
	for step := 1; step <= scene.Steps; step++ {
		err := w.Step(scene.Dt)
		var stepErr *impulse.StepError
		switch {
		case errors.As(err, &stepErr):
			logger.Warn("step completed with errors", slog.Int("step", stepErr.Step), slog.Any("error", stepErr.Err))
		case err != nil:
			return w, err
		}

		if observe != nil {
			observe(step, w)
		}
	}

	return w, nil
}

// followedBody returns the index of the named body, or of the first dynamic one
func followedBody(scene *config.Scene, name string) (int, error) {
	if name != "" {
		i, ok := scene.BodyIndex(name)
		if !ok {
			return 0, fmt.Errorf("no body named %q", name)
		}
		return i, nil
	}
	for i, b := range scene.Bodies {
		if !b.Static {
			return i, nil
		}
	}
	return 0, errors.New("the scene has no dynamic body")
}

func bodyLabel(scene *config.Scene, i int) string {
	if name := scene.Bodies[i].Name; name != "" {
		return name
	}
	return fmt.Sprintf("body%d", i)
}
