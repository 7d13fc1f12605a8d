package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/config"
	"github.com/spf13/cobra"
)

func parseSceneFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configFile, preset = "", ""

	cmd := &cobra.Command{Use: "test"}
	sceneFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cmd
}

func TestLoadScene_PresetWithOverrides(t *testing.T) {
	cmd := parseSceneFlags(t, "--preset", "collide", "--steps", "5", "--narrow", "gjk")

	scene, err := loadScene(cmd)
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}
	if scene.Name != "collide" || scene.Steps != 5 || scene.NarrowPhase != "gjk" {
		t.Errorf("scene = %+v", scene)
	}
	// flags left alone keep the preset values
	if scene.Dt != config.GetPreset("collide").Dt || scene.Restitution != 1 {
		t.Errorf("dt = %v, restitution = %v", scene.Dt, scene.Restitution)
	}
}

func TestLoadScene_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	saved := config.GetPreset("spin")
	if err := config.Save(path, saved); err != nil {
		t.Fatal(err)
	}

	cmd := parseSceneFlags(t, "--config", path, "--integrator", "explicit")
	scene, err := loadScene(cmd)
	if err != nil {
		t.Fatalf("loadScene() error = %v", err)
	}
	if scene.Name != "spin" || scene.Integrator != "explicit" {
		t.Errorf("scene = %+v", scene)
	}
}

func TestLoadScene_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown preset", []string{"--preset", "nope"}},
		{"missing config", []string{"--config", "/nonexistent/scene.yaml"}},
		{"invalid override", []string{"--dt=-1"}},
		{"unknown broad phase", []string{"--broad", "octree"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadScene(parseSceneFlags(t, tt.args...)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSimulate_ObservesEveryStep(t *testing.T) {
	scene := config.GetPreset("collide")
	scene.Steps = 10

	var seen []int
	w, err := simulate(scene, slog.New(slog.NewTextHandler(io.Discard, nil)), func(step int, w *impulse.World) {
		seen = append(seen, step)
	})
	if err != nil {
		t.Fatalf("simulate() error = %v", err)
	}
	if w.Steps() != 10 || len(seen) != 11 || seen[0] != 0 || seen[10] != 10 {
		t.Errorf("steps = %d, observed %v", w.Steps(), seen)
	}
}

func TestFollowedBody(t *testing.T) {
	scene := config.DefaultScene()

	if i, err := followedBody(scene, ""); err != nil || i != 1 {
		t.Errorf("followedBody() = %d, %v, want the first dynamic body", i, err)
	}
	if i, err := followedBody(scene, "ground"); err != nil || i != 0 {
		t.Errorf("followedBody(ground) = %d, %v", i, err)
	}
	if _, err := followedBody(scene, "missing"); err == nil {
		t.Error("expected an error for an unknown body")
	}

	scene.Bodies = scene.Bodies[:1]
	if _, err := followedBody(scene, ""); err == nil {
		t.Error("expected an error without dynamic bodies")
	}
}
