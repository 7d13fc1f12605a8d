package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/akmonengine/impulse"
	"github.com/akmonengine/impulse/config"
	"github.com/spf13/cobra"
)

func runScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	var contacts, enters, exits, maxContacts int
	initialEnergy := 0.0
	start := time.Now()

	w, err := simulate(scene, newLogger(), func(step int, w *impulse.World) {
		if step == 0 {
			initialEnergy = w.TotalKineticEnergy()
			w.Events.Subscribe(impulse.COLLISION_ENTER, func(impulse.Event) { enters++ })
			w.Events.Subscribe(impulse.COLLISION_EXIT, func(impulse.Event) { exits++ })
			return
		}

		n := len(w.LastSession().Contacts)
		contacts += n
		maxContacts = max(maxContacts, n)

		if printEvery > 0 && step%printEvery == 0 {
			printBodies(scene, w)
		}
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(panel("scene "+scene.Name, []row{
		{"bodies", fmt.Sprint(len(w.Bodies))},
		{"steps", fmt.Sprintf("%d (t=%.3fs, dt=%g)", w.Steps(), w.Time(), scene.Dt)},
		{"pipeline", fmt.Sprintf("%s / %s / %s", scene.BroadPhase, scene.NarrowPhase, scene.Integrator)},
		{"contacts", fmt.Sprintf("%d total, %d max per step", contacts, maxContacts)},
		{"collisions", fmt.Sprintf("%d enter, %d exit", enters, exits)},
		{"kinetic energy", fmt.Sprintf("%.4f -> %.4f J", initialEnergy, w.TotalKineticEnergy())},
		{"momentum", vec(w.TotalLinearMomentum())},
		{"wall time", fmt.Sprintf("%v (%.1f µs/step)", elapsed.Round(time.Millisecond), float64(elapsed.Microseconds())/float64(max(w.Steps(), 1)))},
	}))

	for i, body := range w.Bodies {
		if !body.IsFinite() {
			fmt.Println(warnStyle.Render(fmt.Sprintf("warning: %s diverged", bodyLabel(scene, i))))
		}
	}

	return nil
}

func printBodies(scene *config.Scene, w *impulse.World) {
	fmt.Printf("t=%.4f\n", w.Time())
	for i, body := range w.Bodies {
		if body.IsStatic() {
			continue
		}
		fmt.Printf("  %-10s pos=%s vel=%s\n", bodyLabel(scene, i), vec(body.Transform.Position), vec(body.Velocity))
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBODIES\tSTEPS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		s := config.GetPreset(name)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", name, len(s.Bodies), s.Steps, s.Description)
	}
	return tw.Flush()
}

func initScene(cmd *cobra.Command, args []string) error {
	scene := config.DefaultScene()
	if preset != "" {
		scene = config.GetPreset(preset)
		if scene == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if err := config.Save(args[0], scene); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
