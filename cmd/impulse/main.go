package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configFile  string
	preset      string
	dt          float64
	steps       int
	broadPhase  string
	narrowPhase string
	integrator  string
	restitution float64
	workers     int
	printEvery  int
	sampleEvery int
	bodyName    string
	outFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "impulse",
		Short:         "rigid-body collision pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every step")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene and print a summary",
		Args:  cobra.NoArgs,
		RunE:  runScene,
	}
	sceneFlags(runCmd)
	runCmd.Flags().IntVar(&printEvery, "every", 0, "print the bodies every n steps")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list the built-in scenes",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init <file>",
		Short: "write a scene file to start from",
		Args:  cobra.ExactArgs(1),
		RunE:  initScene,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	plotCmd := &cobra.Command{
		Use:   "plot",
		Short: "plot a body's height and the kinetic energy",
		Args:  cobra.NoArgs,
		RunE:  plotScene,
	}
	sceneFlags(plotCmd)
	plotCmd.Flags().StringVar(&bodyName, "body", "", "body to follow (default: first dynamic body)")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "write the body trajectories as CSV",
		Args:  cobra.NoArgs,
		RunE:  exportScene,
	}
	sceneFlags(exportCmd)
	exportCmd.Flags().IntVar(&sampleEvery, "every", 1, "sample every n steps")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(runCmd, presetsCmd, initCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func sceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 0.002, "timestep")
	cmd.Flags().IntVar(&steps, "steps", 1000, "number of steps")
	cmd.Flags().StringVar(&broadPhase, "broad", "sap", "broad phase: none, aabb, sap, grid")
	cmd.Flags().StringVar(&narrowPhase, "narrow", "mesh", "narrow phase: mesh, gjk")
	cmd.Flags().StringVar(&integrator, "integrator", "symplectic", "integrator: explicit, symplectic, implicit")
	cmd.Flags().Float64Var(&restitution, "restitution", 0.5, "coefficient of restitution")
	cmd.Flags().IntVar(&workers, "workers", 1, "narrow phase and integration workers")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
