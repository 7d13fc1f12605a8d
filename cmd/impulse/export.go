package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/akmonengine/impulse"
	"github.com/spf13/cobra"
)

var csvHeader = []string{"step", "time", "body", "x", "y", "z", "vx", "vy", "vz", "qw", "qx", "qy", "qz"}

func exportScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	interval := max(sampleEvery, 1)
	var writeErr error
	_, err = simulate(scene, newLogger(), func(step int, world *impulse.World) {
		if writeErr != nil || step%interval != 0 {
			return
		}
		for i, body := range world.Bodies {
			if body.IsStatic() {
				continue
			}
			p, v, q := body.Transform.Position, body.Velocity, body.Transform.Rotation
			record := []string{
				strconv.Itoa(step), formatFloat(world.Time()), bodyLabel(scene, i),
				formatFloat(p.X()), formatFloat(p.Y()), formatFloat(p.Z()),
				formatFloat(v.X()), formatFloat(v.Y()), formatFloat(v.Z()),
				formatFloat(q.W), formatFloat(q.V.X()), formatFloat(q.V.Y()), formatFloat(q.V.Z()),
			}
			if err := w.Write(record); err != nil {
				writeErr = err
				return
			}
		}
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}

	w.Flush()
	return w.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}
