package main

import (
	"fmt"

	"github.com/akmonengine/impulse"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

func plotScene(cmd *cobra.Command, args []string) error {
	scene, err := loadScene(cmd)
	if err != nil {
		return err
	}
	index, err := followedBody(scene, bodyName)
	if err != nil {
		return err
	}

	heights := make([]float64, 0, scene.Steps+1)
	energies := make([]float64, 0, scene.Steps+1)
	_, err = simulate(scene, newLogger(), func(step int, w *impulse.World) {
		heights = append(heights, w.Bodies[index].Transform.Position.Y())
		energies = append(energies, w.TotalKineticEnergy())
	})
	if err != nil {
		return err
	}

	fmt.Printf("scene: %s\n", scene.Name)
	fmt.Printf("samples: %d\n\n", len(heights))

	fmt.Println(asciigraph.Plot(heights,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("%s height (m)", bodyLabel(scene, index))),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("total kinetic energy (J)"),
	))

	return nil
}
