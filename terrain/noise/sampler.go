// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"fmt"
	"runtime"

	"github.com/SoftbearStudios/heightmap/terrain"
	"golang.org/x/sync/errgroup"
)

// Sampler generates heightmaps using fractal noise.
// The zero value is ready to use.
type Sampler struct {
	// Workers is the maximum number of x columns sampled at once.
	// Zero means GOMAXPROCS.
	Workers int
}

var _ terrain.Source = Sampler{}

// Generate allocates a grid for settings and samples it.
func Generate(settings terrain.Settings) (*terrain.Grid, error) {
	return Sampler{}.Generate(settings)
}

// Generate allocates a grid for settings and samples it.
func (s Sampler) Generate(settings terrain.Settings) (*terrain.Grid, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	g := terrain.NewGridFrom(settings)
	if err := s.Fill(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Fill implements terrain.Source.Fill.
// Every sample is the fractal at the cell's coordinate remapped from [-1, 1]
// to [0, 1]. With zero octaves the grid is left all zero.
func (s Sampler) Fill(g *terrain.Grid) error {
	settings := g.Settings
	if err := settings.Validate(); err != nil {
		return err
	}
	if settings.Width != g.Width() || settings.Depth != g.Depth() {
		return fmt.Errorf("%w: grid is %dx%d but settings are %dx%d", terrain.ErrInvalidSettings,
			g.Width(), g.Depth(), settings.Width, settings.Depth)
	}

	source, err := NewSource(settings.Noise, settings.Seed)
	if err != nil {
		return err
	}

	g.Clear()
	if settings.Octaves == 0 {
		return nil
	}

	fractal := Fractal{
		Source:      source,
		Octaves:     settings.Octaves,
		Frequency:   settings.Frequency,
		Lacunarity:  settings.Lacunarity,
		Persistence: settings.Persistence,
	}

	scaleX, scaleZ := coordinateScales(&settings)
	heights := g.Heights()
	depth := g.Depth()

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var group errgroup.Group
	group.SetLimit(workers)

	// Each column is written by exactly one goroutine.
	for x := 0; x < g.Width(); x++ {
		column := heights[x*depth : (x+1)*depth]
		px := float64(x) * scaleX

		group.Go(func() error {
			for z := range column {
				v := fractal.At(px, float64(z)*scaleZ)
				column[z] = clamp01(float32((v + 1) / 2))
			}
			return nil
		})
	}

	return group.Wait()
}

// coordinateScales returns the factors that convert grid coordinates to noise
// coordinates.
func coordinateScales(settings *terrain.Settings) (x, z float64) {
	if settings.Space == terrain.Scaled {
		s := float64(settings.HorizontalScale())
		return s, s
	}
	return 1 / float64(settings.Width), 1 / float64(settings.Depth)
}
