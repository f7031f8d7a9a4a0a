// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"fmt"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Source is a coherent 2D noise function with output nominally in [-1, 1].
// Implementations must be safe for concurrent use.
type Source interface {
	Noise2D(x, y float64) float64
}

// NewSource creates a seeded Source of a given kind.
func NewSource(kind terrain.NoiseKind, seed int64) (Source, error) {
	switch kind {
	case terrain.Simplex:
		return simplex{opensimplex.New(seed)}, nil
	case terrain.Perlin:
		// A single octave; Fractal does the layering so both kinds share it.
		return perlin.NewPerlin(2, 2, 1, seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown noise kind %s", terrain.ErrInvalidSettings, kind)
	}
}

type simplex struct {
	noise opensimplex.Noise
}

func (s simplex) Noise2D(x, y float64) float64 {
	return s.noise.Eval2(x, y)
}

// Fractal sums octaves of a Source (fractal Brownian motion).
type Fractal struct {
	Source      Source
	Octaves     int
	Frequency   float64
	Lacunarity  float64
	Persistence float64
}

// At samples the fractal at (x, y). Octave k is sampled at
// Frequency*Lacunarity^k and weighted by Persistence^k. The sum is divided
// by the total weight, keeping it in the range of Source. With no octaves
// the result is 0.
func (f *Fractal) At(x, y float64) float64 {
	var total, weight float64
	frequency := f.Frequency
	amplitude := 1.0

	for i := 0; i < f.Octaves; i++ {
		total += f.Source.Noise2D(x*frequency, y*frequency) * amplitude
		weight += amplitude
		frequency *= f.Lacunarity
		amplitude *= f.Persistence
	}

	if weight == 0 {
		return 0
	}
	return total / weight
}
