// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package layer

import (
	"errors"
	"fmt"

	"github.com/SoftbearStudios/heightmap/terrain"
)

// ErrDimensionMismatch is wrapped by errors from combining grids of
// different sizes.
var ErrDimensionMismatch = errors.New("layer dimensions do not match")

// Blend is a policy for combining layers.
type Blend uint8

const (
	// BlendHalve averages each layer into the running result in turn, so
	// layer k (from 1) ends up weighted 1/2^(n-k+1) out of n layers; the
	// first layer weighs least. This is the historical behavior.
	BlendHalve Blend = iota
	// BlendMean weights every layer equally.
	BlendMean
	blendCount
)

var blendNames = [...]string{
	BlendHalve: "halve",
	BlendMean:  "mean",
}

func (blend Blend) String() string {
	if blend >= blendCount {
		return fmt.Sprintf("Blend(%d)", uint8(blend))
	}
	return blendNames[blend]
}

// ParseBlend parses the name of a Blend.
func ParseBlend(name string) (Blend, error) {
	for b, n := range blendNames {
		if n == name {
			return Blend(b), nil
		}
	}
	return 0, fmt.Errorf("unknown blend %q", name)
}

func (blend Blend) MarshalText() ([]byte, error) {
	if blend >= blendCount {
		return nil, fmt.Errorf("invalid blend %d", uint8(blend))
	}
	return []byte(blendNames[blend]), nil
}

func (blend *Blend) UnmarshalText(text []byte) error {
	b, err := ParseBlend(string(text))
	if err != nil {
		return err
	}
	*blend = b
	return nil
}

// Combine blends grids with BlendHalve.
func Combine(grids ...*terrain.Grid) (*terrain.Grid, error) {
	return BlendHalve.Combine(grids...)
}

// Combine blends grids, in order, into a new grid of the same size.
// No grids means there is nothing to render, which is reported as a nil grid
// and nil error. Grids of different sizes are rejected before any output is
// produced.
func (blend Blend) Combine(grids ...*terrain.Grid) (*terrain.Grid, error) {
	if blend >= blendCount {
		return nil, fmt.Errorf("unknown blend %d", uint8(blend))
	}
	if len(grids) == 0 {
		return nil, nil
	}

	first := grids[0]
	for i, g := range grids[1:] {
		if !g.SameSize(first) {
			return nil, fmt.Errorf("%w: layer %d is %dx%d, layer 0 is %dx%d", ErrDimensionMismatch,
				i+1, g.Width(), g.Depth(), first.Width(), first.Depth())
		}
	}

	combined := terrain.NewGrid(first.Width(), first.Depth())
	combined.Settings = first.Settings
	out := combined.Heights()

	switch blend {
	case BlendHalve:
		for _, g := range grids {
			for i, h := range g.Heights() {
				out[i] = (out[i] + h) / 2
			}
		}
	case BlendMean:
		for _, g := range grids {
			for i, h := range g.Heights() {
				out[i] += h
			}
		}
		n := float32(len(grids))
		for i := range out {
			out[i] /= n
		}
	}

	return combined, nil
}
