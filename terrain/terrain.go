// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"fmt"
)

// Source fills grids with height samples according to their Settings.
type Source interface {
	// Fill clears g and samples every cell. It returns an error, and leaves g
	// untouched, if g.Settings are invalid or do not match g's size.
	Fill(g *Grid) error
}

// ErrOutOfRange is wrapped by the value Grid panics with when it is accessed
// outside of its bounds.
var ErrOutOfRange = errors.New("terrain grid access out of range")

// RangeError describes an out of range access to a Grid.
type RangeError struct {
	X, Z         int
	Width, Depth int
}

func (err *RangeError) Error() string {
	return fmt.Sprintf("%v: (%d, %d) not within %dx%d", ErrOutOfRange, err.X, err.Z, err.Width, err.Depth)
}

func (err *RangeError) Unwrap() error {
	return ErrOutOfRange
}

// Grid stores a dense heightmap of normalized samples.
// Samples are stored x major, so the samples of one x column are adjacent.
// A Grid is not safe for concurrent mutation, except that disjoint samples
// may be Set concurrently.
type Grid struct {
	// Settings the grid was (or will be) sampled with.
	Settings Settings

	width   int
	depth   int
	heights []float32
}

// NewGrid allocates a zero-filled grid. Zero dimensions are allowed as long as
// the grid is never sampled. It panics if a dimension is negative or the
// number of samples overflows an int.
func NewGrid(width, depth int) *Grid {
	const maxInt = int(^uint(0) >> 1)
	if width < 0 || depth < 0 {
		panic(fmt.Sprintf("terrain: negative grid dimensions %dx%d", width, depth))
	}
	if depth != 0 && width > maxInt/depth {
		panic(fmt.Sprintf("terrain: grid dimensions %dx%d overflow", width, depth))
	}

	return &Grid{
		width:   width,
		depth:   depth,
		heights: make([]float32, width*depth),
	}
}

// NewGridFrom allocates a zero-filled grid sized by settings, which it keeps
// for provenance. Settings are not validated.
func NewGridFrom(settings Settings) *Grid {
	g := NewGrid(settings.Width, settings.Depth)
	g.Settings = settings
	return g
}

func (g *Grid) Width() int {
	return g.width
}

func (g *Grid) Depth() int {
	return g.depth
}

// Len is the number of samples, width * depth.
func (g *Grid) Len() int {
	return len(g.heights)
}

// SameSize reports whether other has the same dimensions.
func (g *Grid) SameSize(other *Grid) bool {
	return g.width == other.width && g.depth == other.depth
}

// Index returns the storage index of (x, z).
func (g *Grid) Index(x, z int) int {
	if uint(x) >= uint(g.width) || uint(z) >= uint(g.depth) {
		panic(&RangeError{X: x, Z: z, Width: g.width, Depth: g.depth})
	}
	return x*g.depth + z
}

// Position is the inverse of Index.
func (g *Grid) Position(index int) (x, z int) {
	if uint(index) >= uint(len(g.heights)) {
		panic(fmt.Errorf("%w: index %d not within %d samples", ErrOutOfRange, index, len(g.heights)))
	}
	return index / g.depth, index % g.depth
}

// At returns the height at (x, z).
func (g *Grid) At(x, z int) float32 {
	return g.heights[g.Index(x, z)]
}

// Set sets the height at (x, z).
func (g *Grid) Set(x, z int, height float32) {
	g.heights[g.Index(x, z)] = height
}

// Clear zeroes every sample without reallocating.
func (g *Grid) Clear() {
	for i := range g.heights {
		g.heights[i] = 0
	}
}

// Heights returns the samples in storage order. The slice aliases the grid.
func (g *Grid) Heights() []float32 {
	return g.heights
}

// Each calls fn with every sample in storage order.
func (g *Grid) Each(fn func(index int, height float32)) {
	for i, h := range g.heights {
		fn(i, h)
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := *g
	c.heights = make([]float32, len(g.heights))
	copy(c.heights, g.heights)
	return &c
}

func (g *Grid) String() string {
	return fmt.Sprintf("terrain.Grid{%dx%d, seed: %d}", g.width, g.depth, g.Settings.Seed)
}
