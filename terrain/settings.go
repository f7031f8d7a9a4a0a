// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// ErrInvalidSettings is wrapped by every error returned from Settings.Validate.
var ErrInvalidSettings = errors.New("invalid terrain settings")

/*
	List of curated seeds:
		1, 42, 46, 56
*/

const (
	// Seed default seed.
	Seed = int64(42)
	// Size default width and depth of a grid.
	Size = 256
)

// NoiseKind selects the coherent noise primitive a layer is sampled from.
type NoiseKind uint8

const (
	Simplex NoiseKind = iota
	Perlin
	noiseKindCount
)

var noiseKindNames = [...]string{
	Simplex: "simplex",
	Perlin:  "perlin",
}

func (kind NoiseKind) String() string {
	if kind >= noiseKindCount {
		return fmt.Sprintf("NoiseKind(%d)", uint8(kind))
	}
	return noiseKindNames[kind]
}

func (kind NoiseKind) MarshalText() ([]byte, error) {
	if kind >= noiseKindCount {
		return nil, fmt.Errorf("%w: unknown noise kind %d", ErrInvalidSettings, uint8(kind))
	}
	return []byte(noiseKindNames[kind]), nil
}

func (kind *NoiseKind) UnmarshalText(text []byte) error {
	for k, name := range noiseKindNames {
		if string(text) == name {
			*kind = NoiseKind(k)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown noise kind %q", ErrInvalidSettings, text)
}

// Space selects how grid coordinates are turned into noise coordinates.
type Space uint8

const (
	// Normalized samples at (x/width, z/depth), so the grid covers the same
	// area of noise regardless of its resolution.
	Normalized Space = iota
	// Scaled samples at (x*SizeScale, z*SizeScale).
	Scaled
	spaceCount
)

var spaceNames = [...]string{
	Normalized: "normalized",
	Scaled:     "scaled",
}

func (space Space) String() string {
	if space >= spaceCount {
		return fmt.Sprintf("Space(%d)", uint8(space))
	}
	return spaceNames[space]
}

func (space Space) MarshalText() ([]byte, error) {
	if space >= spaceCount {
		return nil, fmt.Errorf("%w: unknown space %d", ErrInvalidSettings, uint8(space))
	}
	return []byte(spaceNames[space]), nil
}

func (space *Space) UnmarshalText(text []byte) error {
	for s, name := range spaceNames {
		if string(text) == name {
			*space = Space(s)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown space %q", ErrInvalidSettings, text)
}

// Settings configures one layer of terrain.
type Settings struct {
	Width       int       `json:"width"`
	Depth       int       `json:"depth"`
	Seed        int64     `json:"seed"`
	Octaves     int       `json:"octaves"`     // Octaves of 0 produce an all-zero grid.
	Frequency   float64   `json:"frequency"`   // Frequency of the first octave.
	Lacunarity  float64   `json:"lacunarity"`  // Lacunarity multiplies frequency every octave.
	Persistence float64   `json:"persistence"` // Persistence multiplies amplitude every octave.
	HeightScale float32   `json:"heightScale"` // HeightScale is vertical exaggeration applied when meshing (0 means 1).
	SizeScale   float32   `json:"sizeScale"`   // SizeScale is horizontal spacing applied when meshing (0 means 1).
	Enabled     bool      `json:"enabled"`
	Noise       NoiseKind `json:"noise"`
	Space       Space     `json:"space"`
}

// DefaultSettings returns the settings of a single reasonable looking layer.
func DefaultSettings() Settings {
	return Settings{
		Width:       Size,
		Depth:       Size,
		Seed:        Seed,
		Octaves:     3,
		Frequency:   4,
		Lacunarity:  2,
		Persistence: 0.5,
		HeightScale: 50,
		SizeScale:   5,
		Enabled:     true,
		Noise:       Simplex,
		Space:       Normalized,
	}
}

// Validate returns an error wrapping ErrInvalidSettings if any field is out
// of range. Nothing is clamped.
func (s *Settings) Validate() error {
	switch {
	case s.Width <= 0:
		return invalid("width", s.Width, "must be positive")
	case s.Depth <= 0:
		return invalid("depth", s.Depth, "must be positive")
	case s.Octaves < 0:
		return invalid("octaves", s.Octaves, "must not be negative")
	case !finite(s.Frequency):
		return invalid("frequency", s.Frequency, "must be finite")
	case s.Frequency <= 0:
		return invalid("frequency", s.Frequency, "must be positive")
	case !finite(s.Lacunarity):
		return invalid("lacunarity", s.Lacunarity, "must be finite")
	case s.Lacunarity <= 1:
		return invalid("lacunarity", s.Lacunarity, "must be greater than 1")
	case !finite(s.Persistence):
		return invalid("persistence", s.Persistence, "must be finite")
	case s.Persistence < 0 || s.Persistence > 1:
		return invalid("persistence", s.Persistence, "must be within [0, 1]")
	case !finite32(s.HeightScale):
		return invalid("heightScale", s.HeightScale, "must be finite")
	case s.HeightScale < 0:
		return invalid("heightScale", s.HeightScale, "must not be negative")
	case !finite32(s.SizeScale):
		return invalid("sizeScale", s.SizeScale, "must be finite")
	case s.SizeScale < 0:
		return invalid("sizeScale", s.SizeScale, "must not be negative")
	case s.Noise >= noiseKindCount:
		return invalid("noise", s.Noise, "unknown noise kind")
	case s.Space >= spaceCount:
		return invalid("space", s.Space, "unknown space")
	}
	return nil
}

// VerticalScale returns HeightScale, or 1 if it is unset.
func (s *Settings) VerticalScale() float32 {
	return orOne(s.HeightScale)
}

// HorizontalScale returns SizeScale, or 1 if it is unset.
func (s *Settings) HorizontalScale() float32 {
	return orOne(s.SizeScale)
}

func invalid(field string, value interface{}, reason string) error {
	return fmt.Errorf("%w: %s %v %s", ErrInvalidSettings, field, value, reason)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite32(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

func orOne(f float32) float32 {
	if f == 0 {
		return 1
	}
	return f
}
