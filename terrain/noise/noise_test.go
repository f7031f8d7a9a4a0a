// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/SoftbearStudios/heightmap/terrain"
)

func testSettings() terrain.Settings {
	s := terrain.DefaultSettings()
	s.Width = 48
	s.Depth = 32
	return s
}

func TestGenerateDeterminism(t *testing.T) {
	for _, kind := range []terrain.NoiseKind{terrain.Simplex, terrain.Perlin} {
		s := testSettings()
		s.Noise = kind

		a, err := Generate(s)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Sampler{Workers: 1}.Generate(s)
		if err != nil {
			t.Fatal(err)
		}

		for i, h := range a.Heights() {
			if math.Float32bits(h) != math.Float32bits(b.Heights()[i]) {
				t.Fatalf("%s: sample %d not deterministic: %f != %f", kind, i, h, b.Heights()[i])
			}
		}
	}
}

func TestGenerateRange(t *testing.T) {
	tests := []terrain.Settings{
		testSettings(),
		func() terrain.Settings {
			s := testSettings()
			s.Octaves = 8
			s.Persistence = 1
			s.Lacunarity = 3.5
			s.Frequency = 40
			return s
		}(),
		func() terrain.Settings {
			s := testSettings()
			s.Noise = terrain.Perlin
			s.Space = terrain.Scaled
			s.SizeScale = 0.37
			s.Frequency = 0.3
			return s
		}(),
		func() terrain.Settings {
			s := testSettings()
			s.Persistence = 0
			return s
		}(),
	}

	for i, s := range tests {
		g, err := Generate(s)
		if err != nil {
			t.Fatal(err)
		}

		varied := false
		g.Each(func(j int, h float32) {
			if !(h >= 0 && h <= 1) {
				t.Errorf("settings %d: sample %d = %f, out of [0, 1]", i, j, h)
			}
			if h != g.Heights()[0] {
				varied = true
			}
		})
		if !varied {
			t.Errorf("settings %d: expected varied terrain", i)
		}
	}
}

func TestGenerateZeroOctaves(t *testing.T) {
	s := testSettings()
	s.Octaves = 0

	g, err := Generate(s)
	if err != nil {
		t.Fatal("zero octaves expected no error got", err)
	}

	g.Each(func(i int, h float32) {
		if h != 0 {
			t.Errorf("zero octaves sample %d expected 0 got %f", i, h)
		}
	})
}

func TestGenerateDifferentSeeds(t *testing.T) {
	s1 := testSettings()
	s2 := testSettings()
	s2.Seed++

	a, _ := Generate(s1)
	b, _ := Generate(s2)

	same := 0
	for i := range a.Heights() {
		if a.Heights()[i] == b.Heights()[i] {
			same++
		}
	}
	if same > a.Len()/4 {
		t.Errorf("different seeds produced %d/%d identical samples", same, a.Len())
	}
}

func TestGenerateInvalid(t *testing.T) {
	s := testSettings()
	s.Persistence = math.NaN()

	g, err := Generate(s)
	if !errors.Is(err, terrain.ErrInvalidSettings) {
		t.Error("NaN persistence expected ErrInvalidSettings got", err)
	}
	if g != nil {
		t.Error("invalid settings expected no grid")
	}
}

func TestFillRegenerates(t *testing.T) {
	s := testSettings()
	g, err := Generate(s)
	if err != nil {
		t.Fatal(err)
	}
	first := g.Clone()

	// Stale samples must not leak into a regenerated grid.
	for i := range g.Heights() {
		g.Heights()[i] = 7
	}
	if err = (Sampler{}).Fill(g); err != nil {
		t.Fatal(err)
	}
	for i, h := range g.Heights() {
		if h != first.Heights()[i] {
			t.Fatalf("refilled sample %d expected %f got %f", i, first.Heights()[i], h)
		}
	}
}

func TestFillSizeMismatch(t *testing.T) {
	g := terrain.NewGrid(4, 4)
	g.Settings = testSettings()
	g.Set(1, 1, 0.5)

	err := Sampler{}.Fill(g)
	if !errors.Is(err, terrain.ErrInvalidSettings) {
		t.Error("mismatched grid expected ErrInvalidSettings got", err)
	}
	if g.At(1, 1) != 0.5 {
		t.Error("failed Fill expected to leave grid untouched")
	}
}

func TestFractalSmoothness(t *testing.T) {
	source, err := NewSource(terrain.Simplex, 77)
	if err != nil {
		t.Fatal(err)
	}
	f := Fractal{Source: source, Octaves: 4, Frequency: 1, Lacunarity: 2, Persistence: 0.5}

	prev := f.At(0, 0)
	maxDiff := 0.0
	for i := 1; i < 1000; i++ {
		v := f.At(float64(i)*0.01, 0)
		maxDiff = math.Max(maxDiff, math.Abs(v-prev))
		prev = v
	}
	if maxDiff > 0.5 {
		t.Errorf("Fractal.At max step difference = %f, expected smooth transitions", maxDiff)
	}
}

func TestFractalWeights(t *testing.T) {
	f := Fractal{Source: constant(0.5), Octaves: 5, Frequency: 1, Lacunarity: 2, Persistence: 0.5}
	if v := f.At(3, 4); math.Abs(v-0.5) > 1e-12 {
		t.Error("constant source expected 0.5 after normalization got", v)
	}

	f.Octaves = 0
	if v := f.At(3, 4); v != 0 {
		t.Error("no octaves expected 0 got", v)
	}
}

func TestNewSourceUnknown(t *testing.T) {
	if _, err := NewSource(terrain.NoiseKind(99), 1); !errors.Is(err, terrain.ErrInvalidSettings) {
		t.Error("unknown kind expected ErrInvalidSettings got", err)
	}
}

type constant float64

func (c constant) Noise2D(x, y float64) float64 {
	return float64(c)
}

func BenchmarkGenerate(b *testing.B) {
	s := terrain.DefaultSettings()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Generate(s); err != nil {
			b.Fatal(err)
		}
	}
}
