// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import (
	"errors"
	"testing"
)

func TestNewGrid(t *testing.T) {
	const width, depth = 3, 4
	g := NewGrid(width, depth)

	if g.Width() != width || g.Depth() != depth {
		t.Error("NewGrid(3, 4) expected 3x4 got", g.Width(), g.Depth())
	}
	if g.Len() != width*depth {
		t.Error("Len expected", width*depth, "got", g.Len())
	}
	for i, h := range g.Heights() {
		if h != 0 {
			t.Errorf("sample %d expected 0 got %f", i, h)
		}
	}
}

func TestNewGridZero(t *testing.T) {
	g := NewGrid(0, 5)
	if g.Len() != 0 {
		t.Error("NewGrid(0, 5) expected no samples got", g.Len())
	}
}

func TestNewGridPanics(t *testing.T) {
	tests := []struct {
		width, depth int
	}{
		{-1, 2},
		{2, -1},
		{int(^uint(0) >> 1), 2},
	}

	for _, test := range tests {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewGrid(%d, %d) expected panic", test.width, test.depth)
				}
			}()
			NewGrid(test.width, test.depth)
		}()
	}
}

func TestGrid_Index(t *testing.T) {
	g := NewGrid(3, 3)

	index := g.Index(1, 2)
	x, z := g.Position(index)

	if index != 5 {
		t.Error("Index(1, 2) expected 5 got", index)
	}
	if x != 1 || z != 2 {
		t.Error("Position(5) expected (1, 2) got", x, z)
	}
}

func TestGrid_IndexRoundTrip(t *testing.T) {
	g := NewGrid(7, 5)

	for x := 0; x < g.Width(); x++ {
		for z := 0; z < g.Depth(); z++ {
			px, pz := g.Position(g.Index(x, z))
			if px != x || pz != z {
				t.Errorf("Position(Index(%d, %d)) got (%d, %d)", x, z, px, pz)
			}
		}
	}
}

func TestGrid_IndexIsXMajor(t *testing.T) {
	g := NewGrid(4, 6)
	if g.Index(0, 1)-g.Index(0, 0) != 1 {
		t.Error("adjacent z expected to be adjacent in storage")
	}
	if g.Index(1, 0)-g.Index(0, 0) != g.Depth() {
		t.Error("adjacent x expected to be depth apart in storage")
	}
}

func TestGrid_GetSet(t *testing.T) {
	g := NewGrid(3, 3)

	g.Set(1, 2, 0.42)

	if h := g.At(1, 2); h != 0.42 {
		t.Error("At(1, 2) expected 0.42 got", h)
	}
	if h := g.Heights()[5]; h != 0.42 {
		t.Error("Heights()[5] expected 0.42 got", h)
	}
}

func TestGrid_OutOfRange(t *testing.T) {
	g := NewGrid(3, 4)

	tests := []struct {
		x, z int
	}{
		{3, 0},
		{0, 4},
		{-1, 0},
		{0, -1},
		{2, 4}, // would alias (3, 0) without a z bounds check
	}

	for _, test := range tests {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrOutOfRange) {
					t.Errorf("At(%d, %d) expected ErrOutOfRange panic got %v", test.x, test.z, r)
				}
			}()
			g.At(test.x, test.z)
		}()
	}

	func() {
		defer func() {
			r := recover()
			if err, ok := r.(error); !ok || !errors.Is(err, ErrOutOfRange) {
				t.Error("Position(12) expected ErrOutOfRange panic got", r)
			}
		}()
		g.Position(12)
	}()
}

func TestGrid_Clear(t *testing.T) {
	g := NewGrid(4, 4)
	for i := range g.Heights() {
		g.Heights()[i] = 1
	}
	before := &g.Heights()[0]

	g.Clear()

	if &g.Heights()[0] != before {
		t.Error("Clear expected to reuse the buffer")
	}
	g.Each(func(i int, h float32) {
		if h != 0 {
			t.Errorf("sample %d expected 0 after Clear got %f", i, h)
		}
	})
}

func TestGrid_Each(t *testing.T) {
	g := NewGrid(2, 3)
	for i := range g.Heights() {
		g.Heights()[i] = float32(i)
	}

	next := 0
	g.Each(func(i int, h float32) {
		if i != next || h != float32(i) {
			t.Error("Each expected storage order at", next, "got", i, h)
		}
		next++
	})
	if next != g.Len() {
		t.Error("Each expected", g.Len(), "calls got", next)
	}
}

func TestGrid_Clone(t *testing.T) {
	g := NewGridFrom(DefaultSettings())
	g.Set(1, 1, 0.5)

	c := g.Clone()
	c.Set(1, 1, 0.25)

	if g.At(1, 1) != 0.5 {
		t.Error("Clone expected to copy samples")
	}
	if c.Settings != g.Settings {
		t.Error("Clone expected to keep settings")
	}
}
