// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package mesh

import (
	"fmt"
	"math"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is a flat shaded triangle list.
// Every grid cell is a quad of 4 unshared vertices with one normal.
type Mesh struct {
	Positions []mgl32.Vec3 `json:"positions"`
	Normals   []mgl32.Vec3 `json:"normals"` // Normals parallel Positions.
	Indices   []uint32     `json:"indices"` // Indices has 3 per triangle.
}

// New meshes a grid using its settings' height and size scales.
func New(g *terrain.Grid) *Mesh {
	return NewScaled(g, g.Settings.VerticalScale(), g.Settings.HorizontalScale())
}

// NewScaled meshes a grid. Cells are visited x major, z minor (like grid
// storage) and cell (x, z) is the quad
//
//	v0 = (x,   h(x, z),     z)
//	v1 = (x,   h(x, z+1),   z+1)
//	v2 = (x+1, h(x+1, z+1), z+1)
//	v3 = (x+1, h(x+1, z),   z)
//
// with x and z multiplied by sizeScale and heights by heightScale. Its normal
// is (v1-v0) x (v3-v0) normalized, so flat terrain faces +Y, and its
// triangles are (v0, v1, v2) and (v0, v2, v3).
//
// Grids narrower than 2 samples in either dimension have no cells and produce
// an empty mesh.
func NewScaled(g *terrain.Grid, heightScale, sizeScale float32) *Mesh {
	cellsX, cellsZ := g.Width()-1, g.Depth()-1
	if cellsX < 1 || cellsZ < 1 {
		return &Mesh{}
	}

	cells := cellsX * cellsZ
	if cells > math.MaxUint32/4 {
		panic(fmt.Sprintf("mesh: %dx%d grid has too many vertices", g.Width(), g.Depth()))
	}

	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, cells*4),
		Normals:   make([]mgl32.Vec3, 0, cells*4),
		Indices:   make([]uint32, 0, cells*6),
	}

	vertex := func(x, z int) mgl32.Vec3 {
		return mgl32.Vec3{float32(x) * sizeScale, g.At(x, z) * heightScale, float32(z) * sizeScale}
	}

	for x := 0; x < cellsX; x++ {
		for z := 0; z < cellsZ; z++ {
			v0 := vertex(x, z)
			v1 := vertex(x, z+1)
			v2 := vertex(x+1, z+1)
			v3 := vertex(x+1, z)
			m.addQuad(v0, v1, v2, v3)
		}
	}

	return m
}

func (m *Mesh) addQuad(v0, v1, v2, v3 mgl32.Vec3) {
	base := uint32(len(m.Positions))
	normal := v1.Sub(v0).Cross(v3.Sub(v0)).Normalize()

	m.Positions = append(m.Positions, v0, v1, v2, v3)
	m.Normals = append(m.Normals, normal, normal, normal, normal)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Bounds returns the axis aligned bounding box of the mesh.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if m.IsEmpty() {
		return
	}

	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for i := range p {
			min[i] = math32.Min(min[i], p[i])
			max[i] = math32.Max(max[i], p[i])
		}
	}
	return
}
