// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"sync/atomic"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
)

type (
	// Error reports a rejected inbound to the client that sent it.
	Error struct {
		Message string `json:"message"`
	}

	// Presets lists the names of saved presets.
	Presets struct {
		Names []string `json:"names"`
	}

	// Terrain is the combined heightmap of the current layers.
	// It is shared by every client it is broadcast to.
	Terrain struct {
		Layers    []terrain.Settings `json:"layers"`
		Blend     layer.Blend        `json:"blend"`
		Width     int                `json:"width"`
		Depth     int                `json:"depth"`
		Data      *terrain.Data      `json:"data,omitempty"` // Data is nil when no layers are enabled.
		Vertices  int                `json:"vertices"`
		Triangles int                `json:"triangles"`

		refs int32
	}
)

func init() {
	registerOutbound(
		&Error{},
		&Presets{},
		&Terrain{},
	)
}

func (e *Error) Pool() {}

func (p *Presets) Pool() {}

func (t *Terrain) retain() {
	atomic.AddInt32(&t.refs, 1)
}

// Pool releases a reference. The last one returns Data to its pool.
func (t *Terrain) Pool() {
	if atomic.AddInt32(&t.refs, -1) == 0 && t.Data != nil {
		t.Data.Pool()
		t.Data = nil
	}
}
