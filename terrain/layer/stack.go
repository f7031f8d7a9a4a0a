// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package layer

import (
	"fmt"

	"github.com/SoftbearStudios/heightmap/terrain"
)

// Stack owns the declared layer settings and the grids derived from them.
// It keeps one grid per enabled layer, in declaration order, and only
// resamples layers whose settings changed.
// A Stack is not safe for concurrent use.
type Stack struct {
	source   terrain.Source
	blend    Blend
	settings []terrain.Settings
	grids    []*terrain.Grid
	spare    []*terrain.Grid // superseded by the last Update, reused for resampling

	combined *terrain.Grid
	stale    bool // combined must be recomputed
	dirty    bool // something changed since MarkClean
}

// NewStack creates an empty Stack that samples layers with source.
func NewStack(source terrain.Source) *Stack {
	return &Stack{source: source}
}

// Update replaces the declared layers. Every entry is validated before any
// work is done, and changed layers are sampled into spare grids that are only
// swapped in once every layer succeeded, so any error leaves the Stack unchanged.
// It reports whether any grid was added, removed or resampled.
func (s *Stack) Update(settings []terrain.Settings) (changed bool, err error) {
	for i := range settings {
		if err = settings[i].Validate(); err != nil {
			return false, fmt.Errorf("layer %d: %w", i, err)
		}
	}

	var (
		grids    = make([]*terrain.Grid, 0, len(settings))
		spare    = s.spare
		sampled  []*terrain.Grid
		replaced []*terrain.Grid
	)

	for i, layerSettings := range settings {
		if !layerSettings.Enabled {
			continue
		}

		var old *terrain.Grid
		if n := len(grids); n < len(s.grids) {
			old = s.grids[n]
		}
		if old != nil && old.Settings == layerSettings {
			grids = append(grids, old)
			continue
		}

		var g *terrain.Grid
		g, spare = takeSpare(spare, layerSettings)
		sampled = append(sampled, g)
		if err = s.source.Fill(g); err != nil {
			s.spare = append(spare, sampled...)
			return false, fmt.Errorf("layer %d: %w", i, err)
		}

		if old != nil {
			replaced = append(replaced, old)
		}
		grids = append(grids, g)
		changed = true
	}

	if len(grids) != len(s.grids) {
		changed = true
	}

	// Release grids of removed layers
	for i := len(grids); i < len(s.grids); i++ {
		s.grids[i] = nil
	}

	s.settings = append(s.settings[:0], settings...)
	s.grids = grids
	s.spare = replaced

	if changed {
		s.stale = true
		s.dirty = true
	}
	return changed, nil
}

// takeSpare removes a grid of the right size from spare, or allocates one.
// The grid is resampled in place, so its old heights don't matter.
func takeSpare(spare []*terrain.Grid, settings terrain.Settings) (*terrain.Grid, []*terrain.Grid) {
	for i, g := range spare {
		if g.Width() == settings.Width && g.Depth() == settings.Depth {
			g.Settings = settings
			last := len(spare) - 1
			spare[i] = spare[last]
			spare[last] = nil
			return g, spare[:last]
		}
	}
	return terrain.NewGridFrom(settings), spare
}

// SetBlend changes how layers are combined.
func (s *Stack) SetBlend(blend Blend) {
	if blend != s.blend {
		s.blend = blend
		s.stale = true
		s.dirty = true
	}
}

func (s *Stack) Blend() Blend {
	return s.blend
}

// Settings returns a copy of the declared layers, including disabled ones.
func (s *Stack) Settings() []terrain.Settings {
	return append([]terrain.Settings(nil), s.settings...)
}

// Grids returns the grids of enabled layers in order. The grids are owned by
// the Stack and must not be modified.
func (s *Stack) Grids() []*terrain.Grid {
	return append([]*terrain.Grid(nil), s.grids...)
}

// Len is the number of enabled layers.
func (s *Stack) Len() int {
	return len(s.grids)
}

// Combined returns the blended grid, recomputing it only after a change.
// With no enabled layers it returns a nil grid: there is nothing to render.
func (s *Stack) Combined() (*terrain.Grid, error) {
	if s.stale {
		combined, err := s.blend.Combine(s.grids...)
		if err != nil {
			return nil, err
		}
		s.combined = combined
		s.stale = false
	}
	return s.combined, nil
}

// Dirty reports whether the layers changed since the last MarkClean.
func (s *Stack) Dirty() bool {
	return s.dirty
}

// MarkClean acknowledges the current layers, e.g. after meshing them.
func (s *Stack) MarkClean() {
	s.dirty = false
}
