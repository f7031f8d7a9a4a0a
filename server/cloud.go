// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
)

var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named set of layers.
type Preset struct {
	Name   string             `json:"name"`
	Layers []terrain.Settings `json:"layers"`
	Blend  layer.Blend        `json:"blend"`
}

// Cloud persists presets and publishes terrain snapshots.
// Methods may be called from any goroutine.
type Cloud interface {
	fmt.Stringer
	SavePreset(preset Preset) error
	// ReadPreset returns an error wrapping ErrPresetNotFound if there is no such preset.
	ReadPreset(name string) (*Preset, error)
	ReadPresetNames() ([]string, error)
	UploadTerrainSnapshot(data []byte) error // takes an encoded PNG
	UpdatePeriod() time.Duration
}

// Offline keeps presets in memory and discards snapshots.
// The zero value is ready to use.
type Offline struct {
	mutex   sync.Mutex
	presets map[string]Preset
}

func (offline *Offline) String() string {
	return "offline"
}

func (offline *Offline) SavePreset(preset Preset) error {
	offline.mutex.Lock()
	defer offline.mutex.Unlock()

	if offline.presets == nil {
		offline.presets = make(map[string]Preset)
	}
	preset.Layers = append([]terrain.Settings(nil), preset.Layers...)
	offline.presets[preset.Name] = preset
	return nil
}

func (offline *Offline) ReadPreset(name string) (*Preset, error) {
	offline.mutex.Lock()
	defer offline.mutex.Unlock()

	preset, ok := offline.presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	preset.Layers = append([]terrain.Settings(nil), preset.Layers...)
	return &preset, nil
}

func (offline *Offline) ReadPresetNames() ([]string, error) {
	offline.mutex.Lock()
	defer offline.mutex.Unlock()

	names := make([]string, 0, len(offline.presets))
	for name := range offline.presets {
		names = append(names, name)
	}
	return names, nil
}

func (offline *Offline) UploadTerrainSnapshot(data []byte) error {
	return nil
}

func (offline *Offline) UpdatePeriod() time.Duration {
	return time.Hour
}

// Cloud refreshes the status served by ServeIndex.
func (h *Hub) Cloud() {
	combined := h.snapshot().grid

	status := struct {
		Cloud    string `json:"cloud"`
		Clients  int    `json:"clients"`
		Layers   int    `json:"layers"`
		Blend    string `json:"blend"`
		Width    int    `json:"width"`
		Depth    int    `json:"depth"`
		Vertices int    `json:"vertices"`
	}{
		Cloud:   h.cloud.String(),
		Clients: h.clients.Len,
		Layers:  h.stack.Len(),
		Blend:   h.stack.Blend().String(),
	}
	if combined != nil {
		status.Width = combined.Width()
		status.Depth = combined.Depth()
		status.Vertices = h.snapshot().mesh.VertexCount()
	}

	statusJSON, err := json.Marshal(status)
	if err == nil {
		h.statusJSON.Store(statusJSON)
	} else {
		h.logf("error marshaling status: %v", err)
	}
}
