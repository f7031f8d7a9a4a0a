// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
	"github.com/finnbear/moderation"
)

const (
	maxLayers = 16
	// maxSamples limits the size of each layer so one edit can't stall the hub.
	maxSamples = 1024 * 1024

	minPresetName = 1
	maxPresetName = 32
)

// Make sure to register in init function
type (
	// Layers replaces the layer settings, and optionally the blend.
	Layers struct {
		Layers []terrain.Settings `json:"layers"`
		Blend  *layer.Blend       `json:"blend"`
	}

	// ListPresets requests a Presets.
	ListPresets struct{}

	// LoadPreset replaces the layers with a saved preset.
	LoadPreset struct {
		Name string `json:"name"`
	}

	// SavePreset saves the current layers under a name.
	SavePreset struct {
		Name string `json:"name"`
	}

	// Results of cloud operations, sent back to the hub goroutine.
	// NOTE: Do not register, otherwise clients could send them.
	presetLoaded struct {
		preset *Preset
		err    error
	}
	presetSaved struct {
		name string
		err  error
	}
	presetsListed struct {
		names     []string
		err       error
		broadcast bool
	}
)

func init() {
	registerInbound(
		Layers{},
		ListPresets{},
		LoadPreset{},
		SavePreset{},
	)
}

func (data Layers) Inbound(h *Hub, client Client) {
	if len(data.Layers) > maxLayers {
		client.Send(&Error{Message: fmt.Sprintf("too many layers: %d > %d", len(data.Layers), maxLayers)})
		return
	}
	for i := range data.Layers {
		s := &data.Layers[i]
		if s.Width > 0 && s.Depth > 0 && s.Width > maxSamples/s.Depth {
			client.Send(&Error{Message: fmt.Sprintf("layer %d: %dx%d is too large", i, s.Width, s.Depth)})
			return
		}
	}

	blend := h.stack.Blend()
	if data.Blend != nil {
		blend = *data.Blend
	}

	if err := h.apply(data.Layers, blend); err != nil {
		client.Send(&Error{Message: err.Error()})
		return
	}
	client.Data().Edits++
}

func (data ListPresets) Inbound(h *Hub, client Client) {
	h.listPresets(client, false)
}

func (data LoadPreset) Inbound(h *Hub, client Client) {
	name, ok := sanitize(data.Name)
	if !ok {
		client.Send(&Error{Message: "invalid preset name"})
		return
	}

	go func() {
		preset, err := h.cloud.ReadPreset(name)
		h.inbound <- SignedInbound{Client: client, inbound: presetLoaded{preset: preset, err: err}}
	}()
}

func (data SavePreset) Inbound(h *Hub, client Client) {
	name, ok := sanitize(data.Name)
	if !ok {
		client.Send(&Error{Message: "invalid preset name"})
		return
	}

	preset := Preset{
		Name:   name,
		Layers: h.stack.Settings(),
		Blend:  h.stack.Blend(),
	}

	go func() {
		err := h.cloud.SavePreset(preset)
		h.inbound <- SignedInbound{Client: client, inbound: presetSaved{name: name, err: err}}
	}()
}

func (data presetLoaded) Inbound(h *Hub, client Client) {
	if data.err != nil {
		if !errors.Is(data.err, ErrPresetNotFound) {
			h.logf("error loading preset: %v", data.err)
		}
		client.Send(&Error{Message: data.err.Error()})
		return
	}

	if err := h.apply(data.preset.Layers, data.preset.Blend); err != nil {
		client.Send(&Error{Message: fmt.Sprintf("preset %q: %v", data.preset.Name, err)})
	}
}

func (data presetSaved) Inbound(h *Hub, client Client) {
	if data.err != nil {
		h.logf("error saving preset %q: %v", data.name, data.err)
		client.Send(&Error{Message: "could not save preset"})
		return
	}

	// Everyone sees the new name
	h.listPresets(client, true)
}

func (data presetsListed) Inbound(h *Hub, client Client) {
	if data.err != nil {
		h.logf("error listing presets: %v", data.err)
		client.Send(&Error{Message: "could not list presets"})
		return
	}

	names := append([]string(nil), data.names...)
	sort.Strings(names)

	if data.broadcast {
		h.clients.Broadcast(&Presets{Names: names})
	} else {
		client.Send(&Presets{Names: names})
	}
}

func (h *Hub) listPresets(client Client, broadcast bool) {
	go func() {
		names, err := h.cloud.ReadPresetNames()
		h.inbound <- SignedInbound{Client: client, inbound: presetsListed{names: names, err: err, broadcast: broadcast}}
	}()
}

// sanitize trims a preset name and rejects it if it is empty, too long or
// inappropriate.
func sanitize(name string) (string, bool) {
	if !utf8.ValidString(name) {
		return "", false
	}

	// Brackets and * are used in formatting and censoring
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune("()[]{}*/\\", r) || !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, name)

	name = strings.TrimFunc(name, func(r rune) bool {
		// NOTE: The following characters are not detected by
		// unicode.IsSpace() but show up as blank
		return unicode.IsSpace(r) || r == 0x2800 || r == 0x200B
	})

	if len(name) < minPresetName || len(name) > maxPresetName {
		return "", false
	}

	if moderation.Scan(name).Is(moderation.Inappropriate) {
		return "", false
	}

	return name, true
}
