// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/SoftbearStudios/heightmap/config"
	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/compressed"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
	"github.com/SoftbearStudios/heightmap/terrain/mesh"
	"github.com/SoftbearStudios/heightmap/terrain/noise"
)

const debugPeriod = time.Second * 30

type HubOptions struct {
	Cloud  Cloud
	Config *config.Config
	// Source samples layers, noise.Sampler{} if nil.
	Source terrain.Source
	// LogPath is a CSV file Debug appends to, if set.
	LogPath string
}

// Hub owns the layers and broadcasts the terrain they produce to the clients.
type Hub struct {
	stack     *layer.Stack
	precision int
	clients   ClientList // implemented as double-linked list
	logPath   string

	// terrain is the latest Terrain, sent to clients as they join.
	terrain *Terrain

	// Cloud (and things that are served atomically by HTTP)
	cloud      Cloud
	statusJSON atomic.Value
	latest     atomic.Value // snapshot

	// funcBenches are benchmarks of core Hub functions.
	funcBenches []funcBench

	// Inbound channels
	inbound    chan SignedInbound
	register   chan Client
	unregister chan Client

	// Timer based events
	cloudTicker    *time.Ticker
	updateTicker   *time.Ticker
	snapshotTicker *time.Ticker
	debugTicker    *time.Ticker
}

// snapshot is what HTTP handlers may read from other goroutines.
// Neither field is modified after being stored.
type snapshot struct {
	grid *terrain.Grid
	mesh *mesh.Mesh
}

// NewHub creates a Hub and generates the configured layers.
func NewHub(options HubOptions) (*Hub, error) {
	c := options.Config
	if c == nil {
		c = config.Default()
	}
	source := options.Source
	if source == nil {
		source = noise.Sampler{}
	}
	cloud := options.Cloud
	if cloud == nil {
		cloud = &Offline{}
	}

	h := &Hub{
		stack:          layer.NewStack(source),
		precision:      c.Precision,
		logPath:        options.LogPath,
		cloud:          cloud,
		inbound:        make(chan SignedInbound, 16),
		register:       make(chan Client, 8),
		unregister:     make(chan Client, 16),
		cloudTicker:    time.NewTicker(cloud.UpdatePeriod()),
		updateTicker:   time.NewTicker(c.PollPeriod()),
		snapshotTicker: time.NewTicker(c.SnapshotPeriod()),
		debugTicker:    time.NewTicker(debugPeriod),
	}
	h.latest.Store(snapshot{})

	if err := h.apply(c.Layers, c.Blend); err != nil {
		h.stop()
		return nil, err
	}
	h.publish()

	return h, nil
}

func (h *Hub) Run() {
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		}
		println("That's it, I'm out -hub") // Don't waste time debugging hub exists
		os.Exit(1)
	}()

	h.Cloud()

	for {
		select {
		case client := <-h.register:
			h.add(client)
		case client := <-h.unregister:
			h.remove(client)
		case in := <-h.inbound:
			// Read all messages currently in the channel
			n := len(h.inbound)

			for {
				h.process(in)

				if n--; n < 0 {
					break
				}

				in = <-h.inbound
			}
		case <-h.updateTicker.C:
			h.Update()
		case <-h.snapshotTicker.C:
			h.SnapshotTerrain()
		case <-h.debugTicker.C:
			h.Debug()
		case <-h.cloudTicker.C:
			h.Cloud()
		}
	}
}

func (h *Hub) add(client Client) {
	h.clients.Add(client)
	data := client.Data()
	data.Hub = h
	data.Joined = time.Now()
	client.Init()

	if h.terrain != nil {
		send(client, h.terrain)
	}
}

func (h *Hub) remove(client Client) {
	client.Close()
	client.Data().Hub = nil
	h.clients.Remove(client)
}

func (h *Hub) process(in SignedInbound) {
	// If not same hub the client is gone
	if h == in.Client.Data().Hub {
		in.Inbound(h, in.Client)
	}
}

// apply changes the layers. Errors leave the current layers in place.
func (h *Hub) apply(settings []terrain.Settings, blend layer.Blend) error {
	defer h.timeFunction("generate", time.Now())

	if _, err := blend.MarshalText(); err != nil {
		return err
	}

	// Reject layers that can't be combined before changing anything
	var first *terrain.Settings
	for i := range settings {
		s := &settings[i]
		if !s.Enabled {
			continue
		}
		if first == nil {
			first = s
		} else if s.Width != first.Width || s.Depth != first.Depth {
			return fmt.Errorf("%w: layer %d is %dx%d, expected %dx%d", layer.ErrDimensionMismatch,
				i, s.Width, s.Depth, first.Width, first.Depth)
		}
	}

	if _, err := h.stack.Update(settings); err != nil {
		return err
	}
	h.stack.SetBlend(blend)
	return nil
}

// Update regenerates and broadcasts the terrain if the layers changed.
func (h *Hub) Update() {
	if h.stack.Dirty() {
		h.publish()
	}
}

func (h *Hub) publish() {
	h.stack.MarkClean()

	combined, err := h.stack.Combined()
	if err != nil {
		h.logf("error combining layers: %v", err)
		h.clients.Broadcast(&Error{Message: err.Error()})
		return
	}

	t := &Terrain{
		Layers: h.stack.Settings(),
		Blend:  h.stack.Blend(),
	}
	var m *mesh.Mesh

	if combined != nil {
		start := time.Now()
		m = mesh.New(combined)
		h.timeFunction("mesh", start)

		start = time.Now()
		t.Data = compressed.Encode(combined, h.precision)
		h.timeFunction("encode", start)

		t.Width = combined.Width()
		t.Depth = combined.Depth()
		t.Vertices = m.VertexCount()
		t.Triangles = m.TriangleCount()
	}

	h.latest.Store(snapshot{grid: combined, mesh: m})

	// Hub keeps a reference for clients that join later
	t.retain()
	if h.terrain != nil {
		h.terrain.Pool()
	}
	h.terrain = t

	h.clients.Broadcast(t)
	h.Cloud()
}

func (h *Hub) snapshot() snapshot {
	return h.latest.Load().(snapshot)
}

func (h *Hub) stop() {
	h.cloudTicker.Stop()
	h.updateTicker.Stop()
	h.snapshotTicker.Stop()
	h.debugTicker.Stop()
}

func (h *Hub) logf(format string, v ...interface{}) {
	log.Printf("[%s] "+format, append([]interface{}{h.cloud}, v...)...)
}
