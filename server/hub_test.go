// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"strings"
	"testing"

	"github.com/SoftbearStudios/heightmap/config"
	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/compressed"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
)

type testClient struct {
	ClientData
	sent   []outbound
	closed bool
}

func (client *testClient) Init()             {}
func (client *testClient) Close()            { client.closed = true }
func (client *testClient) Send(out outbound) { client.sent = append(client.sent, out) }
func (client *testClient) Destroy()          {}
func (client *testClient) Data() *ClientData { return &client.ClientData }
func (client *testClient) last() outbound    { return client.sent[len(client.sent)-1] }

func (client *testClient) lastTerrain() *Terrain {
	t, _ := client.last().(*Terrain)
	return t
}

func testSettings(seed int64) terrain.Settings {
	s := terrain.DefaultSettings()
	s.Width = 16
	s.Depth = 12
	s.Seed = seed
	return s
}

func newTestHub(t *testing.T) *Hub {
	c := config.Default()
	c.Layers = []terrain.Settings{testSettings(1)}

	h, err := NewHub(HubOptions{Config: c})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.stop)
	return h
}

// receive processes the next inbound, e.g. the result of a cloud operation.
func receive(h *Hub) {
	h.process(<-h.inbound)
}

func TestHubJoin(t *testing.T) {
	h := newTestHub(t)
	client := &testClient{}
	h.add(client)

	if len(client.sent) != 1 {
		t.Fatal("join expected 1 message got", len(client.sent))
	}
	ter := client.lastTerrain()
	if ter == nil {
		t.Fatalf("join expected *Terrain got %T", client.last())
	}
	if ter.Width != 16 || ter.Depth != 12 {
		t.Error("terrain expected 16x12 got", ter.Width, ter.Depth)
	}
	if want := 15 * 11 * 4; ter.Vertices != want {
		t.Error("vertices expected", want, "got", ter.Vertices)
	}
	if want := 15 * 11 * 2; ter.Triangles != want {
		t.Error("triangles expected", want, "got", ter.Triangles)
	}
	if len(ter.Layers) != 1 || ter.Layers[0] != testSettings(1) {
		t.Error("layers expected", testSettings(1), "got", ter.Layers)
	}

	g, err := compressed.DecodeGrid(ter.Data)
	if err != nil {
		t.Fatal(err)
	}
	if g.Width() != 16 || g.Depth() != 12 {
		t.Error("decoded grid expected 16x12 got", g.Width(), g.Depth())
	}
	if h.snapshot().grid == nil || h.snapshot().mesh.VertexCount() != ter.Vertices {
		t.Error("snapshot expected to match terrain")
	}
}

func TestHubLayers(t *testing.T) {
	h := newTestHub(t)
	editor, viewer := &testClient{}, &testClient{}
	h.add(editor)
	h.add(viewer)
	first := editor.lastTerrain()

	mean := layer.BlendMean
	h.process(SignedInbound{Client: editor, inbound: Layers{
		Layers: []terrain.Settings{testSettings(1), testSettings(2)},
		Blend:  &mean,
	}})

	// Nothing is sent until the next update
	if len(editor.sent) != 1 || len(viewer.sent) != 1 {
		t.Fatal("layers expected no immediate messages got", len(editor.sent), len(viewer.sent))
	}

	h.Update()

	for _, client := range []*testClient{editor, viewer} {
		ter := client.lastTerrain()
		if ter == nil || ter == first {
			t.Fatal("update expected new terrain")
		}
		if len(ter.Layers) != 2 || ter.Blend != layer.BlendMean {
			t.Error("terrain expected 2 layers blended with mean got", len(ter.Layers), ter.Blend)
		}
	}
	if editor.Edits != 1 || viewer.Edits != 0 {
		t.Error("edits expected 1 and 0 got", editor.Edits, viewer.Edits)
	}

	// No change, no update
	h.Update()
	if len(editor.sent) != 2 {
		t.Error("update without change expected no message got", len(editor.sent)-2)
	}

	// Disabling every layer sends empty terrain
	off := testSettings(1)
	off.Enabled = false
	h.process(SignedInbound{Client: editor, inbound: Layers{Layers: []terrain.Settings{off}}})
	h.Update()

	ter := viewer.lastTerrain()
	if ter == nil || ter.Data != nil || ter.Width != 0 || ter.Vertices != 0 {
		t.Error("disabled layers expected empty terrain got", ter)
	}
	if h.snapshot().grid != nil {
		t.Error("disabled layers expected no snapshot grid")
	}
}

func TestHubLayersRejected(t *testing.T) {
	invalid := testSettings(1)
	invalid.Octaves = -1

	tooLarge := testSettings(1)
	tooLarge.Width = 4096
	tooLarge.Depth = 4096

	tests := []struct {
		name   string
		layers []terrain.Settings
		want   string
	}{
		{"invalid", []terrain.Settings{invalid}, "octaves"},
		{"mismatch", []terrain.Settings{testSettings(1), terrain.DefaultSettings()}, layer.ErrDimensionMismatch.Error()},
		{"too large", []terrain.Settings{tooLarge}, "too large"},
		{"too many", make([]terrain.Settings, maxLayers+1), "too many"},
	}

	for _, test := range tests {
		h := newTestHub(t)
		editor, viewer := &testClient{}, &testClient{}
		h.add(editor)
		h.add(viewer)

		h.process(SignedInbound{Client: editor, inbound: Layers{Layers: test.layers}})
		h.Update()

		e, ok := editor.last().(*Error)
		if !ok || !strings.Contains(e.Message, test.want) {
			t.Errorf("%s: expected error containing %q got %#v", test.name, test.want, editor.last())
		}
		if len(viewer.sent) != 1 {
			t.Errorf("%s: viewer expected no messages got %d", test.name, len(viewer.sent)-1)
		}
		if settings := h.stack.Settings(); len(settings) != 1 || settings[0] != testSettings(1) {
			t.Errorf("%s: layers expected unchanged got %v", test.name, settings)
		}
	}
}

func TestHubLayersBadNames(t *testing.T) {
	h := newTestHub(t)
	editor := &testClient{}
	h.add(editor)

	for _, input := range []string{
		`{"type":"layers","data":{"layers":[],"blend":"max"}}`,
		`{"type":"layers","data":{"layers":[{"noise":"value"}]}}`,
	} {
		var message Message
		if err := json.Unmarshal([]byte(input), &message); err != nil {
			t.Fatal(input, err)
		}
		h.process(SignedInbound{Client: editor, inbound: message.Data.(inbound)})

		if _, ok := editor.last().(*Error); !ok {
			t.Errorf("%s expected error got %#v", input, editor.last())
		}
	}

	if editor.Hub != h || editor.closed || h.clients.Len != 1 {
		t.Error("client sending bad names expected to stay connected")
	}
	if editor.Edits != 0 || h.stack.Dirty() {
		t.Error("bad names expected no change")
	}
}

func TestSocketClientDrain(t *testing.T) {
	client := NewSocketClient(nil)

	// One reference for the hub, one for the queued send
	ter := &Terrain{Data: terrain.NewData()}
	ter.retain()
	send(client, ter)

	client.Close()
	client.drain()

	ter.Pool()
	if ter.Data != nil {
		t.Error("queued terrain expected released by drain")
	}
}

func TestHubPresets(t *testing.T) {
	h := newTestHub(t)
	editor, viewer := &testClient{}, &testClient{}
	h.add(editor)
	h.add(viewer)

	h.process(SignedInbound{Client: editor, inbound: SavePreset{Name: "  valley "}})
	receive(h) // saved
	receive(h) // listed

	for _, client := range []*testClient{editor, viewer} {
		presets, ok := client.last().(*Presets)
		if !ok || len(presets.Names) != 1 || presets.Names[0] != "valley" {
			t.Fatalf("save expected presets [valley] got %#v", client.last())
		}
	}

	// Change the layers, then load the preset back
	h.process(SignedInbound{Client: editor, inbound: Layers{Layers: []terrain.Settings{testSettings(5)}}})
	h.Update()

	h.process(SignedInbound{Client: viewer, inbound: LoadPreset{Name: "valley"}})
	receive(h)
	h.Update()

	ter := editor.lastTerrain()
	if ter == nil || len(ter.Layers) != 1 || ter.Layers[0] != testSettings(1) {
		t.Fatal("load expected preset layers got", editor.last())
	}

	// Only the requester gets a list
	h.process(SignedInbound{Client: viewer, inbound: ListPresets{}})
	receive(h)
	if _, ok := viewer.last().(*Presets); !ok {
		t.Errorf("list expected *Presets got %T", viewer.last())
	}
	if _, ok := editor.last().(*Presets); ok {
		t.Error("list expected no broadcast")
	}

	h.process(SignedInbound{Client: viewer, inbound: LoadPreset{Name: "missing"}})
	receive(h)
	if e, ok := viewer.last().(*Error); !ok || !strings.Contains(e.Message, ErrPresetNotFound.Error()) {
		t.Errorf("missing preset expected error got %#v", viewer.last())
	}

	h.process(SignedInbound{Client: viewer, inbound: SavePreset{Name: "   "}})
	if _, ok := viewer.last().(*Error); !ok {
		t.Errorf("blank name expected error got %#v", viewer.last())
	}
}

func TestHubRemove(t *testing.T) {
	h := newTestHub(t)
	client := &testClient{}
	h.add(client)
	h.remove(client)

	if !client.closed || client.Hub != nil || h.clients.Len != 0 {
		t.Error("remove expected closed client and empty list")
	}

	// Messages from removed clients are ignored
	h.process(SignedInbound{Client: client, inbound: Layers{Layers: []terrain.Settings{testSettings(9)}}})
	if h.stack.Dirty() {
		t.Error("removed client expected no change")
	}
}

func TestTerrainPool(t *testing.T) {
	h := newTestHub(t)
	a, b := &testClient{}, &testClient{}
	h.add(a)
	h.add(b)

	ter := a.lastTerrain()
	a.last().Pool()
	b.last().Pool()
	if ter.Data == nil {
		t.Fatal("terrain data expected kept by hub")
	}

	h.process(SignedInbound{Client: a, inbound: Layers{Layers: []terrain.Settings{testSettings(2)}}})
	h.Update()
	if ter.Data != nil {
		t.Error("replaced terrain data expected pooled")
	}
}

func TestOffline(t *testing.T) {
	var offline Offline

	if _, err := offline.ReadPreset("a"); !errors.Is(err, ErrPresetNotFound) {
		t.Error("ReadPreset expected", ErrPresetNotFound, "got", err)
	}

	layers := []terrain.Settings{testSettings(1)}
	if err := offline.SavePreset(Preset{Name: "a", Layers: layers, Blend: layer.BlendMean}); err != nil {
		t.Fatal(err)
	}
	layers[0].Seed = 100

	preset, err := offline.ReadPreset("a")
	if err != nil {
		t.Fatal(err)
	}
	if preset.Layers[0] != testSettings(1) || preset.Blend != layer.BlendMean {
		t.Error("ReadPreset expected saved copy got", preset)
	}

	names, _ := offline.ReadPresetNames()
	if len(names) != 1 || names[0] != "a" {
		t.Error("ReadPresetNames expected [a] got", names)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"valley", "valley", true},
		{"  rolling hills\t", "rolling hills", true},
		{"[big] (mountain)", "big mountain", true},
		{"", "", false},
		{"   ", "", false},
		{strings.Repeat("a", maxPresetName+1), "", false},
		{"fuck", "", false},
		{"\xff", "", false},
	}

	for _, test := range tests {
		got, ok := sanitize(test.input)
		if got != test.want || ok != test.ok {
			t.Errorf("sanitize(%q) expected %q, %v got %q, %v", test.input, test.want, test.ok, got, ok)
		}
	}
}

func TestClientList(t *testing.T) {
	var list ClientList
	a, b, c := &testClient{}, &testClient{}, &testClient{}
	list.Add(a)
	list.Add(b)
	list.Add(c)

	if next := list.Remove(b); next != c {
		t.Error("Remove expected next c got", next)
	}
	if list.Len != 2 || list.First != a || list.Last != c || a.Next != c || c.Previous != a {
		t.Error("Remove expected a <-> c")
	}

	list.Remove(c)
	list.Remove(a)
	if list.Len != 0 || list.First != nil || list.Last != nil {
		t.Error("Remove expected empty list")
	}

	list.Add(b)
	list.Broadcast(&Error{Message: "hi"})
	if len(b.sent) != 1 {
		t.Error("Broadcast expected 1 message got", len(b.sent))
	}
}
