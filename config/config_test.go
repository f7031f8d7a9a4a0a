// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
)

func TestLoadMissing(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c, Default()) {
		t.Error("Load(missing) expected", Default(), "got", c)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heightmap.json")
	if err := os.WriteFile(path, []byte(`{"port": 9000}`), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Port != 9000 {
		t.Error("port expected 9000 got", c.Port)
	}
	if len(c.Layers) != 1 || c.Layers[0] != terrain.DefaultSettings() {
		t.Error("layers expected default got", c.Layers)
	}
}

func TestReadLayerDefaults(t *testing.T) {
	const input = `{
		"layers": [
			{"seed": 7, "noise": "perlin"},
			{"octaves": 0, "enabled": false}
		],
		"blend": "mean",
		"precision": 4
	}`

	c, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	if len(c.Layers) != 2 {
		t.Fatal("layers expected 2 got", len(c.Layers))
	}

	first := terrain.DefaultSettings()
	first.Seed = 7
	first.Noise = terrain.Perlin
	if c.Layers[0] != first {
		t.Error("layer 0 expected", first, "got", c.Layers[0])
	}

	second := terrain.DefaultSettings()
	second.Octaves = 0
	second.Enabled = false
	if c.Layers[1] != second {
		t.Error("layer 1 expected", second, "got", c.Layers[1])
	}

	if c.Blend != layer.BlendMean {
		t.Error("blend expected", layer.BlendMean, "got", c.Blend)
	}
	if c.Precision != 4 {
		t.Error("precision expected 4 got", c.Precision)
	}
	if c.MaxConnections != Default().MaxConnections {
		t.Error("maxConnections expected default got", c.MaxConnections)
	}
}

func TestReadEmptyLayers(t *testing.T) {
	c, err := Read(strings.NewReader(`{"layers": []}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Layers) != 0 {
		t.Error("layers expected none got", c.Layers)
	}
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{`{"layers": [{"width": 0}]}`, terrain.ErrInvalidSettings},
		{`{"layers": [{"lacunarity": 1}]}`, terrain.ErrInvalidSettings},
		{`{"precision": 6}`, ErrInvalidConfig},
		{`{"pollMillis": 0}`, ErrInvalidConfig},
		{`{"maxConnections": -1}`, ErrInvalidConfig},
	}

	for _, test := range tests {
		if _, err := Read(strings.NewReader(test.input)); !errors.Is(err, test.err) {
			t.Errorf("Read(%s) expected %v got %v", test.input, test.err, err)
		}
	}

	malformed := []string{
		`{"port": "x"}`,
		`{"colour": true}`,
		`{"layers": [{"heigthScale": 2}]}`,
		`{"blend": "max"}`,
		`{"layers": [{"noise": "value"}]}`,
	}
	for _, input := range malformed {
		if _, err := Read(strings.NewReader(input)); err == nil {
			t.Errorf("Read(%s) expected error", input)
		}
	}
}

func TestWriteRead(t *testing.T) {
	c := Default()
	c.Blend = layer.BlendMean
	c.Layers = append(c.Layers, terrain.DefaultSettings())
	c.Layers[1].Seed = 3
	c.Layers[1].Space = terrain.Scaled

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatal(err)
	}

	read, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(read, c) {
		t.Error("Read(Write) expected", c, "got", read)
	}
}
