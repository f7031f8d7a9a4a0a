// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the JSON configuration shared by the heightmap binaries.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.Config{
	IndentionStep:          2,
	EscapeHTML:             false,
	SortMapKeys:            true,
	DisallowUnknownFields:  true,
	TagKey:                 "json",
	CaseSensitive:          true,
	ValidateJsonRawMessage: true,
}.Froze()

var ErrInvalidConfig = errors.New("invalid config")

// Config is the contents of a config file.
// Fields missing from the file keep their Default values, including the
// fields of each layer.
type Config struct {
	Layers []terrain.Settings `json:"layers"`
	Blend  layer.Blend        `json:"blend"`

	// Precision is the bits per sample of terrain sent to clients (4 or 8).
	Precision      int `json:"precision"`
	Port           int `json:"port"`
	MaxConnections int `json:"maxConnections"`
	// PollMillis is how often the server checks for edited layers.
	PollMillis      int `json:"pollMillis"`
	SnapshotSeconds int `json:"snapshotSeconds"`
}

// Default returns the config used when there is no config file.
func Default() *Config {
	return &Config{
		Layers:          []terrain.Settings{terrain.DefaultSettings()},
		Blend:           layer.BlendHalve,
		Precision:       8,
		Port:            8192,
		MaxConnections:  256,
		PollMillis:      100,
		SnapshotSeconds: 60,
	}
}

// Load reads a config file. A missing file is not an error, the defaults are
// returned instead.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No config file %s, using defaults\n", path)
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read decodes and validates a config.
func Read(r io.Reader) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	c := Default()
	if err := json.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// Second pass so each layer starts from the default layer
	var raw struct {
		Layers []jsoniter.RawMessage `json:"layers"`
	}
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if raw.Layers != nil {
		c.Layers = make([]terrain.Settings, len(raw.Layers))
		for i, l := range raw.Layers {
			c.Layers[i] = terrain.DefaultSettings()
			if err := json.Unmarshal(l, &c.Layers[i]); err != nil {
				return nil, fmt.Errorf("error parsing layer %d: %w", i, err)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Write encodes the config as indented JSON.
func (c *Config) Write(w io.Writer) error {
	buf, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(append(buf, '\n'))
	return err
}

func (c *Config) Validate() error {
	for i := range c.Layers {
		if err := c.Layers[i].Validate(); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}

	switch {
	case c.Precision != 4 && c.Precision != 8:
		return fmt.Errorf("%w: precision %d must be 4 or 8", ErrInvalidConfig, c.Precision)
	case c.MaxConnections < 1:
		return fmt.Errorf("%w: maxConnections %d must be positive", ErrInvalidConfig, c.MaxConnections)
	case c.PollMillis < 1:
		return fmt.Errorf("%w: pollMillis %d must be positive", ErrInvalidConfig, c.PollMillis)
	case c.SnapshotSeconds < 1:
		return fmt.Errorf("%w: snapshotSeconds %d must be positive", ErrInvalidConfig, c.SnapshotSeconds)
	}
	return nil
}

func (c *Config) PollPeriod() time.Duration {
	return time.Duration(c.PollMillis) * time.Millisecond
}

func (c *Config) SnapshotPeriod() time.Duration {
	return time.Duration(c.SnapshotSeconds) * time.Second
}
