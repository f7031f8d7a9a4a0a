// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command render_cmd generates terrain from a config file and writes it as a
// PNG heightmap and optionally a Wavefront OBJ mesh.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/SoftbearStudios/heightmap/config"
	"github.com/SoftbearStudios/heightmap/terrain"
	"github.com/SoftbearStudios/heightmap/terrain/layer"
	"github.com/SoftbearStudios/heightmap/terrain/mesh"
	"github.com/SoftbearStudios/heightmap/terrain/noise"
)

type options struct {
	config string
	out    string
	obj    string
	blend  string
	color  bool
	dump   bool
}

func main() {
	var (
		cpuProfile string
		o          options
	)
	flag.StringVar(&cpuProfile, "cpuprofile", "", "write cpu profile to `file`")
	flag.StringVar(&o.config, "config", "", "read layers from config `file`")
	flag.StringVar(&o.out, "out", "out.png", "write heightmap to `file`")
	flag.StringVar(&o.obj, "obj", "", "write mesh to OBJ `file`")
	flag.StringVar(&o.blend, "blend", "", "override blend (halve or mean)")
	flag.BoolVar(&o.color, "color", false, "render a colored preview instead of grayscale")
	flag.BoolVar(&o.dump, "dump", false, "print the effective config and exit")
	flag.Parse()

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(o); err != nil {
		log.Println(err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(o options) error {
	c, err := config.Load(o.config)
	if err != nil {
		return err
	}

	if o.blend != "" {
		if c.Blend, err = layer.ParseBlend(o.blend); err != nil {
			return err
		}
	}

	if o.dump {
		return c.Write(os.Stdout)
	}

	start := time.Now()

	stack := layer.NewStack(noise.Sampler{})
	stack.SetBlend(c.Blend)
	if _, err = stack.Update(c.Layers); err != nil {
		return err
	}

	combined, err := stack.Combined()
	if err != nil {
		return err
	}
	if combined == nil {
		return errors.New("no enabled layers")
	}

	log.Printf("generated %d layers (%s) in %s\n", stack.Len(), stack.Blend(), time.Since(start))

	var img image.Image
	if o.color {
		img = terrain.Render(combined)
	} else {
		img = terrain.Image(combined)
	}
	if err = writePNG(o.out, img); err != nil {
		return err
	}

	if o.obj != "" {
		m := mesh.New(combined)
		if err = writeOBJ(o.obj, m); err != nil {
			return err
		}
		log.Printf("meshed %d vertices, %d triangles\n", m.VertexCount(), m.TriangleCount())
	}

	return nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = png.Encode(file, img); err != nil {
		return fmt.Errorf("could not encode %s: %w", path, err)
	}
	return file.Close()
}

func writeOBJ(path string, m *mesh.Mesh) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err = m.WriteOBJ(file); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return file.Close()
}
