// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"image"
	"image/png"
	"log"
	"net/http"

	"github.com/SoftbearStudios/heightmap/terrain"
)

func (h *Hub) ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	buf, ok := h.statusJSON.Load().([]byte)
	if ok {
		_, _ = w.Write(buf)
	}
}

func (h *Hub) ServeSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade error", err)
		return
	}

	h.register <- NewSocketClient(conn)
}

// ServeImage writes the terrain as a grayscale PNG heightmap, or a colored
// preview with ?color.
func (h *Hub) ServeImage(w http.ResponseWriter, r *http.Request) {
	combined := h.snapshot().grid
	if combined == nil {
		http.Error(w, "no terrain", http.StatusNotFound)
		return
	}

	var img image.Image
	if _, color := r.URL.Query()["color"]; color {
		img = terrain.Render(combined)
	} else {
		img = terrain.Image(combined)
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Println("error encoding image:", err)
	}
}

// ServeOBJ writes the terrain mesh in Wavefront OBJ format.
func (h *Hub) ServeOBJ(w http.ResponseWriter, r *http.Request) {
	m := h.snapshot().mesh
	if m == nil {
		http.Error(w, "no terrain", http.StatusNotFound)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "model/obj")
	if err := m.WriteOBJ(w); err != nil {
		log.Println("error writing mesh:", err)
	}
}
