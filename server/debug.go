// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"bytes"
	"fmt"
	"image/png"
	"runtime"
	"time"

	"github.com/SoftbearStudios/heightmap/terrain"
)

// Debug prints debugging info to console and the log file.
func (h *Hub) Debug() {
	fmt.Printf("Debug [%v] %s\n", time.Now().Format(time.UnixDate), h.cloud)
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	fmt.Printf(" - memstats: %dM/%dM\n", stats.HeapInuse/1e6, stats.NextGC/1e6)

	edits := 0
	for client := h.clients.First; client != nil; client = client.Data().Next {
		data := client.Data()
		edits += data.Edits
		fmt.Printf("   - joined %s ago, %d edits\n", time.Since(data.Joined).Round(time.Second), data.Edits)
	}
	fmt.Printf(" - clients: %d, layers: %d, blend: %s\n", h.clients.Len, h.stack.Len(), h.stack.Blend())

	// Function benchmarks
	var totalDuration time.Duration

	fmt.Print(" - ")
	for i := range h.funcBenches {
		bench := &h.funcBenches[i]

		duration := bench.reset()
		totalDuration += duration

		fmt.Print(bench.name, ": ", duration, ", ")
	}
	fmt.Println("total:", totalDuration)

	if h.logPath != "" {
		err := AppendLog(h.logPath, []interface{}{
			time.Now().UnixNano() / 1e6,
			h.clients.Len,
			h.stack.Len(),
			edits,
			totalDuration.Seconds() * 1000,
		})
		if err != nil {
			fmt.Println("error appending log:", err)
		}
	}
}

// SnapshotTerrain uploads a colored render of the terrain.
func (h *Hub) SnapshotTerrain() {
	combined := h.snapshot().grid
	if combined == nil {
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, terrain.Render(combined)); err != nil {
		h.logf("error encoding snapshot: %v", err)
		return
	}

	go func() {
		if err := h.cloud.UploadTerrainSnapshot(buf.Bytes()); err != nil {
			h.logf("error uploading snapshot: %v", err)
		}
	}()
}

// funcBench is a benchmark of a core function.
type funcBench struct {
	name     string
	duration time.Duration
	runs     int
}

// reset resets the benchmark and returns the average duration
func (bench *funcBench) reset() time.Duration {
	if bench.runs == 0 {
		return 0
	}
	average := bench.duration / time.Duration(bench.runs)
	bench.duration = 0
	bench.runs = 0
	return average
}

// timeFunction times a function.
// defer timeFunction("name", time.Now())
func (h *Hub) timeFunction(name string, start time.Time) {
	end := time.Now()

	var bench *funcBench
	for i := range h.funcBenches {
		b := &h.funcBenches[i]
		if name == b.name {
			bench = b
			break
		}
	}

	if bench == nil {
		h.funcBenches = append(h.funcBenches, funcBench{name: name})
		bench = &h.funcBenches[len(h.funcBenches)-1]
	}

	bench.duration += end.Sub(start)
	bench.runs++
}
