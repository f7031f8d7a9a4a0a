// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import (
	"errors"
	"fmt"
	"io"

	"github.com/SoftbearStudios/heightmap/terrain"
)

// ErrCorrupt is returned when encoded data doesn't decode to its declared length.
var ErrCorrupt = errors.New("compressed: corrupt data")

// Encode quantizes a grid to bytes in storage order (x major) and run length
// encodes them with 4 or 8 bits of precision (anything else means 8).
// The result should be returned with Data.Pool when no longer needed.
func Encode(g *terrain.Grid, precision int) *terrain.Data {
	if precision != 4 {
		precision = 8
	}

	data := terrain.NewData()
	buffer := Buffer{
		Bits: precision,
		buf:  data.Data,
	}
	buffer.Grow(g.Len())

	for _, h := range g.Heights() {
		buffer.writeByte(terrain.FloatToByte(h))
	}

	data.Data = buffer.Buffer()
	data.Stride = g.Depth()
	data.Length = g.Len()
	data.Precision = precision

	return data
}

// Decode returns the Length quantized samples of data.
func Decode(data *terrain.Data) ([]byte, error) {
	if data.Length < 0 || data.Stride < 0 || (data.Stride == 0 && data.Length != 0) || (data.Stride > 0 && data.Length%data.Stride != 0) {
		return nil, fmt.Errorf("%w: length %d stride %d", ErrCorrupt, data.Length, data.Stride)
	}

	buffer := Buffer{Bits: data.Precision}
	buffer.Reset(data.Data)

	out := make([]byte, data.Length)
	if n, err := io.ReadFull(&buffer, out); err != nil {
		return nil, fmt.Errorf("%w: %d of %d samples", ErrCorrupt, n, data.Length)
	}
	if extra := len(buffer.Buffer()); extra != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, extra)
	}

	return out, nil
}

// DecodeGrid decodes data into a new grid with heights in [0, 1].
func DecodeGrid(data *terrain.Data) (*terrain.Grid, error) {
	samples, err := Decode(data)
	if err != nil {
		return nil, err
	}

	width := 0
	if data.Stride > 0 {
		width = data.Length / data.Stride
	}

	g := terrain.NewGrid(width, data.Stride)
	heights := g.Heights()
	for i, b := range samples {
		heights[i] = byteToFloat(b)
	}

	return g, nil
}
