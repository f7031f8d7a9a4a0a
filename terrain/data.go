// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package terrain

import "sync"

// Data describes a quantized heightmap on its way to a client.
// It may be in a compressed format.
type Data struct {
	Data      []byte `json:"data"`      // Data is a possibly compressed heightmap, one byte per sample.
	Stride    int    `json:"stride"`    // Stride is the depth of the grid (samples per x column).
	Length    int    `json:"length"`    // Length is uncompressed length of Data for faster reading.
	Precision int    `json:"precision"` // Precision is the number of significant bits per sample.
}

var dataPool = sync.Pool{
	New: func() interface{} {
		return &Data{
			Data: make([]byte, 0, 2048),
		}
	},
}

func NewData() *Data {
	return dataPool.Get().(*Data)
}

func (data *Data) Pool() {
	*data = Data{
		Data: data.Data[:0],
	}
	dataPool.Put(data)
}
