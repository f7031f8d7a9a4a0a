// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import "io"

// Buffer run length encodes bytes.
//
// With Bits of 4, each run is one byte: the 4 most significant bits of the
// value followed by 4 bits of count - 1. With Bits of 8 (or 0), each run is
// two bytes: the value followed by count - 1.
//
// Reading does not modify the encoded bytes.
type Buffer struct {
	Bits int

	buf  []byte
	off  int  // Read position (start of current run)
	used byte // Values of the current run already read
}

func (buffer *Buffer) Reset(buf []byte) {
	buffer.buf = buf
	buffer.off = 0
	buffer.used = 0
}

func (buffer *Buffer) nibbles() bool {
	return buffer.Bits == 4
}

func (buffer *Buffer) runSize() int {
	if buffer.nibbles() {
		return 1
	}
	return 2
}

func (buffer *Buffer) writeByte(b byte) {
	if buffer.nibbles() {
		buffer.writeNibble(b)
		return
	}

	buf := buffer.buf
	end := len(buf) - 1

	const maxCount = 255
	if len(buf) >= 2 && buf[end-1] == b && buf[end] < maxCount {
		// Add 1 to count
		buf[end]++
	} else {
		buf = append(buf, b, 0)
	}

	buffer.buf = buf
}

// Encodes a byte as its 4 most significant bits
func (buffer *Buffer) writeNibble(b byte) {
	buf := buffer.buf

	next := b >> 4

	var current, countMinusOne, tuple byte
	end := len(buf) - 1

	const maxCount = 15
	if len(buf) > 0 {
		tuple = buf[end]
		current = tuple >> 4
		countMinusOne = tuple & maxCount
	} else {
		countMinusOne = maxCount // Full
	}

	if next != current || countMinusOne == maxCount {
		// Start new tuple
		tuple = next << 4
		buf = append(buf, tuple)
	} else {
		// Add 1 to count
		buf[end] = tuple + 1
	}

	buffer.buf = buf
}

func (buffer *Buffer) Write(buf []byte) (int, error) {
	for _, b := range buf {
		buffer.writeByte(b)
	}
	return len(buf), nil
}

// run returns the value and count - 1 of the current run.
func (buffer *Buffer) run() (value, countMinusOne byte) {
	if buffer.nibbles() {
		tuple := buffer.buf[buffer.off]
		return tuple & 0b11110000, tuple & 15
	}
	return buffer.buf[buffer.off], buffer.buf[buffer.off+1]
}

func (buffer *Buffer) readByte() byte {
	b, countMinusOne := buffer.run()

	if buffer.used < countMinusOne {
		buffer.used++
	} else {
		buffer.off += buffer.runSize()
		buffer.used = 0
	}

	return b
}

func (buffer *Buffer) more() bool {
	return buffer.off+buffer.runSize() <= len(buffer.buf)
}

func (buffer *Buffer) Read(buf []byte) (int, error) {
	i := 0

	for ; i < len(buf) && buffer.more(); i++ {
		buf[i] = buffer.readByte()
	}

	if i == 0 && len(buf) > 0 {
		return 0, io.EOF
	}

	return i, nil
}

// Grow makes space for about n elements
func (buffer *Buffer) Grow(n int) {
	compressed := n / 2
	if old := buffer.Buffer(); cap(old)-len(old) < compressed {
		buf := make([]byte, len(old), len(old)+compressed)
		copy(buf, old)
		buffer.buf = buf
		buffer.off = 0
	}
}

// Buffer returns the unread encoded bytes.
func (buffer *Buffer) Buffer() []byte {
	return buffer.buf[buffer.off:]
}
