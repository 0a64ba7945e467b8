// Copyright 2026 The Telebridge Authors
// SPDX-License-Identifier: Apache-2.0

package relay

// FrameSize is the number of source bytes relayed to clients as one
// unit. It matches the chunk size ground stations for this link
// expect, not any message boundary.
const FrameSize = 512

// Accumulator cuts a byte stream into fixed-size frames. A frame is
// complete exactly when the buffered length reaches the threshold; a
// partial frame is never emitted on its own.
//
// Not safe for concurrent use. The relay loop owns it.
type Accumulator struct {
	buffer []byte
	size   int
	frames uint64
}

// NewAccumulator returns an Accumulator that emits FrameSize frames.
func NewAccumulator() *Accumulator {
	return newAccumulator(FrameSize)
}

func newAccumulator(size int) *Accumulator {
	return &Accumulator{
		buffer: make([]byte, 0, size),
		size:   size,
	}
}

// Append adds one byte.
func (a *Accumulator) Append(b byte) {
	a.buffer = append(a.buffer, b)
}

// IsFull reports whether a complete frame is buffered.
func (a *Accumulator) IsFull() bool {
	return len(a.buffer) >= a.size
}

// Drain returns the buffered bytes and resets the accumulator. The
// returned slice is owned by the caller.
func (a *Accumulator) Drain() []byte {
	frame := a.buffer
	a.buffer = make([]byte, 0, a.size)
	if len(frame) >= a.size {
		a.frames++
	}
	return frame
}

// Write appends data and calls emit with every frame completed along
// the way, in stream order. Returns the number of frames emitted.
// Bytes past the last complete frame stay buffered.
func (a *Accumulator) Write(data []byte, emit func(frame []byte)) int {
	emitted := 0
	for len(data) > 0 {
		take := a.size - len(a.buffer)
		if take > len(data) {
			take = len(data)
		}
		a.buffer = append(a.buffer, data[:take]...)
		data = data[take:]
		if a.IsFull() {
			emit(a.Drain())
			emitted++
		}
	}
	return emitted
}

// Len returns the number of buffered bytes.
func (a *Accumulator) Len() int { return len(a.buffer) }

// Size returns the frame size.
func (a *Accumulator) Size() int { return a.size }

// Frames returns the number of complete frames drained so far.
func (a *Accumulator) Frames() uint64 { return a.frames }
