/*
   gsx - Lock-free SPSC audio ring buffer.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package machine

import "sync/atomic"

// AudioRing is a single-producer/single-consumer ring of stereo sample
// pairs. The emulation thread is the only producer (Push, called from
// Step's DOC tick); a host audio callback is the only consumer (Pull).
// Capacity must be a power of two so index wrap is a plain mask.
type AudioRing struct {
	buf      []int16 // interleaved L,R pairs; len == capacity*2
	capacity uint32
	mask     uint32

	writeIdx atomic.Uint32
	readIdx  atomic.Uint32
}

func NewAudioRing(capacitySamples int) *AudioRing {
	capacity := nextPowerOfTwo(uint32(capacitySamples))
	return &AudioRing{
		buf:      make([]int16, capacity*2),
		capacity: capacity,
		mask:     capacity - 1,
	}
}

func nextPowerOfTwo(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

// Push writes one stereo sample pair; if the ring is full the oldest
// unread sample is overwritten and the read cursor advances with it,
// favoring latency over the host catching every dropped frame on an
// audio underrun.
func (r *AudioRing) Push(left, right int16) {
	w := r.writeIdx.Load()
	read := r.readIdx.Load()
	if w-read >= r.capacity {
		r.readIdx.Store(read + 1)
	}
	idx := (w & r.mask) * 2
	r.buf[idx] = left
	r.buf[idx+1] = right
	r.writeIdx.Store(w + 1)
}

// Pull drains up to len(out)/2 stereo pairs into out (interleaved L,R),
// returning the number of pairs written.
func (r *AudioRing) Pull(out []int16) int {
	w := r.writeIdx.Load()
	read := r.readIdx.Load()
	available := w - read
	maxPairs := uint32(len(out) / 2)
	if available > maxPairs {
		available = maxPairs
	}
	for i := uint32(0); i < available; i++ {
		idx := ((read + i) & r.mask) * 2
		out[i*2] = r.buf[idx]
		out[i*2+1] = r.buf[idx+1]
	}
	r.readIdx.Store(read + available)
	return int(available)
}
