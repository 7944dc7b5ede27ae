/*
   gsx - Apple Desktop Bus keyboard/mouse microcontroller.

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

// Package adb models the GLU microcontroller behind the keyboard and
// mouse: a keycode FIFO, modifier latches, a signed mouse-delta register,
// and the $C026/$C027 command/status protocol.
package adb

const fifoCapacity = 16

// Modifier bits, matching the GLU's modifier status byte.
const (
	ModShift uint8 = 1 << iota
	ModControl
	ModOption
	ModCommand
	ModCapsLock
)

// Controller is the ADB GLU state machine.
type Controller struct {
	fifo      [fifoCapacity]uint8
	fifoHead  int
	fifoLen   int
	pressed   map[uint8]bool
	modifiers uint8

	lastKey uint8 // most recent key code, presented at $C000
	strobe  bool  // key strobe bit, cleared by a $C010 access

	mouseDX, mouseDY int8
	mouseButtonDown  bool
	mouseDirty       bool

	cmdLatch   uint8
	srqPending bool

	irqSink func()
}

func New() *Controller {
	return &Controller{pressed: make(map[uint8]bool)}
}

func (c *Controller) SetIRQSink(f func()) { c.irqSink = f }

// KeyDown / KeyUp feed raw ADB keycodes from the host into the FIFO. A
// key-up also clears the key from the pressed-set used by PhysicallyDown.
func (c *Controller) KeyDown(code uint8) {
	c.pressed[code] = true
	c.lastKey = code & 0x7F
	c.strobe = true
	c.push(code)
}

func (c *Controller) KeyUp(code uint8) {
	delete(c.pressed, code)
	c.push(code | 0x80)
	if c.irqSink != nil {
		c.irqSink()
	}
}

func (c *Controller) PhysicallyDown(code uint8) bool { return c.pressed[code] }

// ReadKey returns the classic $C000 keyboard register view: the most
// recent key code with the strobe in bit 7.
func (c *Controller) ReadKey() uint8 {
	v := c.lastKey
	if c.strobe {
		v |= 0x80
	}
	return v
}

// ClearStrobe services a $C010 access: the strobe clears, and the
// returned byte reports in bit 7 whether any key is still held down.
func (c *Controller) ClearStrobe() uint8 {
	c.strobe = false
	if len(c.pressed) > 0 {
		return 0x80 | c.lastKey
	}
	return c.lastKey
}

func (c *Controller) SetModifier(m uint8, down bool) {
	if down {
		c.modifiers |= m
	} else {
		c.modifiers &^= m
	}
}

func (c *Controller) push(b uint8) {
	if c.fifoLen >= fifoCapacity {
		return
	}
	idx := (c.fifoHead + c.fifoLen) % fifoCapacity
	c.fifo[idx] = b
	c.fifoLen++
}

func (c *Controller) pop() (uint8, bool) {
	if c.fifoLen == 0 {
		return 0, false
	}
	b := c.fifo[c.fifoHead]
	c.fifoHead = (c.fifoHead + 1) % fifoCapacity
	c.fifoLen--
	return b, true
}

// MouseMove accumulates a motion event into the signed 7-bit delta
// registers the host reads via $C024, and raises SRQ once unread state
// exists.
func (c *Controller) MouseMove(dx, dy int, buttonDown bool) {
	c.mouseDX = clamp7(int(c.mouseDX) + dx)
	c.mouseDY = clamp7(int(c.mouseDY) + dy)
	c.mouseButtonDown = buttonDown
	c.mouseDirty = true
	c.srqPending = true
}

func clamp7(v int) int8 {
	if v > 63 {
		v = 63
	}
	if v < -64 {
		v = -64
	}
	return int8(v)
}

// ReadMouse returns and clears the accumulated mouse delta register
// ($C024), packed as two signed bytes with the button state in the high
// bit of each per the GS mouse register convention.
func (c *Controller) ReadMouse() (x, y uint8) {
	x = uint8(c.mouseDX) & 0x7F
	y = uint8(c.mouseDY) & 0x7F
	if !c.mouseButtonDown {
		x |= 0x80
		y |= 0x80
	}
	c.mouseDX, c.mouseDY = 0, 0
	c.mouseDirty = false
	return
}

// WriteCommand and ReadStatus implement the $C026/$C027 command/status
// protocol: a command byte selects a mode, and subsequent status reads
// return queued keyboard bytes or mouse state depending on that mode.
func (c *Controller) WriteCommand(v uint8) { c.cmdLatch = v }

func (c *Controller) ReadStatus() uint8 {
	switch c.cmdLatch {
	case 0x00: // read key FIFO
		if b, ok := c.pop(); ok {
			return b
		}
		return 0
	case 0x01: // read modifiers
		return c.modifiers
	default:
		return 0xFF
	}
}

// SRQPending reports whether unread mouse state exists; cleared once the
// host drains ReadMouse.
func (c *Controller) SRQPending() bool { return c.srqPending && c.mouseDirty }

// Poll raises an IRQ for any unacknowledged mouse SRQ that hasn't already
// been reported. Called once per machine Step, after DOC sample production
// and before the shared per-cycle IRQ assertion.
func (c *Controller) Poll() {
	if !c.SRQPending() {
		return
	}
	if c.irqSink != nil {
		c.irqSink()
	}
	c.srqPending = false
}
