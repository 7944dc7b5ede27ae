/*
   gsx - Battery-backed real-time clock and BRAM.

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

// Package rtc implements the four-phase $C033/$C034 command protocol
// driving both the seconds-since-1904 clock registers and the 256-byte
// BRAM, plus the internal 1Hz counter that can raise the RTC IRQ.
package rtc

const BRAMSize = 256

type phase int

const (
	phaseIdle phase = iota
	phaseCommandSent
	phaseDataNibble
)

// Clock is the RTC+BRAM state machine. SecondsSince1904 is advanced by
// the host's real wall clock or by test code; the command protocol only
// ever reads/writes through Clock's own registers, never the host's.
type Clock struct {
	SecondsSince1904 uint32
	BRAM             [BRAMSize]uint8
	Dirty            bool

	state    phase
	cmd      uint8
	dataByte uint8
	nibbleHi bool

	oneSecAccum  int
	irqEnabled   bool
	irqSink      func()
}

func New() *Clock {
	return &Clock{}
}

func (c *Clock) SetIRQSink(f func()) { c.irqSink = f }
func (c *Clock) EnableIRQ(on bool)   { c.irqEnabled = on }

// WriteCommand and WriteData implement $C033 (data nibble) and $C034
// (command nibble + strobe): the host sends a command nibble, then a
// data nibble, then this reads back the selected clock/BRAM byte.
func (c *Clock) WriteCommand(v uint8) {
	c.cmd = v
	c.state = phaseCommandSent
}

func (c *Clock) WriteData(v uint8) {
	switch c.state {
	case phaseCommandSent:
		c.dataByte = v
		c.state = phaseDataNibble
		c.applyWrite()
	case phaseDataNibble:
		c.applyWrite()
	default:
	}
}

func (c *Clock) ReadData() uint8 {
	reg := c.cmd & 0x7F
	switch {
	case reg < 4:
		return uint8(c.SecondsSince1904 >> (8 * reg))
	case reg >= 0x10 && int(reg-0x10) < BRAMSize:
		return c.BRAM[reg-0x10]
	default:
		return 0xFF
	}
}

func (c *Clock) applyWrite() {
	if c.cmd&0x80 == 0 {
		return // read command, nothing to latch
	}
	reg := c.cmd & 0x7F
	switch {
	case reg < 4:
		shift := 8 * reg
		mask := uint32(0xFF) << shift
		c.SecondsSince1904 = (c.SecondsSince1904 &^ mask) | uint32(c.dataByte)<<shift
	case reg >= 0x10 && int(reg-0x10) < BRAMSize:
		c.BRAM[reg-0x10] = c.dataByte
		c.Dirty = true
	}
}

// Tick adds ticksThisCall to the 1-second accumulator; each full
// ticksPerSecond advances SecondsSince1904. The machine driver calls it on
// every step with that step's cycles.
func (c *Clock) Tick(ticksThisCall, ticksPerSecond int) {
	c.oneSecAccum += ticksThisCall
	if c.oneSecAccum >= ticksPerSecond {
		c.oneSecAccum -= ticksPerSecond
		c.SecondsSince1904++
		if c.irqEnabled && c.irqSink != nil {
			c.irqSink()
		}
	}
}
