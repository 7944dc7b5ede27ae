/*
   gsx - Integrated Woz Machine floppy controller.

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

// Package iwm implements the Q6/Q7 mode state machine and per-drive
// positioning for 5.25" and 3.5" floppy drives, plus the phase-coil
// stepper that moves a 5.25" drive's head between quarter-tracks.
package iwm

import (
	"github.com/open-iigs/gsx/emu/disk"
	"github.com/open-iigs/gsx/emu/smartport"
)

// Mode selects one of the four Q6/Q7 combinations latched by writes to
// $C0E8-$C0EF.
type Mode uint8

const (
	ModeReadData Mode = iota
	ModeReadStatus
	ModeWriteMode
	ModeWriteData
)

// Drive is one physical floppy slot's head-positioning and motor state.
// qtrTrackIndex is the head position counted from track 0: each rising
// edge on a phase coil adjacent to an already-energized one moves it by
// one step (see setPhase).
type Drive struct {
	Image *disk.Image

	qtrTrackIndex  int
	trackByteIndex int
	bitShift       uint8

	motorOn    bool
	writeProt  bool
	is35       bool // 3.5" drives use one-step-per-command, not phase stepping
	enbl2      bool // 3.5" side select
	phaseState uint8
}

func NewDrive(is35 bool) *Drive {
	return &Drive{is35: is35}
}

func (d *Drive) Insert(img *disk.Image) {
	d.Image = img
	d.qtrTrackIndex = 0
	d.trackByteIndex = 0
}

func (d *Drive) Eject() *disk.Image {
	img := d.Image
	d.Image = nil
	return img
}

// Snapshot captures the drive's mounted image (if any) and head-position
// state, for the machine snapshot's storage section (spec.md §6).
type DriveSnapshot struct {
	Present        bool
	Image          disk.Snapshot
	QtrTrackIndex  int
	TrackByteIndex int
	MotorOn        bool
	WriteProt      bool
	Is35           bool
	Enbl2          bool
	PhaseState     uint8
}

func (d *Drive) Snapshot() DriveSnapshot {
	snap := DriveSnapshot{
		QtrTrackIndex: d.qtrTrackIndex, TrackByteIndex: d.trackByteIndex,
		MotorOn: d.motorOn, WriteProt: d.writeProt, Is35: d.is35,
		Enbl2: d.enbl2, PhaseState: d.phaseState,
	}
	if d.Image != nil {
		snap.Present = true
		snap.Image = d.Image.Snapshot()
	}
	return snap
}

func (d *Drive) Restore(snap DriveSnapshot) {
	d.qtrTrackIndex = snap.QtrTrackIndex
	d.trackByteIndex = snap.TrackByteIndex
	d.motorOn = snap.MotorOn
	d.writeProt = snap.WriteProt
	d.is35 = snap.Is35
	d.enbl2 = snap.Enbl2
	d.phaseState = snap.PhaseState
	if snap.Present {
		d.Image = disk.Restore(snap.Image)
	} else {
		d.Image = nil
	}
}

// Controller owns up to two drives per slot pair (5.25" slot 6, 3.5"
// slot 5 by Apple IIgs convention) and the Q6/Q7 latch.
type Controller struct {
	drives  [2]*Drive
	current int

	mode     Mode
	dataLatch uint8
	phase    [4]bool // $C0E0-$C0E7 phase coil state

	tickAccumulator int
}

func NewController(d0, d1 *Drive) *Controller {
	return &Controller{drives: [2]*Drive{d0, d1}}
}

func (c *Controller) SelectDrive(index int) { c.current = index & 1 }
func (c *Controller) drive() *Drive         { return c.drives[c.current] }

// MotorOn reports the selected drive's spindle state.
func (c *Controller) MotorOn() bool { return c.drive().motorOn }

// StopMotor forces the selected drive's spindle off. The motor-off
// softswitch does not call this directly: the machine schedules it one
// second after the switch, matching the real drive's spindown delay.
func (c *Controller) StopMotor() { c.drive().motorOn = false }

// Mode reports the current Q6/Q7 latch state, used by the machine driver
// to decide whether a write into the $C0E0-$C0EF window is a phase/mode
// control write or a data-register nibble write.
func (c *Controller) Mode() Mode { return c.mode }

// WritePhase latches one of the eight phase/mode control lines
// ($C0E0-$C0EF): even offsets clear, odd offsets set.
func (c *Controller) WritePhase(offset uint8) {
	line := offset >> 1
	set := offset&1 != 0

	switch {
	case line < 4:
		c.setPhase(int(line), set)
	case line == 4:
		c.drive().motorOn = set
	case line == 5:
		c.SelectDrive(boolToInt(set))
	case line == 6 || line == 7:
		// Mode values are Q6 | Q7<<1; keep the other latch as it is.
		q6 := c.mode == ModeReadStatus || c.mode == ModeWriteData
		q7 := c.mode == ModeWriteMode || c.mode == ModeWriteData
		if line == 6 {
			q6 = set
		} else {
			q7 = set
		}
		c.mode = Mode(boolToInt(q6) | boolToInt(q7)<<1)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// setPhase applies one phase-coil transition. For 5.25" drives, a rising
// edge on a phase adjacent (mod 4) to the currently energized one steps
// the head a quarter-track toward or away from track 0; for 3.5" drives
// phase writes instead feed the serial command protocol (not modeled
// beyond latching, since this core targets the native WOZ/2IMG block and
// bit-stream formats rather than raw Sony-400K command emulation).
func (c *Controller) setPhase(phase int, on bool) {
	d := c.drive()
	prev := c.phase[phase]
	c.phase[phase] = on
	if d.is35 {
		d.phaseState = c.phaseBits()
		return
	}
	if !on || prev {
		return
	}
	for p := 0; p < 4; p++ {
		if p == phase {
			continue
		}
		if c.phase[p] {
			delta := phase - p
			if delta == 1 || delta == -3 {
				d.qtrTrackIndex++
			} else if delta == -1 || delta == 3 {
				d.qtrTrackIndex--
				if d.qtrTrackIndex < 0 {
					d.qtrTrackIndex = 0
				}
			}
		}
	}
}

// ReadData returns the current data-latch byte; in ModeReadData the
// latch's high bit gates whether the CPU sees a valid nibble or a
// still-shifting zero, matching the real self-sync scheme.
func (c *Controller) ReadData() uint8 {
	switch c.mode {
	case ModeReadStatus:
		return c.statusByte()
	case ModeReadData:
		v := c.dataLatch
		if v&0x80 != 0 {
			c.dataLatch = 0 // a valid nibble is consumed by the read
		}
		return v
	default:
		return c.dataLatch
	}
}

func (c *Controller) statusByte() uint8 {
	d := c.drive()
	v := uint8(0)
	if d.writeProt {
		v |= 0x80
	}
	if d.motorOn {
		v |= 0x20
	}
	return v
}

// WriteData stores a byte into the disk's nibble stream at the head
// position in ModeWriteData. In every other mode, ModeWriteMode included,
// the byte is ignored; the controller has no mode register to update.
func (c *Controller) WriteData(v uint8) {
	if c.mode != ModeWriteData {
		return
	}
	d := c.drive()
	if d.Image == nil || d.writeProt {
		return
	}
	d.Image.WriteNibble(d.qtrTrackIndex/2, d.trackByteIndex, v)
	d.trackByteIndex++
}

// Tick counts one device tick while the selected drive spins; every
// bitCellTicks ticks it loads the next whole nibble of the current track
// into the data latch. The machine driver calls it once per Step, after
// the VGC scanline advance and before DOC sample production (spec.md §5).
func (c *Controller) Tick() {
	d := c.drive()
	if !d.motorOn || d.Image == nil {
		return
	}
	c.tickAccumulator++
	if c.tickAccumulator < bitCellTicks {
		return
	}
	c.tickAccumulator = 0

	track := d.qtrTrackIndex / 2
	nibble, initialized := d.Image.ReadNibble(track, d.trackByteIndex)
	if !initialized {
		// Uninitialized track: real hardware reads back noise. A drive
		// that has never been formatted must not look like a clean,
		// all-zero track to boot ROM probing code.
		nibble = pseudoRandomNibble(d.trackByteIndex)
	}
	c.dataLatch = nibble
	d.trackByteIndex++
	if d.trackByteIndex >= d.Image.TrackLen(track) {
		d.trackByteIndex = 0
	}
}

func (c *Controller) phaseBits() uint8 {
	var v uint8
	for p := 0; p < 4; p++ {
		if c.phase[p] {
			v |= 1 << uint(p)
		}
	}
	return v
}

// SmartPortReset reports whether the selected 3.5" drive's current
// phase-coil state selects a SmartPort bus reset.
func (c *Controller) SmartPortReset() bool {
	d := c.drive()
	return d.is35 && smartport.DecodeResetPhase(d.phaseState)
}

// SmartPortEnable reports whether the selected 3.5" drive's current
// phase-coil state selects a SmartPort bus enable.
func (c *Controller) SmartPortEnable() bool {
	d := c.drive()
	return d.is35 && smartport.DecodeEnablePhase(d.phaseState)
}

const bitCellTicks = 4 // Tick calls per nibble loaded into the data latch

func pseudoRandomNibble(seed int) uint8 {
	x := uint32(seed)*2654435761 + 1
	return uint8(x >> 24)
}
