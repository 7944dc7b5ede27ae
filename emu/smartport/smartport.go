/*
   gsx - SmartPort block device bus protocol.

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

// Package smartport implements the packet-phase command protocol shared
// by the 3.5" drive port and hard-disk cards: reset/enable/status/
// readBlock/writeBlock/format commands exchanged as command packets
// against a host-backed block Image.
package smartport

import (
	"fmt"
	"sort"

	"github.com/open-iigs/gsx/emu/disk"
	"github.com/open-iigs/gsx/emu/gserr"
)

// Command is a SmartPort command byte.
type Command uint8

const (
	CmdStatus Command = iota
	CmdReadBlock
	CmdWriteBlock
	CmdFormat
	CmdReset
	CmdEnable
)

// Packet is a decoded SmartPort request; the phase-encoded bus framing
// itself is owned by the IWM controller feeding bytes in, which is out of
// scope here -- this package works at the packet level the way the
// firmware's SmartPort driver does.
type Packet struct {
	Command Command
	UnitNum uint8
	Block   uint32
	Data    [512]uint8
}

// Result is the reply packet: a status byte (0 = no error) and, for
// CmdReadBlock, the 512-byte payload.
type Result struct {
	Status uint8
	Data   [512]uint8
}

const (
	StatusOK uint8 = 0x00
	StatusIOError uint8 = 0x27
	StatusNoDevice uint8 = 0x28
	StatusWriteProtected uint8 = 0x2B
)

// Bus dispatches packets to the device attached to a given unit number.
type Bus struct {
	units map[uint8]*disk.Image
}

func NewBus() *Bus {
	return &Bus{units: make(map[uint8]*disk.Image)}
}

func (b *Bus) Attach(unit uint8, img *disk.Image) { b.units[unit] = img }
func (b *Bus) Detach(unit uint8)                  { delete(b.units, unit) }

// UnitSnapshot is one attached unit's full serialized disk contents.
type UnitSnapshot struct {
	Unit uint8
	Disk disk.Snapshot
}

// Snapshot captures every attached unit, in ascending unit-number order so
// repeated snapshots of the same bus state produce the same bytes.
func (b *Bus) Snapshot() []UnitSnapshot {
	units := make([]uint8, 0, len(b.units))
	for u := range b.units {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i] < units[j] })

	out := make([]UnitSnapshot, 0, len(units))
	for _, u := range units {
		out = append(out, UnitSnapshot{Unit: u, Disk: b.units[u].Snapshot()})
	}
	return out
}

// Restore replaces every attached unit with the images in snaps.
func (b *Bus) Restore(snaps []UnitSnapshot) {
	b.units = make(map[uint8]*disk.Image, len(snaps))
	for _, s := range snaps {
		b.units[s.Unit] = disk.Restore(s.Disk)
	}
}

// Exchange runs one packet through the bus protocol's reset/enable/
// status/readBlock/writeBlock/format state machine.
func (b *Bus) Exchange(p Packet) Result {
	switch p.Command {
	case CmdReset, CmdEnable:
		return Result{Status: StatusOK}

	case CmdStatus:
		img, ok := b.units[p.UnitNum]
		if !ok {
			return Result{Status: StatusNoDevice}
		}
		var r Result
		blocks := uint32(img.BlockCount())
		r.Data[0] = uint8(blocks)
		r.Data[1] = uint8(blocks >> 8)
		r.Data[2] = uint8(blocks >> 16)
		return r

	case CmdReadBlock:
		img, ok := b.units[p.UnitNum]
		if !ok {
			return Result{Status: StatusNoDevice}
		}
		block, err := img.ReadBlock(int(p.Block))
		if err != nil {
			return Result{Status: StatusIOError}
		}
		return Result{Status: StatusOK, Data: block}

	case CmdWriteBlock:
		img, ok := b.units[p.UnitNum]
		if !ok {
			return Result{Status: StatusNoDevice}
		}
		if err := img.WriteBlock(int(p.Block), p.Data); err != nil {
			if gserr.Is(err, gserr.SaveFailed) {
				return Result{Status: StatusWriteProtected}
			}
			return Result{Status: StatusIOError}
		}
		return Result{Status: StatusOK}

	case CmdFormat:
		img, ok := b.units[p.UnitNum]
		if !ok {
			return Result{Status: StatusNoDevice}
		}
		var zero [512]uint8
		for i := 0; i < img.BlockCount(); i++ {
			if err := img.WriteBlock(i, zero); err != nil {
				return Result{Status: StatusIOError}
			}
		}
		return Result{Status: StatusOK}

	default:
		return Result{Status: StatusIOError}
	}
}

func (p Packet) String() string {
	return fmt.Sprintf("cmd=%d unit=%d block=%d", p.Command, p.UnitNum, p.Block)
}

// DecodeResetPhase reports whether phase -- the 4-bit state of a 3.5"
// drive's phase-coil lines (bit0=PH0 .. bit3=PH3) -- selects a SmartPort
// bus reset. Grounded on clem_smartport_do_reset's select_bits test: the
// phase state must equal 1+4 (PH0 and PH2 set, all others clear).
func DecodeResetPhase(phase uint8) bool {
	return phase == 1+4
}

// DecodeEnablePhase reports whether phase selects a SmartPort bus enable.
// Grounded on clem_smartport_do_enable's bit tests: PH1 and PH3 must both
// be set, regardless of PH0/PH2.
func DecodeEnablePhase(phase uint8) bool {
	return phase&2 != 0 && phase&8 != 0
}
