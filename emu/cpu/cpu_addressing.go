/*
   gsx - 65C816 addressing-mode resolution.

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

package cpu

import "fmt"

// operand is the resolved effective address (or immediate value) for one
// instruction, plus the extra cycles the addressing mode incurred.
type operand struct {
	mode        AddrMode
	bank        uint8
	addr        uint16
	imm         uint16
	extraCycles int
	formatted   string
}

func (s *State) dpNotAligned() bool { return s.D&0xFF != 0 }

// resolveOperand implements the per-mode state machine from spec.md §4.3:
// computes the effective address, charging the extra cycle for indexed
// page-crossing reads and for a non-page-aligned direct-page register.
func (s *State) resolveOperand(bus Bus, desc opDescriptor) operand {
	var o operand
	o.mode = desc.mode

	switch desc.mode {
	case ModeImplied, ModeAccumulator:
		// nothing to fetch

	case ModeImmediateM:
		if s.m16() {
			o.imm = s.fetchWord(bus)
		} else {
			o.imm = uint16(s.fetchByte(bus))
		}
		o.formatted = fmt.Sprintf("#$%04x", o.imm)

	case ModeImmediateX:
		if s.x16() {
			o.imm = s.fetchWord(bus)
		} else {
			o.imm = uint16(s.fetchByte(bus))
		}
		o.formatted = fmt.Sprintf("#$%04x", o.imm)

	case ModeImmediate8:
		o.imm = uint16(s.fetchByte(bus))
		o.formatted = fmt.Sprintf("#$%02x", o.imm)

	case ModeDirect:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		o.bank = 0
		o.addr = s.D + dp
		o.formatted = fmt.Sprintf("$%02x", dp)

	case ModeDirectX:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		o.bank = 0
		o.addr = s.D + dp + s.X
		o.formatted = fmt.Sprintf("$%02x,X", dp)

	case ModeDirectY:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		o.bank = 0
		o.addr = s.D + dp + s.Y
		o.formatted = fmt.Sprintf("$%02x,Y", dp)

	case ModeDirectIndirect:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		ptr := s.D + dp
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		o.bank = s.DBR
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("($%02x)", dp)

	case ModeDirectIndirectX:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		ptr := s.D + dp + s.X
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		o.bank = s.DBR
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("($%02x,X)", dp)

	case ModeDirectIndirectY:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		ptr := s.D + dp
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		base := lo | hi<<8
		o.bank = s.DBR
		o.addr = base + s.Y
		if desc.pageCrossExtra && (base&0xFF00) != (o.addr&0xFF00) {
			o.extraCycles++
		}
		o.formatted = fmt.Sprintf("($%02x),Y", dp)

	case ModeDirectIndirectLong:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		ptr := s.D + dp
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		bk := bus.Read(0, ptr+2)
		o.bank = bk
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("[$%02x]", dp)

	case ModeDirectIndirectLongY:
		dp := uint16(s.fetchByte(bus))
		if s.dpNotAligned() {
			o.extraCycles++
		}
		ptr := s.D + dp
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		bk := bus.Read(0, ptr+2)
		o.bank = bk
		o.addr = (lo | hi<<8) + s.Y
		o.formatted = fmt.Sprintf("[$%02x],Y", dp)

	case ModeAbsolute:
		addr := s.fetchWord(bus)
		o.bank = s.DBR
		o.addr = addr
		o.formatted = fmt.Sprintf("$%04x", addr)

	case ModeAbsoluteX:
		base := s.fetchWord(bus)
		o.bank = s.DBR
		o.addr = base + s.X
		if desc.pageCrossExtra && (base&0xFF00) != (o.addr&0xFF00) {
			o.extraCycles++
		}
		o.formatted = fmt.Sprintf("$%04x,X", base)

	case ModeAbsoluteY:
		base := s.fetchWord(bus)
		o.bank = s.DBR
		o.addr = base + s.Y
		if desc.pageCrossExtra && (base&0xFF00) != (o.addr&0xFF00) {
			o.extraCycles++
		}
		o.formatted = fmt.Sprintf("$%04x,Y", base)

	case ModeAbsoluteLong:
		lo := uint16(s.fetchByte(bus))
		hi := uint16(s.fetchByte(bus))
		bk := s.fetchByte(bus)
		o.bank = bk
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("$%02x%04x", bk, o.addr)

	case ModeAbsoluteLongX:
		lo := uint16(s.fetchByte(bus))
		hi := uint16(s.fetchByte(bus))
		bk := s.fetchByte(bus)
		o.bank = bk
		o.addr = (lo | hi<<8) + s.X
		o.formatted = fmt.Sprintf("$%02x%04x,X", bk, lo|hi<<8)

	case ModeAbsoluteIndirect:
		ptr := s.fetchWord(bus)
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		o.bank = s.PBR
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("($%04x)", ptr)

	case ModeAbsoluteIndirectX:
		base := s.fetchWord(bus)
		ptr := base + s.X
		lo := uint16(bus.Read(s.PBR, ptr))
		hi := uint16(bus.Read(s.PBR, ptr+1))
		o.bank = s.PBR
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("($%04x,X)", base)

	case ModeAbsoluteIndirectLong:
		ptr := s.fetchWord(bus)
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		bk := bus.Read(0, ptr+2)
		o.bank = bk
		o.addr = lo | hi<<8
		o.formatted = fmt.Sprintf("[$%04x]", ptr)

	case ModeStackRelative:
		disp := uint16(s.fetchByte(bus))
		o.bank = 0
		o.addr = s.S + disp
		o.formatted = fmt.Sprintf("$%02x,S", disp)

	case ModeStackRelativeIndirectY:
		disp := uint16(s.fetchByte(bus))
		ptr := s.S + disp
		lo := uint16(bus.Read(0, ptr))
		hi := uint16(bus.Read(0, ptr+1))
		o.bank = s.DBR
		o.addr = (lo | hi<<8) + s.Y
		o.formatted = fmt.Sprintf("($%02x,S),Y", disp)

	case ModeRelative8:
		disp := int8(s.fetchByte(bus))
		o.bank = s.PBR
		o.addr = uint16(int32(s.PC) + int32(disp))
		o.formatted = fmt.Sprintf("$%04x", o.addr)

	case ModeRelative16:
		disp := int16(s.fetchWord(bus))
		o.bank = s.PBR
		o.addr = uint16(int32(s.PC) + int32(disp))
		o.formatted = fmt.Sprintf("$%04x", o.addr)

	case ModeBlockMove:
		dstBank := s.fetchByte(bus)
		srcBank := s.fetchByte(bus)
		o.bank = srcBank
		o.addr = uint16(dstBank) // stash the destination bank; MVN/MVP decode it back out
		o.formatted = fmt.Sprintf("$%02x,$%02x", srcBank, dstBank)
	}

	return o
}

// readValue reads the operand's effective location as 8 or 16 bits
// depending on size, or returns the already-fetched immediate value.
func (s *State) readValue(bus Bus, o operand, wide bool) uint16 {
	switch o.mode {
	case ModeImmediateM, ModeImmediateX, ModeImmediate8:
		return o.imm
	case ModeAccumulator:
		return s.A
	}
	lo := uint16(bus.Read(o.bank, o.addr))
	if !wide {
		return lo
	}
	hi := uint16(bus.Read(o.bank, o.addr+1))
	return lo | hi<<8
}

func (s *State) writeValue(bus Bus, o operand, wide bool, v uint16) {
	if o.mode == ModeAccumulator {
		s.A = v
		return
	}
	bus.Write(o.bank, o.addr, uint8(v))
	if wide {
		bus.Write(o.bank, o.addr+1, uint8(v>>8))
	}
}
