/*
   gsx - 65C816 operation implementations and dispatch.

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

// dispatch runs the operation named by desc.op against the already-resolved
// operand. Flag-setting logic lives next to each operation rather than in
// a shared helper bank, matching the teacher's one-function-per-opcode-
// family style in cpu_standard.go.
func (s *State) dispatch(bus Bus, desc opDescriptor, o operand) {
	switch desc.op {
	case OpNop, OpNOPImplied, OpWDM:
		// consume any already-fetched operand byte; nothing else to do

	case OpLDA:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		s.A = mergeWide(s.A, v, wide)
		if wide {
			s.setNZ16(v)
		} else {
			s.setNZ8(uint8(v))
		}

	case OpLDX:
		wide := s.x16()
		v := s.readValue(bus, o, wide)
		s.X = mergeWide(s.X, v, wide)
		if wide {
			s.setNZ16(v)
		} else {
			s.setNZ8(uint8(v))
		}

	case OpLDY:
		wide := s.x16()
		v := s.readValue(bus, o, wide)
		s.Y = mergeWide(s.Y, v, wide)
		if wide {
			s.setNZ16(v)
		} else {
			s.setNZ8(uint8(v))
		}

	case OpSTA:
		s.writeValue(bus, o, s.m16(), s.A)

	case OpSTX:
		s.writeValue(bus, o, s.x16(), s.X)

	case OpSTY:
		s.writeValue(bus, o, s.x16(), s.Y)

	case OpSTZ:
		s.writeValue(bus, o, s.m16(), 0)

	case OpADC:
		s.adc(bus, o)

	case OpSBC:
		s.sbc(bus, o)

	case OpAND:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		if wide {
			s.A &= v
			s.setNZ16(s.A)
		} else {
			r := uint8(s.A) & uint8(v)
			s.A = mergeWide(s.A, uint16(r), false)
			s.setNZ8(r)
		}

	case OpORA:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		if wide {
			s.A |= v
			s.setNZ16(s.A)
		} else {
			r := uint8(s.A) | uint8(v)
			s.A = mergeWide(s.A, uint16(r), false)
			s.setNZ8(r)
		}

	case OpEOR:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		if wide {
			s.A ^= v
			s.setNZ16(s.A)
		} else {
			r := uint8(s.A) ^ uint8(v)
			s.A = mergeWide(s.A, uint16(r), false)
			s.setNZ8(r)
		}

	case OpCMP:
		s.compare(bus, o, s.A, s.m16())

	case OpCPX:
		s.compare(bus, o, s.X, s.x16())

	case OpCPY:
		s.compare(bus, o, s.Y, s.x16())

	case OpBIT:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		var a uint16
		if wide {
			a = s.A
		} else {
			a = uint16(uint8(s.A))
		}
		s.P &^= FlagZ
		if a&v == 0 {
			s.P |= FlagZ
		}
		if o.mode != ModeImmediateM && o.mode != ModeImmediateX && o.mode != ModeImmediate8 {
			s.P &^= FlagN | FlagV
			if wide {
				if v&0x8000 != 0 {
					s.P |= FlagN
				}
				if v&0x4000 != 0 {
					s.P |= FlagV
				}
			} else {
				if v&0x80 != 0 {
					s.P |= FlagN
				}
				if v&0x40 != 0 {
					s.P |= FlagV
				}
			}
		}

	case OpTRB:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		var a uint16
		if wide {
			a = s.A
		} else {
			a = uint16(uint8(s.A))
		}
		s.P &^= FlagZ
		if a&v == 0 {
			s.P |= FlagZ
		}
		s.writeValue(bus, o, wide, v&^a)

	case OpTSB:
		wide := s.m16()
		v := s.readValue(bus, o, wide)
		var a uint16
		if wide {
			a = s.A
		} else {
			a = uint16(uint8(s.A))
		}
		s.P &^= FlagZ
		if a&v == 0 {
			s.P |= FlagZ
		}
		s.writeValue(bus, o, wide, v|a)

	case OpINC:
		s.incDecMem(bus, o, 1)
	case OpDEC:
		s.incDecMem(bus, o, -1)
	case OpINA:
		s.A = s.incDecReg(s.A, 1, s.m16())
	case OpDEA:
		s.A = s.incDecReg(s.A, -1, s.m16())
	case OpINX:
		s.X = s.incDecReg(s.X, 1, s.x16())
	case OpDEX:
		s.X = s.incDecReg(s.X, -1, s.x16())
	case OpINY:
		s.Y = s.incDecReg(s.Y, 1, s.x16())
	case OpDEY:
		s.Y = s.incDecReg(s.Y, -1, s.x16())

	case OpASL:
		s.shift(bus, o, shiftASL)
	case OpLSR:
		s.shift(bus, o, shiftLSR)
	case OpROL:
		s.shift(bus, o, shiftROL)
	case OpROR:
		s.shift(bus, o, shiftROR)

	case OpTAX:
		if s.x16() {
			s.X = s.A
			s.setNZ16(s.X)
		} else {
			s.X = uint16(uint8(s.A))
			s.setNZ8(uint8(s.X))
		}
	case OpTAY:
		if s.x16() {
			s.Y = s.A
			s.setNZ16(s.Y)
		} else {
			s.Y = uint16(uint8(s.A))
			s.setNZ8(uint8(s.Y))
		}
	case OpTXA:
		if s.m16() {
			s.A = s.X
			s.setNZ16(s.A)
		} else {
			s.A = mergeWide(s.A, uint16(uint8(s.X)), false)
			s.setNZ8(uint8(s.A))
		}
	case OpTYA:
		if s.m16() {
			s.A = s.Y
			s.setNZ16(s.A)
		} else {
			s.A = mergeWide(s.A, uint16(uint8(s.Y)), false)
			s.setNZ8(uint8(s.A))
		}
	case OpTXY:
		s.Y = s.X
		if s.x16() {
			s.setNZ16(s.Y)
		} else {
			s.setNZ8(uint8(s.Y))
		}
	case OpTYX:
		s.X = s.Y
		if s.x16() {
			s.setNZ16(s.X)
		} else {
			s.setNZ8(uint8(s.X))
		}
	case OpTSX:
		if s.x16() {
			s.X = s.S
			s.setNZ16(s.X)
		} else {
			s.X = uint16(uint8(s.S))
			s.setNZ8(uint8(s.X))
		}
	case OpTXS:
		if s.E {
			s.S = 0x0100 | uint16(uint8(s.X))
		} else {
			s.S = s.X
		}
	case OpTCS:
		if s.E {
			s.S = 0x0100 | uint16(uint8(s.A))
		} else {
			s.S = s.A
		}
	case OpTSC:
		s.A = s.S
		s.setNZ16(s.A)
	case OpTCD:
		s.D = s.A
		s.setNZ16(s.D)
	case OpTDC:
		s.A = s.D
		s.setNZ16(s.A)

	case OpXBA:
		lo := uint8(s.A)
		hi := uint8(s.A >> 8)
		s.A = uint16(lo)<<8 | uint16(hi)
		s.setNZ8(hi)

	case OpXCE:
		oldE := s.E
		s.E = s.P&FlagC != 0
		if oldE {
			s.P |= FlagC
		} else {
			s.P &^= FlagC
		}
		if s.E {
			s.P |= FlagM | FlagX
			s.X &= 0xFF
			s.Y &= 0xFF
			s.S = 0x0100 | (s.S & 0xFF)
		}

	case OpPHA:
		s.pushWide(bus, s.A, s.m16())
	case OpPLA:
		v := s.pullWide(bus, s.m16())
		s.A = mergeWide(s.A, v, s.m16())
		if s.m16() {
			s.setNZ16(v)
		} else {
			s.setNZ8(uint8(v))
		}
	case OpPHX:
		s.pushWide(bus, s.X, s.x16())
	case OpPLX:
		v := s.pullWide(bus, s.x16())
		s.X = mergeWide(s.X, v, s.x16())
		if s.x16() {
			s.setNZ16(v)
		} else {
			s.setNZ8(uint8(v))
		}
	case OpPHY:
		s.pushWide(bus, s.Y, s.x16())
	case OpPLY:
		v := s.pullWide(bus, s.x16())
		s.Y = mergeWide(s.Y, v, s.x16())
		if s.x16() {
			s.setNZ16(v)
		} else {
			s.setNZ8(uint8(v))
		}
	case OpPHP:
		s.pushByte(bus, s.P)
	case OpPLP:
		s.P = s.pullByte(bus)
		if s.E {
			s.P |= FlagM | FlagX
		} else {
			if s.P&FlagX != 0 {
				s.X &= 0xFF
				s.Y &= 0xFF
			}
		}
	case OpPHB:
		s.pushByte(bus, s.DBR)
	case OpPLB:
		s.DBR = s.pullByte(bus)
		s.setNZ8(s.DBR)
	case OpPHD:
		s.pushWide(bus, s.D, true)
	case OpPLD:
		s.D = s.pullWide(bus, true)
		s.setNZ16(s.D)
	case OpPHK:
		s.pushByte(bus, s.PBR)
	case OpPEA:
		s.pushWide(bus, o.addr, true)
	case OpPEI:
		v := uint16(bus.Read(o.bank, o.addr)) | uint16(bus.Read(o.bank, o.addr+1))<<8
		s.pushWide(bus, v, true)
	case OpPER:
		s.pushWide(bus, o.addr, true)

	case OpREP:
		s.P &^= uint8(o.imm)
		if s.E {
			s.P |= FlagM | FlagX
		}
	case OpSEP:
		s.P |= uint8(o.imm)
		if s.P&FlagX != 0 {
			s.X &= 0xFF
			s.Y &= 0xFF
		}

	case OpCLC:
		s.P &^= FlagC
	case OpSEC:
		s.P |= FlagC
	case OpCLI:
		s.P &^= FlagI
	case OpSEI:
		s.P |= FlagI
	case OpCLD:
		s.P &^= FlagD
	case OpSED:
		s.P |= FlagD
	case OpCLV:
		s.P &^= FlagV

	case OpJMP:
		s.PC = o.addr
	case OpJML:
		s.PC = o.addr
		s.PBR = o.bank
	case OpJSR:
		ret := s.PC - 1
		s.pushByte(bus, uint8(ret>>8))
		s.pushByte(bus, uint8(ret))
		s.PC = o.addr
	case OpJSL:
		s.pushByte(bus, s.PBR)
		ret := s.PC - 1
		s.pushByte(bus, uint8(ret>>8))
		s.pushByte(bus, uint8(ret))
		s.PC = o.addr
		s.PBR = o.bank
	case OpRTS:
		lo := uint16(s.pullByte(bus))
		hi := uint16(s.pullByte(bus))
		s.PC = (lo | hi<<8) + 1
	case OpRTL:
		lo := uint16(s.pullByte(bus))
		hi := uint16(s.pullByte(bus))
		s.PBR = s.pullByte(bus)
		s.PC = (lo | hi<<8) + 1
	case OpRTI:
		s.P = s.pullByte(bus)
		lo := uint16(s.pullByte(bus))
		hi := uint16(s.pullByte(bus))
		s.PC = lo | hi<<8
		if !s.E {
			s.PBR = s.pullByte(bus)
		}
		if s.E {
			s.P |= FlagM | FlagX
		}

	case OpBRA, OpBRL:
		s.PC = o.addr
	case OpBCC:
		s.branch(o, s.P&FlagC == 0)
	case OpBCS:
		s.branch(o, s.P&FlagC != 0)
	case OpBEQ:
		s.branch(o, s.P&FlagZ != 0)
	case OpBNE:
		s.branch(o, s.P&FlagZ == 0)
	case OpBMI:
		s.branch(o, s.P&FlagN != 0)
	case OpBPL:
		s.branch(o, s.P&FlagN == 0)
	case OpBVC:
		s.branch(o, s.P&FlagV == 0)
	case OpBVS:
		s.branch(o, s.P&FlagV != 0)

	case OpBRK:
		s.brkOrCop(bus, VecBRKNative, VecBRKEmul, true)
	case OpCOP:
		s.brkOrCop(bus, VecCOPNative, VecCOPEmul, false)

	case OpWAI:
		s.waiting = true
	case OpSTP:
		s.stopped = true

	case OpMVN:
		s.blockMove(bus, o, 1)
	case OpMVP:
		s.blockMove(bus, o, -1)

	default:
		// Unimplemented operation tag: treated as the same recoverable
		// condition as an undecoded opcode.
	}
}

func (s *State) branch(o operand, taken bool) {
	if taken {
		s.PC = o.addr
	}
}

// brkOrCop handles software interrupts: it consumes the signature byte
// that follows the opcode (both BRK and COP are two bytes even though the
// second is ignored), so the return address pushed is the address after
// that byte.
func (s *State) brkOrCop(bus Bus, nativeVec, emulVec uint16, isBRK bool) {
	s.fetchByte(bus) // signature/ignored byte
	s.interrupt(bus, nativeVec, emulVec, isBRK)
}

func (s *State) blockMove(bus Bus, o operand, dir int16) {
	srcBank := o.bank
	dstBank := uint8(o.addr)
	count := int32(s.A) + 1
	src := s.X
	dst := s.Y
	for count > 0 {
		v := bus.Read(srcBank, src)
		bus.Write(dstBank, dst, v)
		if dir > 0 {
			src++
			dst++
		} else {
			src--
			dst--
		}
		count--
	}
	s.X = src
	s.Y = dst
	s.A = uint16(count - 1)
	s.DBR = dstBank
}

func mergeWide(reg uint16, v uint16, wide bool) uint16 {
	if wide {
		return v
	}
	return (reg &^ 0xFF) | (v & 0xFF)
}

func (s *State) pushWide(bus Bus, v uint16, wide bool) {
	if wide {
		s.pushByte(bus, uint8(v>>8))
		s.pushByte(bus, uint8(v))
		return
	}
	s.pushByte(bus, uint8(v))
}

func (s *State) pullWide(bus Bus, wide bool) uint16 {
	if wide {
		lo := uint16(s.pullByte(bus))
		hi := uint16(s.pullByte(bus))
		return lo | hi<<8
	}
	return uint16(s.pullByte(bus))
}

func (s *State) compare(bus Bus, o operand, reg uint16, wide bool) {
	v := s.readValue(bus, o, wide)
	var r int32
	s.P &^= FlagN | FlagZ | FlagC
	if wide {
		r = int32(reg) - int32(v)
		if reg >= v {
			s.P |= FlagC
		}
		if uint16(r) == 0 {
			s.P |= FlagZ
		}
		if uint16(r)&0x8000 != 0 {
			s.P |= FlagN
		}
	} else {
		a := uint8(reg)
		b := uint8(v)
		r = int32(a) - int32(b)
		if a >= b {
			s.P |= FlagC
		}
		if uint8(r) == 0 {
			s.P |= FlagZ
		}
		if uint8(r)&0x80 != 0 {
			s.P |= FlagN
		}
	}
}

func (s *State) incDecMem(bus Bus, o operand, delta int) {
	wide := s.m16()
	v := s.readValue(bus, o, wide)
	if wide {
		v = uint16(int32(v) + int32(delta))
		s.writeValue(bus, o, true, v)
		s.setNZ16(v)
	} else {
		r := uint8(int32(uint8(v)) + int32(delta))
		s.writeValue(bus, o, false, uint16(r))
		s.setNZ8(r)
	}
}

func (s *State) incDecReg(reg uint16, delta int, wide bool) uint16 {
	if wide {
		r := uint16(int32(reg) + int32(delta))
		s.setNZ16(r)
		return r
	}
	r := uint8(int32(uint8(reg)) + int32(delta))
	s.setNZ8(r)
	return mergeWide(reg, uint16(r), false)
}

type shiftKind int

const (
	shiftASL shiftKind = iota
	shiftLSR
	shiftROL
	shiftROR
)

func (s *State) shift(bus Bus, o operand, kind shiftKind) {
	wide := s.m16()
	v := s.readValue(bus, o, wide)
	carryIn := s.P&FlagC != 0
	s.P &^= FlagC | FlagN | FlagZ

	if wide {
		var r uint16
		var carryOut bool
		switch kind {
		case shiftASL:
			carryOut = v&0x8000 != 0
			r = v << 1
		case shiftLSR:
			carryOut = v&1 != 0
			r = v >> 1
		case shiftROL:
			carryOut = v&0x8000 != 0
			r = v<<1 | b16(carryIn)
		case shiftROR:
			carryOut = v&1 != 0
			r = v>>1 | uint16(b16(carryIn))<<15
		}
		if carryOut {
			s.P |= FlagC
		}
		s.writeValue(bus, o, true, r)
		s.setNZ16(r)
		return
	}

	b := uint8(v)
	var r uint8
	var carryOut bool
	switch kind {
	case shiftASL:
		carryOut = b&0x80 != 0
		r = b << 1
	case shiftLSR:
		carryOut = b&1 != 0
		r = b >> 1
	case shiftROL:
		carryOut = b&0x80 != 0
		r = b<<1 | b8(carryIn)
	case shiftROR:
		carryOut = b&1 != 0
		r = b>>1 | b8(carryIn)<<7
	}
	if carryOut {
		s.P |= FlagC
	}
	s.writeValue(bus, o, false, uint16(r))
	s.setNZ8(r)
}

func b8(c bool) uint8 {
	if c {
		return 1
	}
	return 0
}

func b16(c bool) uint16 {
	if c {
		return 1
	}
	return 0
}
