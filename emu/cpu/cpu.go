/*
   gsx - 65C816 instruction fetch/execute.

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

/*
   The 65C816 is the CPU at the heart of the Apple IIgs: a 16-bit extension
   of the 6502/65C02 with a 24-bit address space (bank:address), 16-bit A/X/Y
   registers selectable 8-bit via the M and X status flags, and an emulation
   mode (E=1) that makes it behave like a 65C02 with a few extensions for
   software compatibility with the 8-bit Apple II world.

   Addressing modes range from implied (single byte) to 4-byte absolute-long
   indexed forms; the effective address is computed by resolveOperand before
   the opcode's operation runs, charging any extra cycles the real chip
   would (page-crossing on indexed reads, the extra direct-page cycle when D
   isn't page aligned, the extra cycle in decimal mode).
*/

package cpu

import (
	"log/slog"

	"github.com/open-iigs/gsx/util/logger"
)

// Bus is the borrowed reference to machine memory the CPU uses for the
// duration of a single Step call. No long-lived pointer to a Machine is
// stored on State; Step is always handed a fresh Bus.
type Bus interface {
	Read(bank uint8, addr uint16) uint8
	Write(bank uint8, addr uint16, v uint8)
}

// InstructionTracer receives (instruction, formatted operand) when tracing
// is enabled -- the optional per-opcode host hook from spec.md §6.
type InstructionTracer interface {
	Trace(pc uint32, instruction string, operand string)
}

// State holds the entire visible and internal CPU register file.
type State struct {
	A, X, Y uint16
	S       uint16
	D       uint16
	PBR     uint8
	DBR     uint8
	PC      uint16
	P       uint8
	E       bool // emulation mode flag

	resbIn, irqbIn, nmiIn, abortbIn bool
	readyOut                        bool

	resetCounter int
	waiting      bool
	stopped      bool
	failed       bool

	irq   intLatch
	cycleCount uint64

	table [256]opDescriptor

	tracer InstructionTracer
}

func New() *State {
	s := &State{}
	s.buildTable()
	s.Reset()
	return s
}

// Reset matches spec.md §4.3: pin state clears and resb_counter is set to
// 3; the next three Step calls complete the reset sequence before the
// first real instruction fetches. The final step forces E=1 (emulation
// mode), clears D, DBR, sets S's high byte to $01, and vectors through
// $FFFC.
func (s *State) Reset() {
	s.resetCounter = 3
	s.waiting = false
	s.stopped = false
	s.failed = false
	s.irq = intLatch{}
	s.P = FlagI | FlagM | FlagX
	s.E = true
	s.D = 0
	s.DBR = 0
	s.PBR = 0
	s.S = 0x01FF
}

// Failed reports whether a FATAL condition (spec.md §4.9/§7) has occurred;
// a host must not Step a Failed machine.
func (s *State) Failed() bool { return s.failed }

// SetTracer installs the optional per-opcode trace hook.
func (s *State) SetTracer(t InstructionTracer) { s.tracer = t }

// PostIRQ / PostNMI / PostAbort latch a pending interrupt; resolved in
// priority order NMI > ABORT > IRQ at the top of the next Step.
func (s *State) PostIRQ()   { s.irq.irq = true }
func (s *State) PostNMI()   { s.irq.nmi = true }
func (s *State) PostAbort() { s.irq.abort = true }

// Snapshot is the serializable subset of State: every field a snapshot
// restore needs to reproduce the same future instruction trace, less the
// opcode table (rebuilt by New) and the host-supplied tracer.
type Snapshot struct {
	A, X, Y      uint16
	S, D         uint16
	PBR, DBR     uint8
	PC           uint16
	P            uint8
	E            bool
	ResetCounter int
	Waiting      bool
	Stopped      bool
	Failed       bool
	IRQ, NMI, Abort bool
	CycleCount   uint64
}

// Snapshot captures s's serializable state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		A: s.A, X: s.X, Y: s.Y, S: s.S, D: s.D,
		PBR: s.PBR, DBR: s.DBR, PC: s.PC, P: s.P, E: s.E,
		ResetCounter: s.resetCounter, Waiting: s.waiting,
		Stopped: s.stopped, Failed: s.failed,
		IRQ: s.irq.irq, NMI: s.irq.nmi, Abort: s.irq.abort,
		CycleCount: s.cycleCount,
	}
}

// Restore overwrites s's serializable state from snap, leaving the opcode
// table and tracer (neither snapshotted) untouched.
func (s *State) Restore(snap Snapshot) {
	s.A, s.X, s.Y, s.S, s.D = snap.A, snap.X, snap.Y, snap.S, snap.D
	s.PBR, s.DBR, s.PC, s.P, s.E = snap.PBR, snap.DBR, snap.PC, snap.P, snap.E
	s.resetCounter, s.waiting, s.stopped, s.failed = snap.ResetCounter, snap.Waiting, snap.Stopped, snap.Failed
	s.irq = intLatch{irq: snap.IRQ, nmi: snap.NMI, abort: snap.Abort}
	s.cycleCount = snap.CycleCount
}

// Step executes one instruction or services a pending interrupt/reset
// step, and returns the number of bus cycles it consumed. Mirrors the
// teacher's CycleCPU contract: callers advance the shared event/clock
// machinery by the returned count.
func (s *State) Step(bus Bus) int {
	if s.failed {
		return 0
	}

	if s.resetCounter > 0 {
		s.resetCounter--
		if s.resetCounter == 0 {
			s.completeReset(bus)
		}
		return 1
	}

	if s.irq.nmi {
		s.irq.nmi = false
		return s.interrupt(bus, VecNMINative, VecNMIEmul, false)
	}
	if s.irq.abort {
		s.irq.abort = false
		return s.interrupt(bus, VecABORTNative, VecABORTEmul, false)
	}
	if s.irq.irq && s.P&FlagI == 0 {
		s.irq.irq = false
		return s.interrupt(bus, VecIRQNative, VecIRQEmul, false)
	}

	if s.stopped {
		return 1
	}
	if s.waiting {
		if s.irq.irq || s.irq.nmi || s.irq.abort {
			s.waiting = false
		}
		return 1
	}

	return s.execute(bus)
}

func (s *State) completeReset(bus Bus) {
	s.E = true
	s.P |= FlagM | FlagX | FlagI
	s.D = 0
	s.DBR = 0
	s.PBR = 0
	s.S = 0x0100 | (s.S & 0xFF)
	lo := uint16(bus.Read(0, VecRESET))
	hi := uint16(bus.Read(0, VecRESET+1))
	s.PC = lo | hi<<8
}

// interrupt pushes PBR (native mode only), PC, and P, sets I (and clears D
// in native mode), and vectors through the appropriate native/emulation
// vector. BRK and COP share this path with software-originated traps.
func (s *State) interrupt(bus Bus, nativeVec, emulVec uint16, isBRK bool) int {
	cycles := 0
	if !s.E {
		s.pushByte(bus, s.PBR)
		cycles++
	}
	s.pushByte(bus, uint8(s.PC>>8))
	s.pushByte(bus, uint8(s.PC))
	cycles += 2

	p := s.P
	if s.E && isBRK {
		p |= FlagB
	} else if s.E {
		p &^= FlagB
	}
	s.pushByte(bus, p)
	cycles++

	s.P |= FlagI
	if !s.E {
		s.P &^= FlagD
	}
	s.PBR = 0

	vec := emulVec
	if !s.E {
		vec = nativeVec
	}
	lo := uint16(bus.Read(0, vec))
	hi := uint16(bus.Read(0, vec+1))
	s.PC = lo | hi<<8
	return cycles + 5
}

func (s *State) pushByte(bus Bus, v uint8) {
	bus.Write(0, s.S, v)
	s.decS()
}

func (s *State) pullByte(bus Bus) uint8 {
	s.incS()
	return bus.Read(0, s.S)
}

func (s *State) decS() {
	if s.E {
		lo := uint8(s.S) - 1
		s.S = 0x0100 | uint16(lo)
		return
	}
	s.S--
}

func (s *State) incS() {
	if s.E {
		lo := uint8(s.S) + 1
		s.S = 0x0100 | uint16(lo)
		return
	}
	s.S++
}

func (s *State) fetchByte(bus Bus) uint8 {
	v := bus.Read(s.PBR, s.PC)
	s.PC++
	return v
}

func (s *State) fetchWord(bus Bus) uint16 {
	lo := uint16(s.fetchByte(bus))
	hi := uint16(s.fetchByte(bus))
	return lo | hi<<8
}

func (s *State) m16() bool { return !s.E && s.P&FlagM == 0 }
func (s *State) x16() bool { return !s.E && s.P&FlagX == 0 }

func (s *State) setNZ8(v uint8) {
	s.P &^= FlagN | FlagZ
	if v == 0 {
		s.P |= FlagZ
	}
	if v&0x80 != 0 {
		s.P |= FlagN
	}
}

func (s *State) setNZ16(v uint16) {
	s.P &^= FlagN | FlagZ
	if v == 0 {
		s.P |= FlagZ
	}
	if v&0x8000 != 0 {
		s.P |= FlagN
	}
}

// execute fetches and runs one instruction, logging an UNIMPL warning and
// treating the opcode as a one-cycle NOP if the table entry is OpUndef --
// the recoverable "unknown opcode" condition from spec.md §4.9.
func (s *State) execute(bus Bus) int {
	startPC := s.PC
	opcode := s.fetchByte(bus)
	desc := s.table[opcode]

	if desc.op == OpUndef {
		logger.Unimplemented("unimplemented 65C816 opcode", slog.Int("opcode", int(opcode)), slog.Int("pc", int(startPC)))
		return 1
	}

	operand := s.resolveOperand(bus, desc)
	cycles := int(desc.cycles) + operand.extraCycles
	if s.P&FlagD != 0 && (desc.op == OpADC || desc.op == OpSBC) {
		cycles++ // decimal-mode ADC/SBC always costs one extra cycle
	}

	if s.tracer != nil {
		s.tracer.Trace(uint32(s.PBR)<<16|uint32(startPC), desc.name, operand.formatted)
	}

	s.dispatch(bus, desc, operand)
	return cycles
}
