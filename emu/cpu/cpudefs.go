/*
   gsx - 65C816 CPU definitions.

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

// Status register bits (NVMXDIZC).
const (
	FlagC uint8 = 0x01 // Carry
	FlagZ uint8 = 0x02 // Zero
	FlagI uint8 = 0x04 // IRQ disable
	FlagD uint8 = 0x08 // Decimal mode
	FlagX uint8 = 0x10 // Index register size (native mode): 1 = 8-bit. Break flag in emulation mode.
	FlagM uint8 = 0x20 // Accumulator/memory size (native mode): 1 = 8-bit.
	FlagV uint8 = 0x40 // Overflow
	FlagN uint8 = 0x80 // Negative

	FlagB = FlagX // Break, in emulation mode, aliases the X-flag bit position.
)

// Interrupt/reset vectors, native and emulation mode.
const (
	VecCOPNative   uint16 = 0xFFE4
	VecBRKNative   uint16 = 0xFFE6
	VecABORTNative uint16 = 0xFFE8
	VecNMINative   uint16 = 0xFFEA
	VecIRQNative   uint16 = 0xFFEE

	VecCOPEmul   uint16 = 0xFFF4
	VecABORTEmul uint16 = 0xFFF8
	VecNMIEmul   uint16 = 0xFFFA
	VecRESET     uint16 = 0xFFFC
	VecIRQEmul   uint16 = 0xFFFE
	VecBRKEmul   uint16 = 0xFFFE // BRK and IRQ share a vector in emulation mode.
)

// Pending-interrupt priority order checked after every instruction:
// NMI > ABORT > IRQ (IRQ gated by the I flag).
type intLatch struct {
	irq   bool
	nmi   bool
	abort bool
}

// AddrMode tags how an instruction's operand is fetched. The dispatcher
// resolves one of these into an effective (bank, address) pair via a small
// per-mode state machine, then the operation tag decides what to do with it
// -- replacing the teacher's per-opcode switch with a table of descriptors,
// per the "Giant opcode switch -> table of descriptors" design note.
type AddrMode uint8

const (
	ModeImplied AddrMode = iota
	ModeAccumulator
	ModeImmediateM // immediate, sized by the M flag (8 or 16 bit)
	ModeImmediateX // immediate, sized by the X flag
	ModeImmediate8 // always 8-bit immediate (e.g. REP/SEP operand)
	ModeDirect
	ModeDirectX
	ModeDirectY
	ModeDirectIndirect
	ModeDirectIndirectX
	ModeDirectIndirectY
	ModeDirectIndirectLong
	ModeDirectIndirectLongY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeAbsoluteLong
	ModeAbsoluteLongX
	ModeAbsoluteIndirect     // (abs) -- JMP only
	ModeAbsoluteIndirectX    // (abs,X) -- JMP/JSR only
	ModeAbsoluteIndirectLong // [abs] -- JML only
	ModeStackRelative
	ModeStackRelativeIndirectY
	ModeRelative8
	ModeRelative16
	ModeBlockMove
)

// OpTag names the operation an opcode performs, independent of addressing
// mode (e.g. LDA #imm and LDA abs share OpLDA but differ in AddrMode).
type OpTag uint16

const (
	OpNop OpTag = iota
	OpUndef
	OpLDA
	OpLDX
	OpLDY
	OpSTA
	OpSTX
	OpSTY
	OpSTZ
	OpADC
	OpSBC
	OpAND
	OpORA
	OpEOR
	OpCMP
	OpCPX
	OpCPY
	OpBIT
	OpTRB
	OpTSB
	OpINC
	OpDEC
	OpINX
	OpINY
	OpDEX
	OpDEY
	OpINA
	OpDEA
	OpASL
	OpLSR
	OpROL
	OpROR
	OpTAX
	OpTAY
	OpTXA
	OpTYA
	OpTXY
	OpTYX
	OpTSX
	OpTXS
	OpTCS
	OpTSC
	OpTCD
	OpTDC
	OpXBA
	OpXCE
	OpPHA
	OpPLA
	OpPHX
	OpPLX
	OpPHY
	OpPLY
	OpPHP
	OpPLP
	OpPHB
	OpPLB
	OpPHD
	OpPLD
	OpPHK
	OpPEA
	OpPEI
	OpPER
	OpREP
	OpSEP
	OpCLC
	OpSEC
	OpCLI
	OpSEI
	OpCLD
	OpSED
	OpCLV
	OpJMP
	OpJML
	OpJSR
	OpJSL
	OpRTS
	OpRTL
	OpRTI
	OpBRA
	OpBRL
	OpBCC
	OpBCS
	OpBEQ
	OpBNE
	OpBMI
	OpBPL
	OpBVC
	OpBVS
	OpBRK
	OpCOP
	OpWAI
	OpSTP
	OpNOPImplied
	OpMVN
	OpMVP
	OpWDM
)

// opDescriptor is the per-opcode record: addressing mode, operation, base
// cycle count, and the pageCrossExtra flag for the indexed page-cross
// cycle; decimal-mode and direct-page cycle adjustments are not recorded
// here -- this is the language-neutral replacement for the C source's
// macro-generated opcode cases.
type opDescriptor struct {
	name           string
	mode           AddrMode
	op             OpTag
	cycles         uint8
	pageCrossExtra bool // +1 cycle if an indexed read crosses a page boundary
	sizeExtraM     bool // M=0 (16-bit accumulator) marker; not set by buildTable, not read by execute
	sizeExtraX     bool // X=0 (16-bit index) marker; not set by buildTable, not read by execute
}
