/*
   gsx - 65C816 opcode table.

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

// set installs one opcode's descriptor. The zero opDescriptor's op field
// is OpNop (0), so every used opcode sets op explicitly, and buildTable
// pre-fills the table with OpUndef entries before calling set.
func (s *State) set(opcode uint8, name string, mode AddrMode, op OpTag, cycles uint8, pageCrossExtra bool) {
	s.table[opcode] = opDescriptor{name: name, mode: mode, op: op, cycles: cycles, pageCrossExtra: pageCrossExtra}
}

// buildTable populates the 256-entry dispatch table once at construction.
// Every entry is first filled with an OpUndef descriptor rather than left
// at the zero value (whose op is OpNop), then the real opcodes are set.
func (s *State) buildTable() {
	for i := range s.table {
		s.table[i] = opDescriptor{name: "???", mode: ModeImplied, op: OpUndef, cycles: 1}
	}

	s.set(0x00, "BRK", ModeImplied, OpBRK, 7, false)
	s.set(0x01, "ORA", ModeDirectIndirectX, OpORA, 6, false)
	s.set(0x02, "COP", ModeImplied, OpCOP, 7, false)
	s.set(0x03, "ORA", ModeStackRelative, OpORA, 4, false)
	s.set(0x04, "TSB", ModeDirect, OpTSB, 5, false)
	s.set(0x05, "ORA", ModeDirect, OpORA, 3, false)
	s.set(0x06, "ASL", ModeDirect, OpASL, 5, false)
	s.set(0x07, "ORA", ModeDirectIndirectLong, OpORA, 6, false)
	s.set(0x08, "PHP", ModeImplied, OpPHP, 3, false)
	s.set(0x09, "ORA", ModeImmediateM, OpORA, 2, false)
	s.set(0x0A, "ASL", ModeAccumulator, OpASL, 2, false)
	s.set(0x0B, "PHD", ModeImplied, OpPHD, 4, false)
	s.set(0x0C, "TSB", ModeAbsolute, OpTSB, 6, false)
	s.set(0x0D, "ORA", ModeAbsolute, OpORA, 4, false)
	s.set(0x0E, "ASL", ModeAbsolute, OpASL, 6, false)
	s.set(0x0F, "ORA", ModeAbsoluteLong, OpORA, 5, false)

	s.set(0x10, "BPL", ModeRelative8, OpBPL, 2, false)
	s.set(0x11, "ORA", ModeDirectIndirectY, OpORA, 5, true)
	s.set(0x12, "ORA", ModeDirectIndirect, OpORA, 5, false)
	s.set(0x13, "ORA", ModeStackRelativeIndirectY, OpORA, 7, false)
	s.set(0x14, "TRB", ModeDirect, OpTRB, 5, false)
	s.set(0x15, "ORA", ModeDirectX, OpORA, 4, false)
	s.set(0x16, "ASL", ModeDirectX, OpASL, 6, false)
	s.set(0x17, "ORA", ModeDirectIndirectLongY, OpORA, 6, false)
	s.set(0x18, "CLC", ModeImplied, OpCLC, 2, false)
	s.set(0x19, "ORA", ModeAbsoluteY, OpORA, 4, true)
	s.set(0x1A, "INC", ModeAccumulator, OpINA, 2, false)
	s.set(0x1B, "TCS", ModeImplied, OpTCS, 2, false)
	s.set(0x1C, "TRB", ModeAbsolute, OpTRB, 6, false)
	s.set(0x1D, "ORA", ModeAbsoluteX, OpORA, 4, true)
	s.set(0x1E, "ASL", ModeAbsoluteX, OpASL, 7, false)
	s.set(0x1F, "ORA", ModeAbsoluteLongX, OpORA, 5, false)

	s.set(0x20, "JSR", ModeAbsolute, OpJSR, 6, false)
	s.set(0x21, "AND", ModeDirectIndirectX, OpAND, 6, false)
	s.set(0x22, "JSL", ModeAbsoluteLong, OpJSL, 8, false)
	s.set(0x23, "AND", ModeStackRelative, OpAND, 4, false)
	s.set(0x24, "BIT", ModeDirect, OpBIT, 3, false)
	s.set(0x25, "AND", ModeDirect, OpAND, 3, false)
	s.set(0x26, "ROL", ModeDirect, OpROL, 5, false)
	s.set(0x27, "AND", ModeDirectIndirectLong, OpAND, 6, false)
	s.set(0x28, "PLP", ModeImplied, OpPLP, 4, false)
	s.set(0x29, "AND", ModeImmediateM, OpAND, 2, false)
	s.set(0x2A, "ROL", ModeAccumulator, OpROL, 2, false)
	s.set(0x2B, "PLD", ModeImplied, OpPLD, 5, false)
	s.set(0x2C, "BIT", ModeAbsolute, OpBIT, 4, false)
	s.set(0x2D, "AND", ModeAbsolute, OpAND, 4, false)
	s.set(0x2E, "ROL", ModeAbsolute, OpROL, 6, false)
	s.set(0x2F, "AND", ModeAbsoluteLong, OpAND, 5, false)

	s.set(0x30, "BMI", ModeRelative8, OpBMI, 2, false)
	s.set(0x31, "AND", ModeDirectIndirectY, OpAND, 5, true)
	s.set(0x32, "AND", ModeDirectIndirect, OpAND, 5, false)
	s.set(0x33, "AND", ModeStackRelativeIndirectY, OpAND, 7, false)
	s.set(0x34, "BIT", ModeDirectX, OpBIT, 4, false)
	s.set(0x35, "AND", ModeDirectX, OpAND, 4, false)
	s.set(0x36, "ROL", ModeDirectX, OpROL, 6, false)
	s.set(0x37, "AND", ModeDirectIndirectLongY, OpAND, 6, false)
	s.set(0x38, "SEC", ModeImplied, OpSEC, 2, false)
	s.set(0x39, "AND", ModeAbsoluteY, OpAND, 4, true)
	s.set(0x3A, "DEC", ModeAccumulator, OpDEA, 2, false)
	s.set(0x3B, "TSC", ModeImplied, OpTSC, 2, false)
	s.set(0x3C, "BIT", ModeAbsoluteX, OpBIT, 4, true)
	s.set(0x3D, "AND", ModeAbsoluteX, OpAND, 4, true)
	s.set(0x3E, "ROL", ModeAbsoluteX, OpROL, 7, false)
	s.set(0x3F, "AND", ModeAbsoluteLongX, OpAND, 5, false)

	s.set(0x40, "RTI", ModeImplied, OpRTI, 6, false)
	s.set(0x41, "EOR", ModeDirectIndirectX, OpEOR, 6, false)
	s.set(0x42, "WDM", ModeImmediate8, OpWDM, 2, false)
	s.set(0x43, "EOR", ModeStackRelative, OpEOR, 4, false)
	s.set(0x44, "MVP", ModeBlockMove, OpMVP, 7, false)
	s.set(0x45, "EOR", ModeDirect, OpEOR, 3, false)
	s.set(0x46, "LSR", ModeDirect, OpLSR, 5, false)
	s.set(0x47, "EOR", ModeDirectIndirectLong, OpEOR, 6, false)
	s.set(0x48, "PHA", ModeImplied, OpPHA, 3, false)
	s.set(0x49, "EOR", ModeImmediateM, OpEOR, 2, false)
	s.set(0x4A, "LSR", ModeAccumulator, OpLSR, 2, false)
	s.set(0x4B, "PHK", ModeImplied, OpPHK, 3, false)
	s.set(0x4C, "JMP", ModeAbsolute, OpJMP, 3, false)
	s.set(0x4D, "EOR", ModeAbsolute, OpEOR, 4, false)
	s.set(0x4E, "LSR", ModeAbsolute, OpLSR, 6, false)
	s.set(0x4F, "EOR", ModeAbsoluteLong, OpEOR, 5, false)

	s.set(0x50, "BVC", ModeRelative8, OpBVC, 2, false)
	s.set(0x51, "EOR", ModeDirectIndirectY, OpEOR, 5, true)
	s.set(0x52, "EOR", ModeDirectIndirect, OpEOR, 5, false)
	s.set(0x53, "EOR", ModeStackRelativeIndirectY, OpEOR, 7, false)
	s.set(0x54, "MVN", ModeBlockMove, OpMVN, 7, false)
	s.set(0x55, "EOR", ModeDirectX, OpEOR, 4, false)
	s.set(0x56, "LSR", ModeDirectX, OpLSR, 6, false)
	s.set(0x57, "EOR", ModeDirectIndirectLongY, OpEOR, 6, false)
	s.set(0x58, "CLI", ModeImplied, OpCLI, 2, false)
	s.set(0x59, "EOR", ModeAbsoluteY, OpEOR, 4, true)
	s.set(0x5A, "PHY", ModeImplied, OpPHY, 3, false)
	s.set(0x5B, "TCD", ModeImplied, OpTCD, 2, false)
	s.set(0x5C, "JMP", ModeAbsoluteLong, OpJML, 4, false)
	s.set(0x5D, "EOR", ModeAbsoluteX, OpEOR, 4, true)
	s.set(0x5E, "LSR", ModeAbsoluteX, OpLSR, 7, false)
	s.set(0x5F, "EOR", ModeAbsoluteLongX, OpEOR, 5, false)

	s.set(0x60, "RTS", ModeImplied, OpRTS, 6, false)
	s.set(0x61, "ADC", ModeDirectIndirectX, OpADC, 6, false)
	s.set(0x62, "PER", ModeRelative16, OpPER, 6, false)
	s.set(0x63, "ADC", ModeStackRelative, OpADC, 4, false)
	s.set(0x64, "STZ", ModeDirect, OpSTZ, 3, false)
	s.set(0x65, "ADC", ModeDirect, OpADC, 3, false)
	s.set(0x66, "ROR", ModeDirect, OpROR, 5, false)
	s.set(0x67, "ADC", ModeDirectIndirectLong, OpADC, 6, false)
	s.set(0x68, "PLA", ModeImplied, OpPLA, 4, false)
	s.set(0x69, "ADC", ModeImmediateM, OpADC, 2, false)
	s.set(0x6A, "ROR", ModeAccumulator, OpROR, 2, false)
	s.set(0x6B, "RTL", ModeImplied, OpRTL, 6, false)
	s.set(0x6C, "JMP", ModeAbsoluteIndirect, OpJMP, 5, false)
	s.set(0x6D, "ADC", ModeAbsolute, OpADC, 4, false)
	s.set(0x6E, "ROR", ModeAbsolute, OpROR, 6, false)
	s.set(0x6F, "ADC", ModeAbsoluteLong, OpADC, 5, false)

	s.set(0x70, "BVS", ModeRelative8, OpBVS, 2, false)
	s.set(0x71, "ADC", ModeDirectIndirectY, OpADC, 5, true)
	s.set(0x72, "ADC", ModeDirectIndirect, OpADC, 5, false)
	s.set(0x73, "ADC", ModeStackRelativeIndirectY, OpADC, 7, false)
	s.set(0x74, "STZ", ModeDirectX, OpSTZ, 4, false)
	s.set(0x75, "ADC", ModeDirectX, OpADC, 4, false)
	s.set(0x76, "ROR", ModeDirectX, OpROR, 6, false)
	s.set(0x77, "ADC", ModeDirectIndirectLongY, OpADC, 6, false)
	s.set(0x78, "SEI", ModeImplied, OpSEI, 2, false)
	s.set(0x79, "ADC", ModeAbsoluteY, OpADC, 4, true)
	s.set(0x7A, "PLY", ModeImplied, OpPLY, 4, false)
	s.set(0x7B, "TDC", ModeImplied, OpTDC, 2, false)
	s.set(0x7C, "JMP", ModeAbsoluteIndirectX, OpJMP, 6, false)
	s.set(0x7D, "ADC", ModeAbsoluteX, OpADC, 4, true)
	s.set(0x7E, "ROR", ModeAbsoluteX, OpROR, 7, false)
	s.set(0x7F, "ADC", ModeAbsoluteLongX, OpADC, 5, false)

	s.set(0x80, "BRA", ModeRelative8, OpBRA, 3, false)
	s.set(0x81, "STA", ModeDirectIndirectX, OpSTA, 6, false)
	s.set(0x82, "BRL", ModeRelative16, OpBRL, 4, false)
	s.set(0x83, "STA", ModeStackRelative, OpSTA, 4, false)
	s.set(0x84, "STY", ModeDirect, OpSTY, 3, false)
	s.set(0x85, "STA", ModeDirect, OpSTA, 3, false)
	s.set(0x86, "STX", ModeDirect, OpSTX, 3, false)
	s.set(0x87, "STA", ModeDirectIndirectLong, OpSTA, 6, false)
	s.set(0x88, "DEY", ModeImplied, OpDEY, 2, false)
	s.set(0x89, "BIT", ModeImmediateM, OpBIT, 2, false)
	s.set(0x8A, "TXA", ModeImplied, OpTXA, 2, false)
	s.set(0x8B, "PHB", ModeImplied, OpPHB, 3, false)
	s.set(0x8C, "STY", ModeAbsolute, OpSTY, 4, false)
	s.set(0x8D, "STA", ModeAbsolute, OpSTA, 4, false)
	s.set(0x8E, "STX", ModeAbsolute, OpSTX, 4, false)
	s.set(0x8F, "STA", ModeAbsoluteLong, OpSTA, 5, false)

	s.set(0x90, "BCC", ModeRelative8, OpBCC, 2, false)
	s.set(0x91, "STA", ModeDirectIndirectY, OpSTA, 6, false)
	s.set(0x92, "STA", ModeDirectIndirect, OpSTA, 5, false)
	s.set(0x93, "STA", ModeStackRelativeIndirectY, OpSTA, 7, false)
	s.set(0x94, "STY", ModeDirectX, OpSTY, 4, false)
	s.set(0x95, "STA", ModeDirectX, OpSTA, 4, false)
	s.set(0x96, "STX", ModeDirectY, OpSTX, 4, false)
	s.set(0x97, "STA", ModeDirectIndirectLongY, OpSTA, 6, false)
	s.set(0x98, "TYA", ModeImplied, OpTYA, 2, false)
	s.set(0x99, "STA", ModeAbsoluteY, OpSTA, 5, false)
	s.set(0x9A, "TXS", ModeImplied, OpTXS, 2, false)
	s.set(0x9B, "TXY", ModeImplied, OpTXY, 2, false)
	s.set(0x9C, "STZ", ModeAbsolute, OpSTZ, 4, false)
	s.set(0x9D, "STA", ModeAbsoluteX, OpSTA, 5, false)
	s.set(0x9E, "STZ", ModeAbsoluteX, OpSTZ, 5, false)
	s.set(0x9F, "STA", ModeAbsoluteLongX, OpSTA, 5, false)

	s.set(0xA0, "LDY", ModeImmediateX, OpLDY, 2, false)
	s.set(0xA1, "LDA", ModeDirectIndirectX, OpLDA, 6, false)
	s.set(0xA2, "LDX", ModeImmediateX, OpLDX, 2, false)
	s.set(0xA3, "LDA", ModeStackRelative, OpLDA, 4, false)
	s.set(0xA4, "LDY", ModeDirect, OpLDY, 3, false)
	s.set(0xA5, "LDA", ModeDirect, OpLDA, 3, false)
	s.set(0xA6, "LDX", ModeDirect, OpLDX, 3, false)
	s.set(0xA7, "LDA", ModeDirectIndirectLong, OpLDA, 6, false)
	s.set(0xA8, "TAY", ModeImplied, OpTAY, 2, false)
	s.set(0xA9, "LDA", ModeImmediateM, OpLDA, 2, false)
	s.set(0xAA, "TAX", ModeImplied, OpTAX, 2, false)
	s.set(0xAB, "PLB", ModeImplied, OpPLB, 4, false)
	s.set(0xAC, "LDY", ModeAbsolute, OpLDY, 4, false)
	s.set(0xAD, "LDA", ModeAbsolute, OpLDA, 4, false)
	s.set(0xAE, "LDX", ModeAbsolute, OpLDX, 4, false)
	s.set(0xAF, "LDA", ModeAbsoluteLong, OpLDA, 5, false)

	s.set(0xB0, "BCS", ModeRelative8, OpBCS, 2, false)
	s.set(0xB1, "LDA", ModeDirectIndirectY, OpLDA, 5, true)
	s.set(0xB2, "LDA", ModeDirectIndirect, OpLDA, 5, false)
	s.set(0xB3, "LDA", ModeStackRelativeIndirectY, OpLDA, 7, false)
	s.set(0xB4, "LDY", ModeDirectX, OpLDY, 4, false)
	s.set(0xB5, "LDA", ModeDirectX, OpLDA, 4, false)
	s.set(0xB6, "LDX", ModeDirectY, OpLDX, 4, false)
	s.set(0xB7, "LDA", ModeDirectIndirectLongY, OpLDA, 6, false)
	s.set(0xB8, "CLV", ModeImplied, OpCLV, 2, false)
	s.set(0xB9, "LDA", ModeAbsoluteY, OpLDA, 4, true)
	s.set(0xBA, "TSX", ModeImplied, OpTSX, 2, false)
	s.set(0xBB, "TYX", ModeImplied, OpTYX, 2, false)
	s.set(0xBC, "LDY", ModeAbsoluteX, OpLDY, 4, true)
	s.set(0xBD, "LDA", ModeAbsoluteX, OpLDA, 4, true)
	s.set(0xBE, "LDX", ModeAbsoluteY, OpLDX, 4, true)
	s.set(0xBF, "LDA", ModeAbsoluteLongX, OpLDA, 5, false)

	s.set(0xC0, "CPY", ModeImmediateX, OpCPY, 2, false)
	s.set(0xC1, "CMP", ModeDirectIndirectX, OpCMP, 6, false)
	s.set(0xC2, "REP", ModeImmediate8, OpREP, 3, false)
	s.set(0xC3, "CMP", ModeStackRelative, OpCMP, 4, false)
	s.set(0xC4, "CPY", ModeDirect, OpCPY, 3, false)
	s.set(0xC5, "CMP", ModeDirect, OpCMP, 3, false)
	s.set(0xC6, "DEC", ModeDirect, OpDEC, 5, false)
	s.set(0xC7, "CMP", ModeDirectIndirectLong, OpCMP, 6, false)
	s.set(0xC8, "INY", ModeImplied, OpINY, 2, false)
	s.set(0xC9, "CMP", ModeImmediateM, OpCMP, 2, false)
	s.set(0xCA, "DEX", ModeImplied, OpDEX, 2, false)
	s.set(0xCB, "WAI", ModeImplied, OpWAI, 3, false)
	s.set(0xCC, "CPY", ModeAbsolute, OpCPY, 4, false)
	s.set(0xCD, "CMP", ModeAbsolute, OpCMP, 4, false)
	s.set(0xCE, "DEC", ModeAbsolute, OpDEC, 6, false)
	s.set(0xCF, "CMP", ModeAbsoluteLong, OpCMP, 5, false)

	s.set(0xD0, "BNE", ModeRelative8, OpBNE, 2, false)
	s.set(0xD1, "CMP", ModeDirectIndirectY, OpCMP, 5, true)
	s.set(0xD2, "CMP", ModeDirectIndirect, OpCMP, 5, false)
	s.set(0xD3, "CMP", ModeStackRelativeIndirectY, OpCMP, 7, false)
	s.set(0xD4, "PEI", ModeDirect, OpPEI, 6, false)
	s.set(0xD5, "CMP", ModeDirectX, OpCMP, 4, false)
	s.set(0xD6, "DEC", ModeDirectX, OpDEC, 6, false)
	s.set(0xD7, "CMP", ModeDirectIndirectLongY, OpCMP, 6, false)
	s.set(0xD8, "CLD", ModeImplied, OpCLD, 2, false)
	s.set(0xD9, "CMP", ModeAbsoluteY, OpCMP, 4, true)
	s.set(0xDA, "PHX", ModeImplied, OpPHX, 3, false)
	s.set(0xDB, "STP", ModeImplied, OpSTP, 3, false)
	s.set(0xDC, "JMP", ModeAbsoluteIndirectLong, OpJML, 6, false)
	s.set(0xDD, "CMP", ModeAbsoluteX, OpCMP, 4, true)
	s.set(0xDE, "DEC", ModeAbsoluteX, OpDEC, 7, false)
	s.set(0xDF, "CMP", ModeAbsoluteLongX, OpCMP, 5, false)

	s.set(0xE0, "CPX", ModeImmediateX, OpCPX, 2, false)
	s.set(0xE1, "SBC", ModeDirectIndirectX, OpSBC, 6, false)
	s.set(0xE2, "SEP", ModeImmediate8, OpSEP, 3, false)
	s.set(0xE3, "SBC", ModeStackRelative, OpSBC, 4, false)
	s.set(0xE4, "CPX", ModeDirect, OpCPX, 3, false)
	s.set(0xE5, "SBC", ModeDirect, OpSBC, 3, false)
	s.set(0xE6, "INC", ModeDirect, OpINC, 5, false)
	s.set(0xE7, "SBC", ModeDirectIndirectLong, OpSBC, 6, false)
	s.set(0xE8, "INX", ModeImplied, OpINX, 2, false)
	s.set(0xE9, "SBC", ModeImmediateM, OpSBC, 2, false)
	s.set(0xEA, "NOP", ModeImplied, OpNOPImplied, 2, false)
	s.set(0xEB, "XBA", ModeImplied, OpXBA, 3, false)
	s.set(0xEC, "CPX", ModeAbsolute, OpCPX, 4, false)
	s.set(0xED, "SBC", ModeAbsolute, OpSBC, 4, false)
	s.set(0xEE, "INC", ModeAbsolute, OpINC, 6, false)
	s.set(0xEF, "SBC", ModeAbsoluteLong, OpSBC, 5, false)

	s.set(0xF0, "BEQ", ModeRelative8, OpBEQ, 2, false)
	s.set(0xF1, "SBC", ModeDirectIndirectY, OpSBC, 5, true)
	s.set(0xF2, "SBC", ModeDirectIndirect, OpSBC, 5, false)
	s.set(0xF3, "SBC", ModeStackRelativeIndirectY, OpSBC, 7, false)
	s.set(0xF4, "PEA", ModeAbsolute, OpPEA, 5, false)
	s.set(0xF5, "SBC", ModeDirectX, OpSBC, 4, false)
	s.set(0xF6, "INC", ModeDirectX, OpINC, 6, false)
	s.set(0xF7, "SBC", ModeDirectIndirectLongY, OpSBC, 6, false)
	s.set(0xF8, "SED", ModeImplied, OpSED, 2, false)
	s.set(0xF9, "SBC", ModeAbsoluteY, OpSBC, 4, true)
	s.set(0xFA, "PLX", ModeImplied, OpPLX, 4, false)
	s.set(0xFB, "XCE", ModeImplied, OpXCE, 2, false)
	s.set(0xFC, "JSR", ModeAbsoluteIndirectX, OpJSR, 8, false)
	s.set(0xFD, "SBC", ModeAbsoluteX, OpSBC, 4, true)
	s.set(0xFE, "INC", ModeAbsoluteX, OpINC, 7, false)
	s.set(0xFF, "SBC", ModeAbsoluteLongX, OpSBC, 5, false)
}
