/*
   gsx - Banked memory subsystem and page-descriptor bank map.

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

// Package memory implements the 256-bank x 256-page descriptor bank map
// from spec.md §3/§4.2, plus the RAM/ROM backing store it routes to. The
// map is rebuilt whenever any of {language card state, 80STORE, PAGE2,
// HIRES, RAMRD/RAMWRT, ALTZP, shadow register, slot ROM select} changes;
// between rebuilds it is read-only and safe to consult on every CPU access.
package memory

const (
	Banks    = 256
	PagesPer = 256 // 256-byte pages per bank
	PageSize = 256
	BankSize = PagesPer * PageSize

	BankMain  = 0x00
	BankAux   = 0x01
	BankShadowMain = 0xE0 // Mega II shadow target for main-bank shadowed writes
	BankShadowAux  = 0xE1 // Mega II shadow target for aux-bank shadowed writes
	BankROM1  = 0xFE
	BankROM2  = 0xFF
)

// PageDesc describes the read and write routing for one 256-byte page. A
// page either points at backing RAM/ROM (the zero value of the MMIO flags)
// or is flagged for MMIO dispatch; there is no third, dangling state.
type PageDesc struct {
	ReadBank, ReadPage   uint8
	WriteBank, WritePage uint8
	MMIORead, MMIOWrite  bool
	ReadOnly             bool // page has no backing write target (ROM)
}

// BankMap is the 256x256 page-descriptor table. Rebuild constructs it from
// scratch each time any softswitch in its dependency set changes; there is
// no incremental patching, matching the "rebuilt on softswitch changes"
// invariant from spec.md §3.
type BankMap struct {
	pages [Banks][PagesPer]PageDesc
}

// Page returns the descriptor for the given bank/page. Always valid:
// construction fills every entry with an identity RAM mapping before any
// MMIO carve-outs are applied.
func (m *BankMap) Page(bank, page uint8) PageDesc {
	return m.pages[bank][page]
}

// Set installs a descriptor, used by the rebuild routine (owned by the
// higher-level softswitch state machine, which knows about language-card
// and shadow configuration) to carve out MMIO and remapped regions.
func (m *BankMap) Set(bank, page uint8, d PageDesc) {
	m.pages[bank][page] = d
}

// Identity resets every page in the map to a straight RAM identity mapping
// (read bank == write bank == bank, read page == write page == page). The
// higher-level rebuild then overlays language-card, shadow, and MMIO
// carve-outs on top.
func (m *BankMap) Identity() {
	for b := 0; b < Banks; b++ {
		for p := 0; p < PagesPer; p++ {
			m.pages[b][p] = PageDesc{
				ReadBank: uint8(b), ReadPage: uint8(p),
				WriteBank: uint8(b), WritePage: uint8(p),
			}
		}
	}
}

// Store is the RAM/ROM backing memory the bank map's non-MMIO descriptors
// point into. All storage is allocated once at construction from a single
// arena sized from the declared RAM bank count and ROM size -- the slab
// allocator design from spec.md §9.
type Store struct {
	arena    []byte
	ram      [][]byte // one BankSize slice per RAM bank, indexed by bank number
	mega     [][]byte // banks $E0/$E1: the Mega II's own slow RAM, shadow target
	rom      []byte   // ROM image, BankSize*romBanks long
	romBanks uint8
}

// NewStore allocates backing memory for ramBanks RAM banks (each 64KB), the
// two Mega II banks ($E0/$E1) that receive shadowed writes, plus the
// supplied ROM image, rounded up to whole 64KB ROM banks and read through
// ReadROM.
func NewStore(ramBanks int, rom []byte) *Store {
	romBanks := (len(rom) + BankSize - 1) / BankSize
	total := ramBanks*BankSize + 2*BankSize + romBanks*BankSize
	arena := make([]byte, total)

	s := &Store{arena: arena, romBanks: uint8(romBanks)}
	s.ram = make([][]byte, ramBanks)
	off := 0
	for i := 0; i < ramBanks; i++ {
		s.ram[i] = arena[off : off+BankSize]
		off += BankSize
	}
	s.mega = make([][]byte, 2)
	for i := 0; i < 2; i++ {
		s.mega[i] = arena[off : off+BankSize]
		off += BankSize
	}
	s.rom = arena[off : off+romBanks*BankSize]
	copy(s.rom, rom)
	return s
}

// bankSlice routes a bank number to its backing slice: configured RAM
// banks by index, $E0/$E1 to the Mega II banks, anything else nil.
func (s *Store) bankSlice(bank uint8) []byte {
	if int(bank) < len(s.ram) {
		return s.ram[bank]
	}
	if bank == BankShadowMain || bank == BankShadowAux {
		return s.mega[bank-BankShadowMain]
	}
	return nil
}

// RAMBanks returns the number of banks of RAM backed by this store.
func (s *Store) RAMBanks() int { return len(s.ram) }

// ReadRAM reads one byte from bank b (interpreted as a RAM bank index),
// offset off within the bank.
func (s *Store) ReadRAM(bank uint8, off uint16) uint8 {
	b := s.bankSlice(bank)
	if b == nil {
		return 0xFF
	}
	return b[off]
}

// WriteRAM writes one byte to bank b, offset off.
func (s *Store) WriteRAM(bank uint8, off uint16, v uint8) {
	b := s.bankSlice(bank)
	if b == nil {
		return
	}
	b[off] = v
}

// ReadROM reads one byte from the ROM image. romBank 0 and 1 are the first
// two ROM banks, reached through BankROM1/BankROM2 at CPU banks $FE/$FF;
// out-of-range reads wrap around the image per §4.9's "ROM reads never
// fault" guarantee.
func (s *Store) ReadROM(romBank uint8, off uint16) uint8 {
	idx := int(romBank)*BankSize + int(off)
	if idx >= len(s.rom) {
		if len(s.rom) == 0 {
			return 0xFF
		}
		idx %= len(s.rom)
	}
	return s.rom[idx]
}

// ROMBanks returns how many 64KB banks the loaded ROM image occupies.
func (s *Store) ROMBanks() uint8 { return s.romBanks }

// RAMBank returns the live BankSize-byte backing slice for bank ($E0/$E1
// included), or nil if out of range. Callers that hold onto the slice
// across a snapshot load are holding a dead reference -- copy it instead
// (see emu/snapshot).
func (s *Store) RAMBank(bank uint8) []byte {
	return s.bankSlice(bank)
}

// SetRAMBank overwrites bank's contents from data, used when restoring a
// snapshot into an already-constructed Store of matching shape.
func (s *Store) SetRAMBank(bank uint8, data []byte) {
	b := s.bankSlice(bank)
	if b == nil {
		return
	}
	copy(b, data)
}
