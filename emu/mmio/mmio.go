/*
   gsx - $C000-$C0FF softswitch register file.

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

// Package mmio holds the Mega II softswitch register file living at
// $C000-$C0FF: language-card state, 80STORE/PAGE2/HIRES/RAMRD/RAMWRT/ALTZP,
// the GS shadow register, slot ROM selection, and the system speed bit.
// Any write that changes a switch in the bank-map dependency set (spec.md
// §3/§4.2) triggers Rebuild, which repopulates a memory.BankMap from
// scratch -- there is no incremental patch path.
package mmio

import (
	"log/slog"

	"github.com/open-iigs/gsx/emu/memory"
	"github.com/open-iigs/gsx/util/logger"
)

// Device is the MMIO-page handler contract a page descriptor dispatches
// to when MMIORead/MMIOWrite is set. addr is page-relative (0x00-0xFF
// within the $C0xx page).
type Device interface {
	ReadIO(addr uint8) uint8
	WriteIO(addr uint8, v uint8)
}

// Register is the Mega II softswitch state machine. It owns no backing
// RAM/ROM itself -- Rebuild paints a caller-owned BankMap -- and holds no
// long-lived reference to the Store it rebuilds against.
type Register struct {
	// Language card.
	lcReadEnable  bool
	lcWriteEnable bool
	lcBank2       bool
	lcPrewrite    bool // "double read" latch: first $C08x read primes, doesn't enable

	store80    bool // 80STORE
	page2      bool
	hires      bool
	ramrd      bool // read from aux bank when set
	ramwrt     bool // write to aux bank when set
	altzp      bool // zero page/stack in aux bank when set

	text       bool // TEXT ($C050/$C051)
	mixed      bool // MIXED ($C052/$C053)
	col80      bool // 80COL display mode ($C00C/$C00D), distinct from 80STORE
	altCharset bool // ALTCHARSET ($C00E/$C00F)
	dhires     bool // DHIRES/AN3 ($C05E/$C05F)
	superHires bool // NEWVIDEO bit 7 ($C029), selects the super-hires scanline decode

	shadow uint8 // GS shadow register ($C035): per-region shadow-disable bits
	speed  uint8 // $C036: fast/slow CPU select + system bits
	slotROM [8]bool // true = card ROM visible at $Csxx, false = internal ROM

	intCSwitch bool // INTCXROM: internal ROM replaces all slot ROM + $C100-$CFFF

	slots [8]Device // index 0 unused (no slot 0); 1..7 card handlers

	dirty bool // set by any switch write that requires Rebuild
}

func New() *Register {
	r := &Register{}
	r.lcReadEnable = false
	r.lcWriteEnable = false
	r.speed = 0x80 // power-on default is full FPI speed
	return r
}

// AttachCard installs a card handler in a slot (1-7). Slot 3 is
// conventionally shadowed by INTCXROM/slot-ROM selection, per hardware.
func (r *Register) AttachCard(slot int, d Device) {
	if slot < 1 || slot > 7 {
		return
	}
	r.slots[slot] = d
}

// Dirty reports whether a bank-map rebuild is owed since the last Rebuild.
func (r *Register) Dirty() bool { return r.dirty }

// SlowSpeed reports whether the $C036 SPEED register selects the 1MHz
// system speed (bit 7 clear); fast-RAM accesses are then charged as slow
// cycles too, per spec.md §4.1.
func (r *Register) SlowSpeed() bool { return r.speed&0x80 == 0 }

// ReadIO services a CPU read in the $C000-$C0FF page.
func (r *Register) ReadIO(addr uint8) uint8 {
	switch {
	case addr == 0x11:
		return boolBit(r.lcBank2, 0x80)
	case addr == 0x12:
		return boolBit(r.lcReadEnable, 0x80)
	case addr == 0x13:
		return boolBit(r.ramrd, 0x80)
	case addr == 0x14:
		return boolBit(r.ramwrt, 0x80)
	case addr == 0x15:
		return boolBit(r.intCSwitch, 0x80)
	case addr == 0x16:
		return boolBit(r.altzp, 0x80)
	case addr == 0x18:
		return boolBit(r.store80, 0x80)
	case addr == 0x1A:
		return boolBit(r.text, 0x80)
	case addr == 0x1B:
		return boolBit(r.mixed, 0x80)
	case addr == 0x1C:
		return boolBit(r.page2, 0x80)
	case addr == 0x1D:
		return boolBit(r.hires, 0x80)
	case addr == 0x1E:
		return boolBit(r.altCharset, 0x80)
	case addr == 0x1F:
		return boolBit(r.col80, 0x80)
	case addr == 0x29:
		return boolBit(r.superHires, 0x80)

	case addr >= 0x80 && addr <= 0x8F:
		return r.lcRead(addr)

	case addr == 0x35:
		return r.shadow
	case addr == 0x36:
		return r.speed

	case addr >= 0xE0 && addr <= 0xEF:
		if r.slots[6] != nil {
			return r.slots[6].ReadIO(addr)
		}
		return 0xFF

	default:
		// Slot n's register window is at $C080+$10*n ($C090-$C0FF).
		if addr >= 0x90 {
			slot := int(addr>>4) - 8
			if r.slots[slot] != nil {
				return r.slots[slot].ReadIO(addr & 0x0F)
			}
		}
		logger.Unimplemented("read of unmapped softswitch", slog.Int("addr", 0xC000+int(addr)))
		return 0xFF
	}
}

// WriteIO services a CPU write in the $C000-$C0FF page.
func (r *Register) WriteIO(addr uint8, v uint8) {
	switch {
	case addr == 0x00:
		r.set(&r.store80, false)
	case addr == 0x01:
		r.set(&r.store80, true)
	case addr == 0x02:
		r.set(&r.ramrd, false)
	case addr == 0x03:
		r.set(&r.ramrd, true)
	case addr == 0x04:
		r.set(&r.ramwrt, false)
	case addr == 0x05:
		r.set(&r.ramwrt, true)
	case addr == 0x06:
		r.setIntC(false)
	case addr == 0x07:
		r.setIntC(true)
	case addr == 0x08:
		r.set(&r.altzp, false)
	case addr == 0x09:
		r.set(&r.altzp, true)
	case addr == 0x0C:
		r.set(&r.col80, false)
	case addr == 0x0D:
		r.set(&r.col80, true)
	case addr == 0x0E:
		r.set(&r.altCharset, false)
	case addr == 0x0F:
		r.set(&r.altCharset, true)
	case addr == 0x29:
		r.set(&r.superHires, v&0x80 != 0)
	case addr == 0x50:
		r.set(&r.text, false)
	case addr == 0x51:
		r.set(&r.text, true)
	case addr == 0x52:
		r.set(&r.mixed, false)
	case addr == 0x53:
		r.set(&r.mixed, true)
	case addr == 0x54:
		r.set(&r.page2, false)
	case addr == 0x55:
		r.set(&r.page2, true)
	case addr == 0x56:
		r.set(&r.hires, false)
	case addr == 0x57:
		r.set(&r.hires, true)
	case addr == 0x5E:
		r.set(&r.dhires, true)
	case addr == 0x5F:
		r.set(&r.dhires, false)

	case addr >= 0x80 && addr <= 0x8F:
		r.lcWrite(addr)

	case addr == 0x35:
		if r.shadow != v {
			r.shadow = v
			r.dirty = true
		}
	case addr == 0x36:
		r.speed = v

	case addr >= 0xE0 && addr <= 0xEF:
		if r.slots[6] != nil {
			r.slots[6].WriteIO(addr, v)
		}

	default:
		if addr >= 0x90 {
			slot := int(addr>>4) - 8
			if r.slots[slot] != nil {
				r.slots[slot].WriteIO(addr&0x0F, v)
				return
			}
		}
		logger.Unimplemented("write to unmapped softswitch", slog.Int("addr", 0xC000+int(addr)), slog.Int("value", int(v)))
	}
}

func (r *Register) set(flag *bool, v bool) {
	if *flag != v {
		*flag = v
		r.dirty = true
	}
}

// VideoFlags reports the current state of the softswitches that select the
// VGC's decode mode, for the machine driver to forward into video.Engine
// after any MMIO write.
func (r *Register) VideoFlags() (text, mixed, col80, altCharset, dhires, hires, superHires bool) {
	return r.text, r.mixed, r.col80, r.altCharset, r.dhires, r.hires, r.superHires
}

func (r *Register) setIntC(v bool) {
	if r.intCSwitch != v {
		r.intCSwitch = v
		r.dirty = true
	}
}

// lcRead implements the language-card "double read" latch: bit patterns in
// $C080-$C08F select read/write-enable and bank 1/2, but write-enable only
// becomes active after two consecutive reads of odd addresses with no
// intervening write or even-address read (the lcPrewrite latch tracks the
// first of them); the two reads need not be the same address.
func (r *Register) lcRead(addr uint8) uint8 {
	bank2 := addr&0x08 == 0
	// A1:A0 select: 00 = read RAM, 01 = read ROM/write RAM, 10 = read
	// ROM, 11 = read RAM/write RAM. RAM reads come from patterns 00/11.
	readEnable := addr&0x03 == 0x00 || addr&0x03 == 0x03
	wantWrite := addr&0x01 != 0 // odd offsets in $C08x arm write-enable

	if wantWrite {
		if r.lcPrewrite {
			r.set(&r.lcWriteEnable, true)
		}
		r.lcPrewrite = !r.lcPrewrite
	} else {
		r.lcPrewrite = false
		r.set(&r.lcWriteEnable, false)
	}

	r.set(&r.lcReadEnable, readEnable)
	r.set(&r.lcBank2, bank2)
	return 0xFF
}

func (r *Register) lcWrite(addr uint8) {
	// A write to the $C08x range never arms the double-read sequence; it
	// resets the prewrite latch but leaves an already-enabled write state
	// alone, matching the hardware's WRTCOUNT behavior.
	r.lcPrewrite = false
	bank2 := addr&0x08 == 0
	readEnable := addr&0x03 == 0x00 || addr&0x03 == 0x03
	if addr&0x01 == 0 {
		r.set(&r.lcWriteEnable, false)
	}
	r.set(&r.lcReadEnable, readEnable)
	r.set(&r.lcBank2, bank2)
}

func boolBit(v bool, bit uint8) uint8 {
	if v {
		return bit
	}
	return 0
}

// Rebuild repaints bm from scratch against the current switch state and
// store's bank count, clearing Dirty. Matches the "rebuilt wholesale, not
// patched" invariant: every call starts from an identity mapping.
func (r *Register) Rebuild(bm *memory.BankMap, store *memory.Store) {
	bm.Identity()

	// RAMRD/RAMWRT: bank 0 reads/writes in $0200-$BFFF route to aux bank 1
	// when set, independent of 80STORE (80STORE + PAGE2 override below for
	// the specific $0400-$07FF/$2000-$3FFF regions). Zero page, stack, and
	// the language-card region follow ALTZP instead.
	if r.ramrd || r.ramwrt {
		for p := 0x02; p <= 0xBF; p++ {
			d := bm.Page(memory.BankMain, uint8(p))
			if r.ramrd {
				d.ReadBank = memory.BankAux
			}
			if r.ramwrt {
				d.WriteBank = memory.BankAux
			}
			bm.Set(memory.BankMain, uint8(p), d)
		}
	}
	if r.altzp {
		for p := 0x00; p <= 0x01; p++ {
			d := bm.Page(memory.BankMain, uint8(p))
			d.ReadBank = memory.BankAux
			d.WriteBank = memory.BankAux
			bm.Set(memory.BankMain, uint8(p), d)
		}
	}

	// 80STORE + PAGE2: text page 1 ($0400-$07FF) and, if HIRES is also on,
	// the hires page ($2000-$3FFF) route to aux bank regardless of
	// RAMRD/RAMWRT.
	if r.store80 && r.page2 {
		for p := 0x04; p <= 0x07; p++ {
			d := bm.Page(memory.BankMain, uint8(p))
			d.ReadBank = memory.BankAux
			d.WriteBank = memory.BankAux
			bm.Set(memory.BankMain, uint8(p), d)
		}
		if r.hires {
			for p := 0x20; p <= 0x3F; p++ {
				d := bm.Page(memory.BankMain, uint8(p))
				d.ReadBank = memory.BankAux
				d.WriteBank = memory.BankAux
				bm.Set(memory.BankMain, uint8(p), d)
			}
		}
	}

	// Language card: $D000-$FFFF. Bank 2 selects one of the two 4K banks
	// shadowed at $D000-$DFFF; $E000-$FFFF is single-banked. Read-enable
	// routes reads to RAM instead of ROM; write-enable allows writes at all
	// (the backing store still only has one RAM image per bank; bank-2
	// selection is modeled as an address-space alias within that bank).
	for p := 0xD0; p <= 0xFF; p++ {
		d := bm.Page(memory.BankMain, uint8(p))
		if r.lcReadEnable {
			d.ReadBank = memory.BankMain
			d.ReadPage = uint8(p)
		} else {
			d.ReadBank = memory.BankROM1
			d.ReadPage = uint8(p)
		}
		d.WriteBank = memory.BankMain
		d.WritePage = uint8(p)
		d.ReadOnly = !r.lcWriteEnable
		bm.Set(memory.BankMain, uint8(p), d)
	}
	_ = store

	// MMIO page: $C000-$C0FF always dispatches, on both banks 0 and 1 (aux
	// has no separate softswitch bank).
	mmioDesc := memory.PageDesc{MMIORead: true, MMIOWrite: true}
	bm.Set(memory.BankMain, 0xC0, mmioDesc)
	bm.Set(memory.BankAux, 0xC0, mmioDesc)

	// Shadowing: writes to $0400-$07FF, $2000-$5FFF, $6000-$9FFF, and
	// $C100-$C7FF mirror to bank $E0/$E1 unless disabled per-region by the
	// shadow register. Implemented as a write-target override layered on
	// top of whatever RAMWRT/80STORE already selected, since shadowing
	// triggers on write regardless of which source bank was chosen.
	if r.shadow&shadowDisableText == 0 {
		r.shadowWrite(bm, 0x04, 0x07)
	}
	if r.shadow&shadowDisableHires1 == 0 {
		r.shadowWrite(bm, 0x20, 0x3F)
	}
	if r.shadow&shadowDisableHires2 == 0 {
		r.shadowWrite(bm, 0x40, 0x5F)
	}
	if r.shadow&shadowDisableSHR == 0 {
		r.shadowWrite(bm, 0x60, 0x9F)
	}

	r.dirty = false
}

const (
	shadowDisableText   uint8 = 0x01
	shadowDisableHires1 uint8 = 0x02
	shadowDisableHires2 uint8 = 0x04
	shadowDisableSHR    uint8 = 0x08
)

// Snapshot is the serializable softswitch state, less the attached card
// Devices (reattached by the caller after restore, same as AttachCard at
// construction) and the dirty flag (restore always forces a Rebuild).
type Snapshot struct {
	LCReadEnable, LCWriteEnable, LCBank2, LCPrewrite bool
	Store80, Page2, Hires, RAMRD, RAMWRT, ALTZP      bool
	Shadow, Speed                                     uint8
	SlotROM                                           [8]bool
	IntCSwitch                                        bool
	Text, Mixed, Col80, AltCharset, DHires, SuperHires bool
}

// Snapshot captures r's serializable softswitch state.
func (r *Register) Snapshot() Snapshot {
	return Snapshot{
		LCReadEnable: r.lcReadEnable, LCWriteEnable: r.lcWriteEnable,
		LCBank2: r.lcBank2, LCPrewrite: r.lcPrewrite,
		Store80: r.store80, Page2: r.page2, Hires: r.hires,
		RAMRD: r.ramrd, RAMWRT: r.ramwrt, ALTZP: r.altzp,
		Shadow: r.shadow, Speed: r.speed, SlotROM: r.slotROM,
		IntCSwitch: r.intCSwitch,
		Text: r.text, Mixed: r.mixed, Col80: r.col80,
		AltCharset: r.altCharset, DHires: r.dhires, SuperHires: r.superHires,
	}
}

// Restore overwrites r's softswitch state from snap. The caller must
// Rebuild the bank map afterward; Restore itself only sets dirty.
func (r *Register) Restore(snap Snapshot) {
	r.lcReadEnable, r.lcWriteEnable = snap.LCReadEnable, snap.LCWriteEnable
	r.lcBank2, r.lcPrewrite = snap.LCBank2, snap.LCPrewrite
	r.store80, r.page2, r.hires = snap.Store80, snap.Page2, snap.Hires
	r.ramrd, r.ramwrt, r.altzp = snap.RAMRD, snap.RAMWRT, snap.ALTZP
	r.shadow, r.speed, r.slotROM = snap.Shadow, snap.Speed, snap.SlotROM
	r.intCSwitch = snap.IntCSwitch
	r.text, r.mixed, r.col80 = snap.Text, snap.Mixed, snap.Col80
	r.altCharset, r.dhires, r.superHires = snap.AltCharset, snap.DHires, snap.SuperHires
	r.dirty = true
}

// shadowWrite reroutes a page range on banks 0/1 into the Mega II banks.
// The target is picked from the main/aux parity each descriptor already
// carries, so a page that RAMWRT or 80STORE+PAGE2 routed to aux shadows
// into $E1 rather than $E0. Reads follow the same target: the descriptor
// model has a single write target per page, so routing reads anywhere
// else would let a program read back stale pre-shadow data.
func (r *Register) shadowWrite(bm *memory.BankMap, startPage, endPage int) {
	for _, bank := range [2]uint8{memory.BankMain, memory.BankAux} {
		for p := startPage; p <= endPage; p++ {
			d := bm.Page(bank, uint8(p))
			d.ReadBank = memory.BankShadowMain | (d.ReadBank & 1)
			d.ReadPage = uint8(p)
			d.WriteBank = memory.BankShadowMain | (d.WriteBank & 1)
			d.WritePage = uint8(p)
			bm.Set(bank, uint8(p), d)
		}
	}
}
