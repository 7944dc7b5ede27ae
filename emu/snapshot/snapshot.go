/*
   gsx - Machine snapshot save/load.

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

// Package snapshot serializes and restores a machine.Machine's full state:
// the deterministic-replay subset (CPU, MMIO softswitches, clock, RAM)
// plus the per-slot card state and disk/drive storage spec.md §6 lists as
// top-level snapshot keys ("cards", "storage"). Each component that
// participates exposes its own Snapshot()/Restore(Snapshot) pair
// (cpu.State, mmio.Register, clock.Timespec, card.Slots, iwm.Drive,
// smartport.Bus); this package is the component-local serializer registry
// that walks a Machine and packs/unpacks them with msgpack, gated by a
// version field so a snapshot written by an older build is rejected
// instead of silently misread.
//
// Finer-grained peripheral timing (DOC oscillator phase, ADB FIFO, RTC
// BRAM dirty bit, VGC scanline position) is still out of scope: see
// DESIGN.md's "Open Question: snapshot scope" entry.
package snapshot

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/open-iigs/gsx/emu/card"
	"github.com/open-iigs/gsx/emu/clock"
	"github.com/open-iigs/gsx/emu/cpu"
	"github.com/open-iigs/gsx/emu/gserr"
	"github.com/open-iigs/gsx/emu/iwm"
	"github.com/open-iigs/gsx/emu/mmio"
	"github.com/open-iigs/gsx/emu/smartport"
)

// Version identifies the snapshot wire format. Bump it whenever a field
// is added, removed, or reinterpreted in State below.
const Version = 2

// Storage is the disk-side half of the snapshot's "storage" section: the
// two floppy drives' mounted images and head position, plus every
// SmartPort-attached hard-disk unit's full block contents.
type Storage struct {
	Drives    [2]iwm.DriveSnapshot
	SmartPort []smartport.UnitSnapshot
}

// State is the full on-disk snapshot payload. RAM is one slice per bank,
// in bank order, each BankSize bytes long; ROM is never written since it
// is loaded fresh from the configured ROM image on restore.
type State struct {
	FormatVersion int
	CPU           cpu.Snapshot
	MMIO          mmio.Snapshot
	Clock         clock.Snapshot
	RAM           [][]byte
	Mega          [2][]byte // Mega II banks $E0/$E1, the shadow-write targets
	Cards         []card.CardState
	Storage       Storage
}

// Target is the subset of machine.Machine's surface the snapshot package
// needs, satisfied by *machine.Machine. Defined here rather than imported
// to avoid a snapshot->machine->snapshot import cycle; machine provides
// Snapshot()/RestoreSnapshot() wrappers that hand this package exactly
// these pieces.
type Target struct {
	CPU    *cpu.State
	MMIO   *mmio.Register
	Clock  *clock.Timespec
	Store  RAMStore
	Slots  *card.Slots
	Drives [2]*iwm.Drive
	SPBus  *smartport.Bus
}

// RAMStore is the minimal memory.Store surface snapshot needs.
type RAMStore interface {
	RAMBanks() int
	RAMBank(bank uint8) []byte
	SetRAMBank(bank uint8, data []byte)
}

// Save packs t's state into the msgpack-encoded snapshot format.
func Save(t Target) ([]byte, error) {
	st := State{
		FormatVersion: Version,
		CPU:           t.CPU.Snapshot(),
		MMIO:          t.MMIO.Snapshot(),
		Clock:         t.Clock.Snapshot(),
	}
	banks := t.Store.RAMBanks()
	st.RAM = make([][]byte, banks)
	for b := 0; b < banks; b++ {
		src := t.Store.RAMBank(uint8(b))
		cp := make([]byte, len(src))
		copy(cp, src)
		st.RAM[b] = cp
	}
	for i, bank := range [2]uint8{0xE0, 0xE1} {
		src := t.Store.RAMBank(bank)
		cp := make([]byte, len(src))
		copy(cp, src)
		st.Mega[i] = cp
	}

	if t.Slots != nil {
		cards, err := t.Slots.Snapshot()
		if err != nil {
			return nil, gserr.Wrap(gserr.SaveFailed, "encoding card state", err)
		}
		st.Cards = cards
	}
	for i, d := range t.Drives {
		if d != nil {
			st.Storage.Drives[i] = d.Snapshot()
		}
	}
	if t.SPBus != nil {
		st.Storage.SmartPort = t.SPBus.Snapshot()
	}

	data, err := msgpack.Marshal(&st)
	if err != nil {
		return nil, gserr.Wrap(gserr.SaveFailed, "encoding snapshot", err)
	}
	return data, nil
}

// Load decodes data and restores it into t. The RAM bank count in the
// snapshot must match t.Store's; a mismatch (different RAM configuration
// than when the snapshot was taken) is reported as CorruptedSnapshot
// rather than silently truncated or zero-extended.
func Load(data []byte, t Target) error {
	var st State
	if err := msgpack.Unmarshal(data, &st); err != nil {
		return gserr.Wrap(gserr.CorruptedSnapshot, "decoding snapshot", err)
	}
	if st.FormatVersion != Version {
		return gserr.New(gserr.UnsupportedSnapshotVersion, "snapshot version mismatch")
	}
	if len(st.RAM) != t.Store.RAMBanks() {
		return gserr.New(gserr.CorruptedSnapshot, "snapshot RAM bank count does not match machine configuration")
	}

	t.CPU.Restore(st.CPU)
	t.MMIO.Restore(st.MMIO)
	t.Clock.Restore(st.Clock)
	for b, bank := range st.RAM {
		t.Store.SetRAMBank(uint8(b), bank)
	}
	for i, bank := range [2]uint8{0xE0, 0xE1} {
		t.Store.SetRAMBank(bank, st.Mega[i])
	}

	if t.Slots != nil {
		if err := t.Slots.Restore(st.Cards); err != nil {
			return err
		}
	}
	for i, d := range t.Drives {
		if d != nil {
			d.Restore(st.Storage.Drives[i])
		}
	}
	if t.SPBus != nil {
		t.SPBus.Restore(st.Storage.SmartPort)
	}
	return nil
}
