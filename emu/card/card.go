/*
   gsx - Peripheral card slot framework.

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

// Package card is the 7-slot peripheral framework: each slot gets a
// $C0nx I/O register window and a $Cn00-$CnFF ROM page, dispatched by
// name so a snapshot can restore "whatever card was in slot 4" without
// the core knowing every card type in advance.
package card

import "github.com/open-iigs/gsx/emu/gserr"

// Card is the interface every slot occupant implements; it is also the
// mmio.Device contract (ReadIO/WriteIO), extended with identity and ROM.
type Card interface {
	Name() string
	ReadIO(addr uint8) uint8
	WriteIO(addr uint8, v uint8)
	ROM() []byte // up to 256 bytes mapped at $Cn00; nil if the card has none
}

// Slots holds the 7-slot framework's occupants, indexed 1-7 (slot 0 is
// reserved for the motherboard and never occupied by a card).
type Slots struct {
	cards [8]Card
}

func NewSlots() *Slots { return &Slots{} }

func (s *Slots) Insert(slot int, c Card) {
	if slot < 1 || slot > 7 {
		return
	}
	s.cards[slot] = c
}

func (s *Slots) Remove(slot int) {
	if slot >= 1 && slot <= 7 {
		s.cards[slot] = nil
	}
}

func (s *Slots) Card(slot int) Card {
	if slot < 1 || slot > 7 {
		return nil
	}
	return s.cards[slot]
}

// ReadROM returns the byte at page-relative addr within slot's $Cn00 ROM
// page, or 0xFF if the slot is empty or has no ROM at that offset.
func (s *Slots) ReadROM(slot int, addr uint8) uint8 {
	c := s.Card(slot)
	if c == nil {
		return 0xFF
	}
	rom := c.ROM()
	if int(addr) >= len(rom) {
		return 0xFF
	}
	return rom[addr]
}

// Names returns each occupied slot's card name, used by the snapshot
// format's `cards: [{name,card}]` array (spec.md §6).
func (s *Slots) Names() map[int]string {
	out := make(map[int]string)
	for i := 1; i <= 7; i++ {
		if s.cards[i] != nil {
			out[i] = s.cards[i].Name()
		}
	}
	return out
}

// Snapshotter is implemented by cards whose register state should round-
// trip through a machine snapshot. Cards with no mutable state (a pure ROM
// card, for instance) need not implement it.
type Snapshotter interface {
	SnapshotState() ([]byte, error)
	RestoreState([]byte) error
}

// CardState is one occupied slot's identity plus its own opaque,
// msgpack-encoded state blob, matching spec.md §6's `cards` top-level
// snapshot key.
type CardState struct {
	Slot  int
	Name  string
	State []byte
}

// Snapshot captures every occupied slot's name and, for cards implementing
// Snapshotter, their serialized state.
func (s *Slots) Snapshot() ([]CardState, error) {
	var out []CardState
	for slot := 1; slot <= 7; slot++ {
		c := s.cards[slot]
		if c == nil {
			continue
		}
		cs := CardState{Slot: slot, Name: c.Name()}
		if sn, ok := c.(Snapshotter); ok {
			data, err := sn.SnapshotState()
			if err != nil {
				return nil, err
			}
			cs.State = data
		}
		out = append(out, cs)
	}
	return out, nil
}

// Restore re-applies each snapshotted slot's serialized state against
// whatever card currently occupies that slot. The caller must have already
// AttachCard'd the same card types as when the snapshot was taken -- a
// snapshot never attaches a card itself, only restores one's state.
func (s *Slots) Restore(states []CardState) error {
	for _, cs := range states {
		c := s.Card(cs.Slot)
		if c == nil || c.Name() != cs.Name {
			return gserr.New(gserr.CorruptedSnapshot, "snapshot card slot does not match installed card")
		}
		if sn, ok := c.(Snapshotter); ok && len(cs.State) > 0 {
			if err := sn.RestoreState(cs.State); err != nil {
				return err
			}
		}
	}
	return nil
}
