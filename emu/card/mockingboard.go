/*
   gsx - Mockingboard sound card (dual AY-3-8910 PSG register files).

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

package card

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/open-iigs/gsx/emu/gserr"
)

// psg holds one AY-3-8910's 16-register file, addressed through the
// classic BDIR/BC1-latched register-select-then-data protocol.
type psg struct {
	regs     [16]uint8
	selected uint8
}

func (p *psg) selectRegister(r uint8) { p.selected = r & 0x0F }
func (p *psg) writeData(v uint8)      { p.regs[p.selected] = v }
func (p *psg) readData() uint8        { return p.regs[p.selected] }

// Mockingboard is a two-PSG sound card occupying $C0n0-$C0nF: the low
// nibble selects PSG A or B and whether the access targets the register-
// select latch or the data port, matching the card's 6522 VIA addressing.
type Mockingboard struct {
	a, b psg
}

func NewMockingboard() *Mockingboard { return &Mockingboard{} }

func (m *Mockingboard) Name() string { return "mockingboard" }
func (m *Mockingboard) ROM() []byte  { return nil }

func (m *Mockingboard) ReadIO(addr uint8) uint8 {
	switch addr & 0x0F {
	case 0x01:
		return m.a.readData()
	case 0x09:
		return m.b.readData()
	default:
		return 0xFF
	}
}

func (m *Mockingboard) WriteIO(addr uint8, v uint8) {
	switch addr & 0x0F {
	case 0x00:
		m.a.selectRegister(v)
	case 0x01:
		m.a.writeData(v)
	case 0x08:
		m.b.selectRegister(v)
	case 0x09:
		m.b.writeData(v)
	}
}

type mockingboardState struct {
	ARegs     [16]uint8
	ASelected uint8
	BRegs     [16]uint8
	BSelected uint8
}

// SnapshotState implements Snapshotter.
func (m *Mockingboard) SnapshotState() ([]byte, error) {
	data, err := msgpack.Marshal(mockingboardState{
		ARegs: m.a.regs, ASelected: m.a.selected,
		BRegs: m.b.regs, BSelected: m.b.selected,
	})
	if err != nil {
		return nil, gserr.Wrap(gserr.SaveFailed, "encoding mockingboard state", err)
	}
	return data, nil
}

// RestoreState implements Snapshotter.
func (m *Mockingboard) RestoreState(data []byte) error {
	var st mockingboardState
	if err := msgpack.Unmarshal(data, &st); err != nil {
		return gserr.Wrap(gserr.CorruptedSnapshot, "decoding mockingboard state", err)
	}
	m.a.regs, m.a.selected = st.ARegs, st.ASelected
	m.b.regs, m.b.selected = st.BRegs, st.BSelected
	return nil
}
