/*
   gsx - Generic SmartPort hard-disk card.

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
	"github.com/open-iigs/gsx/emu/smartport"
)

// HardDisk is a minimal SmartPort hard-disk card: a command/unit/block
// register window at $C0n0-$C0n6 plus a 512-byte transfer buffer exposed
// through $C0n7 one byte at a time, backing onto a smartport.Bus.
type HardDisk struct {
	bus  *smartport.Bus
	unit uint8

	cmd       uint8
	block     uint32
	status    uint8
	buf       [512]uint8
	bufIndex  int
	pendingWr bool
}

func NewHardDisk(bus *smartport.Bus, unit uint8) *HardDisk {
	return &HardDisk{bus: bus, unit: unit}
}

func (h *HardDisk) Name() string { return "smartport-harddisk" }
func (h *HardDisk) ROM() []byte  { return nil }

func (h *HardDisk) ReadIO(addr uint8) uint8 {
	switch addr & 0x0F {
	case 0x06:
		return h.status
	case 0x07:
		if h.bufIndex >= len(h.buf) {
			return 0xFF
		}
		v := h.buf[h.bufIndex]
		h.bufIndex++
		return v
	default:
		return 0xFF
	}
}

func (h *HardDisk) WriteIO(addr uint8, v uint8) {
	switch addr & 0x0F {
	case 0x00:
		h.cmd = v
	case 0x01:
		h.block = (h.block &^ 0xFF) | uint32(v)
	case 0x02:
		h.block = (h.block &^ 0xFF00) | uint32(v)<<8
	case 0x03:
		h.block = (h.block &^ 0xFF0000) | uint32(v)<<16
	case 0x04:
		h.execute()
	case 0x07:
		if h.pendingWr && h.bufIndex < len(h.buf) {
			h.buf[h.bufIndex] = v
			h.bufIndex++
		}
	}
}

type hardDiskState struct {
	Cmd       uint8
	Block     uint32
	Status    uint8
	Buf       [512]uint8
	BufIndex  int
	PendingWr bool
}

// SnapshotState implements card.Snapshotter. The bus and unit number are
// fixed at construction and not part of the snapshot; only the command
// register window and transfer buffer round-trip.
func (h *HardDisk) SnapshotState() ([]byte, error) {
	data, err := msgpack.Marshal(hardDiskState{
		Cmd: h.cmd, Block: h.block, Status: h.status,
		Buf: h.buf, BufIndex: h.bufIndex, PendingWr: h.pendingWr,
	})
	if err != nil {
		return nil, gserr.Wrap(gserr.SaveFailed, "encoding harddisk state", err)
	}
	return data, nil
}

// RestoreState implements card.Snapshotter.
func (h *HardDisk) RestoreState(data []byte) error {
	var st hardDiskState
	if err := msgpack.Unmarshal(data, &st); err != nil {
		return gserr.Wrap(gserr.CorruptedSnapshot, "decoding harddisk state", err)
	}
	h.cmd, h.block, h.status = st.Cmd, st.Block, st.Status
	h.buf, h.bufIndex, h.pendingWr = st.Buf, st.BufIndex, st.PendingWr
	return nil
}

func (h *HardDisk) execute() {
	h.bufIndex = 0
	switch smartport.Command(h.cmd) {
	case smartport.CmdReadBlock:
		res := h.bus.Exchange(smartport.Packet{Command: smartport.CmdReadBlock, UnitNum: h.unit, Block: h.block})
		h.status = res.Status
		h.buf = res.Data
		h.pendingWr = false
	case smartport.CmdWriteBlock:
		h.pendingWr = true
		res := h.bus.Exchange(smartport.Packet{Command: smartport.CmdWriteBlock, UnitNum: h.unit, Block: h.block, Data: h.buf})
		h.status = res.Status
	default:
		res := h.bus.Exchange(smartport.Packet{Command: smartport.Command(h.cmd), UnitNum: h.unit, Block: h.block})
		h.status = res.Status
		h.buf = res.Data
	}
}
