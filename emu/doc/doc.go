/*
   gsx - Ensoniq DOC 5503 wavetable oscillator engine.

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

// Package doc implements the Ensoniq DOC 5503: 32 wavetable oscillators
// over a shared 64KB sound RAM, 24-bit phase accumulators, halt, free-run
// and one-shot playback, and per-oscillator IRQ latches reported lowest
// number first. The sync/swap control bit is stored in Ctrl but has no
// effect on playback.
package doc

const (
	OscillatorCount = 32
	SoundRAMSize    = 65536
)

// Mode bits for an oscillator's control register.
const (
	CtrlHalt uint8 = 1 << iota
	CtrlOneShot
	CtrlSyncOrSwap // meaning depends on the adjacent oscillator's pairing
	CtrlIRQEnable
	CtrlResMask = 0xF0 // resolution/output-channel select, upper nibble
)

// Oscillator is one of the 32 wavetable voices.
type Oscillator struct {
	FreqLo, FreqHi uint8 // 16-bit frequency word, accumulator step per tick
	VolumeReg      uint8
	Ctrl           uint8
	Data           uint8 // last sample fetched, also the register CPU reads
	TableStart     uint8 // wavetable base page within sound RAM
	TableSize      uint8 // log2 table size, encoded per hardware convention

	accumulator uint32 // 24-bit phase accumulator
	irqPending  bool
}

func (o *Oscillator) halted() bool    { return o.Ctrl&CtrlHalt != 0 }
func (o *Oscillator) oneShot() bool   { return o.Ctrl&CtrlOneShot != 0 }
func (o *Oscillator) irqEnabled() bool { return o.Ctrl&CtrlIRQEnable != 0 }

// Engine owns all 32 oscillators, the shared sound RAM they read
// wavetable data from, and the per-oscillator IRQ latches the CPU reads
// through the sound GLU's $E0 register.
type Engine struct {
	osc [OscillatorCount]Oscillator
	ram [SoundRAMSize]uint8

	oscEnableCount uint8 // $E1 register: (count+1)*2 oscillators active
	globalCtrl     uint8

	irqSink func()
}

func New() *Engine {
	e := &Engine{oscEnableCount: 0}
	return e
}

func (e *Engine) SetIRQSink(f func()) { e.irqSink = f }

func (e *Engine) ReadRAM(addr uint16) uint8  { return e.ram[addr] }
func (e *Engine) WriteRAM(addr uint16, v uint8) { e.ram[addr] = v }

// ReadOscRegister and WriteOscRegister implement the $C030-$C03F family's
// indirect oscillator register window: the host selects an oscillator and
// register via the address, matching the real DOC's register map.
func (e *Engine) ReadOscRegister(osc int, reg uint8) uint8 {
	if osc < 0 || osc >= OscillatorCount {
		return 0xFF
	}
	o := &e.osc[osc]
	switch reg {
	case 0x00:
		return o.FreqLo
	case 0x01:
		return o.FreqHi
	case 0x02:
		return o.VolumeReg
	case 0x03:
		return o.Data
	case 0x04:
		return o.TableStart
	case 0x05:
		return o.Ctrl
	case 0x06:
		return o.TableSize
	default:
		return 0xFF
	}
}

func (e *Engine) WriteOscRegister(osc int, reg uint8, v uint8) {
	if osc < 0 || osc >= OscillatorCount {
		return
	}
	o := &e.osc[osc]
	switch reg {
	case 0x00:
		o.FreqLo = v
	case 0x01:
		o.FreqHi = v
	case 0x02:
		o.VolumeReg = v
	case 0x04:
		o.TableStart = v
	case 0x05:
		wasHalted := o.halted()
		o.Ctrl = v
		if wasHalted && !o.halted() {
			o.accumulator = 0
		}
	case 0x06:
		o.TableSize = v
	}
}

// ActiveOscillators returns how many of the 32 oscillators are enabled,
// per the (count+1)*2 encoding of the $E1 register.
func (e *Engine) ActiveOscillators() int {
	return (int(e.oscEnableCount) + 1) * 2
}

func (e *Engine) SetActiveOscillatorCount(raw uint8) { e.oscEnableCount = raw }

// PendingIRQOscillator returns the lowest-numbered oscillator with a
// latched IRQ, or -1 if none are pending; matches the DOC's single shared
// IRQ line with a per-oscillator status register ($E0).
func (e *Engine) PendingIRQOscillator() int {
	for i := range e.osc {
		if e.osc[i].irqPending {
			return i
		}
	}
	return -1
}

func (e *Engine) AckIRQ(osc int) {
	if osc >= 0 && osc < OscillatorCount {
		e.osc[osc].irqPending = false
	}
}

// Tick advances every active oscillator's phase accumulator by one
// sample period and mixes the result; called once per DOC sample period
// from the machine driver's per-cycle device tick order (spec.md §5),
// after the IWM bit shift and before ADB polling.
func (e *Engine) Tick() [2]int16 {
	active := e.ActiveOscillators()
	var left, right int32

	for i := 0; i < active; i++ {
		o := &e.osc[i]
		if o.halted() {
			continue
		}

		freq := uint32(o.FreqHi)<<8 | uint32(o.FreqLo)
		tableSizeBytes := uint32(256) << (o.TableSize & 0x07)
		o.accumulator += freq
		if o.accumulator >= tableSizeBytes<<8 {
			if o.oneShot() {
				o.accumulator = tableSizeBytes << 8
				o.Ctrl |= CtrlHalt
				e.raiseIRQ(i)
				continue
			}
			o.accumulator %= tableSizeBytes << 8
		}

		sampleAddr := uint16(o.TableStart)<<8 + uint16(o.accumulator>>8)
		sample := e.ram[sampleAddr]
		o.Data = sample

		// A zero wavetable byte is the DOC's end-of-sample marker: the
		// oscillator halts whatever its mode, and latches its IRQ if IE is set.
		if sample == 0 {
			o.Ctrl |= CtrlHalt
			e.raiseIRQ(i)
			continue
		}

		signed := int32(sample) - 128
		weighted := signed * int32(o.VolumeReg)
		if i%2 == 0 {
			left += weighted
		} else {
			right += weighted
		}
	}

	return [2]int16{clampSample(left), clampSample(right)}
}

// raiseIRQ latches the oscillator's IRQ flag and asserts the shared IRQ
// line, both gated on the oscillator's IE bit.
func (e *Engine) raiseIRQ(osc int) {
	o := &e.osc[osc]
	if !o.irqEnabled() {
		return
	}
	o.irqPending = true
	if e.irqSink != nil {
		e.irqSink()
	}
}

func clampSample(v int32) int16 {
	v >>= 6
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
