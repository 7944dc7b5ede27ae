/*
   gsx - Video Graphics Controller scanline engine.

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

// Package video implements the VGC scanline/IRQ engine: mode flags,
// per-scanline advance driven by the shared clock, VBL and 1-second RTC
// IRQ assertion, and decode of each of the seven graphics modes into a
// host-consumable scanline buffer.
package video

const (
	ScanlinesPerFrame = 262
	VisibleScanlines  = 200
	BytesPerScanline  = 160 // super-hires: 160 bytes of pixel data per line
)

// Mode is the bitset of active graphics softswitches that together select
// one of the seven decode paths.
type Mode uint8

const (
	ModeText Mode = 1 << iota
	ModeMixed
	ModeHires
	ModeDoubleRes // 80COL: selects 80-column text, and gates double-resolution graphics together with ModeDHires
	ModeSuperHires
	ModeAltCharset
	ModeDHires // AN3/DHIRES: combined with ModeDoubleRes, selects double-lores/double-hires
)

// Frame is the double-buffered published output: one fully decoded frame
// of scanlines, published by Engine.Tick at each frame wrap. Host code
// only ever sees a published Frame, never the engine's in-progress one.
type Frame struct {
	Scanlines [ScanlinesPerFrame][BytesPerScanline]uint8
	Mode      Mode
	BorderColor uint8
}

// IRQSink receives scanline and one-second RTC IRQ assertions. The
// machine driver implements this and forwards into the CPU's PostIRQ.
type IRQSink interface {
	AssertIRQ()
}

// Engine advances one scanline at a time, driven by clock ticks rather
// than by wall-clock time, so it stays in lockstep with the CPU.
type Engine struct {
	scanline int
	mode     Mode

	scanlineIRQEnabled bool
	scanlineIRQLine    int
	vblIRQEnabled      bool
	oneSecIRQEnabled   bool
	oneSecCounter      int

	flashOn      bool // inverse-video flash state for text chars $40-$7F
	flashCounter int

	working   Frame
	published *Frame
}

func New() *Engine {
	e := &Engine{published: &Frame{}}
	return e
}

func (e *Engine) SetMode(m Mode, on bool) {
	if on {
		e.mode |= m
	} else {
		e.mode &^= m
	}
}

func (e *Engine) Mode() Mode { return e.mode }

// Published returns the last fully decoded frame; safe to read from the
// host thread without synchronization beyond the machine's own frame
// double-buffer swap (spec.md §5).
func (e *Engine) Published() *Frame { return e.published }

// EnableScanlineIRQ / EnableVBLIRQ / EnableOneSecondIRQ configure the three
// IRQ sources the VGC can raise.
func (e *Engine) EnableScanlineIRQ(line int, on bool) {
	e.scanlineIRQEnabled = on
	e.scanlineIRQLine = line
}
func (e *Engine) EnableVBLIRQ(on bool)       { e.vblIRQEnabled = on }
func (e *Engine) EnableOneSecondIRQ(on bool) { e.oneSecIRQEnabled = on }

// ArmScanlineIRQ toggles the global scan-line interrupt enable without
// disturbing which line is armed.
func (e *Engine) ArmScanlineIRQ(on bool) { e.scanlineIRQEnabled = on }

// Tick advances one scanline, decoding it via read (a borrowed bus
// accessor valid only for the duration of this call) and raising any IRQ
// whose condition the new scanline satisfies. At the end of VBL the
// working frame is swapped into Published.
func (e *Engine) Tick(read func(bank uint8, addr uint16) uint8, irq IRQSink) {
	e.decodeScanline(read)

	if e.scanlineIRQEnabled && e.scanline == e.scanlineIRQLine {
		irq.AssertIRQ()
	}

	e.scanline++
	if e.scanline >= ScanlinesPerFrame {
		e.scanline = 0
		if e.vblIRQEnabled {
			irq.AssertIRQ()
		}
		e.working.Mode = e.mode
		published := e.working
		e.published = &published

		e.flashCounter++
		if e.flashCounter >= flashHalfPeriodFrames {
			e.flashCounter = 0
			e.flashOn = !e.flashOn
		}

		e.oneSecCounter++
		if e.oneSecCounter >= 60 {
			e.oneSecCounter = 0
			if e.oneSecIRQEnabled {
				irq.AssertIRQ()
			}
		}
	}
}

// ScanlineIndex reports the scanline about to be ticked.
func (e *Engine) ScanlineIndex() int { return e.scanline }

// mixedTextStartLine is the scanline at which MIXED mode switches a
// graphics screen over to the bottom four rows of text (rows 20-23, each
// 8 scanlines tall, within the 192-line classic display).
const mixedTextStartLine = 160

// flashHalfPeriodFrames is the number of VBL wraps between flash-state
// toggles: roughly 2Hz at the 60Hz VBL rate.
const flashHalfPeriodFrames = 30

func (e *Engine) decodeScanline(read func(bank uint8, addr uint16) uint8) {
	line := e.scanline
	if line >= VisibleScanlines {
		return
	}
	switch {
	case e.mode&ModeSuperHires != 0:
		e.decodeSuperHires(line, read)
	case e.mode&ModeText != 0:
		e.decodeTextRegion(line, read)
	case e.mode&ModeMixed != 0 && line >= mixedTextStartLine:
		e.decodeTextRegion(line, read)
	case e.mode&ModeHires != 0 && e.mode&ModeDoubleRes != 0 && e.mode&ModeDHires != 0:
		e.decodeDoubleHires(line, read)
	case e.mode&ModeHires != 0:
		e.decodeHires(line, read)
	case e.mode&ModeDoubleRes != 0 && e.mode&ModeDHires != 0:
		e.decodeDoubleLores(line, read)
	default:
		e.decodeLores(line, read)
	}
}

// decodeTextRegion picks the 40- or 80-column text decode depending on the
// 80COL switch; used both for full-screen TEXT mode and for the bottom
// text window of a MIXED graphics screen.
func (e *Engine) decodeTextRegion(line int, read func(bank uint8, addr uint16) uint8) {
	if e.mode&ModeDoubleRes != 0 {
		e.decodeText80(line, read)
		return
	}
	e.decodeText(line, read)
}

// applyFlash toggles the inverse-video flash range ($40-$7F) at
// flashHalfPeriodFrames; ALTCHARSET disables flashing in favor of the
// fixed MouseText glyphs that would otherwise occupy that range.
func (e *Engine) applyFlash(b uint8) uint8 {
	if e.mode&ModeAltCharset != 0 {
		return b
	}
	if b >= 0x40 && b <= 0x7F && e.flashOn {
		return b | 0x80
	}
	return b
}

// decodeHires decodes each byte's seven pixel bits into four output bytes
// (bit n lands in byte n/2), so $FF at $2000 on scanline 0 decodes as a
// run of 0xFF bytes (spec.md §8 testable property). The high bit is
// ignored: it does not shift the run or change its colour.
func (e *Engine) decodeHires(line int, read func(bank uint8, addr uint16) uint8) {
	base := hiresLineBase(line)
	for col := 0; col < 40; col++ {
		b := read(0x00, base+uint16(col))
		for bit := 0; bit < 7; bit++ {
			px := uint8(0)
			if b&(1<<uint(bit)) != 0 {
				px = 0xFF
			}
			e.working.Scanlines[line][col*4+bit/2] = px
		}
	}
}

func (e *Engine) decodeSuperHires(line int, read func(bank uint8, addr uint16) uint8) {
	base := uint16(0x2000) + uint16(line)*BytesPerScanline
	for col := 0; col < BytesPerScanline; col++ {
		e.working.Scanlines[line][col] = read(0x01, base+uint16(col))
	}
}

func (e *Engine) decodeText(line int, read func(bank uint8, addr uint16) uint8) {
	base := textLineBase(line / 8)
	for col := 0; col < 40; col++ {
		e.working.Scanlines[line][col] = e.applyFlash(read(0x00, base+uint16(col)))
	}
}

// decodeText80 interleaves aux and main bank character codes to produce
// the 80-column display's left-to-right column order (aux holds the even
// visible columns, main the odd ones).
func (e *Engine) decodeText80(line int, read func(bank uint8, addr uint16) uint8) {
	base := textLineBase(line / 8)
	for col := 0; col < 40; col++ {
		aux := e.applyFlash(read(0x01, base+uint16(col)))
		main := e.applyFlash(read(0x00, base+uint16(col)))
		e.working.Scanlines[line][col*2] = aux
		e.working.Scanlines[line][col*2+1] = main
	}
}

// decodeLores decodes the 40x48 lo-res block display: each text-page byte
// packs two 4-bit color indices, the low nibble for the upper four
// scanlines of its 8-line cell and the high nibble for the lower four.
func (e *Engine) decodeLores(line int, read func(bank uint8, addr uint16) uint8) {
	base := textLineBase(line / 8)
	upperHalf := line%8 < 4
	for col := 0; col < 40; col++ {
		b := read(0x00, base+uint16(col))
		nibble := loresNibble(b, upperHalf)
		for i := 0; i < 4; i++ {
			e.working.Scanlines[line][col*4+i] = nibble
		}
	}
}

// decodeDoubleLores doubles lo-res's horizontal resolution to 80 blocks by
// drawing the aux-bank nibble as the left half-block and the main-bank
// nibble as the right half-block of each column.
func (e *Engine) decodeDoubleLores(line int, read func(bank uint8, addr uint16) uint8) {
	base := textLineBase(line / 8)
	upperHalf := line%8 < 4
	for col := 0; col < 40; col++ {
		auxNibble := loresNibble(read(0x01, base+uint16(col)), upperHalf)
		mainNibble := loresNibble(read(0x00, base+uint16(col)), upperHalf)
		e.working.Scanlines[line][col*4] = auxNibble
		e.working.Scanlines[line][col*4+1] = auxNibble
		e.working.Scanlines[line][col*4+2] = mainNibble
		e.working.Scanlines[line][col*4+3] = mainNibble
	}
}

func loresNibble(b uint8, upperHalf bool) uint8 {
	if upperHalf {
		return b & 0x0F
	}
	return b >> 4
}

// decodeDoubleHires approximates double-hires by combining the aux and
// main hires bytes into a 14-bit dot group and splitting it into four
// 4-bit color indices per column; this is not a bit-exact NTSC colorburst
// decode, matching the same documented-approximation style as the rest of
// this engine's pixel paths.
func (e *Engine) decodeDoubleHires(line int, read func(bank uint8, addr uint16) uint8) {
	base := hiresLineBase(line)
	for col := 0; col < 40; col++ {
		aux := read(0x01, base+uint16(col))
		main := read(0x00, base+uint16(col))
		combined := uint16(aux&0x7F) | uint16(main&0x7F)<<7
		for group := 0; group < 4; group++ {
			e.working.Scanlines[line][col*4+group] = uint8((combined >> (uint(group) * 4)) & 0x0F)
		}
	}
}

// hiresLineBase computes the famously non-linear Apple II hires scanline
// address within a single 8KB hires page.
func hiresLineBase(line int) uint16 {
	third := line % 8
	group := (line / 8) % 8
	block := line / 64
	return 0x2000 + uint16(third)*0x0400 + uint16(group)*0x0080 + uint16(block)*0x0028
}

func textLineBase(row int) uint16 {
	third := row % 8
	group := row / 8
	return 0x0400 + uint16(third)*0x0080 + uint16(group)*0x0028
}
