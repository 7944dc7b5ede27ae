/*
   gsx - Clock coordinator (Timespec).

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

// Package clock tracks the single monotonic tick counter (ts) that keeps the
// fast FPI bus and the slow Mega II bus in lockstep, per spec.md §4.1. One
// shared clock unit: a fast (FPI, 2.8MHz) cycle is 5 units, a slow (Mega II,
// 1MHz) cycle is 7 units, and every 65th slow cycle is stretched by one
// 7MHz unit to reproduce the 14.318MHz / 912-cycles-per-NTSC-line relation.
package clock

const (
	FastCycle   = 5 // one FPI (2.8MHz) cycle, in shared clock units
	SlowCycle   = 7 // one Mega II (1MHz) PHI0 cycle, in shared clock units
	StretchUnit = 1 // extra 7MHz unit applied to the 65th slow cycle

	// ScanlineSlowSteps is the number of slow steps per scanline before
	// the stretch cycle recurs (912 FPI-equivalent cycles / 14 per
	// stretched step rounds to a stretch every 65 slow steps).
	ScanlineSlowSteps = 65
)

// Timespec is the shared clock. It has no process-wide state: one instance
// is owned by the Machine and borrowed by the CPU and device ticks for the
// duration of a step.
type Timespec struct {
	ts           uint64 // current tick, monotonically increasing
	tsNextPhi0   uint64 // next slow-bus (Mega II PHI0) edge, strictly > ts once synchronized
	scanlineCtr  int    // 0..64, counts slow steps since the last stretch
	currentSlow  uint64 // ts value of the most recent completed slow step
}

// New returns a Timespec with ts_next_phi0 initialized one slow cycle ahead
// of reset, satisfying the ts <= ts_next_phi0 invariant from the first call.
func New() *Timespec {
	return &Timespec{tsNextPhi0: SlowCycle}
}

// Ticks returns the current monotonic tick counter.
func (t *Timespec) Ticks() uint64 { return t.ts }

// NextPhi0 returns the next slow-bus edge.
func (t *Timespec) NextPhi0() uint64 { return t.tsNextPhi0 }

// CycleFast advances the clock by one FPI fast cycle. It does not
// synchronize to the slow bus edge.
func (t *Timespec) CycleFast() {
	t.ts += FastCycle
}

// CycleSlow advances the clock by one Mega II slow (PHI0) cycle. If ts is
// not already on a PHI0 edge it is first advanced to the next edge, then by
// one full slow step -- stretched by one 7MHz unit on the 65th step of the
// current scanline's worth of slow cycles, reproducing NTSC line timing.
func (t *Timespec) CycleSlow() {
	if t.ts > t.tsNextPhi0 || (t.tsNextPhi0-t.ts)%SlowCycle != 0 {
		for t.tsNextPhi0 < t.ts {
			t.tsNextPhi0 += SlowCycle
		}
		t.ts = t.tsNextPhi0
	}

	step := SlowCycle
	t.scanlineCtr++
	if t.scanlineCtr >= ScanlineSlowSteps {
		step += StretchUnit
		t.scanlineCtr = 0
	}

	t.currentSlow = t.ts
	t.ts += uint64(step)
	t.tsNextPhi0 = t.ts + SlowCycle
}

// CycleMemory advances the clock by the cycle appropriate to the bus a
// memory access targets. isMega2Access is true for accesses to Mega II
// space ($E0/$E1 banks, or bank 0/1 MMIO) which are always slow; fastRAM
// accesses are slow only when the caller reports the SPEED register
// selects 1MHz (slowSpeed).
func (t *Timespec) CycleMemory(isMega2Access, slowSpeed bool) {
	if isMega2Access || slowSpeed {
		t.CycleSlow()
		return
	}
	t.CycleFast()
}

// ScanlineWrapped reports whether the most recent CycleSlow call produced
// the stretch cycle (scanline counter wrapped from 64 back to 0).
func (t *Timespec) ScanlineWrapped() bool {
	return t.scanlineCtr == 0
}

// Reset returns the clock to its post-construction state.
func (t *Timespec) Reset() {
	*t = Timespec{tsNextPhi0: SlowCycle}
}

// Snapshot is the serializable clock state.
type Snapshot struct {
	Ts          uint64
	TsNextPhi0  uint64
	ScanlineCtr int
	CurrentSlow uint64
}

// Snapshot captures t's state.
func (t *Timespec) Snapshot() Snapshot {
	return Snapshot{Ts: t.ts, TsNextPhi0: t.tsNextPhi0, ScanlineCtr: t.scanlineCtr, CurrentSlow: t.currentSlow}
}

// Restore overwrites t's state from snap.
func (t *Timespec) Restore(snap Snapshot) {
	t.ts, t.tsNextPhi0 = snap.Ts, snap.TsNextPhi0
	t.scanlineCtr, t.currentSlow = snap.ScanlineCtr, snap.CurrentSlow
}
