package doc

import "testing"

func TestHaltedOscillatorProducesNoSamples(t *testing.T) {
	e := New()
	e.SetActiveOscillatorCount(0) // 2 active oscillators
	e.WriteOscRegister(0, 0x05, CtrlHalt)
	e.WriteOscRegister(1, 0x05, CtrlHalt)
	out := e.Tick()
	if out[0] != 0 || out[1] != 0 {
		t.Fatalf("got %v, want silence with every oscillator halted", out)
	}
}

func TestOneShotOscillatorHaltsAndRaisesIRQAtWrap(t *testing.T) {
	e := New()
	e.SetActiveOscillatorCount(0)
	irqCount := 0
	e.SetIRQSink(func() { irqCount++ })

	for addr := 0; addr < 256; addr++ {
		e.WriteRAM(uint16(addr), 0x80) // non-zero everywhere so only the wrap can halt
	}
	e.WriteOscRegister(0, 0x04, 0) // table start page 0
	e.WriteOscRegister(0, 0x06, 0) // table size 256 bytes
	e.WriteOscRegister(0, 0x00, 0xFF)
	e.WriteOscRegister(0, 0x01, 0xFF) // large frequency step to force fast wrap
	e.WriteOscRegister(0, 0x02, 0xFF) // full volume
	e.WriteOscRegister(0, 0x05, CtrlOneShot|CtrlIRQEnable)

	wrapped := false
	for i := 0; i < 300 && !wrapped; i++ {
		e.Tick()
		if e.osc[0].halted() {
			wrapped = true
		}
	}
	if !wrapped {
		t.Fatalf("expected one-shot oscillator to self-halt at table wrap")
	}
	if irqCount == 0 {
		t.Fatalf("expected one-shot wrap to raise an IRQ")
	}
}

// TestOneShotHaltsOnZeroSampleAndLatchesIRQ walks a one-shot oscillator
// through a short wavetable terminated by a zero byte: [80 90 A0 00].
// Emitting the zero sample must halt the oscillator and, with IE set,
// latch its IRQ flag.
func TestOneShotHaltsOnZeroSampleAndLatchesIRQ(t *testing.T) {
	e := New()
	e.SetActiveOscillatorCount(0)
	irqCount := 0
	e.SetIRQSink(func() { irqCount++ })

	for i, v := range []uint8{0x80, 0x90, 0xA0, 0x00} {
		e.WriteRAM(uint16(i), v)
	}
	e.WriteOscRegister(0, 0x04, 0) // pointer = 0
	e.WriteOscRegister(0, 0x06, 0) // resolution = 0, 256-byte table
	e.WriteOscRegister(0, 0x00, 0x00)
	e.WriteOscRegister(0, 0x01, 0x01) // frequency = 0x0100: one table byte per tick
	e.WriteOscRegister(0, 0x02, 0xFF)
	e.WriteOscRegister(0, 0x05, CtrlOneShot|CtrlIRQEnable)

	for i := 0; i < 8 && !e.osc[0].halted(); i++ {
		e.Tick()
	}
	if !e.osc[0].halted() {
		t.Fatalf("expected oscillator to halt on the zero wavetable byte")
	}
	if !e.osc[0].irqPending {
		t.Fatalf("expected the halted oscillator's IRQ flag to be latched")
	}
	if irqCount == 0 {
		t.Fatalf("expected the shared IRQ line to have been asserted")
	}
	if e.PendingIRQOscillator() != 0 {
		t.Fatalf("expected oscillator 0 to be the pending IRQ source")
	}
}

// TestOneShotWithoutIEHaltsSilently verifies the IE gate: the oscillator
// still halts on a zero sample, but no IRQ is latched or asserted.
func TestOneShotWithoutIEHaltsSilently(t *testing.T) {
	e := New()
	e.SetActiveOscillatorCount(0)
	irqCount := 0
	e.SetIRQSink(func() { irqCount++ })

	e.WriteRAM(0, 0x80)
	e.WriteOscRegister(0, 0x01, 0x01)
	e.WriteOscRegister(0, 0x05, CtrlOneShot)

	for i := 0; i < 8 && !e.osc[0].halted(); i++ {
		e.Tick()
	}
	if !e.osc[0].halted() {
		t.Fatalf("expected oscillator to halt on the zero wavetable byte")
	}
	if irqCount != 0 || e.PendingIRQOscillator() != -1 {
		t.Fatalf("IE clear: no IRQ should have been latched or asserted")
	}
}

func TestActiveOscillatorCountEncoding(t *testing.T) {
	e := New()
	e.SetActiveOscillatorCount(15)
	if e.ActiveOscillators() != 32 {
		t.Fatalf("got %d, want 32 for raw=15", e.ActiveOscillators())
	}
	e.SetActiveOscillatorCount(0)
	if e.ActiveOscillators() != 2 {
		t.Fatalf("got %d, want 2 for raw=0", e.ActiveOscillators())
	}
}
