package video

import "testing"

type fakeIRQ struct{ asserted int }

func (f *fakeIRQ) AssertIRQ() { f.asserted++ }

func TestHiresFullByteDecodesAsWhiteRun(t *testing.T) {
	mem := make(map[uint16]uint8)
	mem[hiresLineBase(0)] = 0xFF

	e := New()
	e.SetMode(ModeHires, true)
	irq := &fakeIRQ{}

	read := func(bank uint8, addr uint16) uint8 { return mem[addr] }
	e.Tick(read, irq)

	white := false
	for _, px := range e.working.Scanlines[0][:4] {
		if px == 0xFF {
			white = true
		}
	}
	if !white {
		t.Fatalf("expected a white run decoded from a $FF hires byte")
	}
}

func TestVBLIRQFiresAtFrameWrap(t *testing.T) {
	e := New()
	e.EnableVBLIRQ(true)
	irq := &fakeIRQ{}
	read := func(bank uint8, addr uint16) uint8 { return 0 }

	for i := 0; i < ScanlinesPerFrame; i++ {
		e.Tick(read, irq)
	}
	if irq.asserted == 0 {
		t.Fatalf("expected VBL IRQ to fire once per frame wrap")
	}
}

func TestScanlineIRQFiresOnConfiguredLine(t *testing.T) {
	e := New()
	e.EnableScanlineIRQ(50, true)
	irq := &fakeIRQ{}
	read := func(bank uint8, addr uint16) uint8 { return 0 }

	for i := 0; i <= 50; i++ {
		e.Tick(read, irq)
	}
	if irq.asserted != 1 {
		t.Fatalf("expected exactly one scanline IRQ by line 50, got %d", irq.asserted)
	}
}
