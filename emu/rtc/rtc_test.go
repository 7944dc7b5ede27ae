package rtc

import "testing"

func TestBRAMWriteSetsDirtyAndRoundTrips(t *testing.T) {
	c := New()
	c.WriteCommand(0x80 | 0x10) // write BRAM[0]
	c.WriteData(0x42)
	if !c.Dirty {
		t.Fatalf("expected Dirty after BRAM write")
	}
	c.WriteCommand(0x10) // read BRAM[0]
	if v := c.ReadData(); v != 0x42 {
		t.Fatalf("got %02x, want 42", v)
	}
}

func TestOneSecondTickRaisesIRQWhenEnabled(t *testing.T) {
	c := New()
	fired := 0
	c.SetIRQSink(func() { fired++ })
	c.EnableIRQ(true)
	c.Tick(1_000_000, 1_000_000)
	if fired != 1 {
		t.Fatalf("expected one IRQ at the 1-second boundary, got %d", fired)
	}
	if c.SecondsSince1904 != 1 {
		t.Fatalf("expected seconds counter to advance, got %d", c.SecondsSince1904)
	}
}

func TestClockRegisterWriteReadRoundTrip(t *testing.T) {
	c := New()
	c.WriteCommand(0x80 | 0) // write byte 0 of the seconds register
	c.WriteData(0x7B)
	c.WriteCommand(0)
	if v := c.ReadData(); v != 0x7B {
		t.Fatalf("got %02x, want 7b", v)
	}
}
