package adb

import "testing"

func TestKeyFIFOOrdersFirstInFirstOut(t *testing.T) {
	c := New()
	c.KeyDown(0x20)
	c.KeyDown(0x21)
	c.WriteCommand(0x00)
	if v := c.ReadStatus(); v != 0x20 {
		t.Fatalf("got %02x, want 20", v)
	}
	if v := c.ReadStatus(); v != 0x21 {
		t.Fatalf("got %02x, want 21", v)
	}
}

func TestKeyUpClearsPressedSetAndRaisesIRQ(t *testing.T) {
	c := New()
	irqs := 0
	c.SetIRQSink(func() { irqs++ })
	c.KeyDown(0x30)
	if !c.PhysicallyDown(0x30) {
		t.Fatalf("expected key 0x30 to be marked down")
	}
	c.KeyUp(0x30)
	if c.PhysicallyDown(0x30) {
		t.Fatalf("expected key 0x30 to be cleared after KeyUp")
	}
	if irqs != 1 {
		t.Fatalf("expected one IRQ from KeyUp, got %d", irqs)
	}
}

func TestReadKeyReportsStrobeUntilCleared(t *testing.T) {
	c := New()
	c.KeyDown(0x35)
	if v := c.ReadKey(); v != 0x35|0x80 {
		t.Fatalf("got %02x, want b5 (key with strobe)", v)
	}
	if v := c.ClearStrobe(); v&0x80 == 0 {
		t.Fatalf("any-key-down bit should be set while the key is held")
	}
	if v := c.ReadKey(); v != 0x35 {
		t.Fatalf("got %02x, want 35 (strobe cleared)", v)
	}
	c.KeyUp(0x35)
	if v := c.ClearStrobe(); v&0x80 != 0 {
		t.Fatalf("any-key-down bit should clear once no key is held")
	}
}

func TestMouseDeltaAccumulatesAndClampsAt7Bit(t *testing.T) {
	c := New()
	c.MouseMove(100, -200, false)
	x, y := c.ReadMouse()
	if x&0x7F != 63 {
		t.Fatalf("x delta should clamp to +63, got %d", x&0x7F)
	}
	if y&0x7F != 64 {
		t.Fatalf("y delta should clamp to -64 (0x40), got %d", y&0x7F)
	}
}

func TestSRQPendingClearsAfterReadMouse(t *testing.T) {
	c := New()
	c.MouseMove(1, 1, false)
	if !c.SRQPending() {
		t.Fatalf("expected SRQ pending after mouse motion")
	}
	c.ReadMouse()
	if c.SRQPending() {
		t.Fatalf("expected SRQ cleared after ReadMouse")
	}
}
