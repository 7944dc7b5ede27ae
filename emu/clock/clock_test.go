package clock

import "testing"

func TestMonotonic(t *testing.T) {
	c := New()
	prev := c.Ticks()
	for i := 0; i < 200; i++ {
		if i%3 == 0 {
			c.CycleFast()
		} else {
			c.CycleSlow()
		}
		if c.Ticks() <= prev {
			t.Fatalf("clock did not advance monotonically at step %d", i)
		}
		prev = c.Ticks()
	}
}

func TestSlowNeverExceedsNextPhi0Invariant(t *testing.T) {
	c := New()
	for i := 0; i < 500; i++ {
		c.CycleSlow()
		if c.Ticks() > c.NextPhi0() {
			t.Fatalf("ts %d exceeded ts_next_phi0 %d", c.Ticks(), c.NextPhi0())
		}
	}
}

func TestStretchEverySixtyFifthSlowCycle(t *testing.T) {
	c := New()
	var last uint64
	stretched := 0
	for i := 0; i < ScanlineSlowSteps*3; i++ {
		before := c.Ticks()
		c.CycleSlow()
		delta := c.Ticks() - before
		if delta == SlowCycle+StretchUnit {
			stretched++
		} else if delta != SlowCycle {
			t.Fatalf("unexpected slow step delta %d", delta)
		}
		last = c.Ticks()
	}
	if stretched != 3 {
		t.Fatalf("expected 3 stretch cycles in %d slow steps, got %d", ScanlineSlowSteps*3, stretched)
	}
	_ = last
}

func TestCycleMemoryRoutesToCorrectBus(t *testing.T) {
	c := New()
	before := c.Ticks()
	c.CycleMemory(false, false)
	if got := c.Ticks() - before; got != FastCycle {
		t.Fatalf("fast-bank fast-speed access should cost %d units, got %d", FastCycle, got)
	}

	c2 := New()
	before = c2.Ticks()
	c2.CycleMemory(true, false)
	if got := c2.Ticks() - before; got < SlowCycle {
		t.Fatalf("mega2 access should cost at least %d units, got %d", SlowCycle, got)
	}
}
