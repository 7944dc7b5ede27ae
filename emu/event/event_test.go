package event

import "testing"

const (
	ownerIWM Owner = iota
	ownerDOC
)

func TestAddFiresAfterDelay(t *testing.T) {
	var l List
	fired := false
	l.Add(ownerIWM, func(iarg int) { fired = true }, 5, 0)

	l.Advance(4)
	if fired {
		t.Fatal("event fired early")
	}
	l.Advance(1)
	if !fired {
		t.Fatal("event did not fire")
	}
}

func TestAddZeroDelayRunsImmediately(t *testing.T) {
	var l List
	ran := false
	l.Add(ownerIWM, func(iarg int) { ran = true }, 0, 0)
	if !ran {
		t.Fatal("zero delay callback should run synchronously")
	}
	if l.Pending() {
		t.Fatal("zero delay event should not be queued")
	}
}

func TestOrderingAcrossMultipleEvents(t *testing.T) {
	var l List
	var order []int
	l.Add(ownerIWM, func(iarg int) { order = append(order, iarg) }, 10, 1)
	l.Add(ownerDOC, func(iarg int) { order = append(order, iarg) }, 3, 2)
	l.Add(ownerDOC, func(iarg int) { order = append(order, iarg) }, 20, 3)

	l.Advance(3)
	l.Advance(7)
	l.Advance(10)

	want := []int{2, 1, 3}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestCancelRemovesPendingEvent(t *testing.T) {
	var l List
	fired := false
	l.Add(ownerIWM, func(iarg int) { fired = true }, 5, 42)
	l.Cancel(ownerIWM, 42)
	l.Advance(10)
	if fired {
		t.Fatal("canceled event fired")
	}
}

func TestCancelPreservesFollowingEventTiming(t *testing.T) {
	var l List
	var secondFired bool
	l.Add(ownerIWM, func(iarg int) {}, 5, 1)
	l.Add(ownerDOC, func(iarg int) { secondFired = true }, 10, 2)
	l.Cancel(ownerIWM, 1)

	l.Advance(9)
	if secondFired {
		t.Fatal("second event fired too early after cancel")
	}
	l.Advance(1)
	if !secondFired {
		t.Fatal("second event should fire at its original absolute time")
	}
}
