/*
   gsx - Event scheduler.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a copy
   of this software and associated documentation files (the "Software"), to deal
   in the Software without restriction, including without limitation the rights
   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
   copies of the Software, and to permit persons to whom the Software is
   furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
   SOFTWARE.

*/

// Package event is a delta-queued timer list: every pending event stores the
// number of clock units remaining relative to the event ahead of it, so
// Advance only ever touches the head. Used for things that fire after a
// fixed number of emulated clock units but aren't worth a full device poll
// every tick; the machine currently schedules only the IWM motor-off
// spindown here.
package event

// Callback invoked when an event's delay expires. iarg is the value the
// event was registered with (a drive index, oscillator number, and so on).
type Callback func(iarg int)

// Owner identifies the subsystem that registered an event, so it can later
// be canceled without needing a pointer back to the List.
type Owner int

type Event struct {
	time int      // clock units remaining relative to the event ahead of it
	who  Owner    // subsystem that owns this event
	cb   Callback // function to call when the event fires
	iarg int      // argument passed to cb
	prev *Event
	next *Event
}

// List is a single chain of pending events, owned by one Machine.
type List struct {
	head *Event
	tail *Event
}

// Add schedules cb to run after delay clock units. delay == 0 runs cb
// immediately and does not queue anything.
func (l *List) Add(who Owner, cb Callback, delay int, iarg int) {
	if delay <= 0 {
		cb(iarg)
		return
	}

	ev := &Event{who: who, cb: cb, time: delay, iarg: iarg}

	evptr := l.head
	if evptr == nil {
		l.head = ev
		l.tail = ev
		return
	}

	for evptr != nil {
		if ev.time <= evptr.time {
			evptr.time -= ev.time
			ev.prev = evptr.prev
			ev.next = evptr
			evptr.prev = ev
			if ev.prev != nil {
				ev.prev.next = ev
			} else {
				l.head = ev
			}
			return
		}
		ev.time -= evptr.time
		evptr = evptr.next
	}

	ev.prev = l.tail
	l.tail.next = ev
	l.tail = ev
}

// Cancel removes the first pending event owned by who with the matching
// iarg. No-op if no such event is queued.
func (l *List) Cancel(who Owner, iarg int) {
	evptr := l.head
	for evptr != nil {
		if evptr.who == who && evptr.iarg == iarg {
			nxt := evptr.next
			if nxt != nil {
				nxt.time += evptr.time
				nxt.prev = evptr.prev
			} else {
				l.tail = evptr.prev
			}
			if evptr.prev != nil {
				evptr.prev.next = evptr.next
			} else {
				l.head = evptr.next
			}
			return
		}
		evptr = evptr.next
	}
}

// Pending reports whether any event is queued.
func (l *List) Pending() bool {
	return l.head != nil
}

// Advance moves the clock forward by t units, firing every event whose
// delay has expired. A callback that re-registers an event for the same
// owner/iarg (e.g. a recurring VBL tick) is safe to call from within cb.
func (l *List) Advance(t int) {
	evptr := l.head
	if evptr == nil {
		return
	}
	evptr.time -= t
	for evptr != nil && evptr.time <= 0 {
		l.head = evptr.next
		if l.head != nil {
			l.head.prev = nil
			l.head.time += evptr.time // carry the overshoot to the next event
		} else {
			l.tail = nil
		}
		evptr.cb(evptr.iarg)
		evptr = l.head
	}
}
