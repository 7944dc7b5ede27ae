package snapshot_test

import (
	"testing"

	"github.com/open-iigs/gsx/emu/machine"
)

// minimalROM returns a ROM image filled with NOPs ($EA), with the reset
// vector pointing at $D000 -- language-card-disabled bank 0 reads of
// $D000-$FFFF route to this same ROM image, so a NOP loop runs forever
// without ever touching RAM (which starts zeroed, i.e. BRK).
func minimalROM() []byte {
	rom := make([]byte, 0x20000) // 128KB, two ROM banks ($FE/$FF)
	for i := range rom {
		rom[i] = 0xEA // NOP
	}
	rom[0xFFFC] = 0x00
	rom[0xFFFD] = 0xD0
	return rom
}

type traceEntry struct {
	pc, a, x, y uint16
	p           uint8
}

func traceFor(t *testing.T, m *machine.Machine, n int) []traceEntry {
	t.Helper()
	out := make([]traceEntry, n)
	for i := 0; i < n; i++ {
		c := m.CPU()
		out[i] = traceEntry{pc: c.PC, a: c.A, x: c.X, y: c.Y, p: c.P}
		m.Step()
	}
	return out
}

// TestSnapshotRoundTripPreservesTrace matches spec.md §8's snapshot
// property: saving, then loading into a fresh machine built from the same
// configuration, must reproduce the same (PC, A, X, Y, P) trace for the
// next N steps as the original machine would have produced.
func TestSnapshotRoundTripPreservesTrace(t *testing.T) {
	rom := minimalROM()

	src, err := machine.New(machine.Config{RAMBanks: 2, ROM: rom})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		src.Step()
	}

	data, err := src.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	wantTrace := traceFor(t, src, 20)

	dst, err := machine.New(machine.Config{RAMBanks: 2, ROM: rom})
	if err != nil {
		t.Fatalf("New (dst): %v", err)
	}
	if err := dst.RestoreSnapshot(data); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}

	gotTrace := make([]traceEntry, 20)
	for i := 0; i < 20; i++ {
		c := dst.CPU()
		gotTrace[i] = traceEntry{pc: c.PC, a: c.A, x: c.X, y: c.Y, p: c.P}
		dst.Step()
	}

	for i := range wantTrace {
		if gotTrace[i] != wantTrace[i] {
			t.Fatalf("trace[%d] = %+v, want %+v", i, gotTrace[i], wantTrace[i])
		}
	}
}

// TestLoadRejectsBadData checks that input that does not decode as a
// snapshot is rejected rather than decoded into garbage state.
func TestLoadRejectsBadData(t *testing.T) {
	m, err := machine.New(machine.Config{RAMBanks: 1, ROM: minimalROM()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.RestoreSnapshot([]byte("not a snapshot")); err == nil {
		t.Fatalf("RestoreSnapshot accepted garbage input")
	}
}

// TestSnapshotRejectsRAMBankMismatch checks that restoring a snapshot
// taken on a differently-sized machine is reported as corrupt rather than
// silently truncating or zero-extending RAM.
func TestSnapshotRejectsRAMBankMismatch(t *testing.T) {
	rom := minimalROM()
	small, err := machine.New(machine.Config{RAMBanks: 1, ROM: rom})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := small.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	big, err := machine.New(machine.Config{RAMBanks: 2, ROM: rom})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := big.RestoreSnapshot(data); err == nil {
		t.Fatalf("RestoreSnapshot accepted mismatched RAM bank count")
	}
}
