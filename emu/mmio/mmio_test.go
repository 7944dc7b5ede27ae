package mmio

import (
	"testing"

	"github.com/open-iigs/gsx/emu/memory"
)

func TestLanguageCardRequiresDoubleRead(t *testing.T) {
	r := New()
	var bm memory.BankMap
	store := memory.NewStore(2, make([]byte, memory.BankSize))

	r.ReadIO(0x8B) // first read: only primes the latch
	r.Rebuild(&bm, store)
	d := bm.Page(memory.BankMain, 0xD0)
	if !d.ReadOnly {
		t.Fatalf("single $C08B read must not enable LC writes yet")
	}

	r.ReadIO(0x8B) // second consecutive read of the same pattern: enables write
	r.Rebuild(&bm, store)
	d = bm.Page(memory.BankMain, 0xD0)
	if d.WriteBank != memory.BankMain {
		t.Fatalf("double $C08B read should enable LC bank writes, got write bank %02x", d.WriteBank)
	}
	if d.ReadBank != memory.BankMain {
		t.Fatalf("$C08B selects LC read-enable, got read bank %02x", d.ReadBank)
	}
}

func Test80ColStorePage2RoutesTextPageToAux(t *testing.T) {
	r := New()
	var bm memory.BankMap
	store := memory.NewStore(2, make([]byte, memory.BankSize))

	r.WriteIO(0x01, 0) // SET80COL / 80STORE on
	r.WriteIO(0x55, 0) // PAGE2 on
	r.Rebuild(&bm, store)

	d := bm.Page(memory.BankMain, 0x04)
	if d.WriteBank != memory.BankShadowAux {
		t.Fatalf("80STORE+PAGE2 should route $0400 writes to the aux shadow bank, got bank %02x", d.WriteBank)
	}
}

func TestMMIOPageAlwaysDispatches(t *testing.T) {
	r := New()
	var bm memory.BankMap
	store := memory.NewStore(2, make([]byte, memory.BankSize))
	r.Rebuild(&bm, store)

	d := bm.Page(memory.BankMain, 0xC0)
	if !d.MMIORead || !d.MMIOWrite {
		t.Fatalf("page $C0 must always be MMIO-flagged")
	}
}

func TestShadowedHiresWriteMirrorsToShadowBank(t *testing.T) {
	r := New()
	var bm memory.BankMap
	store := memory.NewStore(2, make([]byte, memory.BankSize))
	r.Rebuild(&bm, store)

	d := bm.Page(memory.BankMain, 0x20)
	if d.WriteBank != memory.BankShadowMain {
		t.Fatalf("hires page write should shadow to bank E0, got %02x", d.WriteBank)
	}
}
