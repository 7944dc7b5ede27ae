package card

import (
	"testing"

	"github.com/open-iigs/gsx/emu/disk"
	"github.com/open-iigs/gsx/emu/smartport"
)

func TestSlotsInsertAndReadROM(t *testing.T) {
	s := NewSlots()
	s.Insert(4, NewMockingboard())
	if s.Card(4) == nil {
		t.Fatalf("expected a card in slot 4")
	}
	if got := s.ReadROM(4, 0); got != 0xFF {
		t.Fatalf("mockingboard has no ROM, expected 0xFF floating read, got %02x", got)
	}
	if s.Card(5) != nil {
		t.Fatalf("expected slot 5 to remain empty")
	}
}

func TestMockingboardRegisterSelectAndData(t *testing.T) {
	m := NewMockingboard()
	m.WriteIO(0x00, 7)    // select PSG A register 7 (mixer)
	m.WriteIO(0x01, 0x3F) // write mixer value
	if got := m.ReadIO(0x01); got != 0x3F {
		t.Fatalf("got %02x, want 3f", got)
	}
}

func TestHardDiskCardReadBlockThroughSmartPort(t *testing.T) {
	data := make([]byte, 512*2)
	data[512] = 0x99
	img, err := disk.LoadProDOSBlocks(data)
	if err != nil {
		t.Fatalf("LoadProDOSBlocks: %v", err)
	}
	bus := smartport.NewBus()
	bus.Attach(1, img)

	hd := NewHardDisk(bus, 1)
	hd.WriteIO(0x01, 1) // block low byte = 1
	hd.WriteIO(0x00, uint8(smartport.CmdReadBlock))
	hd.WriteIO(0x04, 1) // execute
	if got := hd.ReadIO(0x07); got != 0x99 {
		t.Fatalf("got %02x, want 99", got)
	}
}

func TestSlotsNamesReportsOccupants(t *testing.T) {
	s := NewSlots()
	s.Insert(2, NewMockingboard())
	names := s.Names()
	if names[2] != "mockingboard" {
		t.Fatalf("got %q, want mockingboard", names[2])
	}
	if len(names) != 1 {
		t.Fatalf("expected exactly one occupied slot, got %d", len(names))
	}
}
