package smartport

import (
	"testing"

	"github.com/open-iigs/gsx/emu/disk"
)

func TestReadBlockReturnsDataWrittenEarlier(t *testing.T) {
	data := make([]byte, 512*4)
	data[512] = 0x55
	img, err := disk.LoadProDOSBlocks(data)
	if err != nil {
		t.Fatalf("LoadProDOSBlocks: %v", err)
	}

	bus := NewBus()
	bus.Attach(1, img)

	res := bus.Exchange(Packet{Command: CmdReadBlock, UnitNum: 1, Block: 1})
	if res.Status != StatusOK {
		t.Fatalf("status = %d, want 0", res.Status)
	}
	if res.Data[0] != 0x55 {
		t.Fatalf("got %02x, want 55", res.Data[0])
	}
}

func TestStatusOnUnknownUnitReportsNoDevice(t *testing.T) {
	bus := NewBus()
	res := bus.Exchange(Packet{Command: CmdStatus, UnitNum: 9})
	if res.Status != StatusNoDevice {
		t.Fatalf("status = %d, want StatusNoDevice", res.Status)
	}
}

func TestDecodeResetPhaseRequiresExactBitPattern(t *testing.T) {
	if !DecodeResetPhase(1 + 4) {
		t.Fatalf("phase 1+4 should decode as a bus reset")
	}
	for _, phase := range []uint8{0, 1, 4, 2, 8, 0x0F} {
		if DecodeResetPhase(phase) {
			t.Fatalf("phase %#x should not decode as a bus reset", phase)
		}
	}
}

func TestDecodeEnablePhaseRequiresBothBits(t *testing.T) {
	if !DecodeEnablePhase(2 | 8) {
		t.Fatalf("phase with PH1 and PH3 set should decode as a bus enable")
	}
	for _, phase := range []uint8{0, 2, 8, 1, 4, 1 + 4} {
		if DecodeEnablePhase(phase) {
			t.Fatalf("phase %#x should not decode as a bus enable", phase)
		}
	}
}

func TestWriteBlockRejectedOnWriteProtectedImage(t *testing.T) {
	data := make([]byte, 512*2)
	img, err := disk.LoadProDOSBlocks(data)
	if err != nil {
		t.Fatalf("LoadProDOSBlocks: %v", err)
	}
	img.WriteProt = true

	bus := NewBus()
	bus.Attach(1, img)
	res := bus.Exchange(Packet{Command: CmdWriteBlock, UnitNum: 1, Block: 0})
	if res.Status != StatusWriteProtected {
		t.Fatalf("status = %d, want StatusWriteProtected", res.Status)
	}
}
