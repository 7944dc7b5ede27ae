package iwm

import (
	"encoding/binary"
	"testing"

	"github.com/open-iigs/gsx/emu/disk"
)

func buildMinimalWOZ() []byte {
	var buf []byte
	buf = append(buf, []byte("WOZ2")...)
	buf = append(buf, 0xFF, 0x0A, 0x0D, 0x0A, 0, 0, 0, 0)

	info := make([]byte, 8)
	info[0] = 2
	info[1] = 1
	chunk := func(id string, body []byte) []byte {
		h := make([]byte, 8)
		copy(h, id)
		binary.LittleEndian.PutUint32(h[4:8], uint32(len(body)))
		return append(h, body...)
	}
	buf = append(buf, chunk("INFO", info)...)

	tmap := make([]byte, 160)
	for i := range tmap {
		tmap[i] = 0xFF
	}
	tmap[0] = 0
	buf = append(buf, chunk("TMAP", tmap)...)

	trkEntry := make([]byte, 8)
	binary.LittleEndian.PutUint16(trkEntry[0:2], 3)
	binary.LittleEndian.PutUint16(trkEntry[2:4], 1)
	binary.LittleEndian.PutUint32(trkEntry[4:8], 512*8)
	trks := append([]byte{}, trkEntry...)
	trks = append(trks, make([]byte, 160*8-8)...)
	trackData := make([]byte, 4*512)
	for i := range trackData[3*512 : 4*512] {
		trackData[3*512+i] = 0xAA
	}
	trks = append(trks, trackData...)
	buf = append(buf, chunk("TRKS", trks)...)

	return buf
}

// TestPhaseSteppingAdvancesTwoQuarterTracks matches spec.md §8's "Disk
// insert + seek" scenario: stepping phases 0->1->2->3 in sequence should
// advance qtrTrackIndex by 2 quarter-tracks.
func TestPhaseSteppingAdvancesTwoQuarterTracks(t *testing.T) {
	img, err := disk.LoadWOZ(buildMinimalWOZ())
	if err != nil {
		t.Fatalf("LoadWOZ: %v", err)
	}
	d := NewDrive(false)
	d.Insert(img)
	c := NewController(d, NewDrive(false))

	c.WritePhase(0x09) // motor on ($C0E9, phase-motor line)

	start := d.qtrTrackIndex
	c.WritePhase(0x01) // phase 0 on
	c.WritePhase(0x03) // phase 1 on
	c.WritePhase(0x05) // phase 2 on
	c.WritePhase(0x07) // phase 3 on

	got := d.qtrTrackIndex - start
	if got != 2 {
		t.Fatalf("qtrTrackIndex advanced by %d, want 2", got)
	}
}

func TestWriteDataThenReadBackViaTick(t *testing.T) {
	img, err := disk.LoadWOZ(buildMinimalWOZ())
	if err != nil {
		t.Fatalf("LoadWOZ: %v", err)
	}
	d := NewDrive(false)
	d.Insert(img)
	c := NewController(d, NewDrive(false))

	c.WritePhase(0x09) // motor on
	c.WritePhase(0x0D) // Q6=1
	c.WritePhase(0x0F) // Q7=1,Q6=1 -> write data mode
	if c.Mode() != ModeWriteData {
		t.Fatalf("mode = %v, want ModeWriteData", c.Mode())
	}
	c.WriteData(0xD5)

	v, ok := img.ReadNibble(0, 0)
	if !ok || v != 0xD5 {
		t.Fatalf("got (%02x,%v), want (d5,true)", v, ok)
	}
}

func TestReadStatusReflectsWriteProtect(t *testing.T) {
	d := NewDrive(false)
	d.writeProt = true
	c := NewController(d, NewDrive(false))

	c.WritePhase(0x0D) // Q7=0,Q6=1 -> read status
	if c.Mode() != ModeReadStatus {
		t.Fatalf("mode = %v, want ModeReadStatus", c.Mode())
	}
	if c.ReadData()&0x80 == 0 {
		t.Fatalf("status byte should report write-protect bit set")
	}
}

func TestSmartPortResetDetectedOn35InchPhaseLines(t *testing.T) {
	d35 := NewDrive(true)
	c := NewController(d35, NewDrive(false))

	c.WritePhase(0x01) // PH0 on
	c.WritePhase(0x05) // PH2 on
	if !c.SmartPortReset() {
		t.Fatalf("PH0+PH2 should decode as a SmartPort bus reset on a 3.5\" drive")
	}
	if c.SmartPortEnable() {
		t.Fatalf("PH0+PH2 should not also decode as a bus enable")
	}
}

func TestSmartPortResetIgnoredOn525InchDrive(t *testing.T) {
	d525 := NewDrive(false)
	c := NewController(d525, NewDrive(true))

	c.WritePhase(0x01)
	c.WritePhase(0x05)
	if c.SmartPortReset() {
		t.Fatalf("phase-line reset decode must not apply to a 5.25\" drive")
	}
}

func TestTickOnUninitializedTrackDoesNotPanic(t *testing.T) {
	img, err := disk.LoadWOZ(buildMinimalWOZ())
	if err != nil {
		t.Fatalf("LoadWOZ: %v", err)
	}
	d := NewDrive(false)
	d.Insert(img)
	c := NewController(d, NewDrive(false))

	c.WritePhase(0x09) // motor on
	d.qtrTrackIndex = 10 // track 5, never formatted by buildMinimalWOZ

	for i := 0; i < bitCellTicks+1; i++ {
		c.Tick()
	}
}
