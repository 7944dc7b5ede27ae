package machineconfig

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	config "github.com/open-iigs/gsx/config/configparser"
)

func minimalROM() []byte {
	rom := make([]byte, 0x20000)
	for i := range rom {
		rom[i] = 0xEA
	}
	rom[0xFFFC] = 0x00
	rom[0xFFFD] = 0xD0
	return rom
}

func minimalWOZ() []byte {
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
	trks = append(trks, make([]byte, 4*512)...)
	buf = append(buf, chunk("TRKS", trks)...)

	return buf
}

// TestBuildFromConfigFile exercises the whole config->Machine path: a
// ROM/RAM/AUDIO/SLOT/DISK config file, parsed and assembled into a running
// Machine with a card attached and a floppy queued for insertion.
func TestBuildFromConfigFile(t *testing.T) {
	Reset()
	dir := t.TempDir()

	romPath := filepath.Join(dir, "rom.bin")
	if err := os.WriteFile(romPath, minimalROM(), 0o644); err != nil {
		t.Fatalf("write rom: %v", err)
	}
	diskPath := filepath.Join(dir, "disk1.woz")
	if err := os.WriteFile(diskPath, minimalWOZ(), 0o644); err != nil {
		t.Fatalf("write disk: %v", err)
	}

	cfgPath := filepath.Join(dir, "gsx.cfg")
	cfg := "ROM 0 path=\"" + romPath + "\"\n" +
		"RAM 0 banks=2\n" +
		"AUDIO 0 rate=44100 buffer=2048\n" +
		"SLOT 4 card=MOCKINGBOARD\n" +
		"DISK 0 image=\"" + diskPath + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := config.LoadConfigFile(cfgPath); err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}

	m, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m == nil {
		t.Fatalf("Build returned nil machine")
	}
	if m.DrainCommands() {
		t.Fatalf("DrainCommands signalled terminate on a queued CmdInsertDisk")
	}
}

// TestBuildRequiresROM checks that Build fails closed without a ROM line.
func TestBuildRequiresROM(t *testing.T) {
	Reset()
	if _, err := Build(); err == nil {
		t.Fatalf("Build succeeded with no ROM configured")
	}
}
