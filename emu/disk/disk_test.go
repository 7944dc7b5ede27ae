package disk

import (
	"encoding/binary"
	"testing"
)

func TestUninitializedTrackReportsNotInitialized(t *testing.T) {
	img := newImage(35)
	_, ok := img.ReadNibble(5, 0)
	if ok {
		t.Fatalf("track never written should report uninitialized")
	}
}

func TestWriteThenReadNibbleRoundTrip(t *testing.T) {
	img := newImage(35)
	img.WriteNibble(3, 10, 0xD5)
	v, ok := img.ReadNibble(3, 10)
	if !ok || v != 0xD5 {
		t.Fatalf("got (%02x,%v), want (d5,true)", v, ok)
	}
}

func TestLoadWOZRejectsBadMagic(t *testing.T) {
	_, err := LoadWOZ([]byte("not a woz file at all"))
	if err == nil {
		t.Fatalf("expected error for bad WOZ magic")
	}
}

func buildMinimalWOZ() []byte {
	var buf []byte
	buf = append(buf, []byte("WOZ2")...)
	buf = append(buf, 0xFF, 0x0A, 0x0D, 0x0A, 0, 0, 0, 0) // CRC + padding, contents unchecked

	info := make([]byte, 60) // a WOZ2 INFO chunk is 60 bytes
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
	binary.LittleEndian.PutUint16(trkEntry[0:2], 3) // start block 3
	binary.LittleEndian.PutUint16(trkEntry[2:4], 1) // 1 block = 512 bytes
	binary.LittleEndian.PutUint32(trkEntry[4:8], 512*8)
	trks := append([]byte{}, trkEntry...)
	trks = append(trks, make([]byte, 160*8-8)...) // pad remaining 159 entries
	// 12 header + 68 INFO + 168 TMAP + 8 TRKS header + 1280 entries = 1536
	// bytes, so the track data that follows starts at file block 3.
	trackData := make([]byte, 512)
	for i := range trackData {
		trackData[i] = 0xAA
	}
	trks = append(trks, trackData...)
	buf = append(buf, chunk("TRKS", trks)...)

	return buf
}

func TestLoadWOZParsesOneTrack(t *testing.T) {
	img, err := LoadWOZ(buildMinimalWOZ())
	if err != nil {
		t.Fatalf("LoadWOZ: %v", err)
	}
	v, ok := img.ReadNibble(0, 0)
	if !ok {
		t.Fatalf("expected track 0 to be initialized")
	}
	if v != 0xAA {
		t.Fatalf("got %02x, want aa", v)
	}
}

func TestLoadProDOSBlocksRoundTrip(t *testing.T) {
	data := make([]byte, 512*4)
	data[512] = 0x7A
	img, err := LoadProDOSBlocks(data)
	if err != nil {
		t.Fatalf("LoadProDOSBlocks: %v", err)
	}
	if img.BlockCount() != 4 {
		t.Fatalf("got %d blocks, want 4", img.BlockCount())
	}
	b, err := img.ReadBlock(1)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if b[0] != 0x7A {
		t.Fatalf("got %02x, want 7a", b[0])
	}
}

func TestLoadDSKProducesPlayableTracks(t *testing.T) {
	data := make([]byte, 16*256*2) // 2 tracks
	img, err := LoadDSK(data, true)
	if err != nil {
		t.Fatalf("LoadDSK: %v", err)
	}
	if img.TrackLen(0) != nibblesPerTrack {
		t.Fatalf("track 0 length = %d, want %d", img.TrackLen(0), nibblesPerTrack)
	}
	_, ok := img.ReadNibble(0, 0)
	if !ok {
		t.Fatalf("expected track 0 to be marked initialized after DSK conversion")
	}
}
