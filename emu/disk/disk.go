/*
   gsx - Disk image formats: WOZ, 2IMG, and raw sector images.

   Copyright (c) 2024, Richard Cornwell

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   RICHARD CORNWELL BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

// Package disk holds floppy and block-device images in a single in-memory
// representation (Image): a per-track nibble stream plus a write-protect
// and initialized flag. WOZ v2 images load natively; 2IMG and raw
// DSK/DO/PO sector images are converted to the same nibble representation
// on load so the IWM bit-stream engine never needs to know which source
// format produced a given track.
package disk

import (
	"encoding/binary"
	"fmt"

	"github.com/open-iigs/gsx/emu/gserr"
)

const (
	tracksPerDisk525 = 35
	nibblesPerTrack  = 6656 // standard WOZ v2 5.25" track buffer length
)

// Image is the in-memory disk: one nibble (or, for block devices, one
// ProDOS block) stream per track, plus per-track metadata.
type Image struct {
	Name       string
	WriteProt  bool
	Is525      bool

	tracks [][]uint8
	init   []bool

	blockMode bool
	blocks    [][512]uint8
}

// Snapshot is the serializable form of an Image, used by the machine
// snapshot's storage section (spec.md §6) to round-trip every mounted
// disk's full nibble/block contents, not just its mount point.
type Snapshot struct {
	Name      string
	WriteProt bool
	Is525     bool
	Tracks    [][]uint8
	Init      []bool
	BlockMode bool
	Blocks    [][512]uint8
}

// Snapshot captures img's full contents.
func (img *Image) Snapshot() Snapshot {
	tracks := make([][]uint8, len(img.tracks))
	for i, t := range img.tracks {
		if t == nil {
			continue
		}
		cp := make([]uint8, len(t))
		copy(cp, t)
		tracks[i] = cp
	}
	init := make([]bool, len(img.init))
	copy(init, img.init)
	blocks := make([][512]uint8, len(img.blocks))
	copy(blocks, img.blocks)
	return Snapshot{
		Name: img.Name, WriteProt: img.WriteProt, Is525: img.Is525,
		Tracks: tracks, Init: init, BlockMode: img.blockMode, Blocks: blocks,
	}
}

// Restore rebuilds an Image from a Snapshot captured by Image.Snapshot.
func Restore(snap Snapshot) *Image {
	return &Image{
		Name: snap.Name, WriteProt: snap.WriteProt, Is525: snap.Is525,
		tracks: snap.Tracks, init: snap.Init,
		blockMode: snap.BlockMode, blocks: snap.Blocks,
	}
}

func newImage(trackCount int) *Image {
	return &Image{
		tracks: make([][]uint8, trackCount),
		init:   make([]bool, trackCount),
	}
}

// TrackLen reports the nibble-stream length for the given track; tracks
// past the disk's physical extent report the standard buffer length so
// callers can still wrap an index safely.
func (img *Image) TrackLen(track int) int {
	if track < 0 || track >= len(img.tracks) || img.tracks[track] == nil {
		return nibblesPerTrack
	}
	return len(img.tracks[track])
}

// ReadNibble reads one byte from a track's bit/nibble stream. The second
// return value is false when the track has never been formatted, so the
// IWM can substitute pseudo-random noise instead of a suspiciously clean
// all-zero track (spec.md §4.5).
func (img *Image) ReadNibble(track, index int) (uint8, bool) {
	if track < 0 || track >= len(img.tracks) || !img.init[track] {
		return 0, false
	}
	t := img.tracks[track]
	if len(t) == 0 {
		return 0, false
	}
	return t[index%len(t)], true
}

func (img *Image) WriteNibble(track, index int, v uint8) {
	if track < 0 || track >= len(img.tracks) {
		return
	}
	if img.tracks[track] == nil {
		img.tracks[track] = make([]uint8, nibblesPerTrack)
	}
	img.init[track] = true
	t := img.tracks[track]
	t[index%len(t)] = v
}

// ReadBlock and WriteBlock service ProDOS-ordered block images (2IMG and
// .po/.hdv) through SmartPort, bypassing the nibble bit-stream path
// entirely -- block devices never go through the IWM Q6/Q7 state machine.
func (img *Image) ReadBlock(block int) ([512]uint8, error) {
	if !img.blockMode || block < 0 || block >= len(img.blocks) {
		return [512]uint8{}, gserr.New(gserr.UnmappedMemory, fmt.Sprintf("block %d out of range", block))
	}
	return img.blocks[block], nil
}

func (img *Image) WriteBlock(block int, data [512]uint8) error {
	if !img.blockMode || block < 0 || block >= len(img.blocks) {
		return gserr.New(gserr.UnmappedMemory, fmt.Sprintf("block %d out of range", block))
	}
	if img.WriteProt {
		return gserr.New(gserr.SaveFailed, "image is write-protected")
	}
	img.blocks[block] = data
	return nil
}

func (img *Image) BlockCount() int { return len(img.blocks) }

// LoadWOZ parses a WOZ v2 image: the 12-byte header, then a chain of
// chunks (INFO, TMAP, TRKS, META). Only INFO/TMAP/TRKS are required to
// reconstruct playable tracks; unknown chunks are skipped.
func LoadWOZ(data []byte) (*Image, error) {
	if len(data) < 12 || string(data[0:4]) != "WOZ2" {
		return nil, gserr.New(gserr.MountFailed, "not a WOZ2 image")
	}
	img := newImage(tracksPerDisk525)
	img.Is525 = true

	var tmap [160]uint8
	haveTMAP := false

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := data[pos+8:]
		if size > len(body) {
			return nil, gserr.New(gserr.CorruptedSnapshot, "WOZ chunk overruns image")
		}
		body = body[:size]

		switch chunkID {
		case "INFO":
			if len(body) > 0 && body[0] == 2 {
				img.Is525 = body[1] == 1
			}
		case "TMAP":
			copy(tmap[:], body)
			haveTMAP = true
		case "TRKS":
			loadWOZTracks(img, data, body, tmap, haveTMAP)
		}
		pos += 8 + size
	}
	return img, nil
}

// loadWOZTracks reads the TRKS entry table from body; each entry's start
// block counts 512-byte blocks from the start of the whole file (data).
func loadWOZTracks(img *Image, data, body []byte, tmap [160]uint8, haveTMAP bool) {
	const trkEntrySize = 8
	for q := 0; q < len(img.tracks) && q*4+0 < 160; q++ {
		trackSlot := uint8(0xFF)
		if haveTMAP {
			trackSlot = tmap[q*4]
		}
		if trackSlot == 0xFF {
			continue
		}
		off := int(trackSlot) * trkEntrySize
		if off+trkEntrySize > len(body) {
			continue
		}
		startBlock := binary.LittleEndian.Uint16(body[off : off+2])
		blockCount := binary.LittleEndian.Uint16(body[off+2 : off+4])
		bitCount := binary.LittleEndian.Uint32(body[off+4 : off+8])

		byteOff := int(startBlock) * 512
		byteLen := int(blockCount) * 512
		if byteOff < 0 || byteOff+byteLen > len(data) || bitCount == 0 {
			continue
		}
		track := make([]uint8, byteLen)
		copy(track, data[byteOff:byteOff+byteLen])
		img.tracks[q] = track
		img.init[q] = true
	}
}

// Load2IMG parses a 2IMG block image (ProDOS-ordered, 512-byte blocks)
// into Image's block-mode representation.
func Load2IMG(data []byte) (*Image, error) {
	if len(data) < 64 || string(data[0:4]) != "2IMG" {
		return nil, gserr.New(gserr.MountFailed, "not a 2IMG image")
	}
	headerLen := binary.LittleEndian.Uint16(data[8:10])
	blocks := binary.LittleEndian.Uint32(data[20:24])
	flags := binary.LittleEndian.Uint32(data[12:16])

	img := newImage(0)
	img.blockMode = true
	img.WriteProt = flags&0x80000000 != 0

	body := data[headerLen:]
	count := int(blocks)
	if count*512 > len(body) {
		count = len(body) / 512
	}
	img.blocks = make([][512]uint8, count)
	for i := 0; i < count; i++ {
		copy(img.blocks[i][:], body[i*512:i*512+512])
	}
	return img, nil
}

// LoadProDOSBlocks parses a raw .po/.hdv image: a flat sequence of
// 512-byte ProDOS blocks with no header.
func LoadProDOSBlocks(data []byte) (*Image, error) {
	if len(data)%512 != 0 {
		return nil, gserr.New(gserr.MountFailed, "block image size not a multiple of 512")
	}
	img := newImage(0)
	img.blockMode = true
	count := len(data) / 512
	img.blocks = make([][512]uint8, count)
	for i := 0; i < count; i++ {
		copy(img.blocks[i][:], data[i*512:i*512+512])
	}
	return img, nil
}

// LoadDSK converts a 16-sector DOS-ordered (.dsk/.do) or ProDOS-ordered
// (.po) 5.25" sector image into WOZ-equivalent nibblized tracks via the
// standard 6-and-2 GCR encoding, so the IWM never has to special-case
// sector images at read time.
func LoadDSK(data []byte, doOrder bool) (*Image, error) {
	const sectorsPerTrack = 16
	const sectorSize = 256
	trackSize := sectorsPerTrack * sectorSize
	if len(data)%trackSize != 0 {
		return nil, gserr.New(gserr.MountFailed, "DSK image size not a multiple of one track")
	}
	trackCount := len(data) / trackSize
	img := newImage(trackCount)
	img.Is525 = true

	order := doOrder525Order
	if !doOrder {
		order = prodosOrder
	}

	for t := 0; t < trackCount; t++ {
		track := data[t*trackSize : (t+1)*trackSize]
		nibbles := make([]uint8, 0, nibblesPerTrack)
		for logical := 0; logical < sectorsPerTrack; logical++ {
			phys := order[logical]
			sector := track[phys*sectorSize : phys*sectorSize+sectorSize]
			nibbles = append(nibbles, gcrEncodeSector(t, logical, sector)...)
		}
		for len(nibbles) < nibblesPerTrack {
			nibbles = append(nibbles, 0xFF)
		}
		img.tracks[t] = nibbles
		img.init[t] = true
	}
	return img, nil
}

var doOrder525Order = [16]int{0, 13, 11, 9, 7, 5, 3, 1, 14, 12, 10, 8, 6, 4, 2, 15}
var prodosOrder = [16]int{0, 2, 4, 6, 8, 10, 12, 14, 1, 3, 5, 7, 9, 11, 13, 15}

// gcrEncodeSector produces an address-field + 6-and-2 data-field run for
// one 256-byte sector; a simplified but self-consistent encoding good
// enough for a core read back by its own IWM, not a bit-exact
// reproduction of the DOS 3.3 RWTS nibble format.
func gcrEncodeSector(track, sector int, data []byte) []uint8 {
	out := make([]uint8, 0, 400)
	out = append(out, 0xD5, 0xAA, 0x96)
	out = append(out, gcr44(uint8(0xFE)), gcr44(uint8(track)), gcr44(uint8(sector)))
	out = append(out, 0xDE, 0xAA, 0xEB)
	out = append(out, 0xD5, 0xAA, 0xAD)
	for _, b := range data {
		out = append(out, sixAndTwoNibble(b))
	}
	out = append(out, 0xDE, 0xAA, 0xEB)
	return out
}

func gcr44(v uint8) uint8 { return v | 0xAA }

func sixAndTwoNibble(b uint8) uint8 {
	v := (b >> 2) | 0xC0
	return diskBytes[v&0x3F]
}

// diskBytes is the standard Apple II 6-and-2 disk-byte translation table
// (all byte values with at most one zero bit run and the top bit set).
var diskBytes = [64]uint8{
	0x96, 0x97, 0x9A, 0x9B, 0x9D, 0x9E, 0x9F, 0xA6,
	0xA7, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF, 0xB2, 0xB3,
	0xB4, 0xB5, 0xB6, 0xB7, 0xB9, 0xBA, 0xBB, 0xBC,
	0xBD, 0xBE, 0xBF, 0xCB, 0xCD, 0xCE, 0xCF, 0xD3,
	0xD6, 0xD7, 0xD9, 0xDA, 0xDB, 0xDC, 0xDD, 0xDE,
	0xDF, 0xE5, 0xE6, 0xE7, 0xE9, 0xEA, 0xEB, 0xEC,
	0xED, 0xEE, 0xEF, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6,
	0xF7, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF,
}
