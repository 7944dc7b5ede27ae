/*
   gsx - Wires the line-oriented config file into a Machine.

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

// Package machineconfig registers the "ROM", "RAM", "AUDIO", "SLOT" and
// "DISK" models with config/configparser, the same way the teacher's
// emu/models registers its device lines, then assembles the accumulated
// settings into a machine.Config and a populated machine.Machine via
// Build. Import this package for its init side effect before calling
// configparser.LoadConfigFile, then call Build once the file is loaded.
package machineconfig

import (
	"os"
	"strconv"
	"strings"

	config "github.com/open-iigs/gsx/config/configparser"
	"github.com/open-iigs/gsx/emu/card"
	"github.com/open-iigs/gsx/emu/disk"
	"github.com/open-iigs/gsx/emu/gserr"
	"github.com/open-iigs/gsx/emu/machine"
)

// slotSpec describes a "SLOT n card=... image=..." config line.
type slotSpec struct {
	card  string
	image string
}

var (
	romPath     string
	ramBanks    = 8
	audioRate   = 44100
	audioBuffer int
	queueLen    int
	slots       = map[int]slotSpec{}
	disks       = map[int]string{}
)

func init() {
	config.RegisterModel("ROM", config.TypeOptions, setROM)
	config.RegisterModel("RAM", config.TypeOptions, setRAM)
	config.RegisterModel("AUDIO", config.TypeOptions, setAudio)
	config.RegisterModel("SLOT", config.TypeOptions, setSlot)
	config.RegisterModel("DISK", config.TypeOptions, setDisk)
}

func optValue(options []config.Option, name string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt.Name, name) {
			return opt.EqualOpt, true
		}
	}
	return "", false
}

func setROM(_ uint16, _ string, options []config.Option) error {
	v, ok := optValue(options, "path")
	if !ok || v == "" {
		return gserr.New(gserr.MountFailed, "ROM line requires path=<file>")
	}
	romPath = v
	return nil
}

func setRAM(_ uint16, _ string, options []config.Option) error {
	v, ok := optValue(options, "banks")
	if !ok {
		return gserr.New(gserr.AllocationFailed, "RAM line requires banks=<count>")
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return gserr.Wrap(gserr.AllocationFailed, "invalid RAM bank count: "+v, err)
	}
	ramBanks = n
	return nil
}

func setAudio(_ uint16, _ string, options []config.Option) error {
	if v, ok := optValue(options, "rate"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return gserr.Wrap(gserr.AllocationFailed, "invalid audio rate: "+v, err)
		}
		audioRate = n
	}
	if v, ok := optValue(options, "buffer"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return gserr.Wrap(gserr.AllocationFailed, "invalid audio buffer size: "+v, err)
		}
		audioBuffer = n
	}
	return nil
}

func setSlot(devNum uint16, _ string, options []config.Option) error {
	slot := int(devNum)
	if slot < 1 || slot > 7 {
		return gserr.New(gserr.MountFailed, "slot number must be 1-7")
	}
	spec := slotSpec{}
	if v, ok := optValue(options, "card"); ok {
		spec.card = v
	}
	if v, ok := optValue(options, "image"); ok {
		spec.image = v
	}
	if spec.card == "" {
		return gserr.New(gserr.MountFailed, "SLOT line requires card=<name>")
	}
	slots[slot] = spec
	return nil
}

func setDisk(devNum uint16, _ string, options []config.Option) error {
	drive := int(devNum)
	v, ok := optValue(options, "image")
	if !ok || v == "" {
		return gserr.New(gserr.MountFailed, "DISK line requires image=<file>")
	}
	disks[drive] = v
	return nil
}

// Reset clears every accumulated setting; exposed for test isolation.
func Reset() {
	romPath = ""
	ramBanks = 8
	audioRate = 44100
	audioBuffer = 0
	queueLen = 0
	slots = map[int]slotSpec{}
	disks = map[int]string{}
}

// Build assembles the config lines collected since the last Reset into a
// running Machine: the ROM and RAM banks size the machine.Config, slot
// cards are constructed and attached, and floppy images are queued onto
// the command channel as CmdInsertDisk commands the driver loop will
// drain on its first DrainCommands call.
func Build() (*machine.Machine, error) {
	if romPath == "" {
		return nil, gserr.New(gserr.MountFailed, "no ROM line in configuration")
	}
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return nil, gserr.Wrap(gserr.MountFailed, "reading ROM image "+romPath, err)
	}

	m, err := machine.New(machine.Config{
		RAMBanks:        ramBanks,
		ROM:             rom,
		AudioSampleRate: audioRate,
		AudioBufferSize: audioBuffer,
		CommandQueueLen: queueLen,
	})
	if err != nil {
		return nil, err
	}

	for slot, spec := range slots {
		c, err := buildCard(m, slot, spec)
		if err != nil {
			return nil, err
		}
		m.AttachCard(slot, c)
	}

	for drive, path := range disks {
		if drive < 0 || drive > 1 {
			return nil, gserr.New(gserr.MountFailed, "floppy drive must be 0 or 1")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, gserr.Wrap(gserr.MountFailed, "reading disk image "+path, err)
		}
		img, err := disk.LoadWOZ(data)
		if err != nil {
			return nil, gserr.Wrap(gserr.MountFailed, "decoding disk image "+path, err)
		}
		m.Commands() <- machine.Command{
			Kind: machine.CmdInsertDisk,
			Arg:  machine.DiskInsertArg{Drive: drive, Image: img},
		}
	}

	return m, nil
}

func buildCard(m *machine.Machine, slot int, spec slotSpec) (card.Card, error) {
	switch strings.ToUpper(spec.card) {
	case "MOCKINGBOARD":
		return card.NewMockingboard(), nil
	case "HARDDISK":
		unit := uint8(slot)
		hd := card.NewHardDisk(m.SmartPortBus(), unit)
		if spec.image != "" {
			data, err := os.ReadFile(spec.image)
			if err != nil {
				return nil, gserr.Wrap(gserr.MountFailed, "reading hard disk image "+spec.image, err)
			}
			img, err := disk.LoadProDOSBlocks(data)
			if err != nil {
				return nil, gserr.Wrap(gserr.MountFailed, "decoding hard disk image "+spec.image, err)
			}
			m.SmartPortBus().Attach(unit, img)
		}
		return hd, nil
	default:
		return nil, gserr.New(gserr.MountFailed, "unknown slot card model: "+spec.card)
	}
}
