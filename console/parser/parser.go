/*
   gsx - Console command parser.

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

// Package parser implements the small command language the interactive
// console speaks to a running machine.Machine: insert/eject a floppy,
// print CPU register state, or quit. insert, eject and quit are sent as
// machine.Command values over the bounded queue from spec.md §5; show,
// dump, save and load call the machine directly.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/open-iigs/gsx/emu/disk"
	"github.com/open-iigs/gsx/emu/machine"
	"github.com/open-iigs/gsx/util/hex"
)

type cmd struct {
	name    string
	min     int
	process func(*cmdLine, *machine.Machine) (bool, error)
}

type cmdLine struct {
	line string
	pos  int
}

var cmdList = []cmd{
	{name: "insert", min: 2, process: insert},
	{name: "eject", min: 1, process: eject},
	{name: "show", min: 1, process: show},
	{name: "dump", min: 1, process: dump},
	{name: "save", min: 2, process: save},
	{name: "load", min: 2, process: load},
	{name: "quit", min: 1, process: quit},
}

// ProcessCommand executes one console command line against m. The bool
// return reports whether the console should stop reading further input.
func ProcessCommand(commandLine string, m *machine.Machine) (bool, error) {
	line := &cmdLine{line: commandLine}
	word := line.getWord()
	if word == "" {
		return false, nil
	}

	var match *cmd
	for i := range cmdList {
		c := &cmdList[i]
		if len(word) >= c.min && strings.HasPrefix(c.name, word) {
			if match != nil {
				return false, errors.New("ambiguous command: " + word)
			}
			match = c
		}
	}
	if match == nil {
		return false, errors.New("unknown command: " + word)
	}
	return match.process(line, m)
}

// CompleteCmd offers the liner completer every registered command name
// that starts with the partial line the user has typed so far.
func CompleteCmd(line string) []string {
	var out []string
	for _, c := range cmdList {
		if strings.HasPrefix(c.name, strings.ToLower(line)) {
			out = append(out, c.name)
		}
	}
	return out
}

func (l *cmdLine) skipSpace() {
	for l.pos < len(l.line) && l.line[l.pos] == ' ' {
		l.pos++
	}
}

func (l *cmdLine) getWord() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.line) && l.line[l.pos] != ' ' {
		l.pos++
	}
	return l.line[start:l.pos]
}

func insert(l *cmdLine, m *machine.Machine) (bool, error) {
	driveStr := l.getWord()
	path := l.getWord()
	if driveStr == "" || path == "" {
		return false, errors.New("usage: insert <drive> <path>")
	}
	drive, err := strconv.Atoi(driveStr)
	if err != nil {
		return false, errors.New("drive must be a number: " + driveStr)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	img, err := disk.LoadWOZ(data)
	if err != nil {
		return false, err
	}
	m.Commands() <- machine.Command{Kind: machine.CmdInsertDisk, Arg: machine.DiskInsertArg{Drive: drive, Image: img}}
	return false, nil
}

func eject(l *cmdLine, m *machine.Machine) (bool, error) {
	driveStr := l.getWord()
	drive, err := strconv.Atoi(driveStr)
	if err != nil {
		return false, errors.New("usage: eject <drive>")
	}
	m.Commands() <- machine.Command{Kind: machine.CmdEjectDisk, Arg: drive}
	return false, nil
}

func show(_ *cmdLine, m *machine.Machine) (bool, error) {
	c := m.CPU()
	fmt.Printf("PC=%02X:%04X A=%04X X=%04X Y=%04X S=%04X P=%02X E=%v\n",
		c.PBR, c.PC, c.A, c.X, c.Y, c.S, c.P, c.E)
	return false, nil
}

// dump prints a bank:addr-relative memory range as hex bytes, useful for
// eyeballing a ROM/RAM region from the console without a full debugger.
func dump(l *cmdLine, m *machine.Machine) (bool, error) {
	bankStr := l.getWord()
	addrStr := l.getWord()
	lenStr := l.getWord()
	if bankStr == "" || addrStr == "" {
		return false, errors.New("usage: dump <bank-hex> <addr-hex> [len]")
	}
	bank, err := strconv.ParseUint(bankStr, 16, 8)
	if err != nil {
		return false, errors.New("bank must be hex: " + bankStr)
	}
	addr, err := strconv.ParseUint(addrStr, 16, 16)
	if err != nil {
		return false, errors.New("addr must be hex: " + addrStr)
	}
	n := 16
	if lenStr != "" {
		v, err := strconv.Atoi(lenStr)
		if err != nil {
			return false, errors.New("len must be decimal: " + lenStr)
		}
		n = v
	}

	data := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		data = append(data, m.Read(uint8(bank), uint16(addr)+uint16(i)))
	}
	var b strings.Builder
	hex.FormatBytes(&b, true, data)
	fmt.Printf("%02X:%04X  %s\n", bank, addr, b.String())
	return false, nil
}

func save(l *cmdLine, m *machine.Machine) (bool, error) {
	path := l.getWord()
	if path == "" {
		return false, errors.New("usage: save <path>")
	}
	data, err := m.Snapshot()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return false, nil
}

func load(l *cmdLine, m *machine.Machine) (bool, error) {
	path := l.getWord()
	if path == "" {
		return false, errors.New("usage: load <path>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return false, m.RestoreSnapshot(data)
}

func quit(_ *cmdLine, m *machine.Machine) (bool, error) {
	m.Commands() <- machine.Command{Kind: machine.CmdTerminate}
	return true, nil
}
