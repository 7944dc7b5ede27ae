/*
   gsx - Machine: the single-threaded cooperative emulation driver.

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

// Package machine owns every core component (CPU, banked memory, MMIO
// softswitches, VGC, IWM, DOC, ADB, RTC, SmartPort, card slots, clock,
// event list) and drives them in lockstep from a single cooperative step
// loop, matching the "single-threaded cooperative, driver owns
// everything" design from spec.md §5. The host communicates through a
// bounded command queue, a double-buffered published frame, and a
// lock-free audio ring -- never through a shared mutable pointer into
// machine-owned state.
package machine

import (
	"log/slog"

	"github.com/open-iigs/gsx/emu/adb"
	"github.com/open-iigs/gsx/emu/card"
	"github.com/open-iigs/gsx/emu/clock"
	"github.com/open-iigs/gsx/emu/cpu"
	"github.com/open-iigs/gsx/emu/disk"
	"github.com/open-iigs/gsx/emu/doc"
	"github.com/open-iigs/gsx/emu/event"
	"github.com/open-iigs/gsx/emu/gserr"
	"github.com/open-iigs/gsx/emu/iwm"
	"github.com/open-iigs/gsx/emu/memory"
	"github.com/open-iigs/gsx/emu/mmio"
	"github.com/open-iigs/gsx/emu/rtc"
	"github.com/open-iigs/gsx/emu/smartport"
	"github.com/open-iigs/gsx/emu/snapshot"
	"github.com/open-iigs/gsx/emu/video"
	"github.com/open-iigs/gsx/util/logger"
)

// Config describes everything needed to construct a Machine.
type Config struct {
	RAMBanks        int
	ROM             []byte
	AudioSampleRate int
	AudioBufferSize int // in stereo sample pairs
	CommandQueueLen int
}

// Owner identifiers for the shared event.List; kept here so every
// component schedules against the same enum space without importing one
// another's packages.
const (
	ownerIWMMotor event.Owner = iota
	ownerDOCMix
	ownerVideoScanline
)

// motorOffDelayCycles is one second of CPU cycles at the 2.8MHz FPI rate,
// the spindown delay between the motor-off softswitch and the drive
// actually stopping.
const motorOffDelayCycles = 2_800_000

// Machine is the full emulated system.
type Machine struct {
	cpu    *cpu.State
	store  *memory.Store
	bank   memory.BankMap
	regs   *mmio.Register
	clk    *clock.Timespec
	events event.List

	video      *video.Engine
	iwm        *iwm.Controller
	drives     [2]*iwm.Drive
	docEngine  *doc.Engine
	adbCtl     *adb.Controller
	rtcClock   *rtc.Clock
	spBus      *smartport.Bus
	slots      *card.Slots

	audio *AudioRing

	commands chan Command
	failed   bool

	sampleAccum  int
	sampleEvery  int // CPU cycles per DOC sample period, derived from AudioSampleRate
	slowAccesses int // Mega II bus accesses seen during the current CPU step

	docCtl  uint8  // $C03C sound control: bit 6 selects DOC RAM vs registers, bit 5 auto-increment
	docAddr uint16 // $C03E/$C03F sound GLU address latch

	vgcInt  uint8 // $C023 VGC interrupt enables (bit 1 scan-line, bit 2 one-second)
	megaInt uint8 // $C041 Mega II interrupt enables (bit 3 VBL)
}

// Command is a host-issued request delivered through the bounded queue.
type Command struct {
	Kind CommandKind
	Arg  any
}

type CommandKind int

const (
	CmdTerminate CommandKind = iota
	CmdInsertDisk
	CmdEjectDisk
	CmdKeyDown
	CmdKeyUp
	CmdMouseMove
)

// DiskInsertArg is the CmdInsertDisk payload: which of the two floppy
// drives gets the image. CmdEjectDisk takes a plain int drive index.
type DiskInsertArg struct {
	Drive int
	Image *disk.Image
}

// New constructs a Machine. Allocation failures (zero RAM banks, an
// empty ROM image) surface as a Fatal
// AllocationFailed error per spec.md §4.9/§7, since there is no
// recoverable path once the backing slab can't be sized.
func New(cfg Config) (*Machine, error) {
	if cfg.RAMBanks <= 0 {
		return nil, gserr.New(gserr.AllocationFailed, "machine requires at least one RAM bank")
	}
	if len(cfg.ROM) == 0 {
		return nil, gserr.New(gserr.AllocationFailed, "machine requires a non-empty ROM image")
	}

	store := memory.NewStore(cfg.RAMBanks, cfg.ROM)
	regs := mmio.New()

	audioBuf := cfg.AudioBufferSize
	if audioBuf <= 0 {
		audioBuf = 4096
	}
	sampleRate := cfg.AudioSampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	m := &Machine{
		cpu:       cpu.New(),
		store:     store,
		regs:      regs,
		clk:       clock.New(),
		video:     video.New(),
		docEngine: doc.New(),
		adbCtl:    adb.New(),
		rtcClock:  rtc.New(),
		spBus:     smartport.NewBus(),
		slots:     card.NewSlots(),
		audio:     NewAudioRing(audioBuf),
	}
	m.bank.Identity()
	regs.Rebuild(&m.bank, store)

	m.drives[0] = iwm.NewDrive(false)
	m.drives[1] = iwm.NewDrive(false)
	m.iwm = iwm.NewController(m.drives[0], m.drives[1])

	m.docEngine.SetIRQSink(func() { m.cpu.PostIRQ() })
	m.rtcClock.SetIRQSink(func() { m.cpu.PostIRQ() })
	m.adbCtl.SetIRQSink(func() { m.cpu.PostIRQ() })

	qlen := cfg.CommandQueueLen
	if qlen <= 0 {
		qlen = 64
	}
	m.commands = make(chan Command, qlen)

	// FPI runs at roughly 2.8MHz; DOC mixes at the host sample rate.
	const fpiHz = 2_800_000
	m.sampleEvery = fpiHz / sampleRate
	if m.sampleEvery <= 0 {
		m.sampleEvery = 1
	}

	return m, nil
}

// Failed reports whether the machine has hit an unrecoverable condition;
// a host must not call Step again once true.
func (m *Machine) Failed() bool { return m.failed || m.cpu.Failed() }

// Commands returns the send side of the bounded host->emulator queue.
func (m *Machine) Commands() chan<- Command { return m.commands }

// AudioRing exposes the lock-free ring the host's audio callback drains.
func (m *Machine) AudioRing() *AudioRing { return m.audio }

// PublishedFrame returns the most recently completed VGC frame.
func (m *Machine) PublishedFrame() *video.Frame { return m.video.Published() }

// CPU exposes the borrowed CPU register file for host-side introspection
// (a debugger/console "show" command); it is never retained across a Step
// by the host per spec.md's aliasing-discipline design note.
func (m *Machine) CPU() *cpu.State { return m.cpu }

// snapshotTarget builds the snapshot.Target exposing every component that
// round-trips through Snapshot/RestoreSnapshot: CPU, MMIO softswitches,
// clock, RAM, occupied card slots, and disk/drive storage (spec.md §6's
// "cards" and "storage" top-level keys).
func (m *Machine) snapshotTarget() snapshot.Target {
	return snapshot.Target{
		CPU:    m.cpu,
		MMIO:   m.regs,
		Clock:  m.clk,
		Store:  m.store,
		Slots:  m.slots,
		Drives: m.drives,
		SPBus:  m.spBus,
	}
}

// Snapshot packs m's full state -- CPU, MMIO softswitches, clock, RAM,
// occupied card slots, and mounted disk/drive storage -- into the
// snapshot wire format.
func (m *Machine) Snapshot() ([]byte, error) {
	return snapshot.Save(m.snapshotTarget())
}

// RestoreSnapshot decodes data and restores it into m, then rebuilds the
// bank map against the restored softswitch state (Restore never patches
// the map incrementally, matching Rebuild's own "repaint from scratch"
// contract). The card types installed via AttachCard before calling this
// must match the snapshot's card slots; Restore never attaches a card
// itself, only restores one's state.
func (m *Machine) RestoreSnapshot(data []byte) error {
	if err := snapshot.Load(data, m.snapshotTarget()); err != nil {
		return err
	}
	m.regs.Rebuild(&m.bank, m.store)
	m.syncVideoMode()
	return nil
}

// AttachCard installs a peripheral card in a 1-7 slot. card.Card already
// satisfies mmio.Device (ReadIO/WriteIO), so the same instance both
// answers Slots.Names for snapshotting and services the $C0nx I/O window.
func (m *Machine) AttachCard(slot int, c card.Card) {
	m.slots.Insert(slot, c)
	m.regs.AttachCard(slot, c)
}

// isMega2Bank reports whether a routed bank lives on the slow Mega II
// bus: the $E0/$E1 banks themselves, including as shadow targets.
func isMega2Bank(bank uint8) bool {
	return bank == memory.BankShadowMain || bank == memory.BankShadowAux
}

// Read implements cpu.Bus: consult the bank map once, then dispatch to
// MMIO, RAM, or ROM accordingly.
func (m *Machine) Read(bank uint8, addr uint16) uint8 {
	page := uint8(addr >> 8)
	d := m.bank.Page(bank, page)
	if d.MMIORead {
		m.slowAccesses++
		return m.readMMIO(bank, addr)
	}
	if isMega2Bank(d.ReadBank) {
		m.slowAccesses++
	}
	if d.ReadBank == memory.BankROM1 || d.ReadBank == memory.BankROM2 {
		romBank := d.ReadBank - memory.BankROM1
		return m.store.ReadROM(romBank, (uint16(d.ReadPage)<<8)|(addr&0xFF))
	}
	return m.store.ReadRAM(d.ReadBank, (uint16(d.ReadPage)<<8)|(addr&0xFF))
}

// Write implements cpu.Bus.
func (m *Machine) Write(bank uint8, addr uint16, v uint8) {
	page := uint8(addr >> 8)
	d := m.bank.Page(bank, page)
	if d.MMIOWrite {
		m.slowAccesses++
		m.writeMMIO(bank, addr, v)
		return
	}
	if d.ReadOnly {
		logger.Unimplemented("write to read-only page", slog.Int("bank", int(bank)), slog.Int("addr", int(addr)))
		return
	}
	if isMega2Bank(d.WriteBank) {
		m.slowAccesses++
	}
	m.store.WriteRAM(d.WriteBank, (uint16(d.WritePage)<<8)|(addr&0xFF), v)
}

// docDataRead and docDataWrite service the $C03D sound data port. The
// GLU address latch selects either sound RAM (control bit 6 set) or a
// DOC register: the low byte's top three bits pick the register family,
// the low five bits the oscillator, with $E0/$E1 as the shared interrupt
// status and oscillator-enable registers.
func (m *Machine) docDataRead() uint8 {
	var v uint8
	switch {
	case m.docCtl&0x40 != 0:
		v = m.docEngine.ReadRAM(m.docAddr)
	case uint8(m.docAddr) == 0xE0:
		if osc := m.docEngine.PendingIRQOscillator(); osc >= 0 {
			m.docEngine.AckIRQ(osc)
			v = uint8(osc) << 1
		} else {
			v = 0xFF
		}
	case uint8(m.docAddr) == 0xE1:
		v = uint8(m.docEngine.ActiveOscillators()-1) << 1
	default:
		a := uint8(m.docAddr)
		v = m.docEngine.ReadOscRegister(int(a&0x1F), a>>5)
	}
	m.docAutoIncrement()
	return v
}

func (m *Machine) docDataWrite(v uint8) {
	switch {
	case m.docCtl&0x40 != 0:
		m.docEngine.WriteRAM(m.docAddr, v)
	case uint8(m.docAddr) == 0xE1:
		m.docEngine.SetActiveOscillatorCount((v >> 1) & 0x0F)
	default:
		a := uint8(m.docAddr)
		m.docEngine.WriteOscRegister(int(a&0x1F), a>>5, v)
	}
	m.docAutoIncrement()
}

func (m *Machine) docAutoIncrement() {
	if m.docCtl&0x20 != 0 {
		m.docAddr++
	}
}

func (m *Machine) readMMIO(bank uint8, addr uint16) uint8 {
	off := uint8(addr)
	switch {
	case off == 0x00:
		return m.adbCtl.ReadKey()
	case off == 0x10:
		return m.adbCtl.ClearStrobe()
	case off == 0x23:
		return m.vgcInt
	case off == 0x24:
		x, _ := m.adbCtl.ReadMouse()
		return x
	case off == 0x27:
		return m.adbCtl.ReadStatus()
	case off == 0x33 || off == 0x34:
		return m.rtcClock.ReadData()
	case off == 0x41:
		return m.megaInt
	case off == 0x3C:
		return m.docCtl
	case off == 0x3D:
		return m.docDataRead()
	case off == 0x3E:
		return uint8(m.docAddr)
	case off == 0x3F:
		return uint8(m.docAddr >> 8)
	case off >= 0xE0 && off <= 0xEF:
		return m.iwm.ReadData()
	default:
		// Softswitch reads mutate state too: the language-card $C08x
		// window latches on read, so a rebuild can be owed here just as
		// after a write.
		v := m.regs.ReadIO(off)
		if m.regs.Dirty() {
			m.regs.Rebuild(&m.bank, m.store)
		}
		return v
	}
}

func (m *Machine) writeMMIO(bank uint8, addr uint16, v uint8) {
	off := uint8(addr)
	switch {
	case off == 0x10:
		m.adbCtl.ClearStrobe()
	case off == 0x23:
		m.vgcInt = v
		m.video.ArmScanlineIRQ(v&0x02 != 0)
		m.video.EnableOneSecondIRQ(v&0x04 != 0)
		m.rtcClock.EnableIRQ(v&0x04 != 0)
	case off == 0x26:
		m.adbCtl.WriteCommand(v)
	case off == 0x33:
		m.rtcClock.WriteData(v)
	case off == 0x34:
		m.rtcClock.WriteCommand(v)
	case off == 0x3C:
		m.docCtl = v
	case off == 0x3D:
		m.docDataWrite(v)
	case off == 0x3E:
		m.docAddr = (m.docAddr & 0xFF00) | uint16(v)
	case off == 0x3F:
		m.docAddr = (m.docAddr & 0x00FF) | uint16(v)<<8
	case off == 0x41:
		m.megaInt = v
		m.video.EnableVBLIRQ(v&0x08 != 0)
	case off >= 0xE0 && off <= 0xEF:
		if m.iwm.Mode() == iwm.ModeWriteData {
			m.iwm.WriteData(v)
		} else if off == 0xE8 {
			// Motor off: the spindle keeps turning for another second
			// before it actually stops.
			m.events.Cancel(ownerIWMMotor, 0)
			m.events.Add(ownerIWMMotor, func(int) { m.iwm.StopMotor() }, motorOffDelayCycles, 0)
		} else {
			if off == 0xE9 {
				m.events.Cancel(ownerIWMMotor, 0)
			}
			m.iwm.WritePhase(off - 0xE0)
			switch {
			case m.iwm.SmartPortReset():
				m.spBus.Exchange(smartport.Packet{Command: smartport.CmdReset})
			case m.iwm.SmartPortEnable():
				m.spBus.Exchange(smartport.Packet{Command: smartport.CmdEnable})
			}
		}
	default:
		m.regs.WriteIO(off, v)
	}
	if m.regs.Dirty() {
		m.regs.Rebuild(&m.bank, m.store)
	}
	m.syncVideoMode()
}

// syncVideoMode forwards the softswitch-owned video mode bits into the VGC
// engine; called after every MMIO write since any of TEXT/MIXED/80COL/
// ALTCHARSET/DHIRES/HIRES/NEWVIDEO can flip the active decode path.
func (m *Machine) syncVideoMode() {
	text, mixed, col80, altCharset, dhires, hires, superHires := m.regs.VideoFlags()
	m.video.SetMode(video.ModeText, text)
	m.video.SetMode(video.ModeMixed, mixed)
	m.video.SetMode(video.ModeHires, hires)
	m.video.SetMode(video.ModeDoubleRes, col80)
	m.video.SetMode(video.ModeDHires, dhires)
	m.video.SetMode(video.ModeAltCharset, altCharset)
	m.video.SetMode(video.ModeSuperHires, superHires)
}

// irqSink adapts video.IRQSink to the CPU's PostIRQ.
type irqSink struct{ m *Machine }

func (s irqSink) AssertIRQ() { s.m.cpu.PostIRQ() }

// Step executes exactly one CPU instruction (or reset/interrupt service
// step), charges its cycles to the clock, and then ticks the devices once
// each in the order from spec.md §5: VGC scanline advance, IWM, DOC (only
// when a sample period's worth of cycles has accumulated), ADB poll, then
// the RTC and the event list advanced by the step's cycles. Returns the
// number of CPU cycles the instruction took.
func (m *Machine) Step() int {
	if m.Failed() {
		return 0
	}

	// Only accesses the CPU itself issues this step count toward the
	// slow-cycle charge; host-side reads (console dump, the VGC's
	// scanline fetches below) go through the same bus but must not.
	m.slowAccesses = 0
	cycles := m.cpu.Step(m)

	// Charge the step's cycles against the right bus: every Mega II
	// access observed during the step costs a synchronized slow cycle,
	// the rest run at FPI speed (or slow too when SPEED selects 1MHz).
	slow := m.slowAccesses
	if slow > cycles {
		slow = cycles
	}
	slowSpeed := m.regs.SlowSpeed()
	for i := 0; i < cycles; i++ {
		m.clk.CycleMemory(i < slow, slowSpeed)
	}

	m.video.Tick(m.readVideoByte, irqSink{m})
	m.iwm.Tick()

	m.sampleAccum += cycles
	if m.sampleAccum >= m.sampleEvery {
		m.sampleAccum -= m.sampleEvery
		out := m.docEngine.Tick()
		m.audio.Push(out[0], out[1])
	}

	m.adbCtl.Poll()
	m.rtcClock.Tick(cycles, 2_800_000)
	m.events.Advance(cycles)

	return cycles
}

func (m *Machine) readVideoByte(bank uint8, addr uint16) uint8 {
	return m.Read(bank, addr)
}

// DrainCommands processes every command currently queued without
// blocking; called once per driver-loop iteration between Step calls.
// Returns true if a Terminate command was seen.
func (m *Machine) DrainCommands() bool {
	for {
		select {
		case cmd := <-m.commands:
			if m.apply(cmd) {
				return true
			}
		default:
			return false
		}
	}
}

func (m *Machine) apply(cmd Command) bool {
	switch cmd.Kind {
	case CmdTerminate:
		return true
	case CmdKeyDown:
		if code, ok := cmd.Arg.(uint8); ok {
			m.adbCtl.KeyDown(code)
		}
	case CmdKeyUp:
		if code, ok := cmd.Arg.(uint8); ok {
			m.adbCtl.KeyUp(code)
		}
	case CmdMouseMove:
		if delta, ok := cmd.Arg.([3]int); ok {
			m.adbCtl.MouseMove(delta[0], delta[1], delta[2] != 0)
		}
	case CmdInsertDisk:
		if arg, ok := cmd.Arg.(DiskInsertArg); ok && arg.Drive >= 0 && arg.Drive < len(m.drives) {
			m.drives[arg.Drive].Insert(arg.Image)
		}
	case CmdEjectDisk:
		if drive, ok := cmd.Arg.(int); ok && drive >= 0 && drive < len(m.drives) {
			m.drives[drive].Eject()
		}
	}
	return false
}

// SmartPortBus exposes the shared SmartPort bus so a host can attach a
// hard-disk card's backing image before or after AttachCard.
func (m *Machine) SmartPortBus() *smartport.Bus { return m.spBus }
