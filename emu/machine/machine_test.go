package machine

import "testing"

func testConfig() Config {
	rom := make([]byte, 0x10000)
	// Reset vector at $FFFC/$FFFD -> $0200, a RAM address we can script.
	rom[0xFFFC] = 0x00
	rom[0xFFFD] = 0x02
	return Config{RAMBanks: 2, ROM: rom, AudioSampleRate: 44100}
}

func TestNewRejectsZeroRAMBanks(t *testing.T) {
	cfg := testConfig()
	cfg.RAMBanks = 0
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected an AllocationFailed error for zero RAM banks")
	}
}

func TestNewRejectsEmptyROM(t *testing.T) {
	cfg := testConfig()
	cfg.ROM = nil
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected an AllocationFailed error for an empty ROM image")
	}
}

func TestStepExecutesResetSequenceThenFetchesFromVector(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Program at $000200: LDA #$42 ; STA $0400
	m.Write(0, 0x0200, 0xA9)
	m.Write(0, 0x0201, 0x42)
	m.Write(0, 0x0202, 0x8D)
	m.Write(0, 0x0203, 0x00)
	m.Write(0, 0x0204, 0x04)

	m.cpu.Reset()
	for i := 0; i < 3; i++ {
		m.Step()
	}
	m.Step() // LDA #$42
	m.Step() // STA $0400

	if got := m.Read(0, 0x0400); got != 0x42 {
		t.Fatalf("got %#02x at $0400, want $42", got)
	}
}

func TestWriteToMMIOPageRebuildsBankMap(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before := m.bank.Page(0, 0x05)
	m.Write(0, 0xC001, 0) // set 80STORE
	m.Write(0, 0xC055, 0) // set PAGE2
	after := m.bank.Page(0, 0x05)
	if before.ReadBank == after.ReadBank && before.WriteBank == after.WriteBank {
		t.Fatalf("expected 80STORE+PAGE2 to move page $05 routing")
	}
}

// TestLanguageCardDoubleReadEnablesWrites drives the $C08B latch through
// the machine's own MMIO read path: one read must leave $D000-$FFFF
// write-protected, a second consecutive read enables RAM writes there.
func TestLanguageCardDoubleReadEnablesWrites(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Read(0, 0xC08B)
	if d := m.bank.Page(0, 0xD0); !d.ReadOnly {
		t.Fatalf("single $C08B read must not enable LC writes")
	}

	m.Read(0, 0xC08B)
	d := m.bank.Page(0, 0xD0)
	if d.ReadOnly {
		t.Fatalf("double $C08B read should enable LC writes")
	}
	if d.ReadBank != 0x00 || d.WriteBank != 0x00 {
		t.Fatalf("LC RAM should read and write bank 0, got %02x/%02x", d.ReadBank, d.WriteBank)
	}

	m.Write(0, 0xD000, 0x42)
	if got := m.Read(0, 0xD000); got != 0x42 {
		t.Fatalf("got %#02x at $D000 after LC write-enable, want $42", got)
	}
}

func TestDrainCommandsAppliesKeyDownBeforeTerminate(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.commands <- Command{Kind: CmdKeyDown, Arg: uint8(0x41)}
	m.commands <- Command{Kind: CmdTerminate}

	if m.DrainCommands() != true {
		t.Fatalf("expected DrainCommands to report termination")
	}
	if !m.adbCtl.PhysicallyDown(0x41) {
		t.Fatalf("expected the key-down command to have been applied first")
	}
}

// TestMotorOffSpinsDownAfterOneSecond checks the $C0E8 path: the spindle
// keeps turning until a full second of emulated cycles has elapsed.
func TestMotorOffSpinsDownAfterOneSecond(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	m.Write(0, 0xC0E9, 0) // motor on
	if !m.iwm.MotorOn() {
		t.Fatalf("expected motor on after $C0E9")
	}

	m.Write(0, 0xC0E8, 0) // motor off, delayed
	if !m.iwm.MotorOn() {
		t.Fatalf("motor must keep spinning immediately after $C0E8")
	}

	m.events.Advance(motorOffDelayCycles - 1)
	if !m.iwm.MotorOn() {
		t.Fatalf("motor stopped before the 1-second spindown elapsed")
	}
	m.events.Advance(1)
	if m.iwm.MotorOn() {
		t.Fatalf("motor should stop once the spindown delay expires")
	}
}

func TestAudioRingReceivesSamplesAfterManySteps(t *testing.T) {
	m, err := New(testConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.cpu.Reset()
	for i := 0; i < 3; i++ {
		m.Step()
	}
	// WAI so every further Step consumes exactly one cycle without
	// advancing PC, making the sample-accumulator math easy to bound.
	m.Write(0, 0x0200, 0xCB)
	for i := 0; i < m.sampleEvery*2; i++ {
		m.Step()
	}
	out := make([]int16, 4)
	if n := m.audio.Pull(out); n == 0 {
		t.Fatalf("expected at least one stereo sample pair to have been produced")
	}
}
