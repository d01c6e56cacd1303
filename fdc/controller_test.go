package fdc

import (
	"bytes"
	"testing"
)

func TestMainStatusByPhase(t *testing.T) {
	c := New(newFakeDrives(formatTrack(0, 9, 2)))

	if got := c.ReadMainStatus(); got != 0x80 {
		t.Errorf("idle: expected status 0x80, got %02X", got)
	}

	send(c, 0x46, 0x00)
	if got := c.ReadMainStatus(); got != 0x90 {
		t.Errorf("command: expected status 0x90, got %02X", got)
	}

	send(c, 0x00, 0x00, 0x01, 0x02, 0x01, 0x2a, 0xff)
	if c.Phase() != PhaseExecution {
		t.Fatalf("expected execution phase, got %s", c.Phase())
	}
	if got := c.ReadMainStatus(); got != 0xf0 {
		t.Errorf("execution: expected status 0xF0, got %02X", got)
	}

	drainExecution(c)
	if got := c.ReadMainStatus(); got != 0xd0 {
		t.Errorf("result: expected status 0xD0, got %02X", got)
	}

	readResult(c)
	if got := c.ReadMainStatus(); got != 0x80 {
		t.Errorf("back to idle: expected status 0x80, got %02X", got)
	}
}

func TestDataRegisterIgnoredInWrongDirection(t *testing.T) {
	c := New(newFakeDrives())

	if got := c.ReadData(); got != 0xff {
		t.Errorf("read while idle: expected 0xFF, got %02X", got)
	}

	send(c, 0x00) // invalid
	if c.Phase() != PhaseResult {
		t.Fatalf("expected result phase, got %s", c.Phase())
	}

	// A write while the controller holds a result is dropped.
	c.WriteData(0x03)
	if c.Phase() != PhaseResult {
		t.Errorf("write in result phase changed phase to %s", c.Phase())
	}
}

func TestInvalidCommands(t *testing.T) {
	tests := []struct {
		name   string
		code   byte
		active byte
	}{
		{"unknown opcode", 0x01, CmdInvalid},
		{"unknown opcode with flags", 0xff, CmdInvalid},
		{"version", 0x10, CmdVersion},
		{"specify with MF", 0x43, CmdInvalid},
		{"seek with MT", 0x8f, CmdInvalid},
		{"read id with SK", 0x2a, CmdInvalid},
		{"write data with SK", 0x25, CmdInvalid},
	}

	for _, tt := range tests {
		c := New(newFakeDrives())
		send(c, tt.code)

		if c.ActiveCommand().Code != tt.active {
			t.Errorf("%s: expected command %02X, got %q", tt.name, tt.active, c.ActiveCommand().Name)
		}
		res := readResult(c)
		if !bytes.Equal(res, []byte{0x80}) {
			t.Errorf("%s: expected result [80], got % X", tt.name, res)
		}
		if c.Phase() != PhaseIdle {
			t.Errorf("%s: expected idle after result, got %s", tt.name, c.Phase())
		}
	}
}

func TestCommandFlags(t *testing.T) {
	c := New(newFakeDrives(formatTrack(0, 9, 2)))

	send(c, 0xe6) // read data, MT MF SK
	if c.ActiveCommand().Code != CmdReadData {
		t.Fatalf("expected read data, got %q", c.ActiveCommand().Name)
	}
	if !c.flagMT || !c.flagMF || !c.flagSK {
		t.Errorf("expected all flags set, got mt=%v mf=%v sk=%v", c.flagMT, c.flagMF, c.flagSK)
	}
}

func TestSpecify(t *testing.T) {
	tests := []struct {
		p0, p1        byte
		srt, hut, hlt int
		nonDMA        bool
	}{
		{0x00, 0x00, 16, 255, 255, false},
		{0xa1, 0x03, 6, 16, 2, true},
		{0xff, 0xfe, 1, 240, 254, false},
	}

	for _, tt := range tests {
		c := New(newFakeDrives())
		send(c, 0x03, tt.p0, tt.p1)

		if c.Phase() != PhaseIdle {
			t.Errorf("specify %02X %02X: expected idle, got %s", tt.p0, tt.p1, c.Phase())
		}
		srt, hut, hlt, nonDMA := c.Timings()
		if srt != tt.srt || hut != tt.hut || hlt != tt.hlt || nonDMA != tt.nonDMA {
			t.Errorf("specify %02X %02X: expected %d/%d/%d/%v, got %d/%d/%d/%v",
				tt.p0, tt.p1, tt.srt, tt.hut, tt.hlt, tt.nonDMA, srt, hut, hlt, nonDMA)
		}
	}
}

func TestReset(t *testing.T) {
	c := New(newFakeDrives(formatTrack(0, 9, 2)))
	send(c, 0x03, 0xa1, 0x03)
	send(c, 0x46, 0x00)

	c.Reset()

	if c.Phase() != PhaseIdle {
		t.Errorf("expected idle after reset, got %s", c.Phase())
	}
	if c.ActiveCommand().Code != CmdInvalid {
		t.Errorf("expected invalid command after reset, got %q", c.ActiveCommand().Name)
	}
	if srt, _, _, _ := c.Timings(); srt != 0 {
		t.Errorf("expected timings cleared, got srt %d", srt)
	}
}

func TestTickIndexPulse(t *testing.T) {
	c := New(newFakeDrives())

	c.Tick(revolutionMs - 1)
	if c.IndexPulse() {
		t.Error("index pulse seen one millisecond before the hole")
	}
	c.Tick(1)
	if !c.IndexPulse() {
		t.Error("expected index pulse at the end of a revolution")
	}
	if c.Revolutions() != 1 {
		t.Errorf("expected 1 revolution, got %d", c.Revolutions())
	}

	c.Tick(indexPulseMs)
	if c.IndexPulse() {
		t.Error("index pulse still seen after the hole passed")
	}

	c.Tick(revolutionMs * 3)
	if c.Revolutions() != 4 {
		t.Errorf("expected 4 revolutions, got %d", c.Revolutions())
	}
}

func TestHeadLoadTimers(t *testing.T) {
	c := New(newFakeDrives(formatTrack(0, 9, 2)))
	send(c, 0x03, 0x0f, 0x10) // hut 240, hlt 16

	send(c, 0x46, 0x00, 0x00, 0x00, 0x01, 0x02, 0x01, 0x2a, 0xff)
	if c.HeadLoaded() {
		t.Error("head loaded before the load time elapsed")
	}
	if !c.DriveLight() {
		t.Error("expected drive light during execution")
	}

	c.Tick(16)
	if !c.HeadLoaded() {
		t.Error("expected head loaded after the load time")
	}

	drainExecution(c)
	readResult(c)
	if c.DriveLight() {
		t.Error("drive light still on after the result phase")
	}
	if !c.HeadLoaded() {
		t.Error("head unloaded before the unload time")
	}

	c.Tick(240)
	if c.HeadLoaded() {
		t.Error("head still loaded after the unload time")
	}
}

func TestHeadStaysUnloadedWithoutTransfer(t *testing.T) {
	c := New(newFakeDrives(formatTrack(0, 9, 2)))

	tests := []struct {
		name  string
		bytes []byte
		reads int
	}{
		{"specify", []byte{0x03, 0xa1, 0x03}, 0},
		{"sense interrupt", []byte{0x08}, 1},
		{"invalid", []byte{0x1f}, 1},
		{"version", []byte{0x10}, 1},
	}

	for _, tt := range tests {
		send(c, tt.bytes...)
		for i := 0; i < tt.reads; i++ {
			c.ReadData()
		}
		if c.HeadLoaded() {
			t.Errorf("%s: head loaded without a data transfer", tt.name)
		}
		if c.Phase() != PhaseIdle {
			t.Errorf("%s: expected idle, got %s", tt.name, c.Phase())
		}
	}
}
