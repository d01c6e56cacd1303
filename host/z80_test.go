package host

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMachineReadIDNoDisk(t *testing.T) {
	m := NewMachine(newController(0))

	// LD A,4A / OUT (01),A / LD A,00 / OUT (01),A
	// LD HL,8000 / LD B,07 / loop: IN A,(01) / LD (HL),A / INC HL / DJNZ loop
	// HALT
	m.Load(0, []byte{
		0x3e, 0x4a, 0xd3, 0x01, 0x3e, 0x00, 0xd3, 0x01,
		0x21, 0x00, 0x80, 0x06, 0x07,
		0xdb, 0x01, 0x77, 0x23, 0x10, 0xfa,
		0x76,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Run(ctx, 0); err != nil {
		t.Fatalf("run: %v", err)
	}

	expected := []byte{0x48, 0, 0, 0, 0, 0, 0}
	if got := m.Peek(ResultBase, 7); !bytes.Equal(got, expected) {
		t.Errorf("expected % X, got % X", expected, got)
	}
}

func TestRunCommands(t *testing.T) {
	m := NewMachine(newController(40))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := m.RunCommands(ctx,
		[]byte{0x03, 0xa1, 0x03},
		[]byte{0x07, 0x00},
		[]byte{0x08},
		[]byte{0x08},
		[]byte{0x08},
		[]byte{0x4a, 0x00},
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	expected := []byte{
		0x20, 0x00,
		0xc0,
		0x80,
		0x00, 0x00, 0x00, 0x00, 0x00, 0xc1, 0x02,
	}
	if !bytes.Equal(got, expected) {
		t.Errorf("expected % X, got % X", expected, got)
	}
}

func TestRunCommandsReadData(t *testing.T) {
	m := NewMachine(newController(40))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := m.RunCommands(ctx,
		[]byte{0x0f, 0x00, 0x03},
		[]byte{0x08},
		[]byte{0x46, 0x00, 0x03, 0x00, 0xc1, 0x02, 0xc2, 0x2a, 0xff},
	)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(got) != 2+1024+7 {
		t.Fatalf("expected %d bytes, got %d", 2+1024+7, len(got))
	}
	if got[2] != 3 || got[1025] != 3 {
		t.Errorf("expected cylinder 3 data, got %02X %02X", got[2], got[1025])
	}
	if res := got[1026:]; !bytes.Equal(res, []byte{0x00, 0x00, 0x00, 3, 0, 0xc2, 2}) {
		t.Errorf("unexpected result % X", res)
	}
}

func TestRunCommandsRejectsEmpty(t *testing.T) {
	m := NewMachine(newController(0))

	if _, err := m.RunCommands(context.Background(), []byte{}); err == nil {
		t.Error("expected error for an empty command")
	}
}
