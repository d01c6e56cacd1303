package host

import (
	"context"

	"github.com/koron-go/z80"
	"github.com/pkg/errors"
)

// Amstrad PCW port map.
const (
	StatusPort = 0x00
	DataPort   = 0x01
)

// ResultBase is where the command runner stores the bytes it reads back.
const ResultBase = 0x8000

type memory [0x10000]uint8

func (m *memory) Get(addr uint16) uint8 {
	return m[addr]
}

func (m *memory) Set(addr uint16, value uint8) {
	m[addr] = value
}

// ports decodes the Z80 I/O space onto the controller's two registers.
type ports struct {
	bus Bus
}

func (p *ports) In(addr uint8) uint8 {
	switch addr {
	case StatusPort:
		return p.bus.ReadMainStatus()
	case DataPort:
		return p.bus.ReadData()
	}
	return 0xff
}

func (p *ports) Out(addr uint8, value uint8) {
	if addr == DataPort {
		p.bus.WriteData(value)
	}
}

// Machine is a Z80 with 64 KiB of RAM and the controller on its I/O ports.
type Machine struct {
	CPU    z80.CPU
	memory *memory
	io     *ports
}

// NewMachine returns a machine wired to bus.
func NewMachine(bus Bus) *Machine {
	return &Machine{memory: &memory{}, io: &ports{bus: bus}}
}

// Load copies code into memory at addr.
func (m *Machine) Load(addr uint16, code []byte) {
	for i, b := range code {
		m.memory.Set(addr+uint16(i), b)
	}
}

// Peek returns n bytes of memory from addr.
func (m *Machine) Peek(addr uint16, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = m.memory.Get(addr + uint16(i))
	}
	return b
}

// Run resets the CPU and executes from pc until it halts. Memory is kept.
func (m *Machine) Run(ctx context.Context, pc uint16) error {
	m.CPU = z80.CPU{
		States: z80.States{SPR: z80.SPR{PC: pc}},
		Memory: m.memory,
		IO:     m.io,
	}
	if err := m.CPU.Run(ctx); err != nil {
		return errors.Wrap(err, "z80")
	}
	return nil
}

// commandRunner sends a list of length-prefixed commands, ended by a zero
// length, and stores every execution and result byte from ResultBase.
// The command list is appended at commandList.
//
//	0000  LD SP,FFF0     LD HL,0030     LD DE,8000
//	0009  next: LD A,(HL) / OR A / JR Z,done / LD B,A / INC HL
//	000F  send: CALL wait / LD A,(HL) / OUT (01),A / INC HL / DJNZ send
//	0018  recv: IN A,(00) / BIT 4,A / JR Z,next / BIT 6,A / JR Z,recv
//	0022        IN A,(01) / LD (DE),A / INC DE / JR recv
//	0028  done: HALT
//	0029  wait: IN A,(00) / BIT 7,A / JR Z,wait / RET
var commandRunner = []byte{
	0x31, 0xf0, 0xff,
	0x21, 0x30, 0x00,
	0x11, 0x00, 0x80,
	0x7e, 0xb7, 0x28, 0x1b, 0x47, 0x23,
	0xcd, 0x29, 0x00, 0x7e, 0xd3, 0x01, 0x23, 0x10, 0xf7,
	0xdb, 0x00, 0xcb, 0x67, 0x28, 0xeb, 0xcb, 0x77, 0x28, 0xf6,
	0xdb, 0x01, 0x12, 0x13, 0x18, 0xf0,
	0x76,
	0xdb, 0x00, 0xcb, 0x7f, 0x28, 0xfa, 0xc9,
}

const commandList = 0x0030

// RunCommands has the Z80 send each command to the controller and returns
// every byte it read back, in order.
func (m *Machine) RunCommands(ctx context.Context, commands ...[]byte) ([]byte, error) {
	var list []byte
	for _, c := range commands {
		if len(c) == 0 || len(c) > 0xff {
			return nil, errors.Errorf("invalid command length %d", len(c))
		}
		list = append(list, byte(len(c)))
		list = append(list, c...)
	}
	list = append(list, 0)

	if commandList+len(list) > ResultBase {
		return nil, errors.New("command list too long")
	}

	m.Load(0, commandRunner)
	m.Load(commandList, list)

	if err := m.Run(ctx, 0); err != nil {
		return nil, err
	}

	de := m.CPU.States.DE
	end := uint16(de.Hi)<<8 | uint16(de.Lo)
	if end < ResultBase {
		return nil, errors.Errorf("result pointer out of range: %04X", end)
	}
	return m.Peek(ResultBase, int(end-ResultBase)), nil
}
