package fdc

// Command byte flags, bits 5..7 of the first byte of every instruction.
const (
	flagSK = 0x20 // skip sectors with a deleted data address mark
	flagMF = 0x40 // MFM (double density)
	flagMT = 0x80 // multi-track

	flagMask = flagSK | flagMF | flagMT
)

// Command opcodes, with the MT/MF/SK bits masked out.
const (
	CmdReadDiagnostic   = 0x02
	CmdSpecify          = 0x03
	CmdSenseDriveStatus = 0x04
	CmdWriteData        = 0x05
	CmdReadData         = 0x06
	CmdRecalibrate      = 0x07
	CmdSenseInterrupt   = 0x08
	CmdWriteDeletedData = 0x09
	CmdReadID           = 0x0a
	CmdReadDeletedData  = 0x0c
	CmdWriteID          = 0x0d
	CmdSeek             = 0x0f
	CmdVersion          = 0x10
	CmdScanEqual        = 0x11
	CmdScanLowOrEqual   = 0x19
	CmdScanHighOrEqual  = 0x1d
	CmdInvalid          = 0x00
)

const (
	commandBufferSize   = 9
	resultBufferSize    = 7
	executionBufferSize = 0x8000
)

// routine is the behaviour of one command. Step is called with PhaseCommand
// for every parameter byte and with PhaseExecution for every execution byte
// (and once, with no data, for commands that take no parameters). It returns
// the phase the controller moves to and, for execution reads, the byte handed
// to the CPU.
type routine interface {
	Step(c *Controller, phase Phase, data byte) (Phase, byte)
}

// Command describes one entry of the command table.
type Command struct {
	Name    string
	Code    byte
	Params  int // parameter bytes following the command byte
	Results int // result bytes

	Direction Direction

	// Which of the command byte flags are legal for this command.
	MT, MF, SK bool

	routine routine
}

func (cmd *Command) allows(b byte) bool {
	if b&flagMT != 0 && !cmd.MT {
		return false
	}
	if b&flagMF != 0 && !cmd.MF {
		return false
	}
	if b&flagSK != 0 && !cmd.SK {
		return false
	}
	return true
}

// commandTable is ordered; the invalid command is always the last entry.
func commandTable() []Command {
	return []Command{
		{Name: "read data", Code: CmdReadData, Params: 8, Results: 7, Direction: DirectionOut, MT: true, MF: true, SK: true, routine: readData{}},
		{Name: "read id", Code: CmdReadID, Params: 1, Results: 7, Direction: DirectionOut, MF: true, routine: readID{}},
		{Name: "specify", Code: CmdSpecify, Params: 2, Results: 0, Direction: DirectionOut, routine: specify{}},
		{Name: "read diagnostic", Code: CmdReadDiagnostic, Params: 8, Results: 7, Direction: DirectionOut, MF: true, SK: true, routine: readDiagnostic{}},
		{Name: "scan equal", Code: CmdScanEqual, Params: 8, Results: 7, Direction: DirectionIn, MT: true, MF: true, SK: true, routine: scan{}},
		{Name: "scan high or equal", Code: CmdScanHighOrEqual, Params: 8, Results: 7, Direction: DirectionIn, MT: true, MF: true, SK: true, routine: scan{}},
		{Name: "scan low or equal", Code: CmdScanLowOrEqual, Params: 8, Results: 7, Direction: DirectionIn, MT: true, MF: true, SK: true, routine: scan{}},
		{Name: "read deleted data", Code: CmdReadDeletedData, Params: 8, Results: 7, Direction: DirectionOut, MT: true, MF: true, SK: true, routine: readData{deleted: true}},
		{Name: "write id", Code: CmdWriteID, Params: 5, Results: 7, Direction: DirectionIn, MF: true, routine: writeID{}},
		{Name: "write data", Code: CmdWriteData, Params: 8, Results: 7, Direction: DirectionIn, MT: true, MF: true, routine: writeData{}},
		{Name: "write deleted data", Code: CmdWriteDeletedData, Params: 8, Results: 7, Direction: DirectionIn, MT: true, MF: true, routine: writeData{}},
		{Name: "recalibrate", Code: CmdRecalibrate, Params: 1, Results: 0, Direction: DirectionOut, routine: recalibrate{}},
		{Name: "sense interrupt status", Code: CmdSenseInterrupt, Params: 0, Results: 2, Direction: DirectionOut, routine: senseInterrupt{}},
		{Name: "sense drive status", Code: CmdSenseDriveStatus, Params: 1, Results: 1, Direction: DirectionOut, routine: senseDrive{}},
		{Name: "seek", Code: CmdSeek, Params: 2, Results: 0, Direction: DirectionOut, routine: seek{}},
		{Name: "version", Code: CmdVersion, Params: 0, Results: 1, Direction: DirectionOut, routine: invalid{}},
		{Name: "invalid", Code: CmdInvalid, Params: 0, Results: 1, Direction: DirectionOut, routine: invalid{}},
	}
}

// lookup returns the table index for a masked opcode, or the invalid entry.
func lookup(table []Command, code byte) int {
	for i := range table[:len(table)-1] {
		if table[i].Code == code {
			return i
		}
	}
	return len(table) - 1
}

// Parameters is the scratch record filled from the parameter bytes of the
// active command. It is reset whenever a new command byte arrives.
type Parameters struct {
	UnitSelect  byte
	Side        byte
	Cylinder    byte // C
	Head        byte // H
	Sector      byte // R
	SectorSize  byte // N
	EOT         byte // final sector number on the cylinder
	Gap3Length  byte
	DTL         byte // data length when N is 0
	STP         byte // scan step
	SectorCount byte // write id: sectors per cylinder
	Filler      byte // write id: data pattern
}

// Positions within the command buffer for the standard 8 parameter layout.
const (
	parHead = iota
	parC
	parH
	parR
	parN
	parEOT
	parGPL
	parDTL
)

// parseStandard decodes the byte at index of the standard read/write layout:
// HD/US, C, H, R, N, EOT, GPL, DTL.
func (c *Controller) parseStandard(index int, b byte) {
	switch index {
	case parHead:
		c.params.Side = (b >> 2) & 1
		c.params.UnitSelect = b & 3
		c.drive = int(c.params.UnitSelect)
	case parC:
		c.params.Cylinder = b
	case parH:
		c.params.Head = b
	case parR:
		c.params.Sector = b
	case parN:
		c.params.SectorSize = b
	case parEOT:
		c.params.EOT = b
	case parGPL:
		c.params.Gap3Length = b
	case parDTL:
		c.params.DTL = b
	}
}

// collect stores one parameter byte, decodes it with parse and reports
// whether it was the last one the active command expects.
func (c *Controller) collect(b byte, parse func(index int, b byte)) bool {
	if c.commCounter < len(c.commBuffer) {
		c.commBuffer[c.commCounter] = b
	}
	parse(c.commCounter, b)
	c.commCounter++
	return c.commCounter >= c.active.Params
}
