package fdc

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const snapshotVersion = 1

// snapshot is the fixed-size save-state layout of a Controller.
type snapshot struct {
	Version  uint8
	Phase    uint8
	CmdIndex uint8
	Drive    uint8

	Params Parameters

	CommBuffer  [commandBufferSize]byte
	CommCounter int32

	ResBuffer  [resultBufferSize]byte
	ResCounter int32
	ResLength  int32

	ExecBuffer  [executionBufferSize]byte
	ExecCounter int32
	ExecLength  int32
	TransferCap int32

	MT, MF, SK bool

	SRT, HUT, HLT int32
	NonDMA        bool

	SRTCounter, HUTCounter, HLTCounter int32
	IndexCounter                       int32
	IndexPulses                        int32

	Status [4]uint8

	LastReceived uint8
	LastSent     uint8

	Seek       [MaxDrives]uint8
	DriveLight bool
}

// MarshalBinary encodes the controller state. Drive state is not included.
func (c *Controller) MarshalBinary() ([]byte, error) {
	s := snapshot{
		Version:      snapshotVersion,
		Phase:        uint8(c.phase),
		CmdIndex:     uint8(c.cmdIndex),
		Drive:        uint8(c.drive),
		Params:       c.params,
		CommBuffer:   c.commBuffer,
		CommCounter:  int32(c.commCounter),
		ResBuffer:    c.resBuffer,
		ResCounter:   int32(c.resCounter),
		ResLength:    int32(c.resLength),
		ExecBuffer:   c.execBuffer,
		ExecCounter:  int32(c.execCounter),
		ExecLength:   int32(c.execLength),
		TransferCap:  int32(c.transferCap),
		MT:           c.flagMT,
		MF:           c.flagMF,
		SK:           c.flagSK,
		SRT:          int32(c.srt),
		HUT:          int32(c.hut),
		HLT:          int32(c.hlt),
		NonDMA:       c.nonDMA,
		SRTCounter:   int32(c.srtCounter),
		HUTCounter:   int32(c.hutCounter),
		HLTCounter:   int32(c.hltCounter),
		IndexCounter: int32(c.indexCounter),
		IndexPulses:  int32(c.indexPulses),
		Status:       c.Status(),
		LastReceived: c.lastReceived,
		LastSent:     c.lastSent,
		DriveLight:   c.driveLight,
	}
	for i, st := range c.seek {
		s.Seek[i] = uint8(st)
	}

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, &s); err != nil {
		return nil, errors.Wrap(err, "encoding controller state")
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores state written by MarshalBinary.
func (c *Controller) UnmarshalBinary(data []byte) error {
	var s snapshot
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &s); err != nil {
		return errors.Wrap(err, "decoding controller state")
	}

	if s.Version != snapshotVersion {
		return errors.Errorf("unsupported controller state version %d", s.Version)
	}
	if Phase(s.Phase) > PhaseResult {
		return errors.Errorf("invalid phase %d", s.Phase)
	}
	if c.table == nil {
		c.table = commandTable()
	}
	if int(s.CmdIndex) >= len(c.table) {
		return errors.Errorf("invalid command index %d", s.CmdIndex)
	}
	if int(s.Drive) >= MaxDrives {
		return errors.Errorf("invalid drive %d", s.Drive)
	}

	c.phase = Phase(s.Phase)
	c.selectCommand(int(s.CmdIndex))
	c.drive = int(s.Drive)
	c.params = s.Params
	c.commBuffer = s.CommBuffer
	c.commCounter = int(s.CommCounter)
	c.resBuffer = s.ResBuffer
	c.resCounter = int(s.ResCounter)
	c.resLength = int(s.ResLength)
	c.execBuffer = s.ExecBuffer
	c.execCounter = int(s.ExecCounter)
	c.execLength = int(s.ExecLength)
	c.transferCap = int(s.TransferCap)
	c.flagMT, c.flagMF, c.flagSK = s.MT, s.MF, s.SK
	c.srt, c.hut, c.hlt = int(s.SRT), int(s.HUT), int(s.HLT)
	c.nonDMA = s.NonDMA
	c.srtCounter = int(s.SRTCounter)
	c.hutCounter = int(s.HUTCounter)
	c.hltCounter = int(s.HLTCounter)
	c.indexCounter = int(s.IndexCounter)
	c.indexPulses = int(s.IndexPulses)
	c.st0 = Register(s.Status[0])
	c.st1 = Register(s.Status[1])
	c.st2 = Register(s.Status[2])
	c.st3 = Register(s.Status[3])
	c.lastReceived = s.LastReceived
	c.lastSent = s.LastSent
	for i, st := range s.Seek {
		if SeekState(st) > SeekAcknowledged {
			return errors.Errorf("invalid seek state %d for drive %d", st, i)
		}
		c.seek[i] = SeekState(st)
	}
	c.driveLight = s.DriveLight

	return nil
}
