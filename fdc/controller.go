// Package fdc emulates the NEC uPD765A / Intel 8272 floppy disk controller
// as found in the Amstrad CPC, PCW and Spectrum +3.
//
// The host CPU talks to the chip through two registers: the main status
// register (read only) and the data register. Every command runs to
// completion inside the register access that triggers it; there is no
// background execution. Tick advances the drive timing counters.
//
// References:
//
//	http://www.cpcwiki.eu/index.php/765_FDC
//	http://www.cpcwiki.eu/imgs/f/f3/UPD765_Datasheet_OCRed.pdf
package fdc

import (
	log "github.com/sirupsen/logrus"
)

// Controller is the state of one uPD765.
type Controller struct {
	drives Drives
	table  []Command

	phase    Phase
	cmdIndex int
	active   *Command
	params   Parameters

	// Parameter bytes, without the command byte.
	commBuffer  [commandBufferSize]byte
	commCounter int

	resBuffer  [resultBufferSize]byte
	resCounter int
	resLength  int

	// Sector data handed out during the execution phase. execCounter counts
	// down the bytes still to transfer.
	execBuffer  [executionBufferSize]byte
	execCounter int
	execLength  int
	transferCap int

	flagMT, flagMF, flagSK bool

	// Specify timings, in milliseconds.
	srt, hut, hlt int
	nonDMA        bool

	srtCounter, hutCounter, hltCounter int
	indexCounter                       int
	indexPulses                        int

	st0, st1, st2, st3 Register

	lastReceived byte
	lastSent     byte

	seek  [MaxDrives]SeekState
	drive int

	driveLight bool
}

// New returns a controller in the idle phase wired to drives.
func New(drives Drives) *Controller {
	c := &Controller{
		drives: drives,
		table:  commandTable(),
	}
	c.Reset()
	return c
}

// Reset puts the controller in its power-on state. Drive positions are not
// touched.
func (c *Controller) Reset() {
	c.selectCommand(len(c.table) - 1)
	c.phase = PhaseIdle
	c.params = Parameters{}
	c.commBuffer = [commandBufferSize]byte{}
	c.commCounter = 0
	c.resBuffer = [resultBufferSize]byte{}
	c.resCounter, c.resLength = 0, 0
	c.clearExec()
	c.flagMT, c.flagMF, c.flagSK = false, false, false
	c.srt, c.hut, c.hlt, c.nonDMA = 0, 0, 0, false
	c.srtCounter, c.hutCounter, c.hltCounter = 0, 0, 0
	c.indexCounter = revolutionMs
	c.indexPulses = 0
	c.clearStatus()
	c.lastReceived, c.lastSent = 0, 0
	c.seek = [MaxDrives]SeekState{}
	c.drive = 0
	c.driveLight = false

	log.Debug("fdc: reset")
}

// selectCommand makes the table entry at index the active command.
func (c *Controller) selectCommand(index int) {
	c.cmdIndex = index
	c.active = &c.table[index]
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// ActiveCommand returns the descriptor of the command being processed.
func (c *Controller) ActiveCommand() Command {
	return *c.active
}

// Params returns the decoded parameters of the current command.
func (c *Controller) Params() Parameters {
	return c.params
}

// Status returns ST0..ST3.
func (c *Controller) Status() [4]byte {
	return [4]byte{byte(c.st0), byte(c.st1), byte(c.st2), byte(c.st3)}
}

// SeekState returns the interrupt state of drive.
func (c *Controller) SeekState(drive int) SeekState {
	return c.seek[drive&3]
}

// Timings returns the step rate, head unload and head load times set by the
// last Specify command, in milliseconds, and the non-DMA flag.
func (c *Controller) Timings() (srt, hut, hlt int, nonDMA bool) {
	return c.srt, c.hut, c.hlt, c.nonDMA
}

// DriveLight reports whether the drive activity light is on: it lights when
// a read enters the execution phase and goes out once results are read.
func (c *Controller) DriveLight() bool {
	return c.driveLight
}

// ReadMainStatus returns the main status register. It is derived from the
// phase on every call.
func (c *Controller) ReadMainStatus() byte {
	msr := Register(MSRRequest)

	switch c.phase {
	case PhaseCommand:
		msr.SetBit(MSRBusy)
	case PhaseExecution:
		if c.active.Direction == DirectionOut {
			msr.SetBit(MSRDataOut)
		}
		msr.SetBit(MSRExecution | MSRBusy)
	case PhaseResult:
		msr.SetBit(MSRDataOut | MSRBusy)
	}

	// Only drive 0 reports seek activity.
	if c.seek[0].pending() {
		msr.SetBit(MSRDrive0Busy)
	}

	return byte(msr)
}

// ReadData handles a CPU read of the data register. Outside the execution
// and result phases, or when the controller expects input, it returns 0xFF.
func (c *Controller) ReadData() byte {
	msr := Register(c.ReadMainStatus())
	if !msr.Test(MSRRequest) || !msr.Test(MSRDataOut) {
		return 0xFF
	}

	switch c.phase {
	case PhaseExecution:
		next, b := c.active.routine.Step(c, PhaseExecution, 0)
		c.setPhase(next)
		return b

	case PhaseResult:
		c.driveLight = false

		var b byte = 0xFF
		if c.resCounter < len(c.resBuffer) {
			b = c.resBuffer[c.resCounter]
		}
		c.resCounter++

		if c.resCounter >= c.resLength {
			c.setPhase(PhaseIdle)
		}
		return b
	}

	return 0xFF
}

// WriteData handles a CPU write to the data register. The byte is dropped
// unless the controller is ready to receive.
func (c *Controller) WriteData(b byte) {
	msr := Register(c.ReadMainStatus())
	if !msr.Test(MSRRequest) || msr.Test(MSRDataOut) {
		log.Debugf("fdc: write %02X ignored in %s phase", b, c.phase)
		return
	}

	c.lastReceived = b

	switch c.phase {
	case PhaseIdle:
		c.parseCommandByte(b)
	case PhaseCommand:
		next, _ := c.active.routine.Step(c, PhaseCommand, b)
		c.setPhase(next)
	case PhaseExecution:
		next, _ := c.active.routine.Step(c, PhaseExecution, b)
		c.setPhase(next)
	}
}

// parseCommandByte decodes the first byte of an instruction and enters the
// command phase. Unknown opcodes, and flags the command does not accept,
// select the invalid command.
func (c *Controller) parseCommandByte(b byte) {
	c.commCounter = 0
	c.resCounter = 0

	c.flagSK = b&flagSK != 0
	c.flagMF = b&flagMF != 0
	c.flagMT = b&flagMT != 0

	c.selectCommand(lookup(c.table, b&^flagMask))
	if !c.active.allows(b) {
		c.selectCommand(len(c.table) - 1)
	}

	c.params = Parameters{}
	c.execCounter, c.execLength = 0, 0
	c.resLength = c.active.Results

	log.Debugf("fdc: command %02X %s (mt=%v mf=%v sk=%v)", b, c.active.Name, c.flagMT, c.flagMF, c.flagSK)

	c.setPhase(PhaseCommand)

	if c.active.Params == 0 {
		c.setPhase(PhaseExecution)
		next, _ := c.active.routine.Step(c, PhaseExecution, 0)
		c.setPhase(next)
	}
}

func (c *Controller) setPhase(p Phase) {
	if p == c.phase {
		return
	}
	// Commands without a data transfer pass through execution with the
	// head left alone.
	if c.phase == PhaseExecution && c.execLength > 0 {
		c.unloadHead()
	}
	if p == PhaseResult {
		log.Debugf("fdc: %s result % X", c.active.Name, c.resBuffer[:min(c.resLength, len(c.resBuffer))])
	}
	log.Debugf("fdc: %s -> %s", c.phase, p)
	c.phase = p
}

func (c *Controller) clearStatus() {
	c.st0, c.st1, c.st2, c.st3 = 0, 0, 0, 0
}

func (c *Controller) clearResult() {
	c.resBuffer = [resultBufferSize]byte{}
}

func (c *Controller) clearExec() {
	c.execBuffer = [executionBufferSize]byte{}
	c.execCounter, c.execLength = 0, 0
}

// commitCHRN copies the (possibly advanced) command address to the result.
func (c *Controller) commitCHRN() {
	c.resBuffer[resC] = c.params.Cylinder
	c.resBuffer[resH] = c.params.Head
	c.resBuffer[resR] = c.params.Sector
	c.resBuffer[resN] = c.params.SectorSize
}

// commitStatus copies ST0..ST2 to the result after normalising them: end
// of cylinder is dropped when an error is reported, and a control mark only
// stands when no CRC error was seen, in which case the command is reported
// as completed normally.
func (c *Controller) commitStatus() {
	if c.st1.Test(st1Errors) || c.st2.Test(st2Errors) {
		c.st1.ClearBit(ST1EndOfCylinder)
	}

	if c.st1.Test(ST1DataError) || c.st2.Test(ST2DataErrorInDataField) {
		c.st2.ClearBit(ST2ControlMark)
	} else if c.st2.Test(ST2ControlMark) {
		c.st0.ClearBit(ST0AbnormalTermination | ST0UnitSelect0)
	}

	c.resBuffer[resST0] = byte(c.st0)
	c.resBuffer[resST1] = byte(c.st1)
	c.resBuffer[resST2] = byte(c.st2)
}

// finish fills the standard seven result bytes and moves to the result phase.
func (c *Controller) finish() Phase {
	c.commitCHRN()
	c.commitStatus()
	return PhaseResult
}

// abort terminates the command abnormally with the extra ST0 bits set.
func (c *Controller) abort(st0 byte) Phase {
	c.st0.SetBit(ST0AbnormalTermination | st0)
	c.st0.ClearBit(ST0InvalidCommand)
	return c.finish()
}

// notReady is the result for a missing disk or an unreadable track.
func (c *Controller) notReady() Phase {
	return c.abort(ST0NotReady)
}

// beginExecution hands n bytes of the execution buffer to the CPU. With
// nothing to transfer the controller goes straight to the result phase.
func (c *Controller) beginExecution(n int) Phase {
	c.execLength = n
	c.execCounter = n
	if n == 0 {
		return PhaseResult
	}
	c.driveLight = true
	c.loadHead()
	return PhaseExecution
}

// shiftOut returns the next execution byte, in disk order.
func (c *Controller) shiftOut() (Phase, byte) {
	if c.execCounter <= 0 {
		return PhaseResult, 0xFF
	}
	c.lastSent = c.execBuffer[c.execLength-c.execCounter]
	c.execCounter--
	if c.execCounter <= 0 {
		return PhaseResult, c.lastSent
	}
	return PhaseExecution, c.lastSent
}
