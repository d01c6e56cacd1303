package fdc

import (
	log "github.com/sirupsen/logrus"
)

// Seek, Recalibrate and the two sense commands. Head movement is
// instantaneous; the step rate only drives the Stepping timer.

// seek moves the head of the addressed drive to a new cylinder.
//
//	COMMAND:   2 parameter bytes (HD/US, NCN)
//	EXECUTION: head movement, no data
//	RESULT:    none
type seek struct{}

func (seek) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	if phase != PhaseCommand {
		return phase, 0
	}

	done := c.collect(data, func(index int, b byte) {
		switch index {
		case 0:
			c.parseStandard(parHead, b)
		case 1:
			c.params.Cylinder = b
		}
	})
	if !done {
		return PhaseCommand, 0
	}

	from := c.drives.CurrentTrack(c.drive)
	to := int(c.params.Cylinder)
	if c.drives.Exists(c.drive) {
		c.drives.SetCurrentTrack(c.drive, to)
	}

	delta := to - from
	if delta < 0 {
		delta = -delta
	}
	c.srtCounter = c.srt * delta

	c.seek[c.drive] = Seeking
	log.Debugf("fdc: drive %d seek %d -> %d", c.drive, from, to)

	return PhaseIdle, 0
}

// recalibrate returns the head of the addressed drive to track 0.
//
//	COMMAND:   1 parameter byte (US)
//	EXECUTION: head movement, no data
//	RESULT:    none
type recalibrate struct{}

func (recalibrate) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	if phase != PhaseCommand {
		return phase, 0
	}
	if !c.collect(data, c.parseStandard) {
		return PhaseCommand, 0
	}

	from := c.drives.CurrentTrack(c.drive)
	if c.drives.Exists(c.drive) {
		c.drives.SetCurrentTrack(c.drive, 0)
		c.drives.SetSectorIndex(c.drive, 0)
	}
	c.srtCounter = c.srt * from

	c.seek[c.drive] = Recalibrating
	log.Debugf("fdc: drive %d recalibrate from %d", c.drive, from)

	return PhaseIdle, 0
}

// senseInterrupt reports the end of a seek or recalibrate on the last
// selected drive.
//
//	COMMAND:   no parameters
//	EXECUTION: none
//	RESULT:    ST0 and PCN, or ST0 alone when nothing is pending
type senseInterrupt struct{}

func (senseInterrupt) Step(c *Controller, phase Phase, _ byte) (Phase, byte) {
	c.clearResult()
	c.clearStatus()

	switch c.seek[c.drive] {
	case Seeking, Recalibrating:
		c.st0.SetBit(ST0SeekEnd)
		c.resBuffer[0] = byte(c.st0)
		c.resBuffer[1] = byte(c.drives.CurrentTrack(c.drive))
		c.resLength = 2
		c.seek[c.drive] = SeekAcknowledged

	case SeekAcknowledged:
		c.st0.SetBit(ST0InvalidCommand | ST0AbnormalTermination)
		c.resBuffer[0] = byte(c.st0)
		c.resLength = 1
		c.seek[c.drive] = SeekIdle

	default:
		c.st0.SetBit(ST0InvalidCommand)
		c.resBuffer[0] = byte(c.st0)
		c.resLength = 1
	}

	return PhaseResult, 0
}

// senseDrive returns ST3 for the addressed drive.
//
//	COMMAND:   1 parameter byte (HD/US)
//	EXECUTION: none
//	RESULT:    ST3
type senseDrive struct{}

func (senseDrive) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	if phase != PhaseCommand {
		return phase, 0
	}
	if !c.collect(data, c.parseStandard) {
		return PhaseCommand, 0
	}

	c.clearResult()
	c.st3 = Register(c.params.UnitSelect & (ST3UnitSelect0 | ST3UnitSelect1))

	if c.drive != 0 {
		// Only drive 0 is fitted.
		c.st3.SetBit(ST3Fault)
	} else {
		if c.params.Side != 0 {
			c.st3.SetBit(ST3Head)
		}
		if c.drives.IsWriteProtected(c.drive) {
			c.st3.SetBit(ST3WriteProtected)
		}
		if c.drives.IsAtTrackZero(c.drive) {
			c.st3.SetBit(ST3TrackZero)
		}
		if c.drives.IsReady(c.drive) {
			c.st3.SetBit(ST3Ready)
		}
	}

	c.resBuffer[0] = byte(c.st3)
	return PhaseResult, 0
}
