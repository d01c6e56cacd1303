package fdc

// Write Data, Write Deleted Data and Write ID. Images are mounted read only:
// the parameters are decoded and the command terminates with the result a
// write-protected disk gives.

// writeData is Write Data and Write Deleted Data.
//
//	COMMAND:   8 parameter bytes
//	EXECUTION: none, the disk is never written
//	RESULT:    7 result bytes
type writeData struct{}

func (writeData) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	switch phase {
	case PhaseCommand:
		if !c.collect(data, c.parseStandard) {
			return PhaseCommand, 0
		}
		return c.refuseWrite(), 0
	}
	return phase, 0
}

// Positions within the command buffer for Write ID.
const (
	parWIDHead = iota
	parWIDN
	parWIDSC
	parWIDGPL
	parWIDFiller
)

// writeID formats a track.
//
//	COMMAND:   5 parameter bytes (HD/US, N, SC, GPL, D)
//	EXECUTION: none, the disk is never written
//	RESULT:    7 result bytes
type writeID struct{}

func (writeID) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	switch phase {
	case PhaseCommand:
		done := c.collect(data, func(index int, b byte) {
			switch index {
			case parWIDHead:
				c.parseStandard(parHead, b)
			case parWIDN:
				c.params.SectorSize = b
			case parWIDSC:
				c.params.SectorCount = b
			case parWIDGPL:
				c.params.Gap3Length = b
			case parWIDFiller:
				c.params.Filler = b
			}
		})
		if !done {
			return PhaseCommand, 0
		}
		return c.refuseWrite(), 0
	}
	return phase, 0
}

// refuseWrite ends a write command: not ready without a disk, otherwise
// abnormal termination with NW.
func (c *Controller) refuseWrite() Phase {
	c.clearExec()
	c.clearStatus()

	if !c.drives.IsReady(c.drive) {
		return c.notReady()
	}

	c.st1.SetBit(ST1NotWriteable)
	return c.abort(c.params.UnitSelect)
}
