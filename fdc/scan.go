package fdc

// scan is Scan Equal, Scan Low or Equal and Scan High or Equal. Comparison
// against the disk is not performed; the command always reports scan not
// satisfied.
//
//	COMMAND:   8 parameter bytes (STP in place of DTL)
//	EXECUTION: none
//	RESULT:    7 result bytes
type scan struct{}

func (scan) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	switch phase {
	case PhaseCommand:
		done := c.collect(data, func(index int, b byte) {
			if index == parDTL {
				c.params.STP = b
				return
			}
			c.parseStandard(index, b)
		})
		if !done {
			return PhaseCommand, 0
		}

		c.clearExec()
		c.clearStatus()
		if !c.drives.IsReady(c.drive) {
			return c.notReady(), 0
		}
		c.st2.SetBit(ST2ScanNotSatisfied)
		return c.abort(c.params.UnitSelect), 0
	}
	return phase, 0
}
