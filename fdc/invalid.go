package fdc

// invalid answers any opcode the controller does not implement with a single
// ST0 byte of 0x80.
type invalid struct{}

func (invalid) Step(c *Controller, _ Phase, _ byte) (Phase, byte) {
	c.clearResult()
	c.clearStatus()
	c.st0.SetBit(ST0InvalidCommand)
	c.resBuffer[0] = byte(c.st0)
	c.resLength = 1
	return PhaseResult, 0
}
