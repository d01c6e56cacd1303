package fdc

// specify sets the drive timings and the DMA mode.
//
//	COMMAND:   2 parameter bytes (SRT/HUT, HLT/ND)
//	EXECUTION: none
//	RESULT:    none
type specify struct{}

func (specify) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	if phase != PhaseCommand {
		return phase, 0
	}

	done := c.collect(data, func(index int, b byte) {
		switch index {
		case 0:
			// Step rate in 1 ms units counting down from 16; head unload
			// in 16 ms units.
			c.srt = 16 - int(b>>4)
			c.hut = int(b&0x0f) << 4
			if c.hut == 0 {
				c.hut = 255
			}
		case 1:
			// Head load in 2 ms units.
			c.nonDMA = b&0x01 != 0
			c.hlt = int(b & 0xfe)
			if c.hlt == 0 {
				c.hlt = 255
			}
		}
	})
	if !done {
		return PhaseCommand, 0
	}

	return PhaseIdle, 0
}
