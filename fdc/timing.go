package fdc

const (
	// 300 rpm.
	revolutionMs = 200

	// How long the index hole stays under the sensor.
	indexPulseMs = 4
)

// Tick advances the controller's timers by ms milliseconds of emulated time.
func (c *Controller) Tick(ms int) {
	if ms <= 0 {
		return
	}

	c.srtCounter = countDown(c.srtCounter, ms)
	c.hltCounter = countDown(c.hltCounter, ms)
	c.hutCounter = countDown(c.hutCounter, ms)

	c.indexCounter -= ms
	for c.indexCounter <= 0 {
		c.indexCounter += revolutionMs
		c.indexPulses++
	}
}

func countDown(counter, ms int) int {
	if counter <= ms {
		return 0
	}
	return counter - ms
}

// loadHead starts the head load delay.
func (c *Controller) loadHead() {
	c.hltCounter = c.hlt
	c.hutCounter = 0
}

// unloadHead starts the head unload delay after an execution phase.
func (c *Controller) unloadHead() {
	c.hutCounter = c.hut
	c.hltCounter = 0
}

// HeadLoaded reports whether the head is on the disk surface: the load
// time has elapsed during an execution phase, or the unload time has not
// yet run out after one.
func (c *Controller) HeadLoaded() bool {
	if c.phase == PhaseExecution {
		return c.hltCounter == 0
	}
	return c.hutCounter > 0
}

// Stepping reports whether the last seek is still moving the head.
func (c *Controller) Stepping() bool {
	return c.srtCounter > 0
}

// IndexPulse reports whether the index hole is passing the sensor.
func (c *Controller) IndexPulse() bool {
	return c.indexCounter > revolutionMs-indexPulseMs
}

// Revolutions returns how many index pulses have been seen since reset.
func (c *Controller) Revolutions() int {
	return c.indexPulses
}
