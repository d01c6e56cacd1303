package fdc

// Read Data, Read Deleted Data, Read Diagnostic and Read ID.

// Maximum bytes per track for each size code, FM then MFM.
var transferCapacity = map[byte][2]int{
	1: {3840, 6656},
	2: {4096, 7680},
	3: {4096, 8192},
}

// Size code 0 in FM mode.
const fmDTLCapacity = 3328

// readData is Read Data, or Read Deleted Data when deleted is set. The two
// differ only in which data address mark is the unwanted one.
//
//	COMMAND:   8 parameter bytes
//	EXECUTION: sector data from the FDD to the CPU
//	RESULT:    7 result bytes
type readData struct {
	deleted bool
}

func (r readData) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	switch phase {
	case PhaseCommand:
		if !c.collect(data, c.parseStandard) {
			return PhaseCommand, 0
		}
		return r.start(c), 0
	case PhaseExecution:
		return c.shiftOut()
	}
	return phase, 0
}

func (r readData) start(c *Controller) Phase {
	c.clearExec()
	c.clearStatus()

	// Only drive 0 is fitted; Read Data addressed elsewhere reads it anyway.
	if !r.deleted && c.drive != 0 {
		c.drive = 0
	}

	if !c.drives.IsReady(c.drive) {
		return c.notReady()
	}

	limit := c.transferLimit()

	track, ok := c.currentTrack()
	if !ok {
		return c.notReady()
	}

	pos := 0
	for {
		terminate := false

		sector, ok := c.findSector(track)
		if !ok {
			c.st1.SetBit(ST1NoData)
			return c.abort(0)
		}

		c.st1 = Register(sector.Status1)
		c.st2 = Register(sector.Status2)
		c.st1.ClearBit(ST1EndOfCylinder)

		unwanted := c.st2.Test(ST2ControlMark) != r.deleted

		if c.flagSK && unwanted {
			if c.params.Sector != c.params.EOT {
				c.params.Sector++
				continue
			}
			return c.abort(0)
		}

		pos += c.fill(pos, sector.Data, limit)

		if c.st1.Test(ST1DataError) || c.st2.Test(ST2DataErrorInDataField) {
			c.st0.SetBit(ST0AbnormalTermination)
			c.st0.ClearBit(ST0InvalidCommand)
			terminate = true
		}

		if !c.flagSK && unwanted {
			c.params.EOT = c.params.Sector
			c.st2.SetBit(ST2ControlMark)
			c.st0.SetBit(ST0AbnormalTermination)
			c.st0.ClearBit(ST0InvalidCommand)
			terminate = true
		}

		if sector.R == c.params.EOT || terminate {
			c.endOfSector(track, sector.R)

			c.st0.ClearBit(ST0InvalidCommand)
			if terminate {
				c.st0.SetBit(ST0AbnormalTermination)
			} else {
				c.st0.ClearBit(ST0AbnormalTermination)
			}

			c.finish()
			return c.beginExecution(pos)
		}

		c.params.Sector++
	}
}

// readDiagnostic reads every sector of the track from the index hole,
// whatever its ID, up to EOT sectors.
//
//	COMMAND:   8 parameter bytes
//	EXECUTION: track data from the FDD to the CPU
//	RESULT:    7 result bytes
type readDiagnostic struct{}

func (readDiagnostic) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	switch phase {
	case PhaseCommand:
		if !c.collect(data, c.parseStandard) {
			return PhaseCommand, 0
		}
		return readDiagnostic{}.start(c), 0
	case PhaseExecution:
		return c.shiftOut()
	}
	return phase, 0
}

func (readDiagnostic) start(c *Controller) Phase {
	c.clearExec()
	c.clearStatus()

	if !c.drives.IsReady(c.drive) {
		return c.notReady()
	}

	limit := c.transferLimit()

	track, ok := c.currentTrack()
	if !ok {
		return c.notReady()
	}

	c.drives.SetSectorIndex(c.drive, 0)

	pos, count, last := 0, 0, -1
	for i, s := range track.Sectors {
		if count >= int(c.params.EOT) {
			break
		}

		pos += c.fill(pos, s.Data, limit)

		if s.C != c.params.Cylinder || s.H != c.params.Head ||
			s.R != c.params.Sector || s.N != c.params.SectorSize {
			c.st1.SetBit(ST1NoData)
		}

		count++
		last = i
	}

	if last < 0 {
		return c.finishDiagnostic()
	}

	c.drives.SetSectorIndex(c.drive, last)
	c.endOfSector(track, track.Sectors[last].R)
	c.st0.ClearBit(ST0InterruptCode)

	c.finishDiagnostic()
	return c.beginExecution(pos)
}

// finishDiagnostic commits the result without the error normalisation of
// the other read commands: ND and EN may be reported together.
func (c *Controller) finishDiagnostic() Phase {
	c.commitCHRN()
	c.resBuffer[resST0] = byte(c.st0)
	c.resBuffer[resST1] = byte(c.st1)
	c.resBuffer[resST2] = byte(c.st2)
	return PhaseResult
}

// readID returns the ID field of the next sector to pass under the head.
//
//	COMMAND:   1 parameter byte
//	EXECUTION: none
//	RESULT:    7 result bytes
type readID struct{}

func (readID) Step(c *Controller, phase Phase, data byte) (Phase, byte) {
	if phase != PhaseCommand {
		return phase, 0
	}
	if !c.collect(data, c.parseStandard) {
		return PhaseCommand, 0
	}

	c.clearResult()
	c.clearStatus()
	c.st0.ClearBit(ST0Head)

	if !c.drives.IsReady(c.drive) {
		// The +3 ROM checks for a disk here and falls back to tape.
		c.st0.SetBit(ST0AbnormalTermination | ST0NotReady)
		c.resBuffer[resST0] = byte(c.st0)
		return PhaseResult, 0
	}

	track, ok := c.drives.LookupTrack(c.drive, c.drives.CurrentTrack(c.drive))
	if !ok || len(track.Sectors) == 0 || track.Number == 0xFF {
		c.commitCHRN()
		c.st0.SetBit(ST0AbnormalTermination)
		c.st1.SetBit(ST1MissingAddressMark)
		c.resBuffer[resST0] = byte(c.st0)
		c.resBuffer[resST1] = byte(c.st1)
		return PhaseResult, 0
	}

	n := len(track.Sectors)
	index := c.drives.SectorIndex(c.drive)
	if index < 0 || index >= n {
		index = 0
	}

	s := track.Sectors[index]
	c.resBuffer[resC] = s.C
	c.resBuffer[resH] = s.H
	c.resBuffer[resR] = s.R
	c.resBuffer[resN] = s.N
	c.resBuffer[resST0] = byte(c.st0)

	c.drives.SetSectorIndex(c.drive, (index+1)%n)

	return PhaseResult, 0
}

// transferLimit works out the per-sector transfer length from N and DTL and
// records the track capacity for the density in use. It returns 0 when the
// whole sector is transferred.
func (c *Controller) transferLimit() int {
	density := 0
	if c.flagMF {
		density = 1
	}

	if c.params.SectorSize == 0 {
		// DTL is the sector length; the rest of the sector is not sent.
		c.transferCap = 0
		if !c.flagMF {
			c.transferCap = fmDTLCapacity
		}
		return int(c.params.DTL)
	}

	// DTL has no meaning when N is non-zero.
	c.params.DTL = 0xFF
	c.transferCap = transferCapacity[c.params.SectorSize][density]
	return 0
}

// TransferCapacity returns the track capacity computed for the last read.
func (c *Controller) TransferCapacity() int {
	return c.transferCap
}

// currentTrack returns the track under the head of the selected drive.
func (c *Controller) currentTrack() (Track, bool) {
	track, ok := c.drives.LookupTrack(c.drive, c.drives.CurrentTrack(c.drive))
	if !ok || len(track.Sectors) == 0 {
		return Track{}, false
	}
	return track, true
}

// findSector searches the track for the sector whose ID field matches the
// command's C, H, R and N, starting from the sector under the head. The
// search gives up once every sector has passed.
func (c *Controller) findSector(track Track) (Sector, bool) {
	n := len(track.Sectors)
	index := c.drives.SectorIndex(c.drive)
	if index < 0 || index >= n {
		index = 0
	}

	for i := 0; i < n; i++ {
		s := track.Sectors[index]
		if s.C == c.params.Cylinder && s.H == c.params.Head &&
			s.R == c.params.Sector && s.N == c.params.SectorSize {
			c.st2.ClearBit(ST2BadCylinder | ST2WrongCylinder)
			c.drives.SetSectorIndex(c.drive, index)
			return s, true
		}

		if s.C == 0xFF {
			c.st2.SetBit(ST2BadCylinder)
		} else if s.C != c.params.Cylinder {
			c.st2.SetBit(ST2WrongCylinder)
		}

		index = (index + 1) % n
	}

	return Sector{}, false
}

// fill appends sector data at pos, at most limit bytes when limit is set,
// and returns the number of bytes copied.
func (c *Controller) fill(pos int, data []byte, limit int) int {
	if limit > 0 && len(data) > limit {
		data = data[:limit]
	}
	if pos >= len(c.execBuffer) {
		return 0
	}
	return copy(c.execBuffer[pos:], data)
}

// endOfSector moves the head past the last sector transferred. Leaving the
// final sector of the track ends the cylinder: EN is set and the result
// addresses sector 1 of the next cylinder.
func (c *Controller) endOfSector(track Track, r byte) {
	key := 0
	for i, s := range track.Sectors {
		if s.R == r {
			key = i
			break
		}
	}

	if key == len(track.Sectors)-1 {
		c.st1.SetBit(ST1EndOfCylinder)
		c.params.Cylinder++
		c.params.Sector = 1
		c.drives.SetSectorIndex(c.drive, 0)
		return
	}

	c.drives.SetSectorIndex(c.drive, c.drives.SectorIndex(c.drive)+1)
}
