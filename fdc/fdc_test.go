package fdc

// fakeDrives models drive 0 only, like the machines the controller ships in.
type fakeDrives struct {
	ready     bool
	protected bool
	track     [MaxDrives]int
	index     [MaxDrives]int
	tracks    map[int]Track
}

func newFakeDrives(tracks ...Track) *fakeDrives {
	d := &fakeDrives{ready: len(tracks) > 0, tracks: make(map[int]Track)}
	for _, t := range tracks {
		d.tracks[t.Number] = t
	}
	return d
}

func (d *fakeDrives) Exists(drive int) bool           { return drive == 0 }
func (d *fakeDrives) IsReady(drive int) bool          { return drive == 0 && d.ready }
func (d *fakeDrives) IsWriteProtected(drive int) bool { return d.protected }
func (d *fakeDrives) IsAtTrackZero(drive int) bool    { return d.track[drive] == 0 }
func (d *fakeDrives) CurrentTrack(drive int) int      { return d.track[drive] }
func (d *fakeDrives) SetCurrentTrack(drive, track int) {
	d.track[drive] = track
}
func (d *fakeDrives) SectorIndex(drive int) int { return d.index[drive] }
func (d *fakeDrives) SetSectorIndex(drive, index int) {
	d.index[drive] = index
}

func (d *fakeDrives) LookupTrack(drive, track int) (Track, bool) {
	if drive != 0 {
		return Track{}, false
	}
	t, ok := d.tracks[track]
	return t, ok
}

// formatTrack builds a track of count sectors with IDs 1..count, each
// filled with its own sector ID.
func formatTrack(cyl, count int, n byte) Track {
	t := Track{Number: cyl}
	for r := 1; r <= count; r++ {
		data := make([]byte, 128<<n)
		for i := range data {
			data[i] = byte(r)
		}
		t.Sectors = append(t.Sectors, Sector{C: byte(cyl), H: 0, R: byte(r), N: n, Data: data})
	}
	return t
}

// send writes a complete instruction to the data register.
func send(c *Controller, b ...byte) {
	for _, v := range b {
		c.WriteData(v)
	}
}

// drainExecution reads execution bytes until the result phase.
func drainExecution(c *Controller) []byte {
	var data []byte
	for c.Phase() == PhaseExecution {
		data = append(data, c.ReadData())
	}
	return data
}

// readResult reads result bytes until the controller is idle.
func readResult(c *Controller) []byte {
	var res []byte
	for c.Phase() == PhaseResult {
		res = append(res, c.ReadData())
	}
	return res
}
