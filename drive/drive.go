// Package drive models the floppy drives attached to the controller.
package drive

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"upd765/amstrad"
	"upd765/fdc"
)

// Unit is one drive.
type Unit struct {
	image        amstrad.Image
	writeProtect bool

	track       int
	sectorIndex int

	// Side 0 tracks of the inserted image, converted on first use.
	tracks map[int]fdc.Track
}

// Inserted reports whether a disk is in the drive.
func (u *Unit) Inserted() bool {
	return u.image != nil
}

func (u *Unit) ready() bool {
	return u.image != nil && u.image.Cylinders() > 0
}

func (u *Unit) lookup(cylinder int) (fdc.Track, bool) {
	if u.image == nil {
		return fdc.Track{}, false
	}
	if t, ok := u.tracks[cylinder]; ok {
		return t, true
	}
	t, ok := u.image.Track(cylinder, 0)
	if !ok {
		return fdc.Track{}, false
	}
	u.tracks[cylinder] = t
	return t, true
}

// Bank is the set of drives wired to one controller. Only the first
// `fitted` units exist; the others behave as empty sockets.
type Bank struct {
	units  [fdc.MaxDrives]Unit
	fitted int
}

// NewBank returns a bank with fitted drives, numbered from 0.
func NewBank(fitted int) *Bank {
	if fitted < 1 {
		fitted = 1
	}
	if fitted > fdc.MaxDrives {
		fitted = fdc.MaxDrives
	}
	return &Bank{fitted: fitted}
}

func (b *Bank) unit(drive int) (*Unit, error) {
	if drive < 0 || drive >= b.fitted {
		return nil, errors.Errorf("drive %d not fitted", drive)
	}
	return &b.units[drive], nil
}

// Insert puts a disk in a drive, replacing any disk already there.
func (b *Bank) Insert(drive int, image amstrad.Image) error {
	u, err := b.unit(drive)
	if err != nil {
		return err
	}
	if image == nil {
		return errors.New("no disk image")
	}

	u.image = image
	u.tracks = make(map[int]fdc.Track)
	u.sectorIndex = 0

	log.Debugf("drive %d: inserted disk, %d cylinders, %d sides", drive, image.Cylinders(), image.Sides())
	return nil
}

// Eject removes the disk from a drive.
func (b *Bank) Eject(drive int) error {
	u, err := b.unit(drive)
	if err != nil {
		return err
	}

	u.image = nil
	u.tracks = nil

	log.Debugf("drive %d: ejected", drive)
	return nil
}

// SetWriteProtect sets the write-protect tab of a drive's disk.
func (b *Bank) SetWriteProtect(drive int, protect bool) error {
	u, err := b.unit(drive)
	if err != nil {
		return err
	}
	u.writeProtect = protect
	return nil
}

// Exists implements fdc.Drives.
func (b *Bank) Exists(drive int) bool {
	return drive >= 0 && drive < b.fitted
}

// IsReady implements fdc.Drives.
func (b *Bank) IsReady(drive int) bool {
	return b.Exists(drive) && b.units[drive].ready()
}

// IsWriteProtected implements fdc.Drives.
func (b *Bank) IsWriteProtected(drive int) bool {
	return b.Exists(drive) && b.units[drive].writeProtect
}

// IsAtTrackZero implements fdc.Drives.
func (b *Bank) IsAtTrackZero(drive int) bool {
	return b.Exists(drive) && b.units[drive].track == 0
}

// CurrentTrack implements fdc.Drives.
func (b *Bank) CurrentTrack(drive int) int {
	if !b.Exists(drive) {
		return 0
	}
	return b.units[drive].track
}

// SetCurrentTrack implements fdc.Drives. Cylinders past the end of the disk
// are reachable and hold no track.
func (b *Bank) SetCurrentTrack(drive, track int) {
	if !b.Exists(drive) {
		return
	}
	u := &b.units[drive]
	if track < 0 {
		track = 0
	}
	u.track = track
}

// SectorIndex implements fdc.Drives.
func (b *Bank) SectorIndex(drive int) int {
	if !b.Exists(drive) {
		return 0
	}
	return b.units[drive].sectorIndex
}

// SetSectorIndex implements fdc.Drives.
func (b *Bank) SetSectorIndex(drive, index int) {
	if !b.Exists(drive) {
		return
	}
	b.units[drive].sectorIndex = index
}

// LookupTrack implements fdc.Drives.
func (b *Bank) LookupTrack(drive, track int) (fdc.Track, bool) {
	if !b.Exists(drive) {
		return fdc.Track{}, false
	}
	return b.units[drive].lookup(track)
}
