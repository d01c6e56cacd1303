package fdc

// MaxDrives is the number of unit-select values the controller can address.
const MaxDrives = 4

// Sector is one sector record on a track, as found in the disk image.
type Sector struct {
	C byte // Cylinder from the ID field
	H byte // Head from the ID field
	R byte // Sector ID
	N byte // Size code, 128 << N bytes

	// Status1 and Status2 carry the ST1/ST2 condition baked into the image
	// (CRC errors, deleted data address mark, ...).
	Status1 byte
	Status2 byte

	Data []byte
}

// ID returns the sector's address.
func (s Sector) ID() SectorID {
	return SectorID{C: s.C, H: s.H, R: s.R, N: s.N}
}

// SectorID is the C, H, R, N address of a sector.
type SectorID struct {
	C, H, R, N byte
}

// Track is the ordered list of sectors found on one physical track.
type Track struct {
	Number  int
	Sectors []Sector
}

// Drives is the drive and disk model the controller queries. Drive numbers
// are unit-select values 0..3.
type Drives interface {
	Exists(drive int) bool
	IsReady(drive int) bool
	IsWriteProtected(drive int) bool
	IsAtTrackZero(drive int) bool

	CurrentTrack(drive int) int
	SetCurrentTrack(drive, track int)

	// SectorIndex is the position of the head within the track's sector
	// list, i.e. the next sector to pass under it.
	SectorIndex(drive int) int
	SetSectorIndex(drive, index int)

	LookupTrack(drive, track int) (Track, bool)
}
