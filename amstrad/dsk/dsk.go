// Amstrad CPCEMU disk images
//
// Both the original `MV - CPC` format, where every track block has the
// size given in the disk header, and the `EXTENDED CPC DSK` format, where
// each track has its own size and each sector its own data length.
//
// Reference: http://www.cpcwiki.eu/index.php/Format:DSK_disk_image_file_format
package dsk

import (
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"upd765/fdc"
	"upd765/storage"
)

const (
	standardSignature = "MV - CPC"
	extendedSignature = "EXTENDED"
	trackSignature    = "Track-Info"

	// Offset of the sector data within a track block.
	sectorDataStartAddress = 0x100

	// A track block holds at most this many sector information entries.
	maxSectorInfo = (sectorDataStartAddress - 0x18) / 8
)

// DiskInformation is the 256 byte disk header.
type DiskInformation struct {
	Signature  [34]uint8  // "MV - CPCEMU Disk-File\r\nDisk-Info\r\n" or "EXTENDED CPC DSK File\r\nDisk-Info\r\n"
	Creator    [14]uint8  // Name of the creator (utility/emulator)
	Tracks     uint8      // Number of tracks (cylinders)
	Sides      uint8      // Number of sides
	TrackSize  uint16     // Size of a track block, standard images only
	TrackSizes [204]uint8 // High byte of each track block size, extended images only
}

// Extended reports whether this is an EXTENDED image.
func (d DiskInformation) Extended() bool {
	return bytes.HasPrefix(d.Signature[:], []byte(extendedSignature))
}

func (d DiskInformation) valid() bool {
	return d.Extended() || bytes.HasPrefix(d.Signature[:], []byte(standardSignature))
}

// trackSize is the size of track block i in the file.
func (d DiskInformation) trackSize(i int) int {
	if d.Extended() {
		return int(d.TrackSizes[i]) << 8
	}
	return int(d.TrackSize)
}

// CreatorName is the creator string without padding.
func (d DiskInformation) CreatorName() string {
	return string(bytes.TrimRight(d.Creator[:], "\x00 "))
}

// TrackHeader is the start of a track block.
type TrackHeader struct {
	Signature   [12]uint8 // "Track-Info\r\n"
	Unused      [4]uint8
	Track       uint8
	Side        uint8
	Unused2     [2]uint8
	SectorSize  uint8 // N, 128 << N bytes
	SectorCount uint8
	Gap3Length  uint8
	FillerByte  uint8
}

// SectorInformation is one entry of the sector information list. The two
// FDC status bytes are what the controller reported when the disk was
// imaged.
type SectorInformation struct {
	Track      uint8 // C
	Side       uint8 // H
	ID         uint8 // R
	Size       uint8 // N
	FDCStatus1 uint8
	FDCStatus2 uint8
	DataLength uint16 // Extended images only
}

// TrackInformation is one parsed track. An unformatted track has no sectors.
type TrackInformation struct {
	TrackHeader
	Sectors    []SectorInformation
	SectorData [][]byte
}

// Formatted reports whether the track has any sectors.
func (t *TrackInformation) Formatted() bool {
	return len(t.Sectors) > 0
}

// DSK is a disk image.
type DSK struct {
	reader *storage.Reader

	Info   DiskInformation
	Tracks []TrackInformation
}

// New returns an image that will be read from reader.
func New(reader *storage.Reader) *DSK {
	return &DSK{reader: reader}
}

// Read parses the whole image.
func (d *DSK) Read() error {
	if err := d.reader.ReadLE(&d.Info); err != nil {
		return errors.Wrap(err, "disk information")
	}
	if !d.Info.valid() {
		return errors.Errorf("invalid disk signature: '%s'", bytes.TrimRight(d.Info.Signature[:], "\x00"))
	}

	count := int(d.Info.Tracks) * int(d.Info.Sides)
	if d.Info.Extended() && count > len(d.Info.TrackSizes) {
		return errors.Errorf("too many tracks: %d", count)
	}

	d.Tracks = make([]TrackInformation, 0, count)

	for i := 0; i < count; i++ {
		cylinder, side := i/int(d.Info.Sides), i%int(d.Info.Sides)

		size := d.Info.trackSize(i)
		if size == 0 {
			empty := TrackInformation{}
			empty.Track, empty.Side = uint8(cylinder), uint8(side)
			d.Tracks = append(d.Tracks, empty)
			continue
		}

		block, err := d.reader.ReadBytes(size)
		if err != nil {
			return errors.Wrapf(err, "track %d side %d", cylinder, side)
		}

		track, err := d.parseTrack(block)
		if err != nil {
			return errors.Wrapf(err, "track %d side %d", cylinder, side)
		}
		d.Tracks = append(d.Tracks, *track)
	}

	log.Debugf("dsk: %d tracks, %d sides, creator '%s'", d.Info.Tracks, d.Info.Sides, d.Info.CreatorName())

	return nil
}

func (d *DSK) parseTrack(block []byte) (*TrackInformation, error) {
	reader := storage.NewReader(bytes.NewReader(block))

	track := &TrackInformation{}
	if err := reader.ReadLE(&track.TrackHeader); err != nil {
		return nil, errors.Wrap(err, "track header")
	}
	if !bytes.HasPrefix(track.Signature[:], []byte(trackSignature)) {
		return nil, errors.Errorf("invalid track signature: '%s'", bytes.TrimRight(track.Signature[:], "\x00"))
	}
	if int(track.SectorCount) > maxSectorInfo {
		return nil, errors.Errorf("invalid sector count: %d", track.SectorCount)
	}

	track.Sectors = make([]SectorInformation, track.SectorCount)
	for i := range track.Sectors {
		if err := reader.ReadLE(&track.Sectors[i]); err != nil {
			return nil, errors.Wrapf(err, "sector information %d", i)
		}
	}

	if err := reader.Skip(sectorDataStartAddress - reader.Offset()); err != nil {
		return nil, err
	}

	for _, s := range track.Sectors {
		data, err := reader.ReadBytes(d.sectorLength(track, s))
		if err != nil {
			return nil, errors.Wrapf(err, "sector %02X data", s.ID)
		}
		track.SectorData = append(track.SectorData, data)
	}

	return track, nil
}

// sectorLength is the number of data bytes stored for a sector.
func (d *DSK) sectorLength(track *TrackInformation, s SectorInformation) int {
	if d.Info.Extended() {
		if s.DataLength == 0 {
			return sectorSize(s.Size)
		}
		return int(s.DataLength)
	}
	return sectorSize(track.SectorSize)
}

func sectorSize(n uint8) int {
	if n > 6 {
		n = 6
	}
	return 128 << n
}

// TrackInfo returns the track block for a cylinder and side.
func (d *DSK) TrackInfo(cylinder, side int) (*TrackInformation, bool) {
	if side < 0 || side >= int(d.Info.Sides) || cylinder < 0 || cylinder >= int(d.Info.Tracks) {
		return nil, false
	}
	i := cylinder*int(d.Info.Sides) + side
	if i >= len(d.Tracks) {
		return nil, false
	}
	return &d.Tracks[i], true
}

// Track returns the sectors of a cylinder and side as the controller sees
// them.
func (d *DSK) Track(cylinder, side int) (fdc.Track, bool) {
	info, ok := d.TrackInfo(cylinder, side)
	if !ok {
		return fdc.Track{}, false
	}

	track := fdc.Track{Number: cylinder}
	for i, s := range info.Sectors {
		track.Sectors = append(track.Sectors, fdc.Sector{
			C:       s.Track,
			H:       s.Side,
			R:       s.ID,
			N:       s.Size,
			Status1: s.FDCStatus1,
			Status2: s.FDCStatus2,
			Data:    info.SectorData[i],
		})
	}
	return track, true
}

// Cylinders is the number of tracks per side.
func (d *DSK) Cylinders() int {
	return int(d.Info.Tracks)
}

// Sides is the number of sides.
func (d *DSK) Sides() int {
	return int(d.Info.Sides)
}
