package amsdos

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"upd765/fdc"
)

// Size of a CP/M directory entry.
const directoryEntrySize = 32

// Disc is a drive behind a floppy disk controller.
type Disc interface {
	Recalibrate(drive int) error
	Seek(drive int, cylinder byte) error
	ReadID(drive int, head byte) (fdc.SectorID, error)
	ReadSectors(drive int, cylinder, head, first, last, n byte) ([]byte, error)
}

// Directory is one 32 byte CP/M directory entry. A file larger than one
// extent has several entries with the same name.
type Directory struct {
	UserNumber  uint8     // 0..15, E5h for a free entry
	Filename    [8]uint8  // bit 7 of each byte is an attribute
	FileType    [3]uint8  // bit 7: T1 read only, T2 system
	Extent      uint8     // EX
	S1          uint8     // reserved
	S2          uint8     // extent high bits
	RecordCount uint8     // RC: records used in the last logical extent
	Allocation  [16]uint8 // block numbers
}

// Name is the file name with attribute bits and padding removed.
func (d Directory) Name() string {
	return trimName(d.Filename[:])
}

// Type is the file type with attribute bits and padding removed.
func (d Directory) Type() string {
	return trimName(d.FileType[:])
}

// ReadOnly reports the T1 attribute.
func (d Directory) ReadOnly() bool {
	return d.FileType[0]&0x80 != 0
}

// System reports the T2 attribute.
func (d Directory) System() bool {
	return d.FileType[1]&0x80 != 0
}

func trimName(b []byte) string {
	name := make([]byte, len(b))
	for i, c := range b {
		name[i] = c & 0x7f
	}
	return string(bytes.TrimRight(name, " "))
}

// AmsDos is a logged in AMSDOS or +3DOS disc.
type AmsDos struct {
	Format      Format
	Geometry    Geometry
	DPB         DiscParameterBlock
	Directories []Directory
}

// Read logs in the disc in drive: it recalibrates, identifies the format
// from the first sector ID it finds on track 0, then reads the directory.
func (a *AmsDos) Read(disc Disc, drive int) error {
	if err := disc.Recalibrate(drive); err != nil {
		return errors.Wrap(err, "recalibrate")
	}

	id, err := disc.ReadID(drive, 0)
	if err != nil {
		return errors.Wrap(err, "identifying format")
	}

	a.Format, err = DetectFormat(id.R)
	if err != nil {
		return err
	}
	a.Geometry = a.Format.Geometry()

	if a.Format == FormatPCW {
		boot, err := disc.ReadSectors(drive, 0, 0, 1, 1, sizeCode(a.Geometry.SectorSize))
		if err != nil {
			return errors.Wrap(err, "reading boot sector")
		}
		if a.Geometry, err = PcwGeometry(boot); err != nil {
			return err
		}
	}

	if a.DPB, err = a.Geometry.DPB(); err != nil {
		return err
	}

	log.Debugf("amsdos: %s format, DSM=%d DRM=%d OFF=%d", a.Format, a.DPB.BlockCount, a.DPB.DirectoryCount, a.DPB.ReservedTracksOffset)

	return a.readDirectories(disc, drive)
}

// readDirectories reads the directory from the first data track.
func (a *AmsDos) readDirectories(disc Disc, drive int) error {
	cylinder, head := a.trackAddress(int(a.DPB.ReservedTracksOffset))
	if err := disc.Seek(drive, cylinder); err != nil {
		return errors.Wrap(err, "seek to directory")
	}

	sectors := a.DPB.DirectoryEntries() * directoryEntrySize / a.Geometry.SectorSize
	if sectors > a.Geometry.Sectors {
		sectors = a.Geometry.Sectors
	}
	first := a.Geometry.FirstSector
	last := first + uint8(sectors) - 1

	data, err := disc.ReadSectors(drive, cylinder, head, first, last, a.DPB.SizeCode())
	if err != nil {
		return errors.Wrap(err, "reading directory")
	}

	a.Directories = a.Directories[:0]

	reader := bytes.NewReader(data)
	for {
		dir := Directory{}
		err := binary.Read(reader, binary.LittleEndian, &dir)
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrap(err, "directory entry")
		}
		// E5h is a free entry; 16 and up are labels, timestamps and passwords.
		if dir.UserNumber < 16 {
			a.Directories = append(a.Directories, dir)
		}
	}

	return nil
}

// trackAddress maps a logical track to a cylinder and head. Double sided
// formats alternate sides.
func (a *AmsDos) trackAddress(track int) (cylinder, head byte) {
	if a.Geometry.Sides == 2 {
		return byte(track / 2), byte(track % 2)
	}
	return byte(track), 0
}

// FirstRecord reads the first 128 byte record of the file an entry belongs
// to, for header detection.
func (a *AmsDos) FirstRecord(disc Disc, drive int, dir Directory) ([]byte, error) {
	if dir.Allocation[0] == 0 {
		return nil, errors.New("file has no blocks")
	}

	offset := int(dir.Allocation[0]) * a.DPB.BlockSize()
	trackBytes := a.Geometry.Sectors * a.Geometry.SectorSize

	cylinder, head := a.trackAddress(int(a.DPB.ReservedTracksOffset) + offset/trackBytes)
	sector := a.Geometry.FirstSector + uint8(offset%trackBytes/a.Geometry.SectorSize)

	if err := disc.Seek(drive, cylinder); err != nil {
		return nil, err
	}
	data, err := disc.ReadSectors(drive, cylinder, head, sector, sector, a.DPB.SizeCode())
	if err != nil {
		return nil, err
	}

	start := offset % a.Geometry.SectorSize
	if len(data) < start+headerRecordSize {
		return nil, errors.Errorf("short sector: %d bytes", len(data))
	}
	return data[start : start+headerRecordSize], nil
}

func sizeCode(size int) byte {
	var n byte
	for 128<<n < size {
		n++
	}
	return n
}
