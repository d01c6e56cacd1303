// Amstrad CP/M Disc Format
//
// Reference: http://www.seasip.info/Cpm/amsform.html
package amsdos

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"upd765/cpm/cpm3"
)

// Amstrad CP/M (and +3DOS) has an eXtended Disc Parameter Block (XDPB).
//
// NOTE: The DPB is not stored on disc. It is chosen from the ID of the first
// sector on track 0, see DetectFormat.
type DiscParameterBlock struct {
	cpm3.DiskParameterBlock

	// Amstrad eXtended parameters

	// Type of disc media (sidedness)
	//
	// Bit | Description
	// 0-1   0 => Single sided
	//       1 => Double sided, flip sides
	//       2 => Double sided, up and over
	//  6    Set if the format is for a high-density disc
	//  7    Set if the format is double track.
	MediaType uint8

	// tracks/side
	TrackCountPerSide uint8

	// sectors/track
	SectorCountPerTrack uint8

	// first physical sector number
	FirstSectorNumber uint8

	// sector size, bytes
	SectorSize uint16

	// uPD765A read/write gap
	ReadWriteGap uint8

	// uPD765A format gap
	FormatGap uint8

	// MFM/Multitrack flags byte
	// Bit 7 set => Multitrack else Single track
	//     6 set => MFM mode else FM mode
	//     5 set => Skip deleted data address mark
	MultiTrackFlags uint8

	// freeze flag
	// Set to non-zero value to force this format to be used - otherwise,
	// attempt to determine format when a disc is logged in.
	FreezeFlag uint8
}

// Sides is the number of disc sides the format uses.
func (d DiscParameterBlock) Sides() int {
	if d.MediaType&0x03 == 0 {
		return 1
	}
	return 2
}

// SizeCode is the controller's N for the sector size.
func (d DiscParameterBlock) SizeCode() byte {
	return d.PhysicalShift
}

// AMSDOS File Record Header
//
// AMSDOS files have a single header in the first 128 bytes of the file, the
// header record, except unprotected ASCII files and CP/M files, which have
// no header.
//
// These headers are detected by calculating the checksum the first 67 bytes of
// the record. If the checksum is as expected then a header is present, if not
// then there is no header. Thus it is possible, though unlikely, that a file
// without a header could be mistaken for one with a header.
type RecordHeader struct {
	// Cassette/Disc header
	User          uint8     // User number, #00..#0F
	Name          [8]uint8  // Name part, padded with spaces
	Type          [3]uint8  // Type part, padded with spaces
	Unknown       [4]uint8  // #00
	BlockNumber   uint8     // Not used, set to 0
	LastBlock     uint8     // Not used, set to 0
	FileType      uint8     // As per cassette
	DataLength    uint16    // As per cassette
	DataLocation  uint16    // As per cassette
	FirstBlock    uint8     // Set to #FF, only used for output files
	LogicalLength uint16    // As per cassette
	EntryAddress  uint16    // As per cassette
	Unallocated   [36]uint8 // As per cassette

	FileLength [3]uint8  // 24-bit value, least significant byte first. Excludes the header record.
	Checksum   uint16    // Sixteen bit checksum, sum of bytes 0..66
	Undefined  [59]uint8 // 69..127
}

const (
	headerRecordSize = cpm3.RecordSize
	headerSumLength  = 67
)

// File types held in the low nibble of RecordHeader.FileType.
const (
	FileTypeBasic     = 0
	FileTypeProtected = 1
	FileTypeBinary    = 2
)

// HasHeader reports whether the first record of a file is an AMSDOS header.
func HasHeader(record []byte) bool {
	if len(record) < headerRecordSize {
		return false
	}
	var sum uint16
	for _, b := range record[:headerSumLength] {
		sum += uint16(b)
	}
	return sum == binary.LittleEndian.Uint16(record[headerSumLength:])
}

// ParseHeader decodes the header record at the start of a file.
func ParseHeader(record []byte) (*RecordHeader, error) {
	if !HasHeader(record) {
		return nil, errors.New("no AMSDOS header")
	}
	h := &RecordHeader{}
	if err := binary.Read(bytes.NewReader(record[:headerRecordSize]), binary.LittleEndian, h); err != nil {
		return nil, errors.Wrap(err, "header record")
	}
	return h, nil
}

// Length is the file length in bytes, excluding the header record.
func (h RecordHeader) Length() int {
	return int(h.FileLength[0]) | int(h.FileLength[1])<<8 | int(h.FileLength[2])<<16
}

// PCW/Spectrum system
//
// In addition to the XDPB system, the PCW and Spectrum +3 can determine the format
// of a disc from a 16-byte record on track 0, head 0, physical sector 1.
//
// If all bytes of the spec are 0E5h, it should be assumed that the disc is a
// 173k PCW/Spectrum +3 disc, ie:
//
//	single sided, single track, 40 tracks, 9 sectors/track, 512-byte sectors,
//	1 reserved track, 1k blocks,
//	2 directory blocks,
//	gap lengths 2Ah and 52h,
//	not bootable
type PcwSpectrumDPB struct {
	// format number
	//   0: SS SD
	//   1: CPC formats, but those formats don't have boot records anyway.
	//   2: ^
	//   3: DS DD
	// Any other value: bad format
	FormatNumber uint8

	// sidedness ; As in XDPB
	MediaType uint8

	// tracks/side
	TrackCountPerSide uint8

	// sectors/track
	SectorCountPerTrack uint8

	// physical sector shift ; psh in XDPB
	PhysicalShift uint8

	// no. reserved tracks ; off in XDPB
	ReservedTracks uint8

	// block shift ; bsh in XDPB
	BlockShift uint8

	// no. directory blocks
	DirectoryBlockCount uint8

	// uPD765A read/write gap length
	ReadWriteGap uint8

	// uPD765A format gap length
	FormatGap uint8

	// 0,0,0,0,0 ; Unused
	Unused [5]uint8

	// Checksum fiddle byte ; Used to indicate Bootable discs.
	//
	// Change this byte so that the 8-bit checksum of the sector is:
	//    1 - sector contains a PCW9512 bootstrap
	//    3 - sector contains a Spectrum +3 bootstrap
	//  255 - sector contains a PCW8256 bootstrap
	Checksum uint8
}

const pcwSpecLength = 16
