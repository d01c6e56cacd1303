package amsdos

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"

	"upd765/cpm/cpm3"
)

// Format is one of the disc formats AMSDOS and +3DOS recognise.
type Format uint8

const (
	// FormatSystem is the CPC system format: sectors 41h..49h, 2 reserved
	// tracks for the CP/M boot.
	FormatSystem Format = iota
	// FormatData is the CPC data format: sectors C1h..C9h, no reserved tracks.
	FormatData
	// FormatPCW is the PCW/Spectrum +3 format: sectors 01h..09h, described by
	// the disc specification record at the start of sector 1.
	FormatPCW
)

func (f Format) String() string {
	switch f {
	case FormatSystem:
		return "system"
	case FormatData:
		return "data"
	case FormatPCW:
		return "PCW/+3"
	}
	return "unknown"
}

// DetectFormat picks the format from the ID of any sector on track 0. The
// top two bits of the sector numbers differ between formats.
func DetectFormat(sectorID byte) (Format, error) {
	switch sectorID & 0xc0 {
	case 0x40:
		return FormatSystem, nil
	case 0xc0:
		return FormatData, nil
	case 0x00:
		return FormatPCW, nil
	}
	return 0, errors.Errorf("unknown format, sector ID %02X", sectorID)
}

// Geometry is the physical and logical layout a DPB is derived from.
type Geometry struct {
	Sides           int
	Tracks          int // per side
	Sectors         int // per track
	SectorSize      int
	FirstSector     uint8
	Reserved        int // tracks
	BlockShift      uint8
	DirectoryBlocks int
	ReadWriteGap    uint8
	FormatGap       uint8
}

var cpcGeometry = Geometry{
	Sides:           1,
	Tracks:          40,
	Sectors:         9,
	SectorSize:      512,
	BlockShift:      3,
	DirectoryBlocks: 2,
	ReadWriteGap:    0x2a,
	FormatGap:       0x52,
}

// Geometry returns the standard layout of the format.
func (f Format) Geometry() Geometry {
	g := cpcGeometry
	switch f {
	case FormatSystem:
		g.FirstSector = 0x41
		g.Reserved = 2
	case FormatData:
		g.FirstSector = 0xc1
	case FormatPCW:
		g.FirstSector = 0x01
		g.Reserved = 1
	}
	return g
}

// PcwGeometry decodes the disc specification record from sector 1 of a
// PCW/+3 disc. A record of E5h filler bytes means the standard 173k format.
func PcwGeometry(sector []byte) (Geometry, error) {
	if len(sector) < pcwSpecLength {
		return Geometry{}, errors.Errorf("boot sector too short: %d bytes", len(sector))
	}
	if bytes.Equal(sector[:pcwSpecLength], bytes.Repeat([]byte{0xe5}, pcwSpecLength)) {
		return FormatPCW.Geometry(), nil
	}

	var layout PcwSpectrumDPB
	if err := binary.Read(bytes.NewReader(sector[:pcwSpecLength]), binary.LittleEndian, &layout); err != nil {
		return Geometry{}, errors.Wrap(err, "disc specification")
	}
	if layout.FormatNumber != 0 && layout.FormatNumber != 3 {
		return Geometry{}, errors.Errorf("bad format number %d", layout.FormatNumber)
	}
	if layout.TrackCountPerSide == 0 || layout.SectorCountPerTrack == 0 || layout.DirectoryBlockCount == 0 {
		return Geometry{}, errors.New("disc specification has zero sized fields")
	}

	g := Geometry{
		Sides:           1,
		Tracks:          int(layout.TrackCountPerSide),
		Sectors:         int(layout.SectorCountPerTrack),
		SectorSize:      cpm3.RecordSize << layout.PhysicalShift,
		FirstSector:     0x01,
		Reserved:        int(layout.ReservedTracks),
		BlockShift:      layout.BlockShift,
		DirectoryBlocks: int(layout.DirectoryBlockCount),
		ReadWriteGap:    layout.ReadWriteGap,
		FormatGap:       layout.FormatGap,
	}
	if layout.MediaType&0x03 != 0 {
		g.Sides = 2
	}
	return g, nil
}

// DPB constructs the XDPB for the geometry.
func (g Geometry) DPB() (DiscParameterBlock, error) {
	bls := uint16(cpm3.RecordSize) << g.BlockShift
	blsTable, ok := cpm3.BlsTable[bls]
	if !ok {
		return DiscParameterBlock{}, errors.Errorf("invalid block size: %d", bls)
	}
	physical, ok := cpm3.PhysicalShiftMaskTable[uint16(g.SectorSize)]
	if !ok {
		return DiscParameterBlock{}, errors.Errorf("invalid sector size: %d", g.SectorSize)
	}

	dataTracks := g.Tracks*g.Sides - g.Reserved
	blocks := dataTracks * g.Sectors * g.SectorSize / int(bls)
	if blocks <= g.DirectoryBlocks {
		return DiscParameterBlock{}, errors.Errorf("no room for data: %d blocks", blocks)
	}
	if blocks > 256 && bls < 2048 {
		return DiscParameterBlock{}, errors.Errorf("%d blocks of %d bytes need 16-bit block numbers", blocks, bls)
	}

	dpb := DiscParameterBlock{
		MediaType:           0,
		TrackCountPerSide:   uint8(g.Tracks),
		SectorCountPerTrack: uint8(g.Sectors),
		FirstSectorNumber:   g.FirstSector,
		SectorSize:          uint16(g.SectorSize),
		ReadWriteGap:        g.ReadWriteGap,
		FormatGap:           g.FormatGap,
		MultiTrackFlags:     0x40, // MFM
		FreezeFlag:          0,
	}
	if g.Sides == 2 {
		dpb.MediaType = 1
	}

	dpb.RecordsPerTrack = uint16(g.Sectors * g.SectorSize / cpm3.RecordSize)
	dpb.BlockShift = blsTable.BSH
	dpb.BlockMask = blsTable.BLM
	dpb.BlockCount = uint16(blocks - 1)
	dpb.DirectoryCount = uint16(g.DirectoryBlocks)*blsTable.Dirs - 1
	dpb.SetAllocationBitmap(g.DirectoryBlocks)
	dpb.Checksum = (dpb.DirectoryCount + 1) / 4
	dpb.ReservedTracksOffset = uint16(g.Reserved)
	dpb.PhysicalShift = physical.PSH
	dpb.PhysicalMask = physical.PHM

	// Extent mask: 16 allocation bytes with 8-bit block numbers, 8 with 16-bit.
	if blocks <= 256 {
		dpb.ExtentMask = blsTable.EXM
	} else {
		dpb.ExtentMask = uint8(int(bls)/2048 - 1)
	}

	return dpb, nil
}
