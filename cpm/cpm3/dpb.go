// CP/M 3 Disk Parameter Block
//
// Reference: http://www.seasip.info/Cpm/format31.html
package cpm3

import "math/bits"

// RecordSize is the size of a CP/M logical record.
const RecordSize = 128

// DiskParameterBlock describes the logical layout of a CP/M disc.
type DiskParameterBlock struct {
	RecordsPerTrack      uint16 // SPT: 128-byte records per track
	BlockShift           uint8  // BSH: log2(block size / 128)
	BlockMask            uint8  // BLM: block size / 128 - 1
	ExtentMask           uint8  // EXM
	BlockCount           uint16 // DSM: blocks on the disc - 1
	DirectoryCount       uint16 // DRM: directory entries - 1
	AllocationBitmap     uint16 // AL0 (high byte) and AL1: blocks reserved for the directory
	Checksum             uint16 // CKS: 0 for fixed media
	ReservedTracksOffset uint16 // OFF: tracks before the directory
	PhysicalShift        uint8  // PSH: log2(sector size / 128)
	PhysicalMask         uint8  // PHM: sector size / 128 - 1
}

// BlockSizeParameters are the DPB values that follow from the block size.
type BlockSizeParameters struct {
	BSH  uint8
	BLM  uint8
	EXM  uint8  // when DSM < 256
	Dirs uint16 // directory entries per block
}

// BlsTable is keyed by block size (BLS) in bytes.
var BlsTable = map[uint16]BlockSizeParameters{
	1024:  {BSH: 3, BLM: 7, EXM: 0, Dirs: 32},
	2048:  {BSH: 4, BLM: 15, EXM: 1, Dirs: 64},
	4096:  {BSH: 5, BLM: 31, EXM: 3, Dirs: 128},
	8192:  {BSH: 6, BLM: 63, EXM: 7, Dirs: 256},
	16384: {BSH: 7, BLM: 127, EXM: 15, Dirs: 512},
}

// PhysicalRecord are the PSH and PHM values for a sector size.
type PhysicalRecord struct {
	PSH uint8
	PHM uint8
}

// PhysicalShiftMaskTable is keyed by sector size in bytes.
var PhysicalShiftMaskTable = map[uint16]PhysicalRecord{
	128:  {PSH: 0, PHM: 0},
	256:  {PSH: 1, PHM: 1},
	512:  {PSH: 2, PHM: 3},
	1024: {PSH: 3, PHM: 7},
	2048: {PSH: 4, PHM: 15},
	4096: {PSH: 5, PHM: 31},
}

// SetAllocationBitmap reserves the first blocks for the directory.
func (d *DiskParameterBlock) SetAllocationBitmap(blocks int) {
	if blocks > 16 {
		blocks = 16
	}
	d.AllocationBitmap = 0
	for i := 0; i < blocks; i++ {
		d.AllocationBitmap |= 0x8000 >> uint(i)
	}
}

// BlockSize is the allocation unit in bytes.
func (d DiskParameterBlock) BlockSize() int {
	return RecordSize << d.BlockShift
}

// Blocks is the number of allocation blocks on the disc.
func (d DiskParameterBlock) Blocks() int {
	return int(d.BlockCount) + 1
}

// DirectoryBlocks is the number of blocks reserved for the directory.
func (d DiskParameterBlock) DirectoryBlocks() int {
	return bits.OnesCount16(d.AllocationBitmap)
}

// DirectoryEntries is the number of directory entries.
func (d DiskParameterBlock) DirectoryEntries() int {
	return int(d.DirectoryCount) + 1
}

// SectorSize is the physical sector size in bytes.
func (d DiskParameterBlock) SectorSize() int {
	return RecordSize << d.PhysicalShift
}
