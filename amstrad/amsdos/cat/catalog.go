package cat

import (
	"fmt"
	"io"
	"sort"

	"upd765/amstrad/amsdos"
)

// Catalog is the result of a CAT.
type Catalog struct {
	Drive     byte
	User      uint8
	FreeSpace int // Kbytes
	Records   []DirectoryRecord
}

// DirectoryRecord is the displayable data for a directory record.
// This is similar to the CP/M Directory, except each entry merges all record extents.
type DirectoryRecord struct {
	Filename string
	FileType string
	Size     int // Kbytes, all extents
	ReadOnly bool
	System   bool
}

type fileKey struct {
	user     uint8
	filename [8]uint8
	fileType [3]uint8
}

// CommandCat
// Catalogs the disc. Generates a list, in alpha-numeric order, the full names
// of all files found for the user, together with each file's length (to the
// nearest higher Kbyte). The free space left on the disc is also displayed,
// together with Drive and User identification.
func CommandCat(dpb amsdos.DiscParameterBlock, user uint8, directories []amsdos.Directory) *Catalog {
	cat := &Catalog{
		Drive: 'A',
		User:  user,
	}

	blockKB := dpb.BlockSize() / 1024
	used := 0
	files := make(map[fileKey]int)

	for _, d := range directories {
		blocks := blockCount(dpb, d.Allocation)
		used += blocks

		if d.UserNumber != user {
			continue
		}

		key := fileKey{user: d.UserNumber, filename: mask(d.Filename), fileType: maskType(d.FileType)}
		if i, ok := files[key]; ok {
			cat.Records[i].Size += blocks * blockKB
			continue
		}

		files[key] = len(cat.Records)
		cat.Records = append(cat.Records, DirectoryRecord{
			Filename: d.Name(),
			FileType: d.Type(),
			Size:     blocks * blockKB,
			ReadOnly: d.ReadOnly(),
			System:   d.System(),
		})
	}

	free := dpb.Blocks() - dpb.DirectoryBlocks() - used
	if free < 0 {
		free = 0
	}
	cat.FreeSpace = free * blockKB

	cat.alphabetize()

	return cat
}

// blockCount counts the blocks an extent uses. Discs with more than 256
// blocks store 16-bit block numbers.
func blockCount(dpb amsdos.DiscParameterBlock, allocation [16]uint8) int {
	blocks := 0
	if dpb.Blocks() > 256 {
		for i := 0; i < len(allocation); i += 2 {
			if allocation[i] != 0 || allocation[i+1] != 0 {
				blocks++
			}
		}
		return blocks
	}
	for _, b := range allocation {
		if b > 0 {
			blocks++
		}
	}
	return blocks
}

func mask(name [8]uint8) [8]uint8 {
	for i := range name {
		name[i] &= 0x7f
	}
	return name
}

func maskType(t [3]uint8) [3]uint8 {
	for i := range t {
		t[i] &= 0x7f
	}
	return t
}

func (c *Catalog) alphabetize() {
	sort.Slice(c.Records, func(i, j int) bool {
		if c.Records[i].Filename == c.Records[j].Filename {
			return c.Records[i].FileType < c.Records[j].FileType
		}
		return c.Records[i].Filename < c.Records[j].Filename
	})
}

// Print writes the catalog the way AMSDOS shows it, two files per line.
// System files are hidden.
func (c *Catalog) Print(w io.Writer) {
	fmt.Fprintf(w, "Drive %c: user %2d\n\n", c.Drive, c.User)

	column := 0
	for _, r := range c.Records {
		if r.System {
			continue
		}
		fmt.Fprintf(w, "%-8s.%-3s %4dK", r.Filename, r.FileType, r.Size)
		column++
		if column%2 == 0 {
			fmt.Fprintln(w)
		} else {
			fmt.Fprint(w, "   ")
		}
	}
	if column%2 != 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n%dK free\n", c.FreeSpace)
}
