package amsdos

import (
	"testing"

	"upd765/drive"
	"upd765/fdc"
	"upd765/host"
)

// discImage is a single sided, 40 track disc with 9 sectors of 512 bytes
// numbered from first. Sectors missing from data read as E5h filler.
type discImage struct {
	first byte
	data  map[[2]int][]byte // cylinder, sector index
}

func (d discImage) Read() error    { return nil }
func (d discImage) Cylinders() int { return 40 }
func (d discImage) Sides() int     { return 1 }

func (d discImage) Track(cylinder, side int) (fdc.Track, bool) {
	if side != 0 || cylinder >= 40 {
		return fdc.Track{}, false
	}
	t := fdc.Track{Number: cylinder}
	for i := 0; i < 9; i++ {
		data := make([]byte, 512)
		for j := range data {
			data[j] = 0xe5
		}
		copy(data, d.data[[2]int{cylinder, i}])
		t.Sectors = append(t.Sectors, fdc.Sector{C: byte(cylinder), R: d.first + byte(i), N: 2, Data: data})
	}
	return t, true
}

// entry builds a directory entry holding 8-bit block numbers.
func entry(user byte, name, typ string, extent byte, blocks ...byte) []byte {
	e := make([]byte, directoryEntrySize)
	e[0] = user
	copy(e[1:9], "        ")
	copy(e[1:9], name)
	copy(e[9:12], "   ")
	copy(e[9:12], typ)
	e[12] = extent
	e[15] = byte(len(blocks) * 8)
	copy(e[16:], blocks)
	return e
}

func directorySector(entries ...[]byte) []byte {
	sector := make([]byte, 512)
	for i := range sector {
		sector[i] = 0xe5
	}
	for i, e := range entries {
		copy(sector[i*directoryEntrySize:], e)
	}
	return sector
}

func mount(t *testing.T, image discImage) host.Bus {
	t.Helper()
	bank := drive.NewBank(1)
	if err := bank.Insert(0, image); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return fdc.New(bank)
}

func TestReadDataFormat(t *testing.T) {
	header := make([]byte, 128)
	copy(header[1:12], "HELLO   BAS")
	var sum uint16
	for _, b := range header[:67] {
		sum += uint16(b)
	}
	header[67], header[68] = byte(sum), byte(sum>>8)

	image := discImage{
		first: 0xc1,
		data: map[[2]int][]byte{
			{0, 0}: directorySector(
				entry(0, "HELLO", "BAS", 0, 2),
				entry(0x20, "LABEL", "", 0),
				entry(1, "OTHER", "TXT", 0, 3),
			),
			{0, 4}: header, // block 2
		},
	}

	disc := host.NewClient(mount(t, image))

	a := &AmsDos{}
	if err := a.Read(disc, 0); err != nil {
		t.Fatalf("read: %v", err)
	}

	if a.Format != FormatData {
		t.Errorf("expected data format, got %s", a.Format)
	}
	if a.DPB.BlockCount != 179 {
		t.Errorf("expected DSM 179, got %d", a.DPB.BlockCount)
	}
	if len(a.Directories) != 2 {
		t.Fatalf("expected 2 directory entries, got %d", len(a.Directories))
	}
	if a.Directories[0].Name() != "HELLO" || a.Directories[0].Type() != "BAS" {
		t.Errorf("unexpected first entry %q.%q", a.Directories[0].Name(), a.Directories[0].Type())
	}
	if a.Directories[1].UserNumber != 1 {
		t.Errorf("expected user 1, got %d", a.Directories[1].UserNumber)
	}

	record, err := a.FirstRecord(disc, 0, a.Directories[0])
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if !HasHeader(record) {
		t.Error("expected a header on HELLO.BAS")
	}

	record, err = a.FirstRecord(disc, 0, a.Directories[1])
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if HasHeader(record) {
		t.Error("unexpected header on OTHER.TXT")
	}
}

func TestReadPCWFormat(t *testing.T) {
	// Blank boot sector: the 173k format, directory on cylinder 1.
	image := discImage{
		first: 0x01,
		data: map[[2]int][]byte{
			{1, 0}: directorySector(entry(0, "PROG", "BAS", 0, 2, 3)),
		},
	}

	a := &AmsDos{}
	if err := a.Read(host.NewClient(mount(t, image)), 0); err != nil {
		t.Fatalf("read: %v", err)
	}

	if a.Format != FormatPCW {
		t.Errorf("expected PCW format, got %s", a.Format)
	}
	if a.DPB.ReservedTracksOffset != 1 {
		t.Errorf("expected 1 reserved track, got %d", a.DPB.ReservedTracksOffset)
	}
	if len(a.Directories) != 1 || a.Directories[0].Name() != "PROG" {
		t.Fatalf("unexpected directory %+v", a.Directories)
	}
}

func TestReadNoDisc(t *testing.T) {
	a := &AmsDos{}
	err := a.Read(host.NewClient(fdc.New(drive.NewBank(1))), 0)
	if err == nil {
		t.Fatal("expected an error with no disc")
	}
}

func TestDirectoryAttributes(t *testing.T) {
	d := Directory{}
	copy(d.Filename[:], "GAME    ")
	copy(d.FileType[:], "BIN")
	d.FileType[0] |= 0x80
	d.FileType[1] |= 0x80

	if d.Type() != "BIN" {
		t.Errorf("expected type BIN, got %q", d.Type())
	}
	if d.Name() != "GAME" {
		t.Errorf("expected name GAME, got %q", d.Name())
	}
	if !d.ReadOnly() || !d.System() {
		t.Error("expected read only and system attributes")
	}
}
