package cat

import (
	"bytes"
	"testing"

	"upd765/amstrad/amsdos"
)

func directory(user uint8, name, typ string, extent uint8, blocks ...uint8) amsdos.Directory {
	d := amsdos.Directory{UserNumber: user, Extent: extent}
	copy(d.Filename[:], name+"        ")
	copy(d.FileType[:], typ+"   ")
	copy(d.Allocation[:], blocks)
	return d
}

func dataDPB(t *testing.T) amsdos.DiscParameterBlock {
	t.Helper()
	dpb, err := amsdos.FormatData.Geometry().DPB()
	if err != nil {
		t.Fatal(err)
	}
	return dpb
}

func testDirectories() []amsdos.Directory {
	game0 := directory(0, "GAME", "BIN", 0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18)
	game0.FileType[0] |= 0x80
	game1 := directory(0, "GAME", "BIN", 1, 19, 20)
	game1.FileType[0] |= 0x80
	hidden := directory(0, "HIDDEN", "SYS", 0, 22)
	hidden.FileType[1] |= 0x80

	return []amsdos.Directory{
		directory(0, "HELLO", "BAS", 0, 2),
		game0,
		game1,
		directory(1, "OTHER", "TXT", 0, 21),
		hidden,
	}
}

func TestCommandCat(t *testing.T) {
	cat := CommandCat(dataDPB(t), 0, testDirectories())

	expected := []DirectoryRecord{
		{Filename: "GAME", FileType: "BIN", Size: 18, ReadOnly: true},
		{Filename: "HELLO", FileType: "BAS", Size: 1},
		{Filename: "HIDDEN", FileType: "SYS", Size: 1, System: true},
	}

	if len(cat.Records) != len(expected) {
		t.Fatalf("expected %d records, got %d: %+v", len(expected), len(cat.Records), cat.Records)
	}
	for i, r := range expected {
		if cat.Records[i] != r {
			t.Errorf("record %d: expected %+v, got %+v", i, r, cat.Records[i])
		}
	}

	// 180 blocks, 2 for the directory, 21 used by all users.
	if cat.FreeSpace != 157 {
		t.Errorf("expected 157K free, got %dK", cat.FreeSpace)
	}
}

func TestCommandCatOtherUser(t *testing.T) {
	cat := CommandCat(dataDPB(t), 1, testDirectories())
	if len(cat.Records) != 1 || cat.Records[0].Filename != "OTHER" {
		t.Errorf("unexpected records %+v", cat.Records)
	}

	cat = CommandCat(dataDPB(t), 5, testDirectories())
	if len(cat.Records) != 0 {
		t.Errorf("expected an empty catalog, got %+v", cat.Records)
	}
}

func TestBlockCountWide(t *testing.T) {
	g, err := amsdos.PcwGeometry([]byte{3, 0x81, 80, 9, 2, 1, 4, 4, 0x2a, 0x52, 0, 0, 0, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	dpb, err := g.DPB()
	if err != nil {
		t.Fatal(err)
	}

	// Block 0x0104 then block 0x0005, 16-bit little endian.
	allocation := [16]uint8{0x04, 0x01, 0x05, 0x00}
	if n := blockCount(dpb, allocation); n != 2 {
		t.Errorf("expected 2 blocks, got %d", n)
	}
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	CommandCat(dataDPB(t), 0, testDirectories()).Print(&out)

	expected := "Drive A: user  0\n\n" +
		"GAME    .BIN   18K   HELLO   .BAS    1K\n" +
		"\n157K free\n"
	if out.String() != expected {
		t.Errorf("unexpected output:\n%q\nexpected:\n%q", out.String(), expected)
	}
}
