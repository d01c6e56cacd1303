package drive

import (
	"testing"

	"upd765/fdc"
)

// fakeImage is a single sided disk with 9 sectors on every cylinder.
type fakeImage struct {
	cylinders int
	lookups   int
}

func (f *fakeImage) Read() error    { return nil }
func (f *fakeImage) Cylinders() int { return f.cylinders }
func (f *fakeImage) Sides() int     { return 1 }

func (f *fakeImage) Track(cylinder, side int) (fdc.Track, bool) {
	f.lookups++
	if side != 0 || cylinder >= f.cylinders {
		return fdc.Track{}, false
	}
	t := fdc.Track{Number: cylinder}
	for r := 1; r <= 9; r++ {
		t.Sectors = append(t.Sectors, fdc.Sector{C: byte(cylinder), R: byte(r), N: 2, Data: make([]byte, 512)})
	}
	return t, true
}

func TestInsertEject(t *testing.T) {
	b := NewBank(1)

	if b.IsReady(0) {
		t.Error("empty drive reported ready")
	}

	if err := b.Insert(0, &fakeImage{cylinders: 40}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !b.IsReady(0) {
		t.Error("drive with disk not ready")
	}

	if err := b.Eject(0); err != nil {
		t.Fatalf("eject: %v", err)
	}
	if b.IsReady(0) {
		t.Error("drive ready after eject")
	}
	if _, ok := b.LookupTrack(0, 0); ok {
		t.Error("track found after eject")
	}
}

func TestUnfittedDrives(t *testing.T) {
	b := NewBank(1)

	if b.Exists(1) {
		t.Error("drive 1 exists in a single drive bank")
	}
	if err := b.Insert(1, &fakeImage{cylinders: 40}); err == nil {
		t.Error("expected error inserting into drive 1")
	}
	if err := b.SetWriteProtect(3, true); err == nil {
		t.Error("expected error protecting drive 3")
	}

	b.SetCurrentTrack(2, 10)
	if b.CurrentTrack(2) != 0 {
		t.Errorf("unfitted drive moved to track %d", b.CurrentTrack(2))
	}
}

func TestEmptyImageNotReady(t *testing.T) {
	b := NewBank(1)
	b.Insert(0, &fakeImage{})

	if b.IsReady(0) {
		t.Error("disk without tracks reported ready")
	}
}

func TestHeadPosition(t *testing.T) {
	b := NewBank(2)
	b.Insert(1, &fakeImage{cylinders: 40})

	if !b.IsAtTrackZero(1) {
		t.Error("expected head at track 0")
	}

	b.SetCurrentTrack(1, 12)
	if b.CurrentTrack(1) != 12 || b.IsAtTrackZero(1) {
		t.Errorf("expected track 12, got %d", b.CurrentTrack(1))
	}

	b.SetCurrentTrack(1, 80)
	if b.CurrentTrack(1) != 80 {
		t.Errorf("expected track 80, got %d", b.CurrentTrack(1))
	}
	if _, ok := b.LookupTrack(1, 80); ok {
		t.Error("found a track past the end of the disk")
	}

	b.SetSectorIndex(1, 5)
	if b.SectorIndex(1) != 5 {
		t.Errorf("expected sector index 5, got %d", b.SectorIndex(1))
	}
}

func TestWriteProtect(t *testing.T) {
	b := NewBank(1)
	b.Insert(0, &fakeImage{cylinders: 40})

	if b.IsWriteProtected(0) {
		t.Error("new disk write protected")
	}
	b.SetWriteProtect(0, true)
	if !b.IsWriteProtected(0) {
		t.Error("expected write protect")
	}
}

func TestLookupTrackCached(t *testing.T) {
	img := &fakeImage{cylinders: 40}
	b := NewBank(1)
	b.Insert(0, img)

	for i := 0; i < 3; i++ {
		track, ok := b.LookupTrack(0, 7)
		if !ok || track.Number != 7 || len(track.Sectors) != 9 {
			t.Fatalf("unexpected track %+v", track)
		}
	}
	if img.lookups != 1 {
		t.Errorf("expected one image lookup, got %d", img.lookups)
	}

	if _, ok := b.LookupTrack(0, 40); ok {
		t.Error("found a track past the last cylinder")
	}
}

func TestControllerReadsInsertedDisk(t *testing.T) {
	b := NewBank(1)
	b.Insert(0, &fakeImage{cylinders: 40})
	c := fdc.New(b)

	// Seek to 3, then Read ID.
	for _, v := range []byte{0x0f, 0x00, 3, 0x08} {
		c.WriteData(v)
	}
	c.ReadData()
	c.ReadData()

	for _, v := range []byte{0x4a, 0x00} {
		c.WriteData(v)
	}
	res := make([]byte, 7)
	for i := range res {
		res[i] = c.ReadData()
	}
	if res[3] != 3 || res[5] != 1 || res[6] != 2 {
		t.Errorf("expected C=3 R=1 N=2, got % X", res)
	}
}

func TestControllerSeekPastLastCylinder(t *testing.T) {
	b := NewBank(1)
	b.Insert(0, &fakeImage{cylinders: 40})
	c := fdc.New(b)

	// Seek to 42, then Sense Interrupt.
	for _, v := range []byte{0x0f, 0x00, 42, 0x08} {
		c.WriteData(v)
	}
	st0, pcn := c.ReadData(), c.ReadData()
	if st0 != 0x20 || pcn != 42 {
		t.Errorf("expected ST0=20 PCN=42, got ST0=%02X PCN=%d", st0, pcn)
	}

	for _, v := range []byte{0x4a, 0x00} {
		c.WriteData(v)
	}
	res := make([]byte, 7)
	for i := range res {
		res[i] = c.ReadData()
	}
	if res[0]&fdc.ST0InterruptCode != fdc.ST0AbnormalTermination {
		t.Errorf("expected abnormal termination, got ST0=%02X", res[0])
	}
	if res[1]&fdc.ST1MissingAddressMark == 0 {
		t.Errorf("expected missing address mark, got ST1=%02X", res[1])
	}
}
