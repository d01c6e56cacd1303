package host

import (
	"upd765/drive"
	"upd765/fdc"
)

// testImage is a single sided CPC data disk: 9 sectors C1..C9 per track,
// each filled with its cylinder number.
type testImage struct {
	cylinders int
}

func (d testImage) Read() error    { return nil }
func (d testImage) Cylinders() int { return d.cylinders }
func (d testImage) Sides() int     { return 1 }

func (d testImage) Track(cylinder, side int) (fdc.Track, bool) {
	if side != 0 || cylinder >= d.cylinders {
		return fdc.Track{}, false
	}
	t := fdc.Track{Number: cylinder}
	for r := 0xc1; r <= 0xc9; r++ {
		data := make([]byte, 512)
		for i := range data {
			data[i] = byte(cylinder)
		}
		t.Sectors = append(t.Sectors, fdc.Sector{C: byte(cylinder), R: byte(r), N: 2, Data: data})
	}
	return t, true
}

// newController returns a controller with one drive, holding a disk when
// cylinders is non-zero.
func newController(cylinders int) *fdc.Controller {
	bank := drive.NewBank(1)
	if cylinders > 0 {
		bank.Insert(0, testImage{cylinders: cylinders})
	}
	return fdc.New(bank)
}
