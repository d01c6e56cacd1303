// Package amstrad holds the media formats of the Amstrad CPC, PCW and
// Spectrum +3.
package amstrad

import "upd765/fdc"

// Image is a disk image that can be inserted into a drive.
type Image interface {
	Read() error
	Cylinders() int
	Sides() int
	Track(cylinder, side int) (fdc.Track, bool)
}
