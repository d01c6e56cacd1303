package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"upd765/amstrad/dsk"
	"upd765/fdc"
	"upd765/host"
)

// Upper bound on Read ID commands per track.
const maxSectorsPerTrack = 32

var diskCommandInfo = &cobra.Command{
	Use:                   "info FILE",
	Short:                 "Shows the disk layout",
	Long:                  `Shows the image header, then walks every cylinder with Read ID to list the sectors in the order the controller sees them.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		image, err := openImage(diskMediaType, args[0])
		if err != nil {
			fail(err)
		}

		if d, ok := image.(*dsk.DSK); ok {
			format := "standard"
			if d.Info.Extended() {
				format = "extended"
			}
			fmt.Printf("Creator:   %s\n", d.Info.CreatorName())
			fmt.Printf("Format:    %s\n", format)
		}
		fmt.Printf("Cylinders: %d\n", image.Cylinders())
		fmt.Printf("Sides:     %d\n", image.Sides())

		controller, err := mount(image, diskWriteProtect)
		if err != nil {
			fail(err)
		}
		client := host.NewClient(controller)

		if err := client.Recalibrate(0); err != nil {
			fail(err)
		}
		st3, err := client.SenseDrive(0, 0)
		if err != nil {
			fail(err)
		}
		fmt.Printf("ST3:       %02X%s\n\n", st3, driveFlags(st3))

		for cyl := 0; cyl < image.Cylinders(); cyl++ {
			if err := client.Seek(0, byte(cyl)); err != nil {
				fail(err)
			}
			fmt.Printf("C%02d: %s\n", cyl, sweepTrack(client))
		}
	},
}

// sweepTrack lists the sector IDs under the head, once round the track.
func sweepTrack(client *host.Client) string {
	var ids []string
	var first fdc.SectorID

	for i := 0; i < maxSectorsPerTrack; i++ {
		id, err := client.ReadID(0, 0)
		if err != nil {
			return "unformatted"
		}
		if i == 0 {
			first = id
		} else if id == first {
			break
		}
		ids = append(ids, fmt.Sprintf("%02X/%d", id.R, id.N))
	}
	return strings.Join(ids, " ")
}

func driveFlags(st3 byte) string {
	var flags []string
	if st3&fdc.ST3Ready != 0 {
		flags = append(flags, "ready")
	}
	if st3&fdc.ST3WriteProtected != 0 {
		flags = append(flags, "write protected")
	}
	if st3&fdc.ST3TrackZero != 0 {
		flags = append(flags, "track 0")
	}
	if st3&fdc.ST3Fault != 0 {
		flags = append(flags, "fault")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

func init() {
	diskCmd.AddCommand(diskCommandInfo)
}
