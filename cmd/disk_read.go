package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"upd765/host"
)

var (
	diskReadTrack  uint8
	diskReadSector uint8
	diskReadCount  uint8
	diskReadMFM    bool
)

var diskCommandRead = &cobra.Command{
	Use:                   "read FILE",
	Short:                 "Reads sectors with Read Data",
	Long:                  `Seeks to a track, reads sectors with a single Read Data command and dumps them in hex, followed by the status registers.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		if diskReadCount == 0 {
			fail(errors.New("count must be at least 1"))
		}

		image, err := openImage(diskMediaType, args[0])
		if err != nil {
			fail(err)
		}

		controller, err := mount(image, diskWriteProtect)
		if err != nil {
			fail(err)
		}
		client := host.NewClient(controller)
		client.MFM = diskReadMFM

		if err := client.Recalibrate(0); err != nil {
			fail(err)
		}
		if err := client.Seek(0, diskReadTrack); err != nil {
			fail(err)
		}

		// The size code comes from the first ID found on the track.
		id, err := client.ReadID(0, 0)
		if err != nil {
			fail(err)
		}

		last := diskReadSector + diskReadCount - 1
		data, err := client.ReadSectors(0, diskReadTrack, 0, diskReadSector, last, id.N)

		fmt.Print(hex.Dump(data))

		if rerr, ok := err.(*host.ResultError); ok {
			fmt.Printf("ST0=%02X ST1=%02X ST2=%02X\n", rerr.ST0(), rerr.ST1(), rerr.ST2())
			fail(rerr)
		} else if err != nil {
			fail(err)
		}

		st := controller.Status()
		fmt.Printf("ST0=%02X ST1=%02X ST2=%02X\n", st[0], st[1], st[2])
	},
}

func init() {
	diskCommandRead.Flags().Uint8Var(&diskReadTrack, "track", 0, `Cylinder to read`)
	diskCommandRead.Flags().Uint8Var(&diskReadSector, "sector", 0xc1, `First sector ID`)
	diskCommandRead.Flags().Uint8Var(&diskReadCount, "count", 1, `Number of sectors`)
	diskCommandRead.Flags().BoolVar(&diskReadMFM, "mfm", true, `Double density; --mfm=false reads in FM`)
	diskCmd.AddCommand(diskCommandRead)
}
