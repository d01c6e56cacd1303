package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"upd765/amstrad"
	"upd765/fdc"
	"upd765/host"
)

var spectrumProbeTimeout time.Duration

// The +3 ROM checks for a disk at boot: specify, recalibrate, clear the
// interrupts, then Read ID. A not ready result sends it to the tape loader.
var spectrumProbeCommands = [][]byte{
	{fdc.CmdSpecify, 0xaf, 0x03},
	{fdc.CmdRecalibrate, 0x00},
	{fdc.CmdSenseInterrupt},
	{fdc.CmdSenseInterrupt},
	{fdc.CmdSenseInterrupt},
	{fdc.CmdReadID | 0x40, 0x00},
}

var speccyProbeCmd = &cobra.Command{
	Use:                   "probe [FILE]",
	Short:                 "Run the +3 boot disk check",
	Long:                  `Runs the +3 boot time disk check as Z80 code against the controller. Without a FILE the drive is empty.`,
	Args:                  cobra.MaximumNArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		var image amstrad.Image
		if len(args) == 1 {
			var err error
			if image, err = openImage(spectrumMediaType, args[0]); err != nil {
				fail(err)
			}
		}

		controller, err := mount(image, false)
		if err != nil {
			fail(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), spectrumProbeTimeout)
		defer cancel()

		out, err := host.NewMachine(controller).RunCommands(ctx, spectrumProbeCommands...)
		if err != nil {
			fail(err)
		}

		fmt.Printf("Bytes read: % X\n", out)

		if len(out) < 7 {
			fail(errors.Errorf("read id returned %d bytes", len(out)))
		}
		res := out[len(out)-7:]
		if res[0]&fdc.ST0NotReady != 0 {
			fmt.Println("No disk: the +3 would boot from tape")
			return
		}
		if res[0]&fdc.ST0InterruptCode != 0 {
			fmt.Printf("Disk not readable: ST0=%02X ST1=%02X ST2=%02X\n", res[0], res[1], res[2])
			return
		}
		fmt.Printf("Disk found: C=%02X H=%02X R=%02X N=%02X\n", res[3], res[4], res[5], res[6])
	},
}

func init() {
	mediaFlag(speccyProbeCmd.Flags(), &spectrumMediaType)
	speccyProbeCmd.Flags().DurationVar(&spectrumProbeTimeout, "timeout", 5*time.Second, `Z80 run time limit`)
	spectrumCmd.AddCommand(speccyProbeCmd)
}
