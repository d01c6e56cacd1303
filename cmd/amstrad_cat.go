package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"upd765/amstrad/amsdos"
	"upd765/amstrad/amsdos/cat"
	"upd765/host"
)

var (
	amstradCatUser    uint8
	amstradCatHeaders bool
)

var amstradCommandCat = &cobra.Command{
	Use:                   "cat FILE",
	Short:                 "Displays the disk directory (catalog)",
	Long:                  `Reads and displays the directory contents from an Amstrad emulator DSK file.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		image, err := openImage(amstradMediaType, args[0])
		if err != nil {
			fail(err)
		}

		controller, err := mount(image, false)
		if err != nil {
			fail(err)
		}
		client := host.NewClient(controller)

		disc := &amsdos.AmsDos{}
		if err := disc.Read(client, 0); err != nil {
			fail(err)
		}

		fmt.Printf("%s format\n\n", disc.Format)
		cat.CommandCat(disc.DPB, amstradCatUser, disc.Directories).Print(os.Stdout)

		if amstradCatHeaders {
			printHeaders(client, disc, amstradCatUser)
		}
	},
}

// printHeaders shows the AMSDOS header of every file of user that has one.
func printHeaders(disc amsdos.Disc, a *amsdos.AmsDos, user uint8) {
	fmt.Println()
	for _, d := range a.Directories {
		if d.UserNumber != user || d.Extent != 0 || d.S2 != 0 {
			continue
		}

		record, err := a.FirstRecord(disc, 0, d)
		if err != nil {
			log.Warnf("%s.%s: %v", d.Name(), d.Type(), err)
			continue
		}

		h, err := amsdos.ParseHeader(record)
		if err != nil {
			fmt.Printf("%-8s.%-3s  no header\n", d.Name(), d.Type())
			continue
		}
		fmt.Printf("%-8s.%-3s  type %02X  load %04X  exec %04X  length %d\n",
			d.Name(), d.Type(), h.FileType, h.DataLocation, h.EntryAddress, h.Length())
	}
}

func init() {
	mediaFlag(amstradCommandCat.Flags(), &amstradMediaType)
	amstradCommandCat.Flags().Uint8Var(&amstradCatUser, "user", 0, `User number, 0..15`)
	amstradCommandCat.Flags().BoolVar(&amstradCatHeaders, "headers", false, `Show AMSDOS file headers`)
	amstradCmd.AddCommand(amstradCommandCat)
}
