// Package cmd is the command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"upd765/amstrad"
	"upd765/amstrad/dsk"
	"upd765/drive"
	"upd765/fdc"
	"upd765/storage"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "upd765",
	Short: "uPD765 floppy disk controller emulator",
	Long: `Runs an emulated NEC uPD765 floppy disk controller against Amstrad CPC,
PCW and Spectrum +3 disk images. Every command reads the disk through the
controller's registers, the way the machine's disk ROM does.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
		return nil
	},
}

// Execute runs the command named on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", `Log level: debug, info, warn, error`)
}

// mediaFlag registers the --media override on flags.
func mediaFlag(flags *pflag.FlagSet, target *string) {
	flags.StringVarP(target, "media", "m", "", `Media type, default: file extension`)
}

// mediaType is the override when given, else the file extension.
func mediaType(override, filename string) string {
	if override != "" {
		return strings.ToLower(override)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// openImage reads a whole disk image into memory.
func openImage(media, filename string) (amstrad.Image, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	reader := storage.NewReader(f)

	var image amstrad.Image
	dskType := mediaType(media, filename)

	switch dskType {
	case "dsk":
		image = dsk.New(reader)
	default:
		return nil, errors.Errorf("unsupported media type: '%s'", dskType)
	}

	if err := image.Read(); err != nil {
		return nil, errors.Wrap(err, "storage read error")
	}
	return image, nil
}

// mount puts image in drive 0 of a fresh controller. A nil image leaves the
// drive empty.
func mount(image amstrad.Image, writeProtect bool) (*fdc.Controller, error) {
	bank := drive.NewBank(1)
	if image != nil {
		if err := bank.Insert(0, image); err != nil {
			return nil, err
		}
	}
	if err := bank.SetWriteProtect(0, writeProtect); err != nil {
		return nil, err
	}
	return fdc.New(bank), nil
}

func fail(err error) {
	fmt.Println(err)
	os.Exit(1)
}
