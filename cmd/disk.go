package cmd

import (
	"github.com/spf13/cobra"
)

var (
	diskMediaType    string
	diskWriteProtect bool
)

var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Low level disk access",
	Long:  `Issues single controller commands against a disk image.`,
}

func init() {
	mediaFlag(diskCmd.PersistentFlags(), &diskMediaType)
	diskCmd.PersistentFlags().BoolVar(&diskWriteProtect, "write-protect", false, `Insert the disk write protected`)
	rootCmd.AddCommand(diskCmd)
}
