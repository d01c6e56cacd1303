package cmd

import (
	"github.com/spf13/cobra"
)

var spectrumMediaType string

var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "ZX Spectrum +3 discs",
	Long:  `Runs Spectrum +3 disk routines on an emulated Z80.`,
}

func init() {
	rootCmd.AddCommand(spectrumCmd)
}
