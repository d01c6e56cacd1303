package cmd

import (
	"github.com/spf13/cobra"
)

var amstradMediaType string

var amstradCmd = &cobra.Command{
	Use:   "amstrad",
	Short: "Amstrad CPC and PCW discs",
	Long:  `Reads AMSDOS and CP/M discs from Amstrad emulator DSK files.`,
}

func init() {
	rootCmd.AddCommand(amstradCmd)
}
