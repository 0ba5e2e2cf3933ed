package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "x86dump",
	Short: "x86/x86-64 instruction decoder CLI",
	Long:  `x86dump decodes a hex byte string into a single instruction and prints its fields.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
