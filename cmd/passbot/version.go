package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the release build; the default marks dev builds.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of passbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("passbot version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
