package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "passbot",
	Short: "passbot issues service pass codes over a Telegram dialog",
	Long: `Passbot walks a user through language selection, unit serial number
and service date entry, derives a pass code and records the result.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file loaded before reading the environment")
}
