package main

import (
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	formatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "marlin",
	Short: "marlin - a local-first metadata index over files on disk",
	Long:  "marlin indexes files under scanned roots and layers hierarchical tags, typed attributes, typed links, collections, and saved full-text-search views on top, without touching the files themselves.",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "raise log level to debug")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "table", "output format for commands that print records: table or json")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newTagCmd())
	rootCmd.AddCommand(newAttrCmd())
	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newCollCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(newRestoreCmd())
}
