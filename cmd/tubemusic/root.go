package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var settingsFlag string
	var logFlag string

	ctx := newCommandContext(&settingsFlag, &logFlag)

	rootCmd := newExportCommand(ctx)
	rootCmd.PersistentFlags().StringVar(&settingsFlag, "settings", "", "Settings file path")
	rootCmd.PersistentFlags().StringVar(&logFlag, "log", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newResolveCommand(ctx))
	rootCmd.AddCommand(newSettingsCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))

	return rootCmd
}
