package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/logging"
	"github.com/handiism/tubemusic/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var settingsPath string
	var logPath string

	cmd := &cobra.Command{
		Use:           "tubemusic-tui",
		Short:         "Interactive tubemusic exporter",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if settingsPath == "" {
				settingsPath = config.DefaultPath()
			}
			settings, err := config.Load(settingsPath)
			if err != nil {
				return err
			}
			settings.ApplyEnv(os.Getenv)

			// The screen belongs to the UI, so logs go to a file or nowhere.
			var output io.Writer = io.Discard
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				output = f
			}

			logger, err := logging.New(logging.Options{
				Level:  settings.LogLevel,
				Format: logging.Format(settings.LogFormat),
				Output: output,
			})
			if err != nil {
				return err
			}

			return tui.Run(settings, logger)
		},
	}

	cmd.Flags().StringVar(&settingsPath, "settings", "", "Settings file path")
	cmd.Flags().StringVar(&logPath, "log-file", "", "Append logs to this file")
	return cmd
}
