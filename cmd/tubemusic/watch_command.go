package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/export"
	"github.com/handiism/tubemusic/internal/manifest"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "watch <manifest>",
		Short: "Export a manifest and export again whenever it changes",
		Long: `watch exports the manifest once, then waits for the file to change and
exports it again. Tracks already on disk are skipped, so only new or
renamed tracks are downloaded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			if flags.output != "" {
				settings.OutputDir = flags.output
			}
			settings.SkipExisting = true

			logger, err := ctx.logger(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			watcher, err := manifest.NewWatcher(args[0], manifest.DefaultDebounce, logger)
			if err != nil {
				return err
			}
			defer watcher.Close()

			out := cmd.OutOrStdout()
			runOnce := func() {
				if err := exportOnce(cmd.Context(), args[0], flags.format, settings, logger, out, flags); err != nil && !errors.Is(err, context.Canceled) {
					fmt.Fprintf(out, "✗ %v\n", err)
				}
				fmt.Fprintf(out, "Watching %s for changes...\n", args[0])
			}

			runOnce()
			return watcher.Run(cmd.Context(), runOnce)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (overrides settings)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "Manifest format (auto, toml, json, yaml)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show verbose progress")
	return cmd
}

// exportOnce loads, plans and exports the manifest at path.
func exportOnce(ctx context.Context, path, format string, settings *config.Settings, logger *logrus.Logger, out io.Writer, flags exportFlags) error {
	doc, err := loadManifest(path, format)
	if err != nil {
		return err
	}

	manager, closeFn, err := export.NewDefaultManager(ctx, settings, logger, progressPrinter(out, flags))
	if err != nil {
		return err
	}
	defer closeFn()

	jobs, err := manager.Plan(doc)
	if err != nil {
		return err
	}

	summary, err := manager.Run(ctx, jobs)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %d, skipped %d, failed %d of %d track(s).\n",
		summary.Exported, summary.Skipped, summary.Failed, summary.Total())
	return nil
}
