package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/handiism/tubemusic/internal/export"
)

type exportFlags struct {
	output   string
	format   string
	jobs     int
	playlist bool
	quiet    bool
	verbose  bool
	dryRun   bool
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "tubemusic <manifest>",
		Short: "Export tagged MP3 albums from YouTube manifests",
		Long: `tubemusic reads an album or track manifest (TOML, JSON or YAML),
downloads the referenced YouTube audio with yt-dlp, cuts and joins it with
ffmpeg, and writes tagged MP3 files with cover art.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			if flags.output != "" {
				settings.OutputDir = flags.output
			}
			if flags.jobs > 0 {
				settings.MaxConcurrentTracks = flags.jobs
			}
			if cmd.Flags().Changed("playlist") {
				settings.CreatePlaylist = flags.playlist
			}

			doc, err := loadManifest(args[0], flags.format)
			if err != nil {
				return err
			}

			logger, err := ctx.logger(settings, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			manager, closeFn, err := export.NewDefaultManager(cmd.Context(), settings, logger, progressPrinter(out, flags))
			if err != nil {
				return err
			}
			defer closeFn()

			jobs, err := manager.Plan(doc)
			if err != nil {
				return err
			}

			if flags.dryRun {
				fmt.Fprintln(out, renderJobs(jobs))
				fmt.Fprintf(out, "Dry run: %d track(s) planned, nothing exported.\n", len(jobs))
				return nil
			}

			summary, err := manager.Run(cmd.Context(), jobs)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Exported %d, skipped %d, failed %d of %d track(s).\n",
				summary.Exported, summary.Skipped, summary.Failed, summary.Total())
			if summary.Failed > 0 {
				return fmt.Errorf("%d track(s) failed", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (overrides settings)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "Manifest format (auto, toml, json, yaml)")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Tracks exported in parallel (overrides settings)")
	cmd.Flags().BoolVar(&flags.playlist, "playlist", false, "Write a playlist per output folder")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Only report warnings and errors")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show verbose progress")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Plan output files without exporting")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose")

	return cmd
}

// progressPrinter writes progress events as prefixed lines.
func progressPrinter(out io.Writer, flags exportFlags) func(export.ProgressEvent) {
	return func(event export.ProgressEvent) {
		switch event.Level {
		case export.LevelVerbose:
			if !flags.verbose {
				return
			}
		case export.LevelInfo, export.LevelSuccess:
			if flags.quiet {
				return
			}
		}

		prefix := "  "
		switch event.Level {
		case export.LevelError:
			prefix = "✗ "
		case export.LevelWarning:
			prefix = "! "
		case export.LevelSuccess:
			prefix = "✓ "
		case export.LevelInfo:
			prefix = "› "
		}
		fmt.Fprintln(out, prefix+event.Message)
	}
}

func renderJobs(jobs []export.Job) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			strconv.Itoa(job.Number),
			job.Title(),
			strconv.Itoa(len(job.Track.Parts)),
			job.Path,
		})
	}
	return renderTable(
		[]string{"#", "Title", "Parts", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	)
}
