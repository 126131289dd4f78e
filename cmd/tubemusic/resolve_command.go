package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/handiism/tubemusic/internal/manifest"
	"github.com/handiism/tubemusic/internal/model"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var format string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <manifest>",
		Short: "List the tracks a manifest resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadManifest(args[0], format)
			if err != nil {
				return err
			}

			tracks := model.Collect(doc.Media)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resolvedJSON(tracks, doc.Dir))
			}

			fmt.Fprintln(out, renderTracks(tracks))
			fmt.Fprintf(out, "%d track(s)\n", len(tracks))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "auto", "Manifest format (auto, toml, json, yaml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print tracks as JSON")
	return cmd
}

func loadManifest(path, format string) (*manifest.Document, error) {
	f, err := manifest.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return manifest.Load(path, f)
}

// describePart formats a part as "<url> [start-end]", adding the playlist
// position for playlist parts.
func describePart(part model.Part) string {
	switch p := part.(type) {
	case model.AudioData:
		return fmt.Sprintf("%s [%s]", p.URL, p.Span)
	case model.PlaylistAudioData:
		return fmt.Sprintf("%s #%d [%s]", p.URL, p.Index, p.Span)
	default:
		panic(fmt.Sprintf("unknown part %T", part))
	}
}

func renderTracks(tracks []model.TrackData) string {
	rows := make([][]string, 0, len(tracks))
	for i, td := range tracks {
		parts := make([]string, 0, len(td.Parts))
		for _, part := range td.Parts {
			parts = append(parts, describePart(part))
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			td.Metadata.Track,
			td.Metadata.Title,
			td.Metadata.Artist,
			td.Metadata.Album,
			strings.Join(parts, "\n"),
		})
	}
	return renderTable(
		[]string{"#", "Track", "Title", "Artist", "Album", "Parts"},
		rows,
		[]columnAlignment{alignRight, alignRight},
	)
}

type trackJSON struct {
	Tags  map[string]string `json:"tags"`
	Cover string            `json:"cover,omitempty"`
	Parts []partJSON        `json:"parts"`
}

type partJSON struct {
	URL   string `json:"url"`
	Index *int   `json:"index,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func resolvedJSON(tracks []model.TrackData, baseDir string) []trackJSON {
	out := make([]trackJSON, 0, len(tracks))
	for _, td := range tracks {
		t := trackJSON{Tags: make(map[string]string)}
		for _, field := range td.Metadata.Fields() {
			t.Tags[field.Key] = field.Value
		}
		if td.Cover != nil {
			if uri, err := td.Cover.URI(baseDir); err == nil {
				t.Cover = uri
			}
		}
		for _, part := range td.Parts {
			p := partJSON{URL: part.Source()}
			if pl, ok := part.(model.PlaylistAudioData); ok {
				p.Index = &pl.Index
			}
			span := part.Window()
			if span.Start != nil {
				p.Start = model.FormatTimestamp(*span.Start)
			}
			if span.End != nil {
				p.End = model.FormatTimestamp(*span.End)
			}
			t.Parts = append(t.Parts, p)
		}
		out = append(out, t)
	}
	return out
}
