package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/tubemusic/internal/manifest"
	"github.com/handiism/tubemusic/internal/model"
)

// Job is one track to export.
type Job struct {
	// Number is the 1-based position of the track in the manifest.
	Number int

	Track model.TrackData

	// Path is the output file.
	Path string

	// CoverURI is the absolute cover URI, empty when the manifest gives
	// no cover.
	CoverURI string
}

// Title returns the track title for messages.
func (j Job) Title() string {
	return j.Track.Metadata.Title
}

// Plan resolves the manifest and places every track. Tracks that would
// share a file get " (2)", " (3)", ... appended to their name. The
// suffix is bumped until the path is free, so a suffixed name never lands
// on a track that already carries that title.
func (m *Manager) Plan(doc *manifest.Document) ([]Job, error) {
	var jobs []Job
	taken := make(map[string]bool)

	for td := range model.Resolve(doc.Media) {
		orig := m.paths.TrackPath(td.Metadata)
		path := orig
		for n := 1; taken[strings.ToLower(path)]; {
			n++
			path = withSuffix(orig, n)
		}
		taken[strings.ToLower(path)] = true

		job := Job{Number: len(jobs) + 1, Track: td, Path: path}
		if td.Cover != nil {
			uri, err := td.Cover.URI(doc.Dir)
			if err != nil {
				return nil, fmt.Errorf("track %d %q: %w", job.Number, td.Metadata.Title, err)
			}
			job.CoverURI = uri
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func withSuffix(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(path, ext), n, ext)
}
