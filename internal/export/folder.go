package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/handiism/tubemusic/internal/audio"
	ioutils "github.com/handiism/tubemusic/internal/io"
)

// folder groups the results written to one directory, in job order.
type folder struct {
	dir     string
	results []result
}

func groupByFolder(results []result) []*folder {
	var folders []*folder
	byDir := make(map[string]*folder)
	for _, r := range results {
		if r.err != nil {
			continue
		}
		dir := filepath.Dir(r.job.Path)
		f, ok := byDir[dir]
		if !ok {
			f = &folder{dir: dir}
			byDir[dir] = f
			folders = append(folders, f)
		}
		f.results = append(f.results, r)
	}
	return folders
}

// finishFolders writes the playlist and the cover image of every folder
// that received tracks.
func (m *Manager) finishFolders(ctx context.Context, results []result) {
	for _, f := range groupByFolder(results) {
		if m.settings.CreatePlaylist {
			m.writePlaylist(f)
		}
		if m.settings.SaveCoverArtInFolder {
			m.writeFolderCover(ctx, f)
		}
	}
}

func (m *Manager) writePlaylist(f *folder) {
	first := f.results[0].job.Track.Metadata
	title := first.Album
	if title == "" {
		title = filepath.Base(f.dir)
	}

	entries := make([]audio.PlaylistEntry, 0, len(f.results))
	for _, r := range f.results {
		tags := r.job.Track.Metadata
		entries = append(entries, audio.PlaylistEntry{
			Path:     r.job.Path,
			Title:    tags.Title,
			Artist:   tags.Artist,
			Album:    tags.Album,
			Duration: r.duration,
		})
	}

	path := m.paths.PlaylistPath(first)
	content := m.playlist.CreatePlaylist(title, entries)
	if err := ioutils.WriteFileAtomic(path, []byte(content)); err != nil {
		m.log.WithError(err).WithField("path", path).Warn("playlist not written")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
}

func (m *Manager) writeFolderCover(ctx context.Context, f *folder) {
	for _, r := range f.results {
		if r.cover == nil {
			continue
		}

		data, err := m.images.Prepare(ctx, r.cover, ioutils.ImageOptions{
			Resize:        m.settings.CoverArtInFolderResize,
			MaxSize:       m.settings.CoverArtInFolderMaxSize,
			ConvertToJPEG: m.settings.ConvertCoverArtToJPG,
		})
		if err != nil {
			m.log.WithError(err).WithField("folder", f.dir).Warn("folder cover could not be prepared")
			return
		}

		path := m.paths.CoverArtPath(r.job.Track.Metadata, ioutils.Extension(data))
		if err := ioutils.WriteFileAtomic(path, data); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving cover: %v", err), Level: LevelWarning})
			return
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Saved cover %s", filepath.Base(path)), Level: LevelVerbose})
		return
	}
}
