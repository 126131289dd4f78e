package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/handiism/tubemusic/internal/audio"
	ioutils "github.com/handiism/tubemusic/internal/io"
	"github.com/handiism/tubemusic/internal/model"
)

// result is the outcome of one job.
type result struct {
	job      Job
	skipped  bool
	err      error
	duration time.Duration

	// cover is the raw cover image, kept for the folder cover.
	cover []byte
}

func (m *Manager) exportTrack(ctx context.Context, job Job) result {
	r := result{job: job}
	if err := ctx.Err(); err != nil {
		r.err = err
		return r
	}

	if m.settings.SkipExisting {
		if info, ok := m.existing(job); ok {
			r.skipped = true
			r.duration = info.Duration
			return r
		}
	}

	clips, bitrate, firstURL, err := m.fetchParts(ctx, job.Track.Parts)
	if err != nil {
		r.err = err
		return r
	}

	r.cover = m.loadCover(ctx, job, firstURL)

	if err := ioutils.EnsureDir(filepath.Dir(job.Path)); err != nil {
		r.err = fmt.Errorf("create folder: %w", err)
		return r
	}

	tmp := ioutils.TempPath(job.Path)
	defer os.Remove(tmp)

	if err := m.renderer.Render(ctx, clips, bitrate, tmp); err != nil {
		r.err = err
		return r
	}

	var artwork []byte
	if r.cover != nil && m.settings.SaveCoverArtInTags {
		artwork, err = m.images.Prepare(ctx, r.cover, ioutils.ImageOptions{
			Resize:        m.settings.CoverArtInTagsResize,
			MaxSize:       m.settings.CoverArtInTagsMaxSize,
			ConvertToJPEG: m.settings.ConvertCoverArtToJPG,
		})
		if err != nil {
			m.log.WithError(err).WithField("title", job.Title()).Warn("cover could not be prepared")
			artwork = nil
		}
	}

	if err := m.tagger.SaveTags(tmp, job.Track.Metadata, artwork); err != nil {
		r.err = fmt.Errorf("tag %s: %w", job.Title(), err)
		return r
	}

	if err := os.Rename(tmp, job.Path); err != nil {
		r.err = fmt.Errorf("move into place: %w", err)
		return r
	}

	if info, err := audio.Inspect(job.Path); err == nil {
		r.duration = info.Duration
	}
	return r
}

// existing reports whether job.Path already holds this track, judged by its
// title and track number tags.
func (m *Manager) existing(job Job) (audio.Info, bool) {
	if !ioutils.Exists(job.Path) {
		return audio.Info{}, false
	}
	info, err := audio.Inspect(job.Path)
	if err != nil {
		return audio.Info{}, false
	}
	want := job.Track.Metadata
	wantNum, _ := want.TrackNumber()
	gotNum, _ := info.Tags.TrackNumber()
	if info.Tags.Title != want.Title || gotNum != wantNum {
		return audio.Info{}, false
	}
	return info, true
}

// fetchParts downloads every part and returns the clips to render, the
// highest bitrate among them and the first video URL.
func (m *Manager) fetchParts(ctx context.Context, parts []model.Part) ([]audio.Clip, int, string, error) {
	if len(parts) == 0 {
		return nil, 0, "", errors.New("track has no audio parts")
	}

	clips := make([]audio.Clip, 0, len(parts))
	bitrate := 0
	firstURL := ""

	for _, part := range parts {
		videoURL, err := m.videoURL(ctx, part)
		if err != nil {
			return nil, 0, "", err
		}
		if firstURL == "" {
			firstURL = videoURL
		}

		stream, err := m.source.Fetch(ctx, videoURL)
		if err != nil {
			return nil, 0, "", err
		}
		bitrate = max(bitrate, stream.Bitrate)
		clips = append(clips, audio.Clip{Path: stream.Path, Span: part.Window()})
	}

	if bitrate == 0 {
		bitrate = m.settings.DefaultBitrate
	}
	return clips, bitrate, firstURL, nil
}

func (m *Manager) videoURL(ctx context.Context, part model.Part) (string, error) {
	switch p := part.(type) {
	case model.AudioData:
		return p.URL, nil
	case model.PlaylistAudioData:
		return m.source.Member(ctx, p.URL, p.Index)
	default:
		panic(fmt.Sprintf("export: unknown part %T", part))
	}
}

// loadCover returns the manifest cover, or the thumbnail of firstURL when
// the manifest has none. Failures are reported and yield nil.
func (m *Manager) loadCover(ctx context.Context, job Job, firstURL string) []byte {
	uri := job.CoverURI
	if uri == "" {
		if !m.settings.ThumbnailFallback {
			return nil
		}
		thumb, err := m.source.Thumbnail(ctx, firstURL)
		if err != nil {
			m.coverWarning(job, err)
			return nil
		}
		uri = thumb
	}

	data, err := m.covers.Get(uri, func() ([]byte, error) {
		return m.loader.LoadURI(ctx, uri)
	})
	if err != nil {
		m.coverWarning(job, err)
		return nil
	}
	return data
}

func (m *Manager) coverWarning(job Job, err error) {
	m.log.WithError(err).WithField("title", job.Title()).Warn("cover unavailable")
	m.progress(ProgressEvent{Message: fmt.Sprintf("No cover for %s: %v", job.Title(), err), Level: LevelWarning})
}
