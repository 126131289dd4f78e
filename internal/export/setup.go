package export

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/audio"
	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/youtube"
)

// NewDefaultManager creates a Manager backed by the yt-dlp and ffmpeg
// binaries named in settings. When settings carry a YouTube API key,
// playlists are listed through the Data API instead of yt-dlp.
//
// The returned close function removes the downloaded streams and must be
// called once the Manager is no longer used.
func NewDefaultManager(ctx context.Context, settings *config.Settings, logger logrus.FieldLogger, onProgress func(ProgressEvent)) (*Manager, func() error, error) {
	var lister youtube.Lister
	if settings.YouTubeAPIKey != "" {
		api, err := youtube.NewAPILister(ctx, settings.YouTubeAPIKey)
		if err != nil {
			return nil, nil, err
		}
		lister = api
	}

	source, err := youtube.NewClient(youtube.Options{
		Binary: settings.YtDlpPath,
		Lister: lister,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}

	m, err := NewManager(Options{
		Settings:   settings,
		Source:     source,
		Renderer:   audio.NewRenderer(settings.FFmpegPath, logger),
		Logger:     logger,
		OnProgress: onProgress,
	})
	if err != nil {
		return nil, nil, errors.Join(err, source.Close())
	}
	return m, source.Close, nil
}
