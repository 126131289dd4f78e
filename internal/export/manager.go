package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/tubemusic/internal/audio"
	"github.com/handiism/tubemusic/internal/cache"
	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/http"
	ioutils "github.com/handiism/tubemusic/internal/io"
	"github.com/handiism/tubemusic/internal/logging"
	"github.com/handiism/tubemusic/internal/model"
	"github.com/handiism/tubemusic/internal/youtube"
)

// LockFileName is created in the output directory while a Run is active.
const LockFileName = ".tubemusic.lock"

// ErrLocked is returned by Run when another export holds the output
// directory.
var ErrLocked = errors.New("output directory is locked by another export")

// Source provides audio streams and thumbnails. youtube.Client implements it.
type Source interface {
	Fetch(ctx context.Context, videoURL string) (youtube.Stream, error)
	Member(ctx context.Context, playlistURL string, index int) (string, error)
	Thumbnail(ctx context.Context, videoURL string) (string, error)
}

// Renderer encodes clips into one MP3. audio.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context, clips []audio.Clip, bitrate int, dest string) error
}

// Loader reads cover URIs. http.Client implements it.
type Loader interface {
	LoadURI(ctx context.Context, uri string) ([]byte, error)
}

// Options configures NewManager.
type Options struct {
	Settings *config.Settings
	Source   Source
	Renderer Renderer

	// Loader defaults to an http.Client using the settings proxy.
	Loader Loader

	Logger     logrus.FieldLogger
	OnProgress func(ProgressEvent)
}

// Manager coordinates track exports.
type Manager struct {
	settings *config.Settings
	paths    *model.PathConfig
	source   Source
	renderer Renderer
	loader   Loader
	tagger   *audio.Tagger
	images   *ioutils.ImageService
	playlist *audio.PlaylistCreator
	covers   *cache.Memo[[]byte]

	runID string
	log   *logrus.Entry

	totalFiles int32
	doneFiles  int32

	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new export Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Settings == nil || opts.Source == nil || opts.Renderer == nil {
		return nil, errors.New("export: settings, source and renderer are required")
	}
	settings := opts.Settings
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	tagCfg, err := settings.TagConfig()
	if err != nil {
		return nil, err
	}

	loader := opts.Loader
	if loader == nil {
		proxy, err := settings.Proxy()
		if err != nil {
			return nil, err
		}
		loader = http.NewClient(http.Options{Proxy: proxy})
	}

	paths := settings.ToPathConfig()
	runID := uuid.NewString()

	return &Manager{
		settings:   settings,
		paths:      paths,
		source:     opts.Source,
		renderer:   opts.Renderer,
		loader:     loader,
		tagger:     audio.NewTagger(tagCfg),
		images:     ioutils.NewImageService(),
		playlist:   audio.NewPlaylistCreator(paths.PlaylistFormat, settings.M3UExtended),
		covers:     cache.NewMemo[[]byte](0),
		runID:      runID,
		log:        logging.Module(opts.Logger, "export").WithField("run", runID),
		onProgress: opts.OnProgress,
	}, nil
}

// RunID identifies this Manager in log output.
func (m *Manager) RunID() string {
	return m.runID
}

// GetProgress returns the number of finished and planned tracks.
func (m *Manager) GetProgress() (done, total int32) {
	return atomic.LoadInt32(&m.doneFiles), atomic.LoadInt32(&m.totalFiles)
}

// Run exports jobs with bounded concurrency. A failing track does not stop
// the others; it is reported and counted in the Summary. The returned error
// is non-nil only when the run could not start or ctx was cancelled.
func (m *Manager) Run(ctx context.Context, jobs []Job) (Summary, error) {
	outDir := m.paths.OutputDir
	if err := ioutils.EnsureDir(outDir); err != nil {
		return Summary{}, fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(outDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("%w: %s", ErrLocked, outDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.log.WithError(err).Warn("failed to release output lock")
		}
	}()

	atomic.StoreInt32(&m.totalFiles, int32(len(jobs)))
	atomic.StoreInt32(&m.doneFiles, 0)
	m.log.WithFields(logrus.Fields{"tracks": len(jobs), "output": outDir}).Info("export started")

	results := make([]result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentTracks)

	for i, job := range jobs {
		g.Go(func() error {
			results[i] = m.exportWithRetry(gctx, job)
			atomic.AddInt32(&m.doneFiles, 1)
			return nil
		})
	}
	g.Wait()

	var summary Summary
	for _, r := range results {
		switch {
		case r.skipped:
			summary.Skipped++
		case r.err != nil:
			summary.Failed++
		default:
			summary.Exported++
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	m.finishFolders(ctx, results)

	m.log.WithFields(logrus.Fields{
		"exported": summary.Exported,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
	}).Info("export finished")
	return summary, nil
}

func (m *Manager) exportWithRetry(ctx context.Context, job Job) result {
	log := m.log.WithFields(logrus.Fields{"track": job.Number, "title": job.Title()})

	var r result
	for tries := 0; tries < m.settings.MaxRetries; tries++ {
		r = m.exportTrack(ctx, job)
		if r.err == nil || ctx.Err() != nil {
			break
		}
		if tries+1 < m.settings.MaxRetries {
			log.WithError(r.err).Warn("export failed, retrying")
			m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s", tries+1, m.settings.MaxRetries, job.Title()), Level: LevelWarning})
			m.waitForRetry(ctx, tries)
		}
	}

	switch {
	case r.err != nil:
		log.WithError(r.err).Error("export failed")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error exporting %s: %v", job.Title(), r.err), Level: LevelError})
	case r.skipped:
		log.Debug("skipped existing file")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(job.Path)), Level: LevelVerbose})
	default:
		log.WithField("path", job.Path).Info("exported")
		m.progress(ProgressEvent{Message: fmt.Sprintf("Exported: %s", filepath.Base(job.Path)), Level: LevelSuccess})
	}
	return r
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.RetryCooldown * math.Pow(m.settings.RetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onProgress(event)
}
