package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/logging"
)

// DefaultDebounce is how long a Watcher waits for writes to settle.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to one manifest file.
//
// The parent directory is watched rather than the file itself, so editors
// that save by writing a new file and renaming it over the old one are
// still seen.
type Watcher struct {
	path     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	log      *logrus.Entry
}

// NewWatcher starts watching path. Changes are only delivered once Run is
// called, but none made after NewWatcher returns are lost.
func NewWatcher(path string, debounce time.Duration, logger logrus.FieldLogger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		watcher:  fw,
		log:      logging.Module(logger, "manifest").WithField("path", abs),
	}, nil
}

// Run calls onChange after every burst of writes to the manifest until ctx
// is done. onChange runs on the Run goroutine; changes made while it runs
// are coalesced into one more call.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.log.WithField("op", event.Op.String()).Debug("manifest changed")
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("file watcher error")

		case <-timer.C:
			onChange()
		}
	}
}

// Close stops watching. It is safe to call after Run returned.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
