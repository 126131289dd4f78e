package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/handiism/tubemusic/internal/audio"
	"github.com/handiism/tubemusic/internal/config"
	"github.com/handiism/tubemusic/internal/logging"
	"github.com/handiism/tubemusic/internal/manifest"
	"github.com/handiism/tubemusic/internal/model"
	"github.com/handiism/tubemusic/internal/youtube"
)

const showTOML = `
[metadata]
album = "Show"
artist = "Band"

[cover]
url = "https://example.com/cover.png"

[[tracks]]
url = "https://www.youtube.com/watch?v=aaa"
start = 5
end = 65
metadata = { title = "Intro" }

[[tracks]]
url = "https://www.youtube.com/playlist?list=ppp"
tracks = ["DROP", { metadata = { title = "Second" } }]

[[tracks]]
metadata = { title = "Joined" }
parts = [
  { url = "https://www.youtube.com/watch?v=bbb", end = 30 },
  { url = "https://www.youtube.com/watch?v=ccc" },
]
`

const (
	urlA      = "https://www.youtube.com/watch?v=aaa"
	urlB      = "https://www.youtube.com/watch?v=bbb"
	urlC      = "https://www.youtube.com/watch?v=ccc"
	urlMember = "https://www.youtube.com/watch?v=mmm"
	urlList   = "https://www.youtube.com/playlist?list=ppp"
)

type fakeSource struct {
	mu      sync.Mutex
	fetches map[string]int
	bitrate map[string]int
	fail    map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		fetches: make(map[string]int),
		bitrate: map[string]int{urlB: 128, urlC: 160},
		fail:    make(map[string]error),
	}
}

func (s *fakeSource) Fetch(_ context.Context, videoURL string) (youtube.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[videoURL]++
	if err := s.fail[videoURL]; err != nil {
		return youtube.Stream{}, err
	}
	return youtube.Stream{Path: "/src/" + videoURL[len(videoURL)-3:], Bitrate: s.bitrate[videoURL]}, nil
}

func (s *fakeSource) Member(_ context.Context, playlistURL string, index int) (string, error) {
	members := map[string][]string{urlList: {"https://www.youtube.com/watch?v=xxx", urlMember}}[playlistURL]
	if index >= len(members) {
		return "", youtube.ErrIndexOutOfRange
	}
	return members[index], nil
}

func (s *fakeSource) Thumbnail(_ context.Context, videoURL string) (string, error) {
	return "https://img.example.com/" + videoURL[len(videoURL)-3:] + ".png", nil
}

func (s *fakeSource) fetchCount(videoURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[videoURL]
}

type rendered struct {
	clips   []audio.Clip
	bitrate int
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls map[string]rendered
}

func (r *fakeRenderer) Render(_ context.Context, clips []audio.Clip, bitrate int, dest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]rendered)
	}
	base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(dest), "."), ".part")
	r.calls[base] = rendered{clips: clips, bitrate: bitrate}
	return os.WriteFile(dest, make([]byte, 512), 0644)
}

type fakeLoader struct {
	mu   sync.Mutex
	uris []string
}

func (l *fakeLoader) LoadURI(_ context.Context, uri string) ([]byte, error) {
	l.mu.Lock()
	l.uris = append(l.uris, uri)
	l.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type fixture struct {
	settings *config.Settings
	source   *fakeSource
	renderer *fakeRenderer
	loader   *fakeLoader
	doc      *manifest.Document

	mu     sync.Mutex
	events []ProgressEvent
}

func newFixture(t *testing.T, manifestTOML string) *fixture {
	t.Helper()

	media, err := manifest.Unmarshal([]byte(manifestTOML), manifest.FormatTOML)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	settings := config.DefaultSettings()
	settings.OutputDir = t.TempDir()
	settings.RetryCooldown = 0

	return &fixture{
		settings: settings,
		source:   newFakeSource(),
		renderer: &fakeRenderer{},
		loader:   &fakeLoader{},
		doc:      &manifest.Document{Dir: t.TempDir(), Format: manifest.FormatTOML, Media: media},
	}
}

func (f *fixture) manager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Options{
		Settings: f.settings,
		Source:   f.source,
		Renderer: f.renderer,
		Loader:   f.loader,
		Logger:   logging.Discard(),
		OnProgress: func(e ProgressEvent) {
			f.mu.Lock()
			f.events = append(f.events, e)
			f.mu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func (f *fixture) run(t *testing.T) Summary {
	t.Helper()
	m := f.manager(t)
	jobs, err := m.Plan(f.doc)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	summary, err := m.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return summary
}

func TestNewManager_Validates(t *testing.T) {
	settings := config.DefaultSettings()
	settings.MaxConcurrentTracks = 0

	_, err := NewManager(Options{Settings: settings, Source: newFakeSource(), Renderer: &fakeRenderer{}})
	if err == nil {
		t.Fatal("NewManager() expected error for invalid settings")
	}

	if _, err := NewManager(Options{Settings: config.DefaultSettings()}); err == nil {
		t.Fatal("NewManager() expected error without source and renderer")
	}
}

func TestPlan(t *testing.T) {
	f := newFixture(t, showTOML)
	m := f.manager(t)

	jobs, err := m.Plan(f.doc)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len(jobs) = %d, want 3", len(jobs))
	}

	dir := filepath.Join(f.settings.OutputDir, "Show")
	for i, want := range []string{"Intro", "Second", "Joined"} {
		job := jobs[i]
		if job.Number != i+1 || job.Title() != want {
			t.Errorf("jobs[%d] = %d %q, want %d %q", i, job.Number, job.Title(), i+1, want)
		}
		if job.Path != filepath.Join(dir, want+".mp3") {
			t.Errorf("jobs[%d].Path = %q", i, job.Path)
		}
		if job.CoverURI != "https://example.com/cover.png" {
			t.Errorf("jobs[%d].CoverURI = %q", i, job.CoverURI)
		}
	}
}

func TestPlan_DuplicatesAndFileCover(t *testing.T) {
	f := newFixture(t, `
[metadata]
album = "Dupes"

[cover]
file = "art/front.png"

[[tracks]]
url = "https://www.youtube.com/watch?v=aaa"
metadata = { title = "Song" }

[[tracks]]
url = "https://www.youtube.com/watch?v=bbb"
metadata = { title = "song" }

[[tracks]]
url = "https://www.youtube.com/watch?v=ccc"
metadata = { title = "Song" }

[[tracks]]
url = "https://www.youtube.com/watch?v=ddd"
metadata = { title = "Song (3)" }

[[tracks]]
url = "https://www.youtube.com/watch?v=eee"
metadata = { title = "Song (2)" }
`)
	m := f.manager(t)

	jobs, err := m.Plan(f.doc)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	dir := filepath.Join(f.settings.OutputDir, "Dupes")
	want := []string{"Song.mp3", "song (2).mp3", "Song (3).mp3", "Song (3) (2).mp3", "Song (2) (2).mp3"}
	if len(jobs) != len(want) {
		t.Fatalf("len(jobs) = %d, want %d", len(jobs), len(want))
	}
	paths := make(map[string]int)
	for i, name := range want {
		if prev, ok := paths[jobs[i].Path]; ok {
			t.Errorf("jobs %d and %d share path %q", prev, i, jobs[i].Path)
		}
		paths[jobs[i].Path] = i
		if jobs[i].Path != filepath.Join(dir, name) {
			t.Errorf("jobs[%d].Path = %q, want %q", i, jobs[i].Path, name)
		}
	}

	if !strings.HasPrefix(jobs[0].CoverURI, "file://") || !strings.HasSuffix(jobs[0].CoverURI, "/art/front.png") {
		t.Errorf("CoverURI = %q", jobs[0].CoverURI)
	}
}

func TestRun_ExportsTracks(t *testing.T) {
	f := newFixture(t, showTOML)

	summary := f.run(t)
	if summary != (Summary{Exported: 3}) {
		t.Fatalf("summary = %+v, want 3 exported", summary)
	}

	want := map[string]rendered{
		"Intro.mp3": {
			clips:   []audio.Clip{{Path: "/src/aaa", Span: model.Span{Start: model.At(5 * time.Second), End: model.At(65 * time.Second)}}},
			bitrate: audio.DefaultBitrate,
		},
		"Second.mp3": {
			clips:   []audio.Clip{{Path: "/src/mmm"}},
			bitrate: audio.DefaultBitrate,
		},
		"Joined.mp3": {
			clips: []audio.Clip{
				{Path: "/src/bbb", Span: model.Span{End: model.At(30 * time.Second)}},
				{Path: "/src/ccc"},
			},
			bitrate: 160,
		},
	}
	if !reflect.DeepEqual(f.renderer.calls, want) {
		t.Errorf("rendered = %+v\nwant %+v", f.renderer.calls, want)
	}

	dir := filepath.Join(f.settings.OutputDir, "Show")
	for i, title := range []string{"Intro", "Second", "Joined"} {
		path := filepath.Join(dir, title+".mp3")
		info, err := audio.Inspect(path)
		if err != nil {
			t.Fatalf("Inspect(%s) error = %v", title, err)
		}
		if info.Tags.Title != title || info.Tags.Album != "Show" || info.Tags.Artist != "Band" {
			t.Errorf("%s tags = %+v", title, info.Tags)
		}
		if info.Tags.Track != fmt.Sprint(i+1) {
			t.Errorf("%s track = %q, want %d", title, info.Tags.Track, i+1)
		}
		if !info.HasCover {
			t.Errorf("%s has no embedded cover", title)
		}
		if _, err := os.Stat(filepath.Join(dir, "."+title+".mp3.part")); !os.IsNotExist(err) {
			t.Errorf("%s temp file left behind", title)
		}
	}

	if len(f.loader.uris) != 1 {
		t.Errorf("cover loaded %d times, want 1", len(f.loader.uris))
	}

	done, total := f.manager(t).GetProgress()
	if done != 0 || total != 0 {
		t.Errorf("fresh manager progress = %d/%d", done, total)
	}
}

func TestRun_ThumbnailFallback(t *testing.T) {
	f := newFixture(t, `
url = "https://www.youtube.com/watch?v=aaa"
metadata = { title = "Alone" }
`)

	if summary := f.run(t); summary.Exported != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if !reflect.DeepEqual(f.loader.uris, []string{"https://img.example.com/aaa.png"}) {
		t.Errorf("loaded = %v", f.loader.uris)
	}

	f.settings.ThumbnailFallback = false
	f.settings.SkipExisting = false
	f.loader.uris = nil
	f.run(t)
	if len(f.loader.uris) != 0 {
		t.Errorf("loaded = %v, want nothing without fallback", f.loader.uris)
	}
}

func TestRun_SkipExisting(t *testing.T) {
	f := newFixture(t, showTOML)
	f.run(t)

	f.renderer.calls = nil
	summary := f.run(t)
	if summary != (Summary{Skipped: 3}) {
		t.Fatalf("second run summary = %+v, want 3 skipped", summary)
	}
	if len(f.renderer.calls) != 0 {
		t.Errorf("rendered %d tracks on second run", len(f.renderer.calls))
	}
	if n := f.source.fetchCount(urlA); n != 1 {
		t.Errorf("fetched %s %d times, want 1", urlA, n)
	}

	f.settings.SkipExisting = false
	if summary := f.run(t); summary.Exported != 3 {
		t.Errorf("summary without skipping = %+v", summary)
	}
}

func TestRun_Failures(t *testing.T) {
	f := newFixture(t, showTOML)
	f.settings.MaxRetries = 2
	f.source.fail[urlA] = errors.New("video unavailable")

	summary := f.run(t)
	if summary != (Summary{Exported: 2, Failed: 1}) {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Total() != 3 {
		t.Errorf("Total() = %d", summary.Total())
	}
	if n := f.source.fetchCount(urlA); n != 2 {
		t.Errorf("fetched failing track %d times, want 2", n)
	}

	var errorsSeen, retries int
	for _, e := range f.events {
		switch {
		case e.Level == LevelError && strings.Contains(e.Message, "video unavailable"):
			errorsSeen++
		case e.Level == LevelWarning && strings.HasPrefix(e.Message, "Retry 1/2"):
			retries++
		}
	}
	if errorsSeen != 1 || retries != 1 {
		t.Errorf("events: %d errors, %d retries, want 1 each: %+v", errorsSeen, retries, f.events)
	}

	if _, err := os.Stat(filepath.Join(f.settings.OutputDir, "Show", "Intro.mp3")); !os.IsNotExist(err) {
		t.Error("failed track was written")
	}
}

func TestRun_TrackWithoutAudioFails(t *testing.T) {
	f := newFixture(t, `
[metadata]
album = "Gaps"

[[tracks]]
url = "https://www.youtube.com/playlist?list=ppp"
tracks = [{ metadata = { title = "Silent" }, parts = ["DROP"] }, { metadata = { title = "Kept" } }]
`)
	f.settings.MaxRetries = 1

	summary := f.run(t)
	if summary != (Summary{Exported: 1, Failed: 1}) {
		t.Fatalf("summary = %+v", summary)
	}

	found := false
	for _, e := range f.events {
		if e.Level == LevelError && strings.Contains(e.Message, "no audio parts") {
			found = true
		}
	}
	if !found {
		t.Errorf("no error event for the silent track: %+v", f.events)
	}

	dir := filepath.Join(f.settings.OutputDir, "Gaps")
	if _, err := os.Stat(filepath.Join(dir, "Silent.mp3")); !os.IsNotExist(err) {
		t.Error("silent track was written")
	}
	if _, err := os.Stat(filepath.Join(dir, "Kept.mp3")); err != nil {
		t.Errorf("kept track missing: %v", err)
	}
}

func TestRun_PlaylistAndFolderCover(t *testing.T) {
	f := newFixture(t, showTOML)
	f.settings.CreatePlaylist = true
	f.settings.SaveCoverArtInFolder = true
	f.source.fail[urlB] = errors.New("gone")

	f.run(t)

	dir := filepath.Join(f.settings.OutputDir, "Show")
	data, err := os.ReadFile(filepath.Join(dir, "Show.m3u"))
	if err != nil {
		t.Fatalf("playlist not written: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Errorf("playlist = %q", content)
	}
	for _, name := range []string{"Intro.mp3", "Second.mp3"} {
		if !strings.Contains(content, name+"\n") {
			t.Errorf("playlist lacks %s: %q", name, content)
		}
	}
	if strings.Contains(content, "Joined.mp3") {
		t.Errorf("playlist lists the failed track: %q", content)
	}
	if !strings.Contains(content, "Band - Intro") {
		t.Errorf("playlist lacks display name: %q", content)
	}

	if _, err := os.Stat(filepath.Join(dir, "cover.jpg")); err != nil {
		t.Errorf("folder cover not written: %v", err)
	}
}

func TestRun_Locked(t *testing.T) {
	f := newFixture(t, showTOML)

	lock := flock.New(filepath.Join(f.settings.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock() = %v, %v", locked, err)
	}
	defer lock.Unlock()

	m := f.manager(t)
	jobs, err := m.Plan(f.doc)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Run(context.Background(), jobs); !errors.Is(err, ErrLocked) {
		t.Errorf("Run() error = %v, want ErrLocked", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, showTOML)
	m := f.manager(t)
	jobs, err := m.Plan(f.doc)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Run(ctx, jobs); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if done, total := m.GetProgress(); total != 3 || done != 3 {
		t.Errorf("progress = %d/%d, want 3/3", done, total)
	}
}

func TestProgressLevel_String(t *testing.T) {
	tests := []struct {
		level ProgressLevel
		want  string
	}{
		{LevelInfo, "info"},
		{LevelVerbose, "verbose"},
		{LevelWarning, "warning"},
		{LevelError, "error"},
		{LevelSuccess, "success"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
