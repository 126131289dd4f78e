package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/tubemusic/internal/config"
)

const liveTOML = `
[metadata]
album = "Live"
artist = "Band"

[[tracks]]
url = "https://www.youtube.com/watch?v=aaa"
start = "0:05"
end = "1:05"
metadata = { title = "Opening" }

[[tracks]]
url = "https://www.youtube.com/playlist?list=ppp"
tracks = ["DROP", { metadata = { title = "Encore" } }]

[[tracks]]
metadata = { title = "Medley" }
parts = [
  { url = "https://www.youtube.com/watch?v=bbb", end = 30 },
  { url = "https://www.youtube.com/watch?v=ccc" },
]
`

func writeManifest(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "live.toml")
	if err := os.WriteFile(path, []byte(liveTOML), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{config.EnvOutputDir, config.EnvYouTubeAPIKey, config.EnvLogLevel} {
		t.Setenv(key, "")
	}

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("output does not contain %q:\n%s", want, out)
	}
}

func TestResolveTable(t *testing.T) {
	manifest := writeManifest(t)

	out, err := runCLI(t, "resolve", manifest)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	requireContains(t, out, "Opening")
	requireContains(t, out, "https://www.youtube.com/watch?v=aaa [0:05-1:05]")
	requireContains(t, out, "https://www.youtube.com/playlist?list=ppp #1 [0:00-end]")
	requireContains(t, out, "https://www.youtube.com/watch?v=bbb [0:00-0:30]")
	requireContains(t, out, "3 track(s)")
}

func TestResolveJSON(t *testing.T) {
	manifest := writeManifest(t)

	out, err := runCLI(t, "resolve", "--json", manifest)
	if err != nil {
		t.Fatalf("resolve --json: %v", err)
	}

	var tracks []trackJSON
	if err := json.Unmarshal([]byte(out), &tracks); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(tracks) != 3 {
		t.Fatalf("len(tracks) = %d, want 3", len(tracks))
	}

	encore := tracks[1]
	if encore.Tags["title"] != "Encore" || encore.Tags["track"] != "2" || encore.Tags["album"] != "Live" {
		t.Errorf("encore tags = %v", encore.Tags)
	}
	if len(encore.Parts) != 1 || encore.Parts[0].Index == nil || *encore.Parts[0].Index != 1 {
		t.Errorf("encore parts = %+v", encore.Parts)
	}

	medley := tracks[2]
	if len(medley.Parts) != 2 || medley.Parts[0].End != "0:30" || medley.Parts[1].End != "" {
		t.Errorf("medley parts = %+v", medley.Parts)
	}
}

func TestResolveErrors(t *testing.T) {
	if _, err := runCLI(t, "resolve"); err == nil {
		t.Error("resolve without manifest: expected error")
	}
	if _, err := runCLI(t, "resolve", "--format", "ini", writeManifest(t)); err == nil {
		t.Error("resolve with unknown format: expected error")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte(`url = "https://example.com"`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "resolve", bad); err == nil {
		t.Error("resolve of invalid manifest: expected error")
	}
}

func TestSettingsInitAndShow(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf", "settings.json")

	out, err := runCLI(t, "--settings", target, "settings", "init")
	if err != nil {
		t.Fatalf("settings init: %v", err)
	}
	requireContains(t, out, "Wrote default settings")

	if _, err := runCLI(t, "--settings", target, "settings", "init"); err == nil {
		t.Fatal("second settings init: expected error")
	}
	if _, err := runCLI(t, "--settings", target, "settings", "init", "--overwrite"); err != nil {
		t.Fatalf("settings init --overwrite: %v", err)
	}

	out, err = runCLI(t, "--settings", target, "--log", "debug", "settings", "show")
	if err != nil {
		t.Fatalf("settings show: %v", err)
	}
	requireContains(t, out, `"log_level": "debug"`)
	requireContains(t, out, `"playlist_format": "m3u"`)

	out, err = runCLI(t, "--settings", target, "settings", "path")
	if err != nil {
		t.Fatalf("settings path: %v", err)
	}
	if strings.TrimSpace(out) != target {
		t.Errorf("settings path = %q, want %q", out, target)
	}
}

func TestExportDryRun(t *testing.T) {
	manifest := writeManifest(t)
	settingsPath := filepath.Join(t.TempDir(), "settings.json")
	outDir := t.TempDir()

	out, err := runCLI(t, "--settings", settingsPath, "--dry-run", "-o", outDir, "-j", "2", manifest)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	requireContains(t, out, filepath.Join(outDir, "Live", "Opening.mp3"))
	requireContains(t, out, "Medley")
	requireContains(t, out, "Dry run: 3 track(s) planned")

	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run wrote %d entries to the output directory", len(entries))
	}
}

func TestExportFlags(t *testing.T) {
	if _, err := runCLI(t); err == nil {
		t.Error("export without manifest: expected error")
	}
	if _, err := runCLI(t, "-q", "-v", writeManifest(t)); err == nil {
		t.Error("--quiet with --verbose: expected error")
	}
}
