package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PathConfig holds the templates used to place exported files.
//
// Templates accept any tag key as a placeholder ({title}, {album},
// {artist}, {album_artist}, {disc}, {date}, ...) plus:
//   - {tracknum} - Track number (2 digits, zero-padded)
//   - {year} - First four characters of the date tag
//
// Absent tags expand to the empty string, so the default
// FolderFormat "{album}" puts tracks without an album directly in OutputDir.
//
// Example:
//
//	cfg := &PathConfig{
//	    OutputDir:      "/music",
//	    FolderFormat:   "{album_artist}/{album}",
//	    FileNameFormat: "{tracknum} {title}.mp3",
//	}
//	cfg.TrackPath(model.Tags{Title: "Intro", Album: "Live", Track: "1"})
//	// "/music/Live/01 Intro.mp3"
type PathConfig struct {
	// OutputDir is the directory every other path is relative to.
	OutputDir string

	// FolderFormat is the template for the per-album folder.
	FolderFormat string

	// FileNameFormat is the template for track file names, including the
	// extension.
	FileNameFormat string

	// CoverArtFileNameFormat is the file name template for folder cover art
	// (without extension).
	CoverArtFileNameFormat string

	// PlaylistFileNameFormat is the file name template for playlists
	// (without extension).
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// DefaultPathConfig places tracks at {album}/{title}.mp3 under outputDir.
func DefaultPathConfig(outputDir string) *PathConfig {
	return &PathConfig{
		OutputDir:              outputDir,
		FolderFormat:           "{album}",
		FileNameFormat:         "{title}.mp3",
		CoverArtFileNameFormat: "cover",
		PlaylistFileNameFormat: "{album}",
		PlaylistFormat:         PlaylistFormatM3U,
	}
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// ParsePlaylistFormat maps "m3u", "pls", "wpl" or "zpl" to a PlaylistFormat.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "m3u":
		return PlaylistFormatM3U, nil
	case "pls":
		return PlaylistFormatPLS, nil
	case "wpl":
		return PlaylistFormatWPL, nil
	case "zpl":
		return PlaylistFormatZPL, nil
	}
	return PlaylistFormatM3U, fmt.Errorf("unknown playlist format %q", s)
}

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// FolderPath returns the folder a track with the given tags is written to.
func (c *PathConfig) FolderPath(tags Tags) string {
	folder := expand(c.FolderFormat, tags, sanitizeFileName)

	// Limit path length for cross-platform compatibility (Windows MAX_PATH)
	path := filepath.Join(c.OutputDir, folder)
	if len(path) >= 248 {
		path = path[:247]
	}
	return path
}

// TrackPath returns the full path of the exported track.
func (c *PathConfig) TrackPath(tags Tags) string {
	name := sanitizeFileName(expand(c.FileNameFormat, tags, identity))
	if name == "" || name == filepath.Ext(name) {
		name = "untitled" + filepath.Ext(c.FileNameFormat)
	}
	return limitFilePath(c.FolderPath(tags), name)
}

// PlaylistPath returns the playlist file path for the folder of tags.
func (c *PathConfig) PlaylistPath(tags Tags) string {
	name := sanitizeFileName(expand(c.PlaylistFileNameFormat, tags, identity))
	if name == "" {
		name = "playlist"
	}
	return limitFilePath(c.FolderPath(tags), name+c.PlaylistFormat.Extension())
}

// CoverArtPath returns the folder cover art path; ext includes the dot.
func (c *PathConfig) CoverArtPath(tags Tags, ext string) string {
	name := sanitizeFileName(expand(c.CoverArtFileNameFormat, tags, identity))
	if name == "" {
		name = "cover"
	}
	return limitFilePath(c.FolderPath(tags), name+ext)
}

// limitFilePath joins dir and name, shortening name when the result would
// exceed the Windows MAX_PATH of 260.
func limitFilePath(dir, name string) string {
	path := filepath.Join(dir, name)
	if len(path) < 260 {
		return path
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	room := 259 - len(dir) - 1 - len(ext)
	if room > 0 && room < len(base) {
		return filepath.Join(dir, base[:room]+ext)
	}
	return path
}

func expand(template string, tags Tags, clean func(string) string) string {
	out := template
	if strings.Contains(out, "{tracknum}") {
		num := ""
		if n, ok := tags.TrackNumber(); ok {
			num = fmt.Sprintf("%02d", n)
		}
		out = strings.ReplaceAll(out, "{tracknum}", num)
	}
	if strings.Contains(out, "{year}") {
		year := tags.Date
		if len(year) > 4 {
			year = year[:4]
		}
		out = strings.ReplaceAll(out, "{year}", clean(year))
	}
	for _, key := range TagKeys {
		placeholder := "{" + key + "}"
		if strings.Contains(out, placeholder) {
			out = strings.ReplaceAll(out, placeholder, clean(tags.Get(key)))
		}
	}
	return out
}

func identity(s string) string { return s }

var (
	invalidChars   = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots   = regexp.MustCompile(`\.+$`)
	repeatedSpaces = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Unicode is normalized to NFC
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Runs of whitespace collapse to a single space
//   - Surrounding whitespace is trimmed
func sanitizeFileName(name string) string {
	name = norm.NFC.String(name)
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
