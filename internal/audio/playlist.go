package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/tubemusic/internal/model"
)

// PlaylistEntry is one exported track listed in a playlist.
type PlaylistEntry struct {
	// Path is the track file. Playlists list it relative to their folder.
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
}

// PlaylistCreator generates playlist files in various formats.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("Live", entries)
//	os.WriteFile(cfg.PlaylistPath(tags), []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// Song Title.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects
// M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the playlist format the creator writes.
func (p *PlaylistCreator) Format() model.PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for entries that live in the
// same folder as the playlist file.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []PlaylistEntry) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(entries)
	case model.PlaylistFormatWPL:
		return p.createWPL(title, entries)
	case model.PlaylistFormatZPL:
		return p.createZPL(title, entries)
	default:
		return p.createM3U(entries)
	}
}

func (p *PlaylistCreator) createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", seconds(e.Duration), displayName(e))
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}

	return sb.String()
}

// createPLS writes the INI-style format used by Winamp.
func (p *PlaylistCreator) createPLS(entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, displayName(e))
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, seconds(e.Duration))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

func (p *PlaylistCreator) createWPL(title string, entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(filepath.Base(e.Path)))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL is WPL plus per-track album, artist and duration attributes.
func (p *PlaylistCreator) createZPL(title string, entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(title))
	sb.WriteString("    <meta name=\"Generator\" content=\"tubemusic\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(e.Path)),
			escapeXML(e.Album),
			escapeXML(e.Artist),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Duration.Milliseconds())
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// displayName is "Artist - Title", or the title alone without an artist.
func displayName(e PlaylistEntry) string {
	if e.Artist == "" {
		return e.Title
	}
	return e.Artist + " - " + e.Title
}

// seconds rounds d to whole seconds; unknown durations are -1 as M3U and
// PLS expect.
func seconds(d time.Duration) int {
	if d <= 0 {
		return -1
	}
	return int(d.Round(time.Second) / time.Second)
}

// escapeXML escapes & < > " and ' for attribute and text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
