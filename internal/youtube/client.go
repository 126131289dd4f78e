package youtube

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/cache"
	"github.com/handiism/tubemusic/internal/logging"
)

// ErrIndexOutOfRange is returned by Member when a playlist has fewer
// entries than the requested position.
var ErrIndexOutOfRange = errors.New("playlist index out of range")

// Stream is a downloaded audio stream.
type Stream struct {
	// Path is the local file holding the stream.
	Path string

	// Bitrate is the average audio bitrate in kbps, 0 when unknown.
	Bitrate int
}

// Lister enumerates the videos of a playlist.
type Lister interface {
	ListMembers(ctx context.Context, playlistURL string) ([]string, error)
}

// runFunc runs a command and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Options configures NewClient.
type Options struct {
	// Binary is the yt-dlp executable. Empty means "yt-dlp" on PATH.
	Binary string

	// WorkDir receives downloaded streams. Empty means a fresh temporary
	// directory, removed by Close.
	WorkDir string

	// Lister replaces yt-dlp for playlist enumeration, typically an
	// APILister.
	Lister Lister

	Logger logrus.FieldLogger
}

// Client fetches audio, playlist members and thumbnails with yt-dlp.
// Results are memoised for the lifetime of the Client.
type Client struct {
	binary  string
	workDir string
	ownsDir bool
	lister  Lister
	run     runFunc
	log     *logrus.Entry

	members *cache.Memo[[]string]
	streams *cache.Memo[Stream]
	thumbs  *cache.Memo[string]
}

// NewClient creates a Client.
func NewClient(opts Options) (*Client, error) {
	binary := opts.Binary
	if binary == "" {
		binary = "yt-dlp"
	}

	workDir := opts.WorkDir
	ownsDir := false
	if workDir == "" {
		dir, err := os.MkdirTemp("", "tubemusic-")
		if err != nil {
			return nil, fmt.Errorf("create work dir: %w", err)
		}
		workDir, ownsDir = dir, true
	} else if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	return &Client{
		binary:  binary,
		workDir: workDir,
		ownsDir: ownsDir,
		lister:  opts.Lister,
		run:     runCommand,
		log:     logging.Module(opts.Logger, "youtube"),
		members: cache.NewMemo[[]string](0),
		streams: cache.NewMemo[Stream](0),
		thumbs:  cache.NewMemo[string](0),
	}, nil
}

// Close removes the temporary work directory, if the Client created it.
func (c *Client) Close() error {
	if !c.ownsDir {
		return nil
	}
	return os.RemoveAll(c.workDir)
}

// Fetch downloads the best audio stream of a video.
func (c *Client) Fetch(ctx context.Context, videoURL string) (Stream, error) {
	return c.streams.Get(videoURL, func() (Stream, error) {
		c.log.WithField("url", videoURL).Debug("fetching audio")

		out, err := c.run(ctx, c.binary,
			"--format", "bestaudio/best",
			"--no-playlist",
			"--no-progress",
			"--no-simulate",
			"--print", "abr",
			"--print", "after_move:filepath",
			"--output", filepath.Join(c.workDir, "%(id)s.%(ext)s"),
			videoURL,
		)
		if err != nil {
			return Stream{}, fmt.Errorf("fetch %s: %w", videoURL, err)
		}

		stream, err := parseFetchOutput(out)
		if err != nil {
			return Stream{}, fmt.Errorf("fetch %s: %w", videoURL, err)
		}
		c.log.WithFields(logrus.Fields{"url": videoURL, "bitrate": stream.Bitrate}).Debug("fetched audio")
		return stream, nil
	})
}

// ListMembers returns the video URLs of a playlist in playlist order.
func (c *Client) ListMembers(ctx context.Context, playlistURL string) ([]string, error) {
	return c.members.Get(playlistURL, func() ([]string, error) {
		c.log.WithField("url", playlistURL).Debug("listing playlist")

		if c.lister != nil {
			return c.lister.ListMembers(ctx, playlistURL)
		}

		out, err := c.run(ctx, c.binary,
			"--flat-playlist",
			"--print", "url",
			playlistURL,
		)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", playlistURL, err)
		}
		return lines(out), nil
	})
}

// Member returns the video URL at the zero-based index of a playlist.
func (c *Client) Member(ctx context.Context, playlistURL string, index int) (string, error) {
	members, err := c.ListMembers(ctx, playlistURL)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(members) {
		return "", fmt.Errorf("%w: %d of %d in %s", ErrIndexOutOfRange, index, len(members), playlistURL)
	}
	return members[index], nil
}

// Thumbnail returns the thumbnail URL of a video.
func (c *Client) Thumbnail(ctx context.Context, videoURL string) (string, error) {
	return c.thumbs.Get(videoURL, func() (string, error) {
		out, err := c.run(ctx, c.binary,
			"--no-playlist",
			"--print", "thumbnail",
			videoURL,
		)
		if err != nil {
			return "", fmt.Errorf("thumbnail %s: %w", videoURL, err)
		}
		ls := lines(out)
		if len(ls) == 0 || ls[0] == "NA" {
			return "", fmt.Errorf("thumbnail %s: none available", videoURL)
		}
		return ls[0], nil
	})
}

// parseFetchOutput reads the "abr" and "filepath" lines printed by Fetch.
func parseFetchOutput(out []byte) (Stream, error) {
	ls := lines(out)
	if len(ls) < 2 {
		return Stream{}, fmt.Errorf("unexpected yt-dlp output %q", string(out))
	}

	var stream Stream
	stream.Path = ls[len(ls)-1]
	if abr, err := strconv.ParseFloat(ls[len(ls)-2], 64); err == nil && abr > 0 {
		stream.Bitrate = int(math.Ceil(abr))
	}
	return stream, nil
}

func lines(out []byte) []string {
	var result []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			result = append(result, line)
		}
	}
	return result
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
