package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/handiism/tubemusic/internal/logging"
	"github.com/handiism/tubemusic/internal/model"
)

// DefaultBitrate is used when no part reports a bitrate, in kbps.
const DefaultBitrate = 192

// Clip is a time range of a local audio file.
type Clip struct {
	Path string
	Span model.Span
}

// Renderer slices, joins and encodes clips to MP3 with ffmpeg.
type Renderer struct {
	binary string
	run    func(ctx context.Context, name string, args ...string) error
	log    *logrus.Entry
}

// NewRenderer creates a Renderer. An empty binary means "ffmpeg" on PATH.
func NewRenderer(binary string, logger logrus.FieldLogger) *Renderer {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Renderer{
		binary: binary,
		run:    runFFmpeg,
		log:    logging.Module(logger, "audio"),
	}
}

// Render writes the concatenation of clips to dest as MP3 at bitrate kbps.
// dest is overwritten.
func (r *Renderer) Render(ctx context.Context, clips []Clip, bitrate int, dest string) error {
	if len(clips) == 0 {
		return fmt.Errorf("render %s: no clips", dest)
	}

	args := renderArgs(clips, bitrate, dest)
	r.log.WithFields(logrus.Fields{"dest": dest, "clips": len(clips)}).Debug("rendering")
	if err := r.run(ctx, r.binary, args...); err != nil {
		return fmt.Errorf("render %s: %w", dest, err)
	}
	return nil
}

// renderArgs builds the ffmpeg command line. Every clip is its own input,
// trimmed with input-side -ss/-to, and the inputs are joined with the
// concat filter.
func renderArgs(clips []Clip, bitrate int, dest string) []string {
	if bitrate <= 0 {
		bitrate = DefaultBitrate
	}

	args := []string{"-hide_banner", "-nostdin", "-loglevel", "error", "-y"}
	for _, c := range clips {
		if c.Span.Start != nil {
			args = append(args, "-ss", formatSeconds(c.Span.StartSeconds()))
		}
		if c.Span.End != nil {
			args = append(args, "-to", formatSeconds(c.Span.End.Seconds()))
		}
		args = append(args, "-i", c.Path)
	}

	if len(clips) == 1 {
		args = append(args, "-map", "0:a")
	} else {
		var filter strings.Builder
		for i := range clips {
			fmt.Fprintf(&filter, "[%d:a]", i)
		}
		fmt.Fprintf(&filter, "concat=n=%d:v=0:a=1[out]", len(clips))
		args = append(args, "-filter_complex", filter.String(), "-map", "[out]")
	}

	return append(args,
		"-map_metadata", "-1",
		"-c:a", "libmp3lame",
		"-b:a", strconv.Itoa(bitrate)+"k",
		"-f", "mp3",
		dest,
	)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func runFFmpeg(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
