package audio

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"

	"github.com/handiism/tubemusic/internal/model"
)

// Info describes an MP3 file already on disk.
type Info struct {
	Tags     model.Tags
	Duration time.Duration
	HasCover bool
}

// Inspect reads the tags and the playing time of an MP3 file.
func Inspect(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return Info{}, fmt.Errorf("read tags of %s: %w", path, err)
	}

	info := Info{
		Tags:     tagsOf(meta),
		HasCover: meta.Picture() != nil,
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Info{}, err
	}
	info.Duration = Duration(f)
	return info, nil
}

// Duration sums the frame durations of an MP3 stream. Decoding stops at
// the first unreadable frame.
func Duration(r io.Reader) time.Duration {
	dec := mp3.NewDecoder(r)

	var (
		total   time.Duration
		frame   mp3.Frame
		skipped int
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			return total
		}
		total += frame.Duration()
	}
}

func tagsOf(meta tag.Metadata) model.Tags {
	t := model.Tags{
		Title:       meta.Title(),
		Album:       meta.Album(),
		Artist:      meta.Artist(),
		AlbumArtist: meta.AlbumArtist(),
		Composer:    meta.Composer(),
		Genre:       meta.Genre(),
		Lyrics:      meta.Lyrics(),
	}
	if n, _ := meta.Track(); n > 0 {
		t.Track = strconv.Itoa(n)
	}
	if n, _ := meta.Disc(); n > 0 {
		t.Disc = strconv.Itoa(n)
	}
	if y := meta.Year(); y > 0 {
		t.Date = strconv.Itoa(y)
	}
	return t
}
