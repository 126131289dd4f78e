package audio

import (
	"fmt"
	"net/http"

	"github.com/bogem/id3v2"

	"github.com/handiism/tubemusic/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagModify writes the manifest value, removing the frame when the
	// value is empty.
	TagModify TagEditAction = iota

	// TagEmpty removes the frame.
	TagEmpty

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify
)

// ParseTagEditAction maps "modify", "empty" or "keep" to a TagEditAction.
func ParseTagEditAction(s string) (TagEditAction, error) {
	switch s {
	case "", "modify":
		return TagModify, nil
	case "empty":
		return TagEmpty, nil
	case "keep":
		return TagDoNotModify, nil
	}
	return TagModify, fmt.Errorf("unknown tag action %q", s)
}

// TagConfig holds tagging configuration.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Actions: map[string]TagEditAction{
//	        "encoder": TagEmpty,      // drop the ffmpeg encoder frame
//	        "lyrics":  TagDoNotModify,
//	    },
//	    Comments: TagEmpty,
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no text frames are written.
	ModifyTags bool

	// Actions overrides the action for individual tag keys. Keys missing
	// from the map use TagModify.
	Actions map[string]TagEditAction

	// Comments controls the COMM frames, which no tag key maps to.
	Comments TagEditAction
}

// DefaultTagConfig writes every tag and clears comments.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags: true,
		Comments:   TagEmpty,
	}
}

func (c *TagConfig) action(key string) TagEditAction {
	if a, ok := c.Actions[key]; ok {
		return a
	}
	return TagModify
}

// frameIDs maps tag keys to ID3v2.4 frames, following the names ffmpeg
// uses for the same keys.
var frameIDs = map[string]string{
	"title":         "TIT2",
	"album":         "TALB",
	"composer":      "TCOM",
	"genre":         "TCON",
	"copyright":     "TCOP",
	"encoded_by":    "TENC",
	"language":      "TLAN",
	"artist":        "TPE1",
	"album_artist":  "TPE2",
	"performer":     "TPE3",
	"disc":          "TPOS",
	"publisher":     "TPUB",
	"track":         "TRCK",
	"encoder":       "TSSE",
	"lyrics":        "USLT",
	"compilation":   "TCMP",
	"date":          "TDRC",
	"creation_time": "TDEN",
	"album_sort":    "TSOA",
	"artist_sort":   "TSOP",
	"title_sort":    "TSOT",
}

// Tagger writes ID3 tags to MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags("/music/Live/Intro.mp3", td.Metadata, jpegBytes)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes tags and, when artwork is not nil, a front cover to the
// MP3 file at path.
func (t *Tagger) SaveTags(path string, tags model.Tags, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags: %w", err)
	}
	defer tag.Close()

	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if t.config.ModifyTags {
		for _, field := range tags.Fields() {
			t.updateFrame(tag, field.Key, field.Value)
		}
		for _, key := range model.TagKeys {
			if tags.Get(key) == "" && t.config.action(key) != TagDoNotModify {
				tag.DeleteFrames(frameIDs[key])
			}
		}
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// updateFrame applies the configured action for key.
func (t *Tagger) updateFrame(tag *id3v2.Tag, key, value string) {
	id := frameIDs[key]
	switch t.config.action(key) {
	case TagDoNotModify:
		return
	case TagEmpty:
		tag.DeleteFrames(id)
		return
	}

	tag.DeleteFrames(id)
	if key == "lyrics" {
		tag.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          lyricsLanguage(tag),
			ContentDescriptor: "",
			Lyrics:            value,
		})
		return
	}
	tag.AddTextFrame(id, id3v2.EncodingUTF8, value)
}

// lyricsLanguage uses the TLAN frame when it holds an ISO 639-2 code.
func lyricsLanguage(tag *id3v2.Tag) string {
	if lang := tag.GetTextFrame("TLAN").Text; len(lang) == 3 {
		return lang
	}
	return "eng"
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    http.DetectContentType(artwork),
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
