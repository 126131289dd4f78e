package model

import (
	"cmp"
	"strconv"
	"strings"
)

// divisionSlash replaces "/" in titles and album names so they stay usable
// as file and folder names.
const divisionSlash = "∕"

// TagKeys lists every tag key in canonical order. The keys match the ffmpeg
// metadata names and the keys accepted in manifests.
var TagKeys = []string{
	"title",
	"album",
	"composer",
	"genre",
	"copyright",
	"encoded_by",
	"language",
	"artist",
	"album_artist",
	"performer",
	"disc",
	"publisher",
	"track",
	"encoder",
	"lyrics",
	"compilation",
	"date",
	"creation_time",
	"album_sort",
	"artist_sort",
	"title_sort",
}

// Tags holds the metadata written to an exported track.
//
// Every field is optional and an empty string means the field is absent.
// Tags is a value type: Merge and WithTrack return new values and never
// modify the receiver.
//
// Example:
//
//	track := model.Tags{Title: "Intro"}
//	album := model.Tags{Album: "Live", Artist: "Band", Title: "ignored"}
//	merged := track.Merge(album)
//	// merged.Title == "Intro", merged.Album == "Live", merged.Artist == "Band"
type Tags struct {
	Title        string
	Album        string
	Composer     string
	Genre        string
	Copyright    string
	EncodedBy    string
	Language     string
	Artist       string
	AlbumArtist  string
	Performer    string
	Disc         string
	Publisher    string
	Track        string
	Encoder      string
	Lyrics       string
	Compilation  string
	Date         string
	CreationTime string
	AlbumSort    string
	ArtistSort   string
	TitleSort    string
}

// TagField is a single present tag.
type TagField struct {
	Key   string
	Value string
}

// NewTrackTags validates tags used by a track shape. The title is required.
func NewTrackTags(t Tags) (Tags, error) {
	return requireTitle("TrackTags", t)
}

// NewAlbumTags validates tags used by an album. The album name is required.
func NewAlbumTags(t Tags) (Tags, error) {
	t = t.Normalized()
	if t.Album == "" {
		return Tags{}, &ValidationError{Variant: "AlbumTags", Field: "album", Err: ErrRequired}
	}
	return t, nil
}

func requireTitle(variant string, t Tags) (Tags, error) {
	t = t.Normalized()
	if t.Title == "" {
		return Tags{}, &ValidationError{Variant: variant, Field: "tags.title", Err: ErrRequired}
	}
	return t, nil
}

// Normalized returns a copy of t with "/" in the title and album replaced by
// U+2215 DIVISION SLASH.
func (t Tags) Normalized() Tags {
	t.Title = strings.ReplaceAll(t.Title, "/", divisionSlash)
	t.Album = strings.ReplaceAll(t.Album, "/", divisionSlash)
	return t
}

// Merge returns tags where each field is taken from t when present and
// from other otherwise. The receiver always has priority, so
// a.Merge(b).Merge(c) prefers a, then b, then c.
func (t Tags) Merge(other Tags) Tags {
	return Tags{
		Title:        cmp.Or(t.Title, other.Title),
		Album:        cmp.Or(t.Album, other.Album),
		Composer:     cmp.Or(t.Composer, other.Composer),
		Genre:        cmp.Or(t.Genre, other.Genre),
		Copyright:    cmp.Or(t.Copyright, other.Copyright),
		EncodedBy:    cmp.Or(t.EncodedBy, other.EncodedBy),
		Language:     cmp.Or(t.Language, other.Language),
		Artist:       cmp.Or(t.Artist, other.Artist),
		AlbumArtist:  cmp.Or(t.AlbumArtist, other.AlbumArtist),
		Performer:    cmp.Or(t.Performer, other.Performer),
		Disc:         cmp.Or(t.Disc, other.Disc),
		Publisher:    cmp.Or(t.Publisher, other.Publisher),
		Track:        cmp.Or(t.Track, other.Track),
		Encoder:      cmp.Or(t.Encoder, other.Encoder),
		Lyrics:       cmp.Or(t.Lyrics, other.Lyrics),
		Compilation:  cmp.Or(t.Compilation, other.Compilation),
		Date:         cmp.Or(t.Date, other.Date),
		CreationTime: cmp.Or(t.CreationTime, other.CreationTime),
		AlbumSort:    cmp.Or(t.AlbumSort, other.AlbumSort),
		ArtistSort:   cmp.Or(t.ArtistSort, other.ArtistSort),
		TitleSort:    cmp.Or(t.TitleSort, other.TitleSort),
	}
}

// WithTrack returns a copy of t whose track number is n, replacing any
// existing value.
func (t Tags) WithTrack(n int) Tags {
	t.Track = strconv.Itoa(n)
	return t
}

// TrackNumber parses the leading number of the track tag ("3" or "3/12").
func (t Tags) TrackNumber() (int, bool) {
	s, _, _ := strings.Cut(t.Track, "/")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsZero reports whether no tag is present.
func (t Tags) IsZero() bool {
	return t == Tags{}
}

// Get returns the value stored under key, or "" for absent or unknown keys.
func (t Tags) Get(key string) string {
	if p := t.field(key); p != nil {
		return *p
	}
	return ""
}

// Set stores value under key. It reports false if key is not a tag key.
func (t *Tags) Set(key, value string) bool {
	p := t.field(key)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Fields returns the present tags in TagKeys order.
func (t Tags) Fields() []TagField {
	var fields []TagField
	for _, key := range TagKeys {
		if v := t.Get(key); v != "" {
			fields = append(fields, TagField{Key: key, Value: v})
		}
	}
	return fields
}

func (t *Tags) field(key string) *string {
	switch key {
	case "title":
		return &t.Title
	case "album":
		return &t.Album
	case "composer":
		return &t.Composer
	case "genre":
		return &t.Genre
	case "copyright":
		return &t.Copyright
	case "encoded_by":
		return &t.EncodedBy
	case "language":
		return &t.Language
	case "artist":
		return &t.Artist
	case "album_artist":
		return &t.AlbumArtist
	case "performer":
		return &t.Performer
	case "disc":
		return &t.Disc
	case "publisher":
		return &t.Publisher
	case "track":
		return &t.Track
	case "encoder":
		return &t.Encoder
	case "lyrics":
		return &t.Lyrics
	case "compilation":
		return &t.Compilation
	case "date":
		return &t.Date
	case "creation_time":
		return &t.CreationTime
	case "album_sort":
		return &t.AlbumSort
	case "artist_sort":
		return &t.ArtistSort
	case "title_sort":
		return &t.TitleSort
	}
	return nil
}
