package model

// Album groups tracks under shared tags and cover art.
//
// Every track produced by the album inherits the album tags for fields it
// does not set itself, inherits the album cover when it has none, and is
// numbered from 1 in manifest order.
//
// Example:
//
//	tags, _ := model.NewAlbumTags(model.Tags{Album: "Live at Home", Artist: "Band"})
//	album, err := model.NewAlbum(tags, model.URLCover{Href: "example.com/a.jpg"}, []model.Track{single, split})
type Album struct {
	Tags   Tags
	Cover  Cover
	Tracks []Track
}

// NewAlbum validates and returns an Album. The album tag and at least one
// track are required.
func NewAlbum(tags Tags, cover Cover, tracks []Track) (Album, error) {
	tags = tags.Normalized()
	if tags.Album == "" {
		return Album{}, &ValidationError{Variant: "Album", Field: "tags.album", Err: ErrRequired}
	}
	if len(tracks) == 0 {
		return Album{}, &ValidationError{Variant: "Album", Field: "tracks", Err: ErrEmpty}
	}
	return Album{Tags: tags, Cover: cover, Tracks: tracks}, nil
}

func (Album) isMedia() {}
