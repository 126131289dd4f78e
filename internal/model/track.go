package model

// Media is the root of a manifest: an Album or a bare Track.
//
// Media is a closed set. Values are always the struct types defined in this
// package, never pointers to them.
type Media interface {
	isMedia()
}

// Track is one of Single, Split, Playlist or Merge.
type Track interface {
	Media
	isTrack()
}

// PlaylistSlot is one entry of a Playlist: TrackStub, MergeStub or Drop.
type PlaylistSlot interface {
	isPlaylistSlot()
}

// MergeSlot is one entry of a MergeStub: TimeStub or Drop.
type MergeSlot interface {
	isMergeSlot()
}

// Single is one region of one video.
type Single struct {
	URL   string
	Tags  Tags
	Cover Cover
	Span
}

// NewSingle validates and returns a Single. The title tag is required.
func NewSingle(url string, tags Tags, cover Cover, span Span) (Single, error) {
	tags, err := requireTitle("Single", tags)
	if err != nil {
		return Single{}, err
	}
	return Single{URL: url, Tags: tags, Cover: cover, Span: span}, nil
}

// TrackStub is a named region without its own URL, used inside a Split or
// a Playlist.
type TrackStub struct {
	Tags  Tags
	Cover Cover
	Span
}

// NewTrackStub validates and returns a TrackStub. The title tag is required.
func NewTrackStub(tags Tags, cover Cover, span Span) (TrackStub, error) {
	tags, err := requireTitle("TrackStub", tags)
	if err != nil {
		return TrackStub{}, err
	}
	return TrackStub{Tags: tags, Cover: cover, Span: span}, nil
}

// Split is one video cut into consecutive tracks.
//
// A stub without an end runs until the start of the next stub, so only the
// start of each track has to be written down.
type Split struct {
	URL    string
	Cover  Cover
	Tracks []TrackStub
}

// NewSplit validates and returns a Split. At least one track is required.
func NewSplit(url string, cover Cover, tracks []TrackStub) (Split, error) {
	if len(tracks) == 0 {
		return Split{}, &ValidationError{Variant: "Split", Field: "tracks", Err: ErrEmpty}
	}
	return Split{URL: url, Cover: cover, Tracks: tracks}, nil
}

// AudioStub is an anonymous region of a video, used inside a Merge.
type AudioStub struct {
	URL string
	Span
}

// Merge concatenates regions of several videos into one track.
type Merge struct {
	Tags  Tags
	Cover Cover
	Parts []AudioStub
}

// NewMerge validates and returns a Merge. The title tag and at least one
// part are required.
func NewMerge(tags Tags, cover Cover, parts []AudioStub) (Merge, error) {
	tags, err := requireTitle("Merge", tags)
	if err != nil {
		return Merge{}, err
	}
	if len(parts) == 0 {
		return Merge{}, &ValidationError{Variant: "Merge", Field: "parts", Err: ErrEmpty}
	}
	return Merge{Tags: tags, Cover: cover, Parts: parts}, nil
}

// TimeStub is an anonymous time window of one playlist member.
type TimeStub struct {
	Span
}

// MergeStub concatenates consecutive playlist members into one track.
//
// Each part occupies one playlist position; Drop parts occupy a position
// without contributing audio.
type MergeStub struct {
	Tags  Tags
	Cover Cover
	Parts []MergeSlot
}

// NewMergeStub validates and returns a MergeStub. Only the title tag is
// required. Parts may be empty or all Drop: such a stub still consumes its
// playlist positions and resolves to a track without audio, which export
// reports as a failed track.
func NewMergeStub(tags Tags, cover Cover, parts []MergeSlot) (MergeStub, error) {
	tags, err := requireTitle("MergeStub", tags)
	if err != nil {
		return MergeStub{}, err
	}
	return MergeStub{Tags: tags, Cover: cover, Parts: parts}, nil
}

// Drop occupies exactly one playlist position and produces nothing.
type Drop struct{}

// Playlist maps playlist members, in order, to tracks.
//
// Every slot consumes playlist positions: a TrackStub or Drop consumes one,
// a MergeStub consumes one per part. An empty Playlist yields no tracks.
type Playlist struct {
	URL    string
	Cover  Cover
	Tracks []PlaylistSlot
}

// NewPlaylist returns a Playlist. Any number of slots is allowed.
func NewPlaylist(url string, cover Cover, tracks []PlaylistSlot) Playlist {
	return Playlist{URL: url, Cover: cover, Tracks: tracks}
}

func (Single) isMedia()   {}
func (Split) isMedia()    {}
func (Playlist) isMedia() {}
func (Merge) isMedia()    {}

func (Single) isTrack()   {}
func (Split) isTrack()    {}
func (Playlist) isTrack() {}
func (Merge) isTrack()    {}

func (TrackStub) isPlaylistSlot() {}
func (MergeStub) isPlaylistSlot() {}
func (Drop) isPlaylistSlot()      {}

func (TimeStub) isMergeSlot() {}
func (Drop) isMergeSlot()     {}
