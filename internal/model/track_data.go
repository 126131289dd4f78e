package model

// TrackData is one fully resolved output track: the tags to write, the
// cover to embed, and the audio parts to concatenate, in order.
type TrackData struct {
	Metadata Tags
	Cover    Cover
	Parts    []Part
}

// Part is one audio source of a TrackData: AudioData or PlaylistAudioData.
type Part interface {
	// Source returns the URL the part is fetched from. For playlist parts
	// this is the playlist URL.
	Source() string

	// Window returns the time window of the part.
	Window() Span

	isPart()
}

// AudioData is a region of the video at URL.
type AudioData struct {
	URL string
	Span
}

func (d AudioData) Source() string { return d.URL }
func (d AudioData) Window() Span   { return d.Span }
func (AudioData) isPart()          {}

// PlaylistAudioData is a region of the Index-th (0-based) member of the
// playlist at URL. The member URL is looked up by the fetcher.
type PlaylistAudioData struct {
	URL   string
	Index int
	Span
}

func (d PlaylistAudioData) Source() string { return d.URL }
func (d PlaylistAudioData) Window() Span   { return d.Span }
func (PlaylistAudioData) isPart()          {}
