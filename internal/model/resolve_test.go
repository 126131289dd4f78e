package model

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

const (
	videoURL    = "https://www.youtube.com/watch?v=abc"
	otherURL    = "https://www.youtube.com/watch?v=def"
	playlistURL = "https://www.youtube.com/playlist?list=xyz"
)

func sec(n int) *time.Duration {
	return At(time.Duration(n) * time.Second)
}

func stub(title string, start *time.Duration) TrackStub {
	return TrackStub{Tags: Tags{Title: title}, Span: Span{Start: start}}
}

func playlistIndexes(t *testing.T, td TrackData) []int {
	t.Helper()
	var out []int
	for _, p := range td.Parts {
		pd, ok := p.(PlaylistAudioData)
		if !ok {
			t.Fatalf("part %T is not PlaylistAudioData", p)
		}
		if pd.URL != playlistURL {
			t.Errorf("part URL = %q, want %q", pd.URL, playlistURL)
		}
		out = append(out, pd.Index)
	}
	return out
}

func TestResolve_Single(t *testing.T) {
	cover := URLCover{Href: "example.com/c.jpg"}
	single := Single{
		URL:   videoURL,
		Tags:  Tags{Title: "Song"},
		Cover: cover,
		Span:  Span{Start: sec(3), End: sec(60)},
	}

	got := Collect(single)
	want := []TrackData{{
		Metadata: Tags{Title: "Song"},
		Cover:    cover,
		Parts:    []Part{AudioData{URL: videoURL, Span: Span{Start: sec(3), End: sec(60)}}},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collect(single) = %+v, want %+v", got, want)
	}
}

func TestResolve_SplitStitching(t *testing.T) {
	split := Split{
		URL:    videoURL,
		Tracks: []TrackStub{stub("A", sec(5)), stub("B", sec(10)), stub("C", sec(15))},
	}

	got := Collect(split)
	want := []Span{
		{Start: sec(5), End: sec(10)},
		{Start: sec(10), End: sec(15)},
		{Start: sec(15)},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, td := range got {
		if len(td.Parts) != 1 {
			t.Fatalf("track %d has %d parts", i, len(td.Parts))
		}
		part, ok := td.Parts[0].(AudioData)
		if !ok {
			t.Fatalf("track %d part is %T", i, td.Parts[0])
		}
		if part.URL != videoURL {
			t.Errorf("track %d URL = %q", i, part.URL)
		}
		if !reflect.DeepEqual(part.Span, want[i]) {
			t.Errorf("track %d span = %v, want %v", i, part.Span, want[i])
		}
	}
	if got[0].Metadata.Title != "A" || got[2].Metadata.Title != "C" {
		t.Errorf("titles = %q, %q", got[0].Metadata.Title, got[2].Metadata.Title)
	}
}

func TestResolve_SplitExplicitEndWins(t *testing.T) {
	first := stub("A", sec(0))
	first.End = sec(7)
	split := Split{URL: videoURL, Tracks: []TrackStub{first, stub("B", sec(10))}}

	got := Collect(split)
	if end := got[0].Parts[0].Window().End; end == nil || *end != 7*time.Second {
		t.Errorf("first end = %v, want 7s", end)
	}
}

func TestResolve_SplitNextWithoutStart(t *testing.T) {
	split := Split{URL: videoURL, Tracks: []TrackStub{stub("A", sec(0)), stub("B", nil)}}

	got := Collect(split)
	if end := got[0].Parts[0].Window().End; end != nil {
		t.Errorf("first end = %v, want open", *end)
	}
}

func TestResolve_PlaylistDrop(t *testing.T) {
	playlist := Playlist{
		URL:    playlistURL,
		Tracks: []PlaylistSlot{stub("A", nil), Drop{}, stub("B", nil)},
	}

	got := Collect(playlist)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if idx := playlistIndexes(t, got[0]); !reflect.DeepEqual(idx, []int{0}) {
		t.Errorf("first indexes = %v, want [0]", idx)
	}
	if idx := playlistIndexes(t, got[1]); !reflect.DeepEqual(idx, []int{2}) {
		t.Errorf("second indexes = %v, want [2]", idx)
	}
}

func TestResolve_PlaylistMergeStub(t *testing.T) {
	merge := MergeStub{
		Tags:  Tags{Title: "Medley"},
		Parts: []MergeSlot{TimeStub{Span: Span{Start: sec(1)}}, Drop{}, TimeStub{Span: Span{End: sec(30)}}},
	}
	playlist := Playlist{
		URL:    playlistURL,
		Tracks: []PlaylistSlot{stub("A", nil), merge, stub("B", nil)},
	}

	got := Collect(playlist)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	wantIndexes := [][]int{{0}, {1, 3}, {4}}
	for i, td := range got {
		if idx := playlistIndexes(t, td); !reflect.DeepEqual(idx, wantIndexes[i]) {
			t.Errorf("track %d indexes = %v, want %v", i, idx, wantIndexes[i])
		}
	}
	if got[1].Metadata.Title != "Medley" {
		t.Errorf("merge title = %q", got[1].Metadata.Title)
	}
	if start := got[1].Parts[0].Window().Start; start == nil || *start != time.Second {
		t.Errorf("merge first part start = %v, want 1s", start)
	}
	if end := got[1].Parts[1].Window().End; end == nil || *end != 30*time.Second {
		t.Errorf("merge second part end = %v, want 30s", end)
	}
}

func TestResolve_PlaylistLeadingAndTrailingDrops(t *testing.T) {
	merge := MergeStub{Tags: Tags{Title: "M"}, Parts: []MergeSlot{Drop{}, TimeStub{}, Drop{}}}
	playlist := Playlist{
		URL:    playlistURL,
		Tracks: []PlaylistSlot{Drop{}, Drop{}, merge, Drop{}, stub("A", nil)},
	}

	got := Collect(playlist)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if idx := playlistIndexes(t, got[0]); !reflect.DeepEqual(idx, []int{3}) {
		t.Errorf("merge indexes = %v, want [3]", idx)
	}
	if idx := playlistIndexes(t, got[1]); !reflect.DeepEqual(idx, []int{6}) {
		t.Errorf("stub indexes = %v, want [6]", idx)
	}
}

func TestResolve_PlaylistMergeStubWithoutAudio(t *testing.T) {
	silent, err := NewMergeStub(Tags{Title: "Silent"}, nil, []MergeSlot{Drop{}, Drop{}})
	if err != nil {
		t.Fatalf("NewMergeStub() error = %v", err)
	}
	empty, err := NewMergeStub(Tags{Title: "Empty"}, nil, nil)
	if err != nil {
		t.Fatalf("NewMergeStub() error = %v", err)
	}
	playlist := Playlist{
		URL:    playlistURL,
		Tracks: []PlaylistSlot{silent, empty, stub("A", nil)},
	}

	got := Collect(playlist)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, td := range got[:2] {
		if len(td.Parts) != 0 {
			t.Errorf("%s parts = %v, want none", td.Metadata.Title, td.Parts)
		}
	}
	if idx := playlistIndexes(t, got[2]); !reflect.DeepEqual(idx, []int{2}) {
		t.Errorf("stub indexes = %v, want [2]", idx)
	}
}

func TestResolve_EmptyPlaylist(t *testing.T) {
	if got := Collect(Playlist{URL: playlistURL}); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestResolve_Merge(t *testing.T) {
	merge := Merge{
		Tags: Tags{Title: "Joined"},
		Parts: []AudioStub{
			{URL: otherURL, Span: Span{Start: sec(20)}},
			{URL: videoURL, Span: Span{End: sec(5)}},
		},
	}

	got := Collect(merge)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	want := []Part{
		AudioData{URL: otherURL, Span: Span{Start: sec(20)}},
		AudioData{URL: videoURL, Span: Span{End: sec(5)}},
	}
	if !reflect.DeepEqual(got[0].Parts, want) {
		t.Errorf("Parts = %+v, want %+v", got[0].Parts, want)
	}
}

func TestResolve_AlbumNumbering(t *testing.T) {
	album := Album{
		Tags: Tags{Album: "Live", Artist: "Band", Title: "album title"},
		Tracks: []Track{
			Single{URL: videoURL, Tags: Tags{Title: "A", Track: "9"}},
			Split{URL: otherURL, Tracks: []TrackStub{
				{Tags: Tags{Title: "B", Artist: "Guest"}},
				{Tags: Tags{Title: "C", Track: "1"}},
			}},
		},
	}

	got := Collect(album)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	want := []Tags{
		{Title: "A", Album: "Live", Artist: "Band", Track: "1"},
		{Title: "B", Album: "Live", Artist: "Guest", Track: "2"},
		{Title: "C", Album: "Live", Artist: "Band", Track: "3"},
	}
	for i, td := range got {
		if td.Metadata != want[i] {
			t.Errorf("track %d metadata = %+v, want %+v", i, td.Metadata, want[i])
		}
	}
}

func TestResolve_CoverInheritance(t *testing.T) {
	albumCover := URLCover{Href: "album.jpg"}
	splitCover := FileCover{Path: "split.png"}
	ownCover := URLCover{Href: "own.jpg"}
	playlistCover := URLCover{Href: "playlist.jpg"}

	album := Album{
		Tags:  Tags{Album: "Live"},
		Cover: albumCover,
		Tracks: []Track{
			Single{URL: videoURL, Tags: Tags{Title: "no cover"}},
			Single{URL: videoURL, Tags: Tags{Title: "own"}, Cover: ownCover},
			Split{URL: videoURL, Cover: splitCover, Tracks: []TrackStub{
				{Tags: Tags{Title: "split child"}},
				{Tags: Tags{Title: "split own"}, Cover: ownCover},
			}},
			Split{URL: videoURL, Tracks: []TrackStub{{Tags: Tags{Title: "bare split child"}}}},
			Playlist{URL: playlistURL, Cover: playlistCover, Tracks: []PlaylistSlot{
				TrackStub{Tags: Tags{Title: "playlist child"}},
				MergeStub{Tags: Tags{Title: "playlist merge"}, Parts: []MergeSlot{TimeStub{}}},
			}},
			Merge{Tags: Tags{Title: "merge"}, Parts: []AudioStub{{URL: videoURL}}},
		},
	}

	want := []Cover{albumCover, ownCover, splitCover, ownCover, albumCover, playlistCover, playlistCover, albumCover}
	got := Collect(album)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, td := range got {
		if td.Cover != want[i] {
			t.Errorf("track %d (%s) cover = %v, want %v", i, td.Metadata.Title, td.Cover, want[i])
		}
	}
}

func TestResolve_NoCover(t *testing.T) {
	got := Collect(Single{URL: videoURL, Tags: Tags{Title: "x"}})
	if got[0].Cover != nil {
		t.Errorf("Cover = %v, want nil", got[0].Cover)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	album := Album{
		Tags: Tags{Album: "Live"},
		Tracks: []Track{
			Split{URL: videoURL, Tracks: []TrackStub{stub("A", sec(0)), stub("B", sec(10))}},
			Playlist{URL: playlistURL, Tracks: []PlaylistSlot{Drop{}, stub("C", nil)}},
		},
	}

	seq := Resolve(album)
	var first, second []TrackData
	for td := range seq {
		first = append(first, td)
	}
	for td := range seq {
		second = append(second, td)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second iteration differs:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(first, Collect(album)) {
		t.Error("Collect differs from ranging over Resolve")
	}
}

func TestResolve_StopsEarly(t *testing.T) {
	album := Album{
		Tags: Tags{Album: "Live"},
		Tracks: []Track{
			Split{URL: videoURL, Tracks: []TrackStub{stub("A", nil), stub("B", nil), stub("C", nil)}},
			Single{URL: videoURL, Tags: Tags{Title: "D"}},
		},
	}

	var titles []string
	for td := range Resolve(album) {
		titles = append(titles, td.Metadata.Title)
		if len(titles) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(titles, []string{"A", "B"}) {
		t.Errorf("titles = %v, want [A B]", titles)
	}
}

type strangeTrack struct{ Single }

func TestResolve_UnknownShapePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Resolve did not panic on an unknown shape")
		}
	}()
	for range Resolve(strangeTrack{}) {
	}
}

func TestConstructors_RejectEmpty(t *testing.T) {
	tags := Tags{Title: "x"}

	tests := []struct {
		name    string
		err     error
		variant string
		field   string
	}{
		{"split", second(NewSplit(videoURL, nil, nil)), "Split", "tracks"},
		{"merge", second(NewMerge(tags, nil, []AudioStub{})), "Merge", "parts"},
		{"album", second(NewAlbum(Tags{Album: "a"}, nil, nil)), "Album", "tracks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrEmpty) {
				t.Fatalf("error = %v, want ErrEmpty", tt.err)
			}
			var verr *ValidationError
			if !errors.As(tt.err, &verr) {
				t.Fatalf("error = %T, want *ValidationError", tt.err)
			}
			if verr.Variant != tt.variant || verr.Field != tt.field {
				t.Errorf("error at %s.%s, want %s.%s", verr.Variant, verr.Field, tt.variant, tt.field)
			}
		})
	}
}

func TestConstructors_RequireTags(t *testing.T) {
	if _, err := NewSingle(videoURL, Tags{}, nil, Span{}); !errors.Is(err, ErrRequired) {
		t.Errorf("NewSingle() error = %v, want ErrRequired", err)
	}
	if _, err := NewTrackStub(Tags{Album: "x"}, nil, Span{}); !errors.Is(err, ErrRequired) {
		t.Errorf("NewTrackStub() error = %v, want ErrRequired", err)
	}
	if _, err := NewAlbum(Tags{Title: "x"}, nil, []Track{Single{}}); !errors.Is(err, ErrRequired) {
		t.Errorf("NewAlbum() error = %v, want ErrRequired", err)
	}

	split, err := NewSplit(videoURL, nil, []TrackStub{stub("A", nil)})
	if err != nil {
		t.Fatalf("NewSplit() error = %v", err)
	}
	album, err := NewAlbum(Tags{Album: "a/b"}, nil, []Track{split})
	if err != nil {
		t.Fatalf("NewAlbum() error = %v", err)
	}
	if album.Tags.Album != "a∕b" {
		t.Errorf("album name = %q, want slash replaced", album.Tags.Album)
	}
	if p := NewPlaylist(playlistURL, nil, nil); len(p.Tracks) != 0 {
		t.Errorf("NewPlaylist() tracks = %v", p.Tracks)
	}
}

func second[T any](_ T, err error) error {
	return err
}
