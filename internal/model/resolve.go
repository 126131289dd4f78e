package model

import (
	"fmt"
	"iter"
	"slices"
)

// Resolve flattens media into the tracks it describes, in manifest order.
//
// The sequence is lazy and finite. It holds no state between iterations, so
// ranging over it again yields the same tracks in the same order.
//
// Example:
//
//	for td := range model.Resolve(album) {
//	    fmt.Println(td.Metadata.Track, td.Metadata.Title, len(td.Parts))
//	}
//
// Resolve panics if media is not one of the shapes defined in this package.
func Resolve(media Media) iter.Seq[TrackData] {
	return func(yield func(TrackData) bool) {
		switch m := media.(type) {
		case Album:
			resolveAlbum(m, yield)
		case Track:
			resolveTrack(m, yield)
		default:
			panic(unknownShape(media))
		}
	}
}

// Collect resolves media into a slice.
func Collect(media Media) []TrackData {
	return slices.Collect(Resolve(media))
}

// resolveTrack yields the tracks of t and reports whether the consumer
// wants more.
func resolveTrack(t Track, yield func(TrackData) bool) bool {
	switch t := t.(type) {
	case Single:
		return yield(fromSingle(t))
	case Split:
		return resolveSplit(t, yield)
	case Playlist:
		return resolvePlaylist(t, yield)
	case Merge:
		return yield(fromMerge(t))
	default:
		panic(unknownShape(t))
	}
}

func fromSingle(s Single) TrackData {
	return TrackData{
		Metadata: s.Tags,
		Cover:    s.Cover,
		Parts:    []Part{AudioData{URL: s.URL, Span: s.Span}},
	}
}

func fromMerge(m Merge) TrackData {
	parts := make([]Part, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, AudioData{URL: p.URL, Span: p.Span})
	}
	return TrackData{Metadata: m.Tags, Cover: m.Cover, Parts: parts}
}

// resolveSplit pairs every stub with its successor. A stub without an end
// ends where the next one starts; the last stub keeps its own end.
func resolveSplit(s Split, yield func(TrackData) bool) bool {
	for i, stub := range s.Tracks {
		span := stub.Span
		if span.End == nil && i+1 < len(s.Tracks) {
			span.End = s.Tracks[i+1].Start
		}
		td := TrackData{
			Metadata: stub.Tags,
			Cover:    coverOr(stub.Cover, s.Cover),
			Parts:    []Part{AudioData{URL: s.URL, Span: span}},
		}
		if !yield(td) {
			return false
		}
	}
	return true
}

// resolvePlaylist walks the slots keeping the playlist position. Every slot
// and every MergeStub part, Drop included, consumes exactly one position.
func resolvePlaylist(p Playlist, yield func(TrackData) bool) bool {
	index := 0
	for _, slot := range p.Tracks {
		switch slot := slot.(type) {
		case Drop:
			index++
		case TrackStub:
			td := TrackData{
				Metadata: slot.Tags,
				Cover:    coverOr(slot.Cover, p.Cover),
				Parts:    []Part{PlaylistAudioData{URL: p.URL, Index: index, Span: slot.Span}},
			}
			index++
			if !yield(td) {
				return false
			}
		case MergeStub:
			parts := make([]Part, 0, len(slot.Parts))
			for _, sub := range slot.Parts {
				switch sub := sub.(type) {
				case TimeStub:
					parts = append(parts, PlaylistAudioData{URL: p.URL, Index: index, Span: sub.Span})
				case Drop:
				default:
					panic(unknownShape(sub))
				}
				index++
			}
			td := TrackData{
				Metadata: slot.Tags,
				Cover:    coverOr(slot.Cover, p.Cover),
				Parts:    parts,
			}
			if !yield(td) {
				return false
			}
		default:
			panic(unknownShape(slot))
		}
	}
	return true
}

// resolveAlbum numbers the flattened children from 1. Child tags win over
// album tags, except for the track number which is always replaced.
func resolveAlbum(a Album, yield func(TrackData) bool) {
	n := 0
	for _, child := range a.Tracks {
		more := resolveTrack(child, func(td TrackData) bool {
			n++
			return yield(TrackData{
				Metadata: td.Metadata.Merge(a.Tags).WithTrack(n),
				Cover:    coverOr(td.Cover, a.Cover),
				Parts:    td.Parts,
			})
		})
		if !more {
			return
		}
	}
}

func unknownShape(v any) string {
	return fmt.Sprintf("model: unknown shape %T", v)
}
