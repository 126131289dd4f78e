package manifest

import (
	"maps"
	"slices"
	"strings"

	"github.com/handiism/tubemusic/internal/model"
)

type kind int

const (
	kindAlbum kind = iota
	kindSingle
	kindSplit
	kindPlaylist
	kindMerge
)

func (k kind) String() string {
	return [...]string{"album", "single", "split", "playlist", "merge"}[k]
}

// decodeMedia converts a decoded document into Media.
func decodeMedia(doc object) (model.Media, error) {
	k, err := detectKind("", doc)
	if err != nil {
		return nil, err
	}
	if k == kindAlbum {
		return decodeAlbum("", doc)
	}
	return decodeTrack("", doc, k)
}

// detectKind honours an explicit "type" key and otherwise infers the shape
// from the keys present.
func detectKind(path string, obj object) (kind, error) {
	if raw, ok := obj["type"]; ok {
		s, err := asString(child(path, "type"), raw)
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(s) {
		case "album":
			return kindAlbum, nil
		case "track", "single":
			return kindSingle, nil
		case "split":
			return kindSplit, nil
		case "playlist":
			return kindPlaylist, nil
		case "merge":
			return kindMerge, nil
		}
		return 0, errorfAt(child(path, "type"), ErrUnknownShape, "%q", s)
	}

	rawURL, hasURL := obj["url"]
	_, hasTracks := obj["tracks"]
	_, hasParts := obj["parts"]

	switch {
	case hasURL:
		if u, ok := rawURL.(string); ok && isPlaylistURL(u) {
			return kindPlaylist, nil
		}
		if hasTracks {
			return kindSplit, nil
		}
		return kindSingle, nil
	case hasParts:
		return kindMerge, nil
	case hasTracks:
		if isAudioStubList(obj["tracks"]) {
			return kindMerge, nil
		}
		return kindAlbum, nil
	}
	return 0, errorfAt(path, ErrUnknownShape, "expected url, tracks or parts")
}

// isAudioStubList reports whether every entry looks like {url, start, end},
// the older way of writing merge parts under "tracks".
func isAudioStubList(v any) bool {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return false
	}
	for _, item := range list {
		obj, ok := item.(object)
		if !ok {
			return false
		}
		if _, ok := obj["url"]; !ok {
			return false
		}
		for key := range obj {
			if key != "url" && key != "start" && key != "end" {
				return false
			}
		}
	}
	return true
}

func decodeAlbum(path string, obj object) (model.Album, error) {
	if err := checkKeys(path, obj, "type", "metadata", "cover", "tracks"); err != nil {
		return model.Album{}, err
	}

	tags, err := decodeTags(child(path, "metadata"), obj["metadata"], true)
	if err != nil {
		return model.Album{}, err
	}
	cover, err := decodeCover(child(path, "cover"), obj["cover"])
	if err != nil {
		return model.Album{}, err
	}

	tracksPath := child(path, "tracks")
	list, err := requiredList(path, obj, "tracks")
	if err != nil {
		return model.Album{}, err
	}

	tracks := make([]model.Track, 0, len(list))
	for i, item := range list {
		itemPath := index(tracksPath, i)
		itemObj, err := asObject(itemPath, item)
		if err != nil {
			return model.Album{}, err
		}
		k, err := detectKind(itemPath, itemObj)
		if err != nil {
			return model.Album{}, err
		}
		if k == kindAlbum {
			return model.Album{}, errorfAt(itemPath, ErrUnknownShape, "albums cannot be nested")
		}
		track, err := decodeTrack(itemPath, itemObj, k)
		if err != nil {
			return model.Album{}, err
		}
		tracks = append(tracks, track)
	}

	album, err := model.NewAlbum(tags, cover, tracks)
	if err != nil {
		return model.Album{}, errorAt(path, err)
	}
	return album, nil
}

func decodeTrack(path string, obj object, k kind) (model.Track, error) {
	switch k {
	case kindSingle:
		return decodeSingle(path, obj)
	case kindSplit:
		return decodeSplit(path, obj)
	case kindPlaylist:
		return decodePlaylist(path, obj)
	case kindMerge:
		return decodeMerge(path, obj)
	}
	return nil, errorfAt(path, ErrUnknownShape, "%s is not a track", k)
}

func decodeSingle(path string, obj object) (model.Track, error) {
	if err := checkKeys(path, obj, "type", "url", "metadata", "cover", "start", "end"); err != nil {
		return nil, err
	}

	url, err := videoURL(path, obj)
	if err != nil {
		return nil, err
	}
	tags, cover, err := decodeHeader(path, obj)
	if err != nil {
		return nil, err
	}
	span, err := decodeSpan(path, obj)
	if err != nil {
		return nil, err
	}

	single, err := model.NewSingle(url, tags, cover, span)
	if err != nil {
		return nil, errorAt(path, err)
	}
	return single, nil
}

func decodeSplit(path string, obj object) (model.Track, error) {
	if err := checkKeys(path, obj, "type", "url", "cover", "tracks"); err != nil {
		return nil, err
	}

	url, err := videoURL(path, obj)
	if err != nil {
		return nil, err
	}
	cover, err := decodeCover(child(path, "cover"), obj["cover"])
	if err != nil {
		return nil, err
	}

	tracksPath := child(path, "tracks")
	list, err := requiredList(path, obj, "tracks")
	if err != nil {
		return nil, err
	}

	stubs := make([]model.TrackStub, 0, len(list))
	for i, item := range list {
		stub, err := decodeTrackStub(index(tracksPath, i), item)
		if err != nil {
			return nil, err
		}
		stubs = append(stubs, stub)
	}

	split, err := model.NewSplit(url, cover, stubs)
	if err != nil {
		return nil, errorAt(path, err)
	}
	return split, nil
}

func decodePlaylist(path string, obj object) (model.Track, error) {
	if err := checkKeys(path, obj, "type", "url", "cover", "tracks"); err != nil {
		return nil, err
	}

	urlPath := child(path, "url")
	raw, ok := obj["url"]
	if !ok {
		return nil, errorAt(urlPath, ErrMissingField)
	}
	url, err := asString(urlPath, raw)
	if err != nil {
		return nil, err
	}
	if !isPlaylistURL(url) {
		return nil, errorfAt(urlPath, ErrInvalidURL, "%q is not a playlist url", url)
	}

	cover, err := decodeCover(child(path, "cover"), obj["cover"])
	if err != nil {
		return nil, err
	}

	var slots []model.PlaylistSlot
	if rawTracks, ok := obj["tracks"]; ok {
		tracksPath := child(path, "tracks")
		list, err := asList(tracksPath, rawTracks)
		if err != nil {
			return nil, err
		}
		slots = make([]model.PlaylistSlot, 0, len(list))
		for i, item := range list {
			slot, err := decodePlaylistSlot(index(tracksPath, i), item)
			if err != nil {
				return nil, err
			}
			slots = append(slots, slot)
		}
	}

	return model.NewPlaylist(url, cover, slots), nil
}

func decodePlaylistSlot(path string, v any) (model.PlaylistSlot, error) {
	drop, err := isDrop(path, v)
	if err != nil {
		return nil, err
	}
	if drop {
		return model.Drop{}, nil
	}

	obj, err := asObject(path, v)
	if err != nil {
		return nil, err
	}
	if _, ok := obj["parts"]; ok {
		return decodeMergeStub(path, obj)
	}
	return decodeTrackStub(path, obj)
}

func decodeMergeStub(path string, obj object) (model.MergeStub, error) {
	if err := checkKeys(path, obj, "metadata", "cover", "parts"); err != nil {
		return model.MergeStub{}, err
	}
	tags, cover, err := decodeHeader(path, obj)
	if err != nil {
		return model.MergeStub{}, err
	}

	partsPath := child(path, "parts")
	list, err := asList(partsPath, obj["parts"])
	if err != nil {
		return model.MergeStub{}, err
	}

	parts := make([]model.MergeSlot, 0, len(list))
	for i, item := range list {
		itemPath := index(partsPath, i)
		drop, err := isDrop(itemPath, item)
		if err != nil {
			return model.MergeStub{}, err
		}
		if drop {
			parts = append(parts, model.Drop{})
			continue
		}
		itemObj, err := asObject(itemPath, item)
		if err != nil {
			return model.MergeStub{}, err
		}
		if err := checkKeys(itemPath, itemObj, "start", "end"); err != nil {
			return model.MergeStub{}, err
		}
		span, err := decodeSpan(itemPath, itemObj)
		if err != nil {
			return model.MergeStub{}, err
		}
		parts = append(parts, model.TimeStub{Span: span})
	}

	stub, err := model.NewMergeStub(tags, cover, parts)
	if err != nil {
		return model.MergeStub{}, errorAt(path, err)
	}
	return stub, nil
}

func decodeMerge(path string, obj object) (model.Track, error) {
	if err := checkKeys(path, obj, "type", "metadata", "cover", "parts", "tracks"); err != nil {
		return nil, err
	}
	tags, cover, err := decodeHeader(path, obj)
	if err != nil {
		return nil, err
	}

	// Older manifests list merge parts under "tracks".
	_, hasParts := obj["parts"]
	_, hasTracks := obj["tracks"]
	key := "parts"
	switch {
	case hasParts && hasTracks:
		return nil, errorfAt(child(path, "tracks"), ErrUnknownField, "use either parts or tracks")
	case hasTracks:
		key = "tracks"
	}

	partsPath := child(path, key)
	list, err := requiredList(path, obj, key)
	if err != nil {
		return nil, err
	}

	parts := make([]model.AudioStub, 0, len(list))
	for i, item := range list {
		itemPath := index(partsPath, i)
		itemObj, err := asObject(itemPath, item)
		if err != nil {
			return nil, err
		}
		if err := checkKeys(itemPath, itemObj, "url", "start", "end"); err != nil {
			return nil, err
		}
		url, err := videoURL(itemPath, itemObj)
		if err != nil {
			return nil, err
		}
		span, err := decodeSpan(itemPath, itemObj)
		if err != nil {
			return nil, err
		}
		parts = append(parts, model.AudioStub{URL: url, Span: span})
	}

	merge, err := model.NewMerge(tags, cover, parts)
	if err != nil {
		return nil, errorAt(path, err)
	}
	return merge, nil
}

func decodeTrackStub(path string, v any) (model.TrackStub, error) {
	obj, err := asObject(path, v)
	if err != nil {
		return model.TrackStub{}, err
	}
	if err := checkKeys(path, obj, "metadata", "cover", "start", "end"); err != nil {
		return model.TrackStub{}, err
	}
	tags, cover, err := decodeHeader(path, obj)
	if err != nil {
		return model.TrackStub{}, err
	}
	span, err := decodeSpan(path, obj)
	if err != nil {
		return model.TrackStub{}, err
	}

	stub, err := model.NewTrackStub(tags, cover, span)
	if err != nil {
		return model.TrackStub{}, errorAt(path, err)
	}
	return stub, nil
}

// decodeHeader reads the required metadata table and the optional cover.
func decodeHeader(path string, obj object) (model.Tags, model.Cover, error) {
	tags, err := decodeTags(child(path, "metadata"), obj["metadata"], false)
	if err != nil {
		return model.Tags{}, nil, err
	}
	cover, err := decodeCover(child(path, "cover"), obj["cover"])
	if err != nil {
		return model.Tags{}, nil, err
	}
	return tags, cover, nil
}

func decodeTags(path string, v any, album bool) (model.Tags, error) {
	if v == nil {
		return model.Tags{}, errorAt(path, ErrMissingField)
	}
	obj, err := asObject(path, v)
	if err != nil {
		return model.Tags{}, err
	}

	var tags model.Tags
	for _, key := range slices.Sorted(maps.Keys(obj)) {
		value, err := tagValue(child(path, key), obj[key])
		if err != nil {
			return model.Tags{}, err
		}
		if !tags.Set(key, value) {
			return model.Tags{}, errorfAt(child(path, key), ErrUnknownField, "not a tag")
		}
	}

	if album {
		tags, err = model.NewAlbumTags(tags)
	} else {
		tags, err = model.NewTrackTags(tags)
	}
	if err != nil {
		return model.Tags{}, errorAt(path, err)
	}
	return tags, nil
}

func decodeCover(path string, v any) (model.Cover, error) {
	if v == nil {
		return nil, nil
	}
	obj, err := asObject(path, v)
	if err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, errorfAt(path, ErrInvalidType, "expected exactly one of url, href, file or path")
	}

	for key, raw := range obj {
		value, err := asString(child(path, key), raw)
		if err != nil {
			return nil, err
		}
		switch key {
		case "url", "href":
			return model.URLCover{Href: value}, nil
		case "file", "path":
			return model.FileCover{Path: value}, nil
		}
		return nil, errorfAt(child(path, key), ErrUnknownField, "not one of url, href, file, path")
	}
	return nil, nil
}

func decodeSpan(path string, obj object) (model.Span, error) {
	start, err := parseTimestamp(child(path, "start"), obj["start"])
	if err != nil {
		return model.Span{}, err
	}
	end, err := parseTimestamp(child(path, "end"), obj["end"])
	if err != nil {
		return model.Span{}, err
	}
	if start != nil && end != nil && *end < *start {
		return model.Span{}, errorfAt(child(path, "end"), ErrInvalidTimestamp, "end is before start")
	}
	return model.Span{Start: start, End: end}, nil
}

// isDrop accepts the string "DROP" (any case) or a table {drop = true}.
func isDrop(path string, v any) (bool, error) {
	switch d := v.(type) {
	case string:
		if strings.EqualFold(d, "drop") {
			return true, nil
		}
		return false, errorfAt(path, ErrInvalidType, "unexpected string %q", d)
	case object:
		raw, ok := d["drop"]
		if !ok {
			return false, nil
		}
		if err := checkKeys(path, d, "drop"); err != nil {
			return false, err
		}
		if b, ok := raw.(bool); !ok || !b {
			return false, errorfAt(child(path, "drop"), ErrInvalidType, "must be true")
		}
		return true, nil
	}
	return false, nil
}

func requiredList(path string, obj object, key string) ([]any, error) {
	listPath := child(path, key)
	raw, ok := obj[key]
	if !ok {
		return nil, errorAt(listPath, ErrMissingField)
	}
	return asList(listPath, raw)
}

func videoURL(path string, obj object) (string, error) {
	urlPath := child(path, "url")
	raw, ok := obj["url"]
	if !ok {
		return "", errorAt(urlPath, ErrMissingField)
	}
	url, err := asString(urlPath, raw)
	if err != nil {
		return "", err
	}
	if !isVideoURL(url) {
		return "", errorfAt(urlPath, ErrInvalidURL, "%q is not a video url", url)
	}
	return url, nil
}

func isVideoURL(u string) bool {
	return strings.Contains(u, "/watch?v=") || strings.Contains(u, "youtu.be/")
}

func isPlaylistURL(u string) bool {
	return strings.Contains(u, "/playlist?list=")
}
