// Package model defines the media description types and the resolution
// algorithm that flattens them into exportable tracks.
//
// # Media
//
// A manifest describes one Media value: an Album, or one of the four
// track shapes:
//
//   - Single: one region of one video
//   - Split: one video cut into consecutive tracks (TrackStub)
//   - Playlist: playlist members mapped to tracks (TrackStub, MergeStub, Drop)
//   - Merge: regions of several videos joined into one track (AudioStub)
//
// Each shape is a plain struct; the closed sets Media, Track, PlaylistSlot
// and MergeSlot are sealed interfaces. Constructors (NewSplit, NewMerge,
// NewAlbum, ...) enforce the non-empty and required-tag rules and report
// violations as *ValidationError.
//
// # Resolution
//
// Resolve turns any Media into an iter.Seq of TrackData:
//
//	for td := range model.Resolve(media) {
//	    fmt.Println(td.Metadata.Title)
//	    for _, part := range td.Parts {
//	        fmt.Println("  ", part.Source(), part.Window())
//	    }
//	}
//
// Album tracks are numbered from 1 and inherit album tags and cover; split
// and playlist stubs inherit the parent cover. Playlist parts are
// PlaylistAudioData values holding the playlist URL and the 0-based member
// index; looking the member up is left to the fetcher.
//
// # Tags
//
// Tags.Merge gives the receiver priority field by field:
//
//	model.Tags{Title: "A"}.Merge(model.Tags{Title: "B", Album: "X"})
//	// Tags{Title: "A", Album: "X"}
//
// # Path Configuration
//
// PathConfig computes where a resolved track is written, using tag
// placeholders:
//
//	cfg := model.DefaultPathConfig("/music") // {album}/{title}.mp3
//	path := cfg.TrackPath(td.Metadata)
package model
