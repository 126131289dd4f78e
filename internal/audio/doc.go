// Package audio turns downloaded streams into tagged MP3 files and writes
// playlists for them.
//
// # Rendering
//
// The Renderer drives ffmpeg. Each Clip is trimmed to its span, the clips
// are concatenated in order, and the result is encoded to MP3:
//
//	r := audio.NewRenderer("ffmpeg", logger)
//	err := r.Render(ctx, []audio.Clip{{Path: a}, {Path: b, Span: span}}, 160, "/music/out.mp3")
//
// # ID3 Tagging
//
// The Tagger writes every tag key to its ID3v2.4 frame (title to TIT2,
// album_artist to TPE2, lyrics to USLT, ...) and embeds the cover as the
// front picture:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(path, td.Metadata, artworkBytes)
//
// Inspect reads the tags and the playing time of a file already on disk.
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Live", entries)
//	os.WriteFile("Live.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
