// Package manifest decodes media manifests into model values.
//
// A manifest is a TOML, JSON or YAML document describing one album or
// track. The same keys are used in every format:
//
//	[metadata]
//	album = "Live at Home"
//	artist = "Band"
//
//	[cover]
//	file = "cover.png"
//
//	[[tracks]]
//	url = "https://www.youtube.com/watch?v=abc"
//	[tracks.metadata]
//	title = "Opening"
//
//	[[tracks]]
//	url = "https://www.youtube.com/watch?v=def"
//	  [[tracks.tracks]]
//	  metadata = { title = "Part One" }
//	  start = "0:00"
//	  [[tracks.tracks]]
//	  metadata = { title = "Part Two" }
//	  start = "4:12.5"
//
// # Shapes
//
// The shape of each entry is taken from its optional "type" key (album,
// single, split, playlist, merge) or inferred from its keys:
//
//   - url with /playlist?list= : playlist
//   - url and tracks : split
//   - url : single
//   - parts : merge (older manifests use tracks of {url, start, end})
//   - tracks and metadata.album : album
//
// Playlist entries are track stubs, merge stubs (entries with parts) or
// drops, written as "DROP" or {drop = true}.
//
// # Timestamps
//
// start and end accept "M:SS", "H:MM:SS" with an optional fraction
// ("1:02:03.25"), a number of seconds, or a TOML local time.
//
// # Errors
//
// Decoding errors are *PathError values naming the offending key:
//
//	tracks[1].tracks[0].start: invalid timestamp "1:2:3:4"
package manifest
