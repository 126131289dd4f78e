// Package http provides the HTTP client used to load cover images.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Proxy selection from settings
//   - Timeout handling
//   - Reading file:// URIs the same way as web URIs
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{})
//
//	// Cover given in a manifest, relative to the manifest directory
//	data, err := client.LoadURI(ctx, cover.URI(doc.Dir))
//
//	// Thumbnail URL reported by yt-dlp
//	data, err = client.Get(ctx, thumbnailURL)
package http
