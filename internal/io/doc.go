// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writes and cross-device moves
//   - Directory creation
//   - Cover image resizing and format conversion
//
// # File Operations
//
//	// Write a playlist without exposing a partial file
//	err := ioutils.WriteFileAtomic("/music/Live/Live.m3u", content)
//
//	// Move a rendered track from the work directory into the library
//	err := ioutils.MoveFile(tmp, "/music/Live/Intro.mp3")
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
