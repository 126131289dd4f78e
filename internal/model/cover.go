package model

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Cover references the artwork of a track or album.
//
// Cover is a closed set: FileCover or URLCover. A nil Cover means no
// artwork was given.
type Cover interface {
	// URI returns an absolute URI for the artwork. baseDir is the directory
	// relative file paths are resolved against, normally the directory of
	// the manifest.
	URI(baseDir string) (string, error)

	isCover()
}

// FileCover is artwork stored on the local file system.
type FileCover struct {
	Path string
}

// URI resolves the path against baseDir and returns a file:// URI.
func (c FileCover) URI(baseDir string) (string, error) {
	path := c.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve cover path %q: %w", c.Path, err)
	}

	slashed := filepath.ToSlash(abs)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String(), nil
}

func (FileCover) isCover() {}

// URLCover is artwork served over the network.
type URLCover struct {
	Href string
}

// URI returns the href, prefixed with "https://" when it has no scheme.
func (c URLCover) URI(string) (string, error) {
	u, err := url.Parse(c.Href)
	if err != nil {
		return "", fmt.Errorf("parse cover url %q: %w", c.Href, err)
	}
	if u.Scheme == "" {
		return "https://" + strings.TrimPrefix(c.Href, "//"), nil
	}
	return u.String(), nil
}

func (URLCover) isCover() {}

// coverOr returns c, or fallback when c is nil.
func coverOr(c, fallback Cover) Cover {
	if c != nil {
		return c
	}
	return fallback
}
