package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/tubemusic/internal/model"
)

// Document is a decoded manifest file.
type Document struct {
	// Path is the manifest file path as given to Load.
	Path string

	// Dir is the absolute directory of the manifest. File covers are
	// resolved against it.
	Dir string

	// Format is the syntax the manifest was decoded with.
	Format Format

	// Media is the decoded album or track.
	Media model.Media
}

// Load reads and decodes the manifest at path. FormatAuto infers the format
// from the file extension.
//
// Example:
//
//	doc, err := manifest.Load("albums/live.toml", manifest.FormatAuto)
//	if err != nil {
//	    return err
//	}
//	for td := range model.Resolve(doc.Media) {
//	    ...
//	}
func Load(path string, format Format) (*Document, error) {
	if format == FormatAuto {
		var err error
		format, err = FormatFromPath(path)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	media, err := Unmarshal(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve manifest directory: %w", err)
	}

	return &Document{Path: path, Dir: dir, Format: format, Media: media}, nil
}

// Decode reads a manifest from r. The format must not be FormatAuto.
func Decode(r io.Reader, format Format) (model.Media, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Unmarshal(data, format)
}

// Unmarshal decodes a manifest held in memory. The format must not be
// FormatAuto.
func Unmarshal(data []byte, format Format) (model.Media, error) {
	var doc object
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if doc == nil {
		return nil, errorfAt("", ErrUnknownShape, "empty manifest")
	}
	return decodeMedia(doc)
}
