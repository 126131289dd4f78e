package manifest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies the syntax of a manifest file.
type Format int

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto Format = iota

	// FormatTOML decodes TOML manifests.
	FormatTOML

	// FormatJSON decodes JSON manifests.
	FormatJSON

	// FormatYAML decodes YAML manifests.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// ParseFormat maps a case-insensitive format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from the extension of path.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return FormatAuto, fmt.Errorf("%w: cannot infer from %q", ErrUnknownFormat, filepath.Base(path))
}
