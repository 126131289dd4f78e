package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is returned for an unsupported manifest format.
	ErrUnknownFormat = errors.New("unknown manifest format")

	// ErrUnknownField is returned for a key the shape does not accept.
	ErrUnknownField = errors.New("unknown field")

	// ErrMissingField is returned when a required key is absent.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidType is returned when a value has the wrong type.
	ErrInvalidType = errors.New("invalid type")

	// ErrInvalidURL is returned when a URL does not match its shape.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidTimestamp is returned for malformed start or end values.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrUnknownShape is returned when no track shape matches an entry.
	ErrUnknownShape = errors.New("unknown shape")
)

// PathError records where in a manifest decoding failed.
//
// Path uses dotted keys and list indexes, e.g. "tracks[2].parts[0].start".
// An empty Path refers to the document root.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func errorAt(path string, err error) error {
	return &PathError{Path: path, Err: err}
}

func errorfAt(path string, sentinel error, format string, args ...any) error {
	return &PathError{Path: path, Err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}
