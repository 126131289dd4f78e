package model

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a list that needs at least one element has none.
	ErrEmpty = errors.New("must contain at least one element")

	// ErrRequired is returned when a required tag is missing.
	ErrRequired = errors.New("required value missing")
)

// ValidationError reports a rejected construction, naming the variant and
// the offending field.
//
// Example:
//
//	_, err := model.NewSplit(url, nil, nil)
//	var verr *model.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Println(verr.Variant, verr.Field) // Split tracks
//	}
type ValidationError struct {
	// Variant is the name of the shape being constructed, e.g. "Split".
	Variant string

	// Field is the field that failed, e.g. "tracks" or "tags.title".
	Field string

	// Err is ErrEmpty or ErrRequired.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s: %v", e.Variant, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
