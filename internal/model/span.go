package model

import (
	"fmt"
	"time"
)

// Span is a time window inside an audio source.
//
// A nil Start means the beginning of the source and a nil End means its end,
// so the zero Span covers the whole source.
type Span struct {
	Start *time.Duration
	End   *time.Duration
}

// At returns a pointer to d, for building spans inline:
//
//	model.Span{Start: model.At(5 * time.Second)}
func At(d time.Duration) *time.Duration {
	return &d
}

// StartOffset returns the start of the span, zero when open.
func (s Span) StartOffset() time.Duration {
	if s.Start == nil {
		return 0
	}
	return *s.Start
}

// StartSeconds returns the start of the span in seconds.
func (s Span) StartSeconds() float64 {
	return s.StartOffset().Seconds()
}

// Duration returns the length of the span. It reports false when the span
// runs to the end of the source.
func (s Span) Duration() (time.Duration, bool) {
	if s.End == nil {
		return 0, false
	}
	return *s.End - s.StartOffset(), true
}

// String formats the span as "start-end", using "end" for an open end.
func (s Span) String() string {
	end := "end"
	if s.End != nil {
		end = FormatTimestamp(*s.End)
	}
	return fmt.Sprintf("%s-%s", FormatTimestamp(s.StartOffset()), end)
}

// FormatTimestamp formats d as H:MM:SS(.mmm), dropping the hour when zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)

	var out string
	if h > 0 {
		out = fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	} else {
		out = fmt.Sprintf("%d:%02d", m, sec)
	}
	if ms > 0 {
		out += fmt.Sprintf(".%03d", ms)
	}
	return out
}
