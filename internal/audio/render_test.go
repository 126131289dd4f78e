package audio

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/handiism/tubemusic/internal/model"
)

func TestRenderArgs(t *testing.T) {
	start := 5 * time.Second
	end := 90*time.Second + 250*time.Millisecond

	tests := []struct {
		name    string
		clips   []Clip
		bitrate int
		want    []string
	}{
		{
			name:    "single clip",
			clips:   []Clip{{Path: "a.webm"}},
			bitrate: 160,
			want: []string{
				"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
				"-i", "a.webm",
				"-map", "0:a",
				"-map_metadata", "-1", "-c:a", "libmp3lame", "-b:a", "160k", "-f", "mp3", "out.mp3",
			},
		},
		{
			name: "trimmed clips",
			clips: []Clip{
				{Path: "a.webm", Span: model.Span{Start: &start}},
				{Path: "b.m4a", Span: model.Span{End: &end}},
			},
			want: []string{
				"-hide_banner", "-nostdin", "-loglevel", "error", "-y",
				"-ss", "5.000", "-i", "a.webm",
				"-to", "90.250", "-i", "b.m4a",
				"-filter_complex", "[0:a][1:a]concat=n=2:v=0:a=1[out]", "-map", "[out]",
				"-map_metadata", "-1", "-c:a", "libmp3lame", "-b:a", "192k", "-f", "mp3", "out.mp3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderArgs(tt.clips, tt.bitrate, "out.mp3")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("renderArgs() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer("ffmpeg-test", nil)

	var gotName string
	r.run = func(_ context.Context, name string, args ...string) error {
		gotName = name
		return nil
	}
	if err := r.Render(context.Background(), []Clip{{Path: "a"}}, 128, "o.mp3"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if gotName != "ffmpeg-test" {
		t.Errorf("binary = %q", gotName)
	}

	if err := r.Render(context.Background(), nil, 128, "o.mp3"); err == nil {
		t.Error("Render() without clips should fail")
	}

	boom := errors.New("exit status 1")
	r.run = func(context.Context, string, ...string) error { return boom }
	err := r.Render(context.Background(), []Clip{{Path: "a"}}, 128, "o.mp3")
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "o.mp3") {
		t.Errorf("Render() error = %v", err)
	}
}
