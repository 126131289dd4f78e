package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

// APILister lists playlist members through the YouTube Data API.
type APILister struct {
	service *ytapi.Service
}

// NewAPILister creates an APILister authenticated with an API key.
func NewAPILister(ctx context.Context, apiKey string, opts ...option.ClientOption) (*APILister, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := ytapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &APILister{service: service}, nil
}

// ListMembers pages through playlistItems.list and returns watch URLs.
func (l *APILister) ListMembers(ctx context.Context, playlistURL string) ([]string, error) {
	id, err := PlaylistID(playlistURL)
	if err != nil {
		return nil, err
	}

	var urls []string
	call := l.service.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(id).
		MaxResults(50)
	err = call.Pages(ctx, func(resp *ytapi.PlaylistItemListResponse) error {
		for _, item := range resp.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			urls = append(urls, WatchURL(item.ContentDetails.VideoId))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list playlist %s: %w", id, err)
	}
	return urls, nil
}

// PlaylistID extracts the "list" parameter of a playlist URL.
func PlaylistID(playlistURL string) (string, error) {
	u, err := url.Parse(playlistURL)
	if err != nil {
		return "", fmt.Errorf("parse playlist url: %w", err)
	}
	id := u.Query().Get("list")
	if id == "" {
		return "", fmt.Errorf("no playlist id in %q", playlistURL)
	}
	return id, nil
}

// VideoID extracts the video id of a watch or youtu.be URL.
func VideoID(videoURL string) (string, error) {
	u, err := url.Parse(videoURL)
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}
	if id := u.Query().Get("v"); id != "" {
		return id, nil
	}
	if strings.HasSuffix(u.Host, "youtu.be") {
		if id := strings.Trim(u.Path, "/"); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("no video id in %q", videoURL)
}

// WatchURL builds the canonical watch URL of a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
