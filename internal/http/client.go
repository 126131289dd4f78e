package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultUserAgent is sent with every request unless Options overrides it.
const DefaultUserAgent = "tubemusic"

// Options configures NewClient.
type Options struct {
	// Timeout bounds each request. Zero means 60 seconds.
	Timeout time.Duration

	// Proxy selects a proxy per request, as http.Transport.Proxy.
	// Nil disables proxies.
	Proxy func(*http.Request) (*url.URL, error)

	// UserAgent defaults to DefaultUserAgent.
	UserAgent string
}

// Client fetches cover images and other small resources.
//
// Example usage:
//
//	client := NewClient(Options{Proxy: http.ProxyFromEnvironment})
//
//	// Fetch a cover from a web or file URI
//	data, err := client.LoadURI(ctx, cover.URI(doc.Dir))
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = opts.Proxy

	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: userAgent,
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// LoadURI reads an http, https or file URI.
//
// Example:
//
//	data, err := client.LoadURI(ctx, "file:///home/me/covers/live.png")
func (c *Client) LoadURI(ctx context.Context, uri string) ([]byte, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("parse uri: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		return c.Get(ctx, uri)
	case "file":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(fileURIPath(u))
	}
	return nil, fmt.Errorf("unsupported uri scheme %q", u.Scheme)
}
