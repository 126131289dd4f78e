package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/handiism/tubemusic/internal/model"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(r.UserAgent()))
	}))
	defer srv.Close()

	client := NewClient(Options{})

	body, err := client.Get(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(body) != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", body, DefaultUserAgent)
	}

	_, err = client.Get(context.Background(), srv.URL+"/missing")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("Get(missing) error = %v, want 404", err)
	}
}

func TestClient_LoadURI(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "cover.png"), []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote"))
	}))
	defer srv.Close()

	client := NewClient(Options{UserAgent: "test"})
	ctx := context.Background()

	fileURI, err := model.FileCover{Path: "cover.png"}.URI(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, err := client.LoadURI(ctx, fileURI)
	if err != nil || string(got) != "png" {
		t.Errorf("LoadURI(%q) = %q, %v", fileURI, got, err)
	}

	got, err = client.LoadURI(ctx, srv.URL)
	if err != nil || string(got) != "remote" {
		t.Errorf("LoadURI(http) = %q, %v", got, err)
	}

	if _, err := client.LoadURI(ctx, "ftp://example.com/a.jpg"); err == nil {
		t.Error("LoadURI(ftp) should fail")
	}
}
