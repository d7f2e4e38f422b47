package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestFetchWritesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("video-bytes"))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "input.mp4")
	fetcher := NewFetcher(server.Client())
	if err := fetcher.Fetch(context.Background(), server.URL, destPath); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestFetchRejectsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "input.mp4")
	fetcher := NewFetcher(server.Client())
	if err := fetcher.Fetch(context.Background(), server.URL, destPath); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if _, err := os.Stat(destPath); !os.IsNotExist(err) {
		t.Fatal("no file should be written for failed downloads")
	}
}

func TestFetchRequiresURL(t *testing.T) {
	fetcher := NewFetcher(nil)
	if err := fetcher.Fetch(context.Background(), " ", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	fetcher := NewFetcher(nil)
	destPath := filepath.Join(t.TempDir(), "input.mp4")
	err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1/video.mp4", destPath)
	if err == nil {
		t.Fatal("expected error for unreachable host")
	}
}
