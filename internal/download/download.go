package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const userAgent = "Clipper/0.1.0"

// Fetcher streams remote media files to local disk.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a fetcher. A nil client uses a default with no overall
// timeout; callers bound downloads through the context.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{client: client}
}

// Fetch downloads url to destPath, streaming the body to disk. Any non-2xx
// response is an error and leaves no file behind.
func (f *Fetcher) Fetch(ctx context.Context, url, destPath string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("download: url required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("download: create %s: %w", destPath, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("download: write %s: %w", destPath, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("download: close %s: %w", destPath, err)
	}
	return nil
}

// DefaultClient returns an HTTP client tuned for large media downloads.
func DefaultClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
