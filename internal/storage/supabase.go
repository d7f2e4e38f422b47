package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// SupabaseUploader stores files in a Supabase Storage bucket and serves them
// through the bucket's public URL space.
type SupabaseUploader struct {
	baseURL string
	key     string
	bucket  string
	prefix  string
	client  *http.Client
	now     func() time.Time
}

// NewSupabaseUploader builds an uploader for the given Supabase project.
func NewSupabaseUploader(baseURL, serviceRoleKey, bucket, prefix string) *SupabaseUploader {
	return &SupabaseUploader{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:     strings.TrimSpace(serviceRoleKey),
		bucket:  bucket,
		prefix:  prefix,
		client:  &http.Client{Timeout: 5 * time.Minute},
		now:     time.Now,
	}
}

// WithClock overrides the timestamp source used in object keys (for testing).
func (u *SupabaseUploader) WithClock(now func() time.Time) {
	u.now = now
}

// Upload posts the file to the bucket under a timestamped key and returns the
// public URL of the stored object.
func (u *SupabaseUploader) Upload(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("upload: open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("upload: stat file: %w", err)
	}

	key := ObjectKey(u.prefix, u.now().UTC(), filePath)
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", u.baseURL, u.bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return "", fmt.Errorf("upload: build request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("apikey", u.key)
	req.Header.Set("Authorization", "Bearer "+u.key)
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("User-Agent", userAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", u.baseURL, u.bucket, key), nil
}

const userAgent = "Clipper/0.1.0"
