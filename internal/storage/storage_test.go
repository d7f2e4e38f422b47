package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"clipper/internal/config"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2026, 9, 1, 13, 45, 30, 0, time.UTC)
	key := ObjectKey("processed", now, "/work/job-1/no_silence.mp4")
	want := "processed/20260901_134530_no_silence.mp4"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}

func TestObjectKeyDefaultsPrefix(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if key := ObjectKey("  ", now, "clip.mp4"); !strings.HasPrefix(key, "processed/") {
		t.Fatalf("key = %q", key)
	}
}

func TestSupabaseUploadPostsObjectAndReturnsPublicURL(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	filePath := filepath.Join(t.TempDir(), "no_silence.mp4")
	if err := os.WriteFile(filePath, []byte("video-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	uploader := NewSupabaseUploader(server.URL, "service-key", "videos", "processed")
	uploader.WithClock(func() time.Time {
		return time.Date(2026, 9, 1, 13, 45, 30, 0, time.UTC)
	})

	publicURL, err := uploader.Upload(context.Background(), filePath)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("method = %s", gotMethod)
	}
	wantPath := "/storage/v1/object/videos/processed/20260901_134530_no_silence.mp4"
	if gotPath != wantPath {
		t.Fatalf("path = %q, want %q", gotPath, wantPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotContentType != "video/mp4" {
		t.Fatalf("content type = %q", gotContentType)
	}
	if string(gotBody) != "video-bytes" {
		t.Fatalf("body = %q", gotBody)
	}

	wantURL := server.URL + "/storage/v1/object/public/videos/processed/20260901_134530_no_silence.mp4"
	if publicURL != wantURL {
		t.Fatalf("public url = %q, want %q", publicURL, wantURL)
	}
}

func TestSupabaseUploadRejectsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	}))
	defer server.Close()

	filePath := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	uploader := NewSupabaseUploader(server.URL, "key", "videos", "processed")
	if _, err := uploader.Upload(context.Background(), filePath); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

type stubS3 struct {
	gotBucket string
	gotKey    string
	gotBody   []byte
}

func (s *stubS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	s.gotBucket = *params.Bucket
	s.gotKey = *params.Key
	s.gotBody, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3UploadBuildsVirtualHostedURL(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "no_silence.mp4")
	if err := os.WriteFile(filePath, []byte("video-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	stub := &stubS3{}
	uploader := newS3UploaderWithAPI(stub, "clips", "us-east-1", "processed")
	uploader.WithClock(func() time.Time {
		return time.Date(2026, 9, 1, 13, 45, 30, 0, time.UTC)
	})

	publicURL, err := uploader.Upload(context.Background(), filePath)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if stub.gotBucket != "clips" {
		t.Fatalf("bucket = %q", stub.gotBucket)
	}
	wantKey := "processed/20260901_134530_no_silence.mp4"
	if stub.gotKey != wantKey {
		t.Fatalf("key = %q, want %q", stub.gotKey, wantKey)
	}
	if string(stub.gotBody) != "video-bytes" {
		t.Fatalf("body = %q", stub.gotBody)
	}
	if publicURL != "https://clips.s3.us-east-1.amazonaws.com/"+wantKey {
		t.Fatalf("url = %q", publicURL)
	}
}

func TestNewUploaderWithoutCredentialsIsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Supabase.URL = ""
	cfg.Supabase.ServiceRoleKey = ""

	uploader, err := NewUploader(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	url, err := uploader.Upload(context.Background(), "/nonexistent.mp4")
	if err != nil {
		t.Fatalf("disabled upload errored: %v", err)
	}
	if url != "" {
		t.Fatalf("disabled upload returned url %q", url)
	}
}

func TestNewUploaderRejectsUnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = "gcs"
	if _, err := NewUploader(context.Background(), &cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
