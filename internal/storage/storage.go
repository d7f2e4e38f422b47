package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"clipper/internal/config"
)

// Uploader pushes a processed media file to remote object storage and
// returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// NewUploader builds the uploader selected by the configured backend.
// Supabase with missing credentials degrades to a disabled uploader that
// reports no output URL, matching the standalone (credential-free) mode.
func NewUploader(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendSupabase:
		if strings.TrimSpace(cfg.Supabase.URL) == "" || strings.TrimSpace(cfg.Supabase.ServiceRoleKey) == "" {
			return disabledUploader{}, nil
		}
		return NewSupabaseUploader(cfg.Supabase.URL, cfg.Supabase.ServiceRoleKey, cfg.Supabase.Bucket, cfg.Storage.S3Prefix), nil
	case config.StorageBackendS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.S3Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewS3Uploader(s3.NewFromConfig(awsCfg), cfg.Storage.S3Bucket, cfg.Storage.S3Region, cfg.Storage.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ObjectKey derives the remote object key for a local file:
// {prefix}/{YYYYMMDD_HHMMSS}_{basename}.
func ObjectKey(prefix string, now time.Time, filePath string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "processed"
	}
	return fmt.Sprintf("%s/%s_%s", prefix, now.Format("20060102_150405"), filepath.Base(filePath))
}

// disabledUploader is used when no storage credentials are configured; jobs
// still complete but carry no output URL.
type disabledUploader struct{}

func (disabledUploader) Upload(context.Context, string) (string, error) {
	return "", nil
}
