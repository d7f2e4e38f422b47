package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the slice of the S3 client the uploader needs.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores files in an S3 bucket under a timestamped key.
type S3Uploader struct {
	client s3API
	bucket string
	region string
	prefix string
	now    func() time.Time
}

// NewS3Uploader builds an uploader around an S3 client.
func NewS3Uploader(client *s3.Client, bucket, region, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, region: region, prefix: prefix, now: time.Now}
}

func newS3UploaderWithAPI(client s3API, bucket, region, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, region: region, prefix: prefix, now: time.Now}
}

// WithClock overrides the timestamp source used in object keys (for testing).
func (u *S3Uploader) WithClock(now func() time.Time) {
	u.now = now
}

// Upload puts the file into the bucket and returns its virtual-hosted URL.
func (u *S3Uploader) Upload(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("upload: open file: %w", err)
	}
	defer file.Close()

	key := ObjectKey(u.prefix, u.now().UTC(), filePath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", fmt.Errorf("upload: put object %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}
