package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cuppa-app/backend/config"
)

// S3ArtifactStore uploads export artifacts to the configured bucket and
// returns a presigned download URL.
type S3ArtifactStore struct {
	s3Config *config.S3Config
	ttl      time.Duration
}

// NewS3ArtifactStore creates a new S3ArtifactStore instance
func NewS3ArtifactStore(s3Config *config.S3Config) *S3ArtifactStore {
	return &S3ArtifactStore{
		s3Config: s3Config,
		ttl:      15 * time.Minute,
	}
}

// Put uploads the PDF under exports/<name> and presigns a GET URL for it.
func (s *S3ArtifactStore) Put(ctx context.Context, name string, pdf []byte) (string, error) {
	key := "exports/" + name

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	url, err := s.s3Config.GeneratePresignedURL(ctx, key, s.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to presign artifact URL: %w", err)
	}

	log.Printf("[ExportStore] Uploaded artifact to S3: %s", key)
	return url, nil
}
