// Package minio implements media.Storage on a MinIO / S3-compatible bucket.
package minio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"roost/internal/media"
	"roost/internal/platform/config"
	"roost/pkg/platform/sentinel"
)

// Storage stores listing images in a single bucket and serves them by public
// URL derived from the endpoint.
type Storage struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// New connects to the object store and ensures the bucket exists.
func New(ctx context.Context, cfg config.MinIO, logger *slog.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
	}

	return &Storage{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Put uploads the file under a uuid-based key, preserving the original
// extension, and returns the public URL plus the key.
func (s *Storage) Put(ctx context.Context, upload media.Upload) (media.Object, error) {
	key := fmt.Sprintf("listings/%s%s", uuid.NewString(), filepath.Ext(upload.Filename))

	info, err := s.client.PutObject(ctx, s.bucket, key, upload.Reader, upload.Size, minio.PutObjectOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "object upload failed",
			"bucket", s.bucket, "key", key, "error", err)
		return media.Object{}, fmt.Errorf("put object %s: %w", key, sentinel.ErrUnavailable)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, info.Key)
	return media.Object{URL: url, Key: info.Key}, nil
}

// Remove deletes a stored object. Missing keys are not an error so cleanup
// stays idempotent.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}
