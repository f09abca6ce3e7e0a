package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediapi/internal/config"
)

// MinIOStore implements Store against an S3-compatible backend, using the
// same two-level shard layout as object keys. It is safe for concurrent use
// by multiple goroutines.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore creates an S3-compatible store backed by MinIO. It validates
// connectivity and ensures the bucket exists (creates it if missing).
func NewMinIOStore(cfg config.StorageConfig) (*MinIOStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &MinIOStore{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return ms, nil
}

var _ Store = (*MinIOStore)(nil)

// Save uploads the stream under a new UUIDv7-derived object key using
// streaming I/O only.
func (m *MinIOStore) Save(ctx context.Context, r io.Reader, contentType string) (SavedFile, error) {
	ext, err := ExtensionByType(contentType)
	if err != nil {
		return SavedFile{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return SavedFile{}, fmt.Errorf("generate name: %w", err)
	}
	name := id.String()
	key := shardPath(name, ext)

	info, err := m.client.PutObject(ctx, m.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return SavedFile{}, fmt.Errorf("put object: %w", err)
	}

	return SavedFile{Path: key, Name: name + ext, Size: info.Size}, nil
}

// Open retrieves an object's content as a streaming reader.
func (m *MinIOStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	// GetObject is lazy; Stat forces the first request so a missing key
	// surfaces here instead of on the first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, nil
}

// Delete removes an object by key. RemoveObject succeeds silently for missing
// keys, so existence is checked first to honor the Store contract.
func (m *MinIOStore) Delete(ctx context.Context, path string) error {
	if _, err := m.client.StatObject(ctx, m.bucket, path, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return ErrFileNotFound
		}
		return fmt.Errorf("stat object: %w", err)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}
