package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"

	"docurag/internal/rag/interfaces"
	"docurag/pkg/logger"
)

// StoreError is returned for failed object storage operations.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("object store %s failed for key '%s': %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MinioStore is a MinIO-backed implementation of the ObjectStore interface.
// Objects are addressed by key only; URLs are minted on demand and expire.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewMinioStore creates a new MinioStore for the given bucket.
func NewMinioStore(client *minio.Client, bucket string, log *logger.Logger) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, log: log}
}

// Put uploads in-memory data under the given key.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to upload object '%s': %v", key, err))
		return &StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// PutFromPath uploads a local file under the given key. The content type is
// detected from the file by the client.
func (s *MinioStore) PutFromPath(ctx context.Context, path, key string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, path, minio.PutObjectOptions{})
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to upload file '%s' as '%s': %v", path, key, err))
		return &StoreError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// PresignedGetURL returns a time-limited download URL for the given key.
func (s *MinioStore) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to presign object '%s': %v", key, err))
		return "", &StoreError{Op: "presign", Key: key, Err: err}
	}
	return u.String(), nil
}

// compile-time check to ensure MinioStore implements the ObjectStore interface
var _ interfaces.ObjectStore = (*MinioStore)(nil)
