package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"docuai/internal/models"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"go.uber.org/zap"
)

type GCSStorage struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *zap.Logger
}

func NewGCSStorage(ctx context.Context, bucket string, logger *zap.Logger, opts ...option.ClientOption) (*GCSStorage, error) {
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	logger.Info("Using GCS file storage", zap.String("bucket", bucket))
	return &GCSStorage{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		logger: logger,
	}, nil
}

// Save writes the object only if it does not exist yet.
func (s *GCSStorage) Save(ctx context.Context, data []byte, filename string) (string, error) {
	if !ValidFilename(filename) {
		return "", ErrInvalidFilename
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.bucket.Object(filename).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if f, ok := models.FormatFromExtension(filename); ok {
		w.ContentType = f.ContentType()
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", ErrExists
		}
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return filename, nil
}

func (s *GCSStorage) Read(ctx context.Context, filename string) ([]byte, error) {
	if !ValidFilename(filename) {
		return nil, ErrInvalidFilename
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	r, err := s.bucket.Object(filename).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open GCS object %q: %w", filename, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) Delete(ctx context.Context, filename string) error {
	if !ValidFilename(filename) {
		return ErrInvalidFilename
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.bucket.Object(filename).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", filename, s.name, err)
	}
	return nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}
