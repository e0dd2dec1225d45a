package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type LocalStorage struct {
	dir    string
	logger *zap.Logger
}

func NewLocalStorage(dir string, logger *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	logger.Info("Using local file storage", zap.String("dir", dir))
	return &LocalStorage{dir: dir, logger: logger}, nil
}

func (s *LocalStorage) path(filename string) (string, error) {
	if !ValidFilename(filename) {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.dir, filename), nil
}

// Save writes data without overwriting an existing file.
func (s *LocalStorage) Save(_ context.Context, data []byte, filename string) (string, error) {
	p, err := s.path(filename)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrExists
		}
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return filename, nil
}

func (s *LocalStorage) Read(_ context.Context, filename string) ([]byte, error) {
	p, err := s.path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Delete is idempotent: a missing file is not an error.
func (s *LocalStorage) Delete(_ context.Context, filename string) error {
	p, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
