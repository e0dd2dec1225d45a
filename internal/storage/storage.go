package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"docuai/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound        = errors.New("file not found")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrExists          = errors.New("file already exists")
)

// Storage keeps generated files keyed by flat, unique file names.
type Storage interface {
	Save(ctx context.Context, data []byte, filename string) (string, error)
	Read(ctx context.Context, filename string) ([]byte, error)
	Delete(ctx context.Context, filename string) error
}

func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal:
		return NewLocalStorage(cfg.LocalDir, logger)
	case config.StorageDriverGCS:
		return NewGCSStorage(ctx, cfg.GCSBucket, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

const maxFilenameLength = 255

var filenamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidFilename accepts only flat names made of [A-Za-z0-9._-], up to 255
// characters, with no ".." sequence.
func ValidFilename(name string) bool {
	if name == "" || len(name) > maxFilenameLength {
		return false
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filenamePattern.MatchString(name)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9-]+`)

// GenerateFilename builds <owner>_<type>_<unixMillis>_<random>.<ext>.
func GenerateFilename(ownerID uuid.UUID, templateType string, ext string, now time.Time) string {
	kind := unsafeChars.ReplaceAllString(strings.ToLower(templateType), "-")
	if kind == "" {
		kind = "document"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s_%s_%d_%s.%s", ownerID.String(), kind, now.UnixMilli(), suffix, ext)
}
