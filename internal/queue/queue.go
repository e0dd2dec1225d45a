package queue

import (
	"context"
	"errors"
	"time"

	"docuai/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEmpty is returned by Dequeue when nothing arrived within the wait.
	ErrEmpty = errors.New("queue empty")
	ErrFull  = errors.New("queue full")
)

// Job is one delivery of a document id. It must be acked once handled;
// unacked jobs are redelivered after a restart.
type Job struct {
	DocumentID uuid.UUID
	raw        string
}

type Queue interface {
	Enqueue(ctx context.Context, documentID uuid.UUID) error
	Dequeue(ctx context.Context, wait time.Duration) (*Job, error)
	Ack(ctx context.Context, job *Job) error
	// Recover puts deliveries abandoned by a previous process back in line.
	Recover(ctx context.Context) (int, error)
	Close() error
}

// New returns the Redis queue when an address is configured and the
// in-process queue otherwise.
func New(cfg *config.QueueConfig, logger *zap.Logger) (Queue, error) {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, using in-memory generation queue; jobs do not survive restarts")
		return NewMemoryQueue(1024), nil
	}
	return NewRedisQueue(cfg, logger)
}
