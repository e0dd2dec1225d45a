package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is a bounded in-process queue. Deliveries are lost on exit.
type MemoryQueue struct {
	ch chan uuid.UUID
}

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{ch: make(chan uuid.UUID, size)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, documentID uuid.UUID) error {
	select {
	case q.ch <- documentID:
		return nil
	default:
		return ErrFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case id := <-q.ch:
		return &Job{DocumentID: id, raw: id.String()}, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Ack(context.Context, *Job) error { return nil }

func (q *MemoryQueue) Recover(context.Context) (int, error) { return 0, nil }

func (q *MemoryQueue) Len() int { return len(q.ch) }

func (q *MemoryQueue) Close() error { return nil }
