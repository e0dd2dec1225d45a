package queue

import (
	"context"
	"testing"
	"time"

	"docuai/pkg/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	a, b := uuid.New(), uuid.New()
	require.NoError(t, q.Enqueue(ctx, a))
	require.NoError(t, q.Enqueue(ctx, b))
	assert.Equal(t, 2, q.Len())

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, a, job.DocumentID)
	require.NoError(t, q.Ack(ctx, job))

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, b, job.DocumentID)
}

func TestMemoryQueueEmptyAndFull(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(1)

	_, err := q.Dequeue(ctx, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, q.Enqueue(ctx, uuid.New()))
	assert.ErrorIs(t, q.Enqueue(ctx, uuid.New()), ErrFull)
}

func TestMemoryQueueCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryQueue(1).Dequeue(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFallsBackToMemory(t *testing.T) {
	q, err := New(&config.QueueConfig{Name: "test"}, zap.NewNop())
	require.NoError(t, err)
	_, ok := q.(*MemoryQueue)
	assert.True(t, ok)
}

func TestRedisQueueKeys(t *testing.T) {
	tests := []struct {
		consumer, want string
	}{
		{"worker-0", "docuai:generation:processing:worker-0"},
		{"", "docuai:generation:processing:default"},
	}
	for _, tt := range tests {
		q := newRedisQueue(nil, "docuai:generation", tt.consumer, zap.NewNop())
		assert.Equal(t, "docuai:generation:pending", q.pending)
		assert.Equal(t, tt.want, q.processing)
	}
}
