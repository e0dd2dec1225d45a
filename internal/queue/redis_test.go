package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testQueue = "docuai:generation"

func newTestRedis(t *testing.T) (*miniredis.Miniredis, func(consumer string) *RedisQueue) {
	t.Helper()
	mr := miniredis.RunT(t)
	open := func(consumer string) *RedisQueue {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:            mr.Addr(),
			Protocol:        2,
			DisableIdentity: true,
		})
		t.Cleanup(func() { _ = rdb.Close() })
		return newRedisQueue(rdb, testQueue, consumer, zap.NewNop())
	}
	return mr, open
}

func listOf(t *testing.T, mr *miniredis.Miniredis, key string) []string {
	t.Helper()
	if !mr.Exists(key) {
		return nil
	}
	items, err := mr.List(key)
	require.NoError(t, err)
	return items
}

func TestRedisQueueDeliversInOrderAndAcks(t *testing.T) {
	ctx := context.Background()
	mr, open := newTestRedis(t)
	q := open("worker-0")

	a, b := uuid.New(), uuid.New()
	require.NoError(t, q.Enqueue(ctx, a))
	require.NoError(t, q.Enqueue(ctx, b))

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, a, job.DocumentID)
	assert.Equal(t, []string{a.String()}, listOf(t, mr, q.processing))
	assert.Equal(t, []string{b.String()}, listOf(t, mr, q.pending))

	require.NoError(t, q.Ack(ctx, job))
	assert.Empty(t, listOf(t, mr, q.processing))

	job, err = q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, b, job.DocumentID)
}

func TestRedisQueueEmpty(t *testing.T) {
	_, open := newTestRedis(t)

	_, err := open("worker-0").Dequeue(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRedisQueueDropsMalformedEntry(t *testing.T) {
	ctx := context.Background()
	mr, open := newTestRedis(t)
	q := open("worker-0")

	_, err := mr.Lpush(q.pending, "not-a-uuid")
	require.NoError(t, err)

	_, err = q.Dequeue(ctx, time.Second)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Empty(t, listOf(t, mr, q.processing))
	assert.Empty(t, listOf(t, mr, q.pending))

	id := uuid.New()
	require.NoError(t, q.Enqueue(ctx, id))
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, id, job.DocumentID)
}

func TestRedisQueueRecoverOnlyReclaimsOwnDeliveries(t *testing.T) {
	ctx := context.Background()
	mr, open := newTestRedis(t)
	first, second := open("worker-0"), open("worker-1")

	mine, theirs := uuid.New(), uuid.New()
	require.NoError(t, first.Enqueue(ctx, mine))
	require.NoError(t, first.Enqueue(ctx, theirs))

	job, err := first.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, mine, job.DocumentID)
	job, err = second.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.Equal(t, theirs, job.DocumentID)

	// worker-0 restarts with its unacked delivery still in flight
	restarted := open("worker-0")
	n, err := restarted.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []string{mine.String()}, listOf(t, mr, restarted.pending))
	assert.Empty(t, listOf(t, mr, restarted.processing))
	assert.Equal(t, []string{theirs.String()}, listOf(t, mr, second.processing))

	job, err = restarted.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, mine, job.DocumentID)

	n, err = second.Recover(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
