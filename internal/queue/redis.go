package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docuai/pkg/config"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisQueue is a reliable list queue. Producers LPUSH onto the pending
// list. Each consumer process atomically BLMOVEs an id into its own
// processing list and LREMs it on ack.
type RedisQueue struct {
	rdb        *goredis.Client
	pending    string
	processing string
	logger     *zap.Logger
}

func NewRedisQueue(cfg *config.QueueConfig, logger *zap.Logger) (*RedisQueue, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
		// blocking reads must outlive the poll timeout
		ReadTimeout: cfg.PollTimeout + 5*time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Using Redis generation queue", zap.String("addr", cfg.RedisAddr), zap.String("queue", cfg.Name))
	return newRedisQueue(rdb, cfg.Name, cfg.ConsumerID, logger), nil
}

func newRedisQueue(rdb *goredis.Client, name, consumerID string, logger *zap.Logger) *RedisQueue {
	if consumerID == "" {
		consumerID = "default"
	}
	return &RedisQueue{
		rdb:        rdb,
		pending:    name + ":pending",
		processing: name + ":processing:" + consumerID,
		logger:     logger,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, documentID uuid.UUID) error {
	if err := q.rdb.LPush(ctx, q.pending, documentID.String()).Err(); err != nil {
		return fmt.Errorf("redis enqueue: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (*Job, error) {
	raw, err := q.rdb.BLMove(ctx, q.pending, q.processing, "RIGHT", "LEFT", wait).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("redis dequeue: %w", err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		// poison entry, drop it so it is not redelivered forever
		q.logger.Warn("Dropping malformed queue entry", zap.String("payload", raw))
		_ = q.rdb.LRem(ctx, q.processing, 1, raw).Err()
		return nil, ErrEmpty
	}
	return &Job{DocumentID: id, raw: raw}, nil
}

func (q *RedisQueue) Ack(ctx context.Context, job *Job) error {
	if err := q.rdb.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		return fmt.Errorf("redis ack: %w", err)
	}
	return nil
}

// Recover requeues whatever this consumer left in flight. It must run before
// this process starts consuming. Lists of other consumer ids are untouched,
// so replicas with distinct ids never steal each other's live deliveries.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.rdb.LMove(ctx, q.processing, q.pending, "LEFT", "RIGHT").Err()
		if errors.Is(err, goredis.Nil) {
			break
		}
		if err != nil {
			return n, fmt.Errorf("redis recover: %w", err)
		}
		n++
	}
	if n > 0 {
		q.logger.Info("Requeued abandoned generation jobs", zap.Int("count", n))
	}
	return n, nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}
