package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docuai/internal/queue"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sweepBatch  = 100
	stuckReason = "generation timed out"
)

type JobSource interface {
	Dequeue(ctx context.Context, wait time.Duration) (*queue.Job, error)
	Ack(ctx context.Context, job *queue.Job) error
	Recover(ctx context.Context) (int, error)
}

type Processor interface {
	Process(ctx context.Context, id uuid.UUID) error
}

type DispatcherOptions struct {
	Concurrency   int
	PollTimeout   time.Duration
	StuckAfter    time.Duration
	SweepInterval time.Duration
}

// Dispatcher feeds queued document ids to the worker and fails documents
// that have been PROCESSING for too long.
type Dispatcher struct {
	jobs   JobSource
	worker Processor
	docs   DocumentStore
	opts   DispatcherOptions
	logger *zap.Logger
	now    func() time.Time
}

func NewDispatcher(jobs JobSource, worker Processor, docs DocumentStore, opts DispatcherOptions, logger *zap.Logger) *Dispatcher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 5 * time.Second
	}
	if opts.StuckAfter <= 0 {
		opts.StuckAfter = 15 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	return &Dispatcher{
		jobs:   jobs,
		worker: worker,
		docs:   docs,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Run blocks until ctx is cancelled. Jobs left in flight by a previous
// process are returned to the queue first.
func (d *Dispatcher) Run(ctx context.Context) error {
	recovered, err := d.jobs.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover in-flight jobs: %w", err)
	}
	if recovered > 0 {
		d.logger.Info("Recovered in-flight generation jobs", zap.Int("count", recovered))
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.opts.Concurrency; i++ {
		consumer := i
		g.Go(func() error {
			d.consume(ctx, consumer)
			return nil
		})
	}
	g.Go(func() error {
		d.sweepLoop(ctx)
		return nil
	})

	d.logger.Info("Generation dispatcher started",
		zap.Int("consumers", d.opts.Concurrency),
		zap.Duration("stuck_after", d.opts.StuckAfter),
	)
	return g.Wait()
}

func (d *Dispatcher) consume(ctx context.Context, consumer int) {
	log := d.logger.With(zap.Int("consumer", consumer))
	for ctx.Err() == nil {
		job, err := d.jobs.Dequeue(ctx, d.opts.PollTimeout)
		switch {
		case errors.Is(err, queue.ErrEmpty):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			log.Error("Failed to dequeue generation job", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}

		if err := d.handle(ctx, job, log); errors.Is(err, ErrInterrupted) {
			// Unacked, the job is picked up again by Recover on the next start.
			log.Info("Generation job interrupted, leaving it in flight", zap.String("document_id", job.DocumentID.String()))
			return
		}

		// Ack survives shutdown so a finished job is not replayed.
		ackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := d.jobs.Ack(ackCtx, job); err != nil {
			log.Error("Failed to ack generation job", zap.String("document_id", job.DocumentID.String()), zap.Error(err))
		}
		cancel()
	}
}

func (d *Dispatcher) handle(ctx context.Context, job *queue.Job, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Generation panicked", zap.String("document_id", job.DocumentID.String()), zap.Any("panic", r))
			failCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if _, err := d.docs.MarkFailed(failCtx, job.DocumentID, "internal error"); err != nil {
				log.Error("Failed to mark panicked document as failed", zap.Error(err))
			}
		}
	}()

	if err = d.worker.Process(ctx, job.DocumentID); err != nil {
		log.Debug("Generation job finished with error", zap.String("document_id", job.DocumentID.String()), zap.Error(err))
	}
	return err
}

func (d *Dispatcher) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(d.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := d.Sweep(ctx); err != nil && ctx.Err() == nil {
				d.logger.Error("Stuck document sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep marks documents still PROCESSING after StuckAfter as FAILED and
// returns how many it changed.
func (d *Dispatcher) Sweep(ctx context.Context) (int, error) {
	cutoff := d.now().Add(-d.opts.StuckAfter)
	total := 0
	for {
		stuck, err := d.docs.ListStuck(ctx, cutoff, sweepBatch)
		if err != nil {
			return total, fmt.Errorf("failed to list stuck documents: %w", err)
		}
		changed := 0
		for _, doc := range stuck {
			ok, err := d.docs.MarkFailed(ctx, doc.ID, stuckReason)
			if err != nil {
				return total, fmt.Errorf("failed to fail stuck document %s: %w", doc.ID, err)
			}
			if ok {
				changed++
				d.logger.Warn("Stuck document marked as failed", zap.String("document_id", doc.ID.String()))
			}
		}
		total += changed
		if len(stuck) < sweepBatch || changed == 0 {
			return total, nil
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
