package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"docuai/internal/models"
	"docuai/internal/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingProcessor struct {
	mu    sync.Mutex
	seen  []uuid.UUID
	panic uuid.UUID
	done  chan struct{}
	want  int
}

func (p *recordingProcessor) Process(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	p.seen = append(p.seen, id)
	if len(p.seen) == p.want {
		close(p.done)
	}
	p.mu.Unlock()
	if id == p.panic {
		panic("renderer exploded")
	}
	return nil
}

func TestDispatcherProcessesQueuedJobs(t *testing.T) {
	q := queue.NewMemoryQueue(8)
	exploding := processingDocument(models.FormatPDF)
	docs := newFakeDocs(exploding)

	ids := []uuid.UUID{uuid.New(), exploding.ID, uuid.New()}
	for _, id := range ids {
		require.NoError(t, q.Enqueue(context.Background(), id))
	}

	proc := &recordingProcessor{panic: exploding.ID, done: make(chan struct{}), want: len(ids)}
	d := NewDispatcher(q, proc, docs, DispatcherOptions{
		Concurrency:   2,
		PollTimeout:   10 * time.Millisecond,
		SweepInterval: time.Hour,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	select {
	case <-proc.done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs were not processed")
	}
	cancel()
	require.NoError(t, <-errc)

	assert.ElementsMatch(t, ids, proc.seen)
	assert.Zero(t, q.Len())

	got := docs.get(exploding.ID)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, "internal error", got.FailureReason)
}

type ackRecorder struct {
	*queue.MemoryQueue
	mu    sync.Mutex
	acked []uuid.UUID
}

func (q *ackRecorder) Ack(ctx context.Context, job *queue.Job) error {
	q.mu.Lock()
	q.acked = append(q.acked, job.DocumentID)
	q.mu.Unlock()
	return q.MemoryQueue.Ack(ctx, job)
}

func (q *ackRecorder) ackedIDs() []uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]uuid.UUID(nil), q.acked...)
}

func TestDispatcherShutdownLeavesJobUnacked(t *testing.T) {
	doc := processingDocument(models.FormatPDF)
	f := newWorkerFixture(t, doc)
	started := make(chan struct{})
	f.worker.provider = blockingProvider{started: started}

	q := &ackRecorder{MemoryQueue: queue.NewMemoryQueue(1)}
	require.NoError(t, q.Enqueue(context.Background(), doc.ID))

	d := NewDispatcher(q, f.worker, f.docs, DispatcherOptions{
		PollTimeout:   10 * time.Millisecond,
		SweepInterval: time.Hour,
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- d.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not start")
	}
	cancel()
	require.NoError(t, <-errc)

	assert.Empty(t, q.ackedIDs())
	got := f.docs.get(doc.ID)
	assert.Equal(t, models.StatusProcessing, got.Status)
	assert.Empty(t, got.FailureReason)
}

func TestSweep(t *testing.T) {
	stuck := processingDocument(models.FormatPDF)
	stuck.UpdatedAt = fixedNow().Add(-20 * time.Minute)
	fresh := processingDocument(models.FormatPDF)
	fresh.UpdatedAt = fixedNow().Add(-time.Minute)
	old := processingDocument(models.FormatPDF)
	old.Status = models.StatusCompleted
	old.UpdatedAt = fixedNow().Add(-time.Hour)

	docs := newFakeDocs(stuck, fresh, old)
	d := NewDispatcher(queue.NewMemoryQueue(1), &recordingProcessor{}, docs, DispatcherOptions{StuckAfter: 15 * time.Minute}, zap.NewNop())
	d.now = fixedNow

	n, err := d.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, models.StatusFailed, docs.get(stuck.ID).Status)
	assert.Equal(t, "generation timed out", docs.get(stuck.ID).FailureReason)
	assert.Equal(t, models.StatusProcessing, docs.get(fresh.ID).Status)
	assert.Equal(t, models.StatusCompleted, docs.get(old.ID).Status)

	n, err = d.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
