package service

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/benchscore/internal/adapters/mq/queue"
	"github.com/okian/benchscore/internal/adapters/mq/worker"
	"github.com/okian/benchscore/internal/domain/dedupe"
	"github.com/okian/benchscore/internal/domain/model"
	"github.com/okian/benchscore/pkg/logger"
	"github.com/okian/benchscore/pkg/metrics"
)

// Scorer runs the pipeline for one event log.
type Scorer interface {
	Run(ctx context.Context, inputPath string) (*Outcome, error)
}

// Watcher scores event logs handed to Submit on a bounded worker pool.
// Each file state is scored at most once.
type Watcher struct {
	mu sync.RWMutex

	scorer  Scorer
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	cancel  context.CancelFunc

	workerCount int
	queueSize   int
	dedupeSize  int

	started   bool
	completed atomic.Int64
	failed    atomic.Int64
	last      atomic.Pointer[Outcome]

	logger logger.Logger
}

// WatcherOption applies a configuration option to the Watcher.
type WatcherOption func(*Watcher)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) WatcherOption {
	return func(w *Watcher) {
		if count > 0 {
			w.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending jobs.
func WithQueueSize(size int) WatcherOption {
	return func(w *Watcher) {
		if size > 0 {
			w.queueSize = size
		}
	}
}

// WithDedupeSize sets how many file fingerprints are remembered.
func WithDedupeSize(size int) WatcherOption {
	return func(w *Watcher) {
		w.dedupeSize = size
	}
}

// WithWatcherLogger sets a custom logger for the watcher.
func WithWatcherLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher constructs a Watcher around scorer.
func NewWatcher(scorer Scorer, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		scorer:      scorer,
		workerCount: 1,
		queueSize:   64,
		dedupeSize:  10_000,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start builds the queue and starts the workers. Workers outlive ctx: only
// Stop ends them, so cancelling ctx never drops queued jobs.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return nil
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}

	w.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(w.dedupeSize))
	w.queue = queue.NewInMemoryQueue(queue.WithCapacity(w.queueSize))
	w.pool = worker.NewPool(w.workerCount, w.queue, worker.RunnerFunc(w.runJob), worker.WithLogger(w.logger))
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	w.pool.Start(runCtx)

	w.started = true
	w.logger.Info(ctx, "watch service started",
		logger.Int("workers", w.workerCount),
		logger.Int("queueSize", w.queueSize),
	)
	return nil
}

// Stop refuses new jobs and waits for queued ones to finish, bounded by ctx.
// Runs still in flight when ctx expires are cancelled.
func (w *Watcher) Stop(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return nil
	}
	err := w.pool.Shutdown(ctx)
	w.cancel()
	w.started = false
	w.logger.Info(ctx, "watch service stopped",
		logger.Int64("completed", w.completed.Load()),
		logger.Int64("failed", w.failed.Load()),
	)
	return err
}

// Submit queues the file for scoring. It fails with ErrDuplicate if this
// file state was already accepted and with ErrQueueFull if the queue
// refused it.
func (w *Watcher) Submit(ctx context.Context, path string, info os.FileInfo) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.started {
		return ErrStopped
	}

	j := model.NewJob(path, info.Size(), info.ModTime())
	if w.deduper.SeenAndRecord(ctx, j.ID) {
		metrics.RecordJobDuplicate()
		w.logger.Debug(ctx, "file already scored", logger.String("path", path))
		return ErrDuplicate
	}
	if !w.queue.Enqueue(ctx, j) {
		// Let a later event for the same state retry.
		w.deduper.Unrecord(ctx, j.ID)
		w.logger.Warn(ctx, "scoring queue refused job", logger.String("path", path))
		return ErrQueueFull
	}
	return nil
}

func (w *Watcher) runJob(ctx context.Context, j model.Job) error {
	out, err := w.scorer.Run(ctx, j.Path)
	if err != nil {
		w.failed.Add(1)
		return err
	}
	w.completed.Add(1)
	w.last.Store(out)
	return nil
}

// Last returns the most recent successful outcome, or nil.
func (w *Watcher) Last() *Outcome {
	return w.last.Load()
}

// GetStats returns watcher statistics for the ops endpoint.
func (w *Watcher) GetStats() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     w.started,
		"workerCount": w.workerCount,
		"queueSize":   w.queueSize,
		"completed":   w.completed.Load(),
		"failed":      w.failed.Load(),
	}
	if w.started {
		stats["queueLength"] = w.queue.Len(ctx)
		stats["fingerprints"] = w.deduper.Size()
	}
	if last := w.last.Load(); last != nil {
		stats["lastScore"] = last.Final.Score
		stats["lastInput"] = last.Input
		stats["lastRunId"] = last.RunID
		stats["lastFinished"] = last.Finished.UTC().Format(time.RFC3339)
	}
	return stats
}
