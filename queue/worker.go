package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"storefront/logging"
)

// Handler processes one task. A returned error is logged; the task is not
// retried.
type Handler func(ctx context.Context, task *Task) error

type WorkerConfig struct {
	// Count is the number of concurrent workers. Default: 2
	Count int
	// DequeueTimeout bounds each blocking dequeue. Default: 5s
	DequeueTimeout time.Duration
	// TaskTimeout bounds a single handler call. Default: 1m
	TaskTimeout time.Duration
}

// Worker drains a Queue with a fixed pool of goroutines.
type Worker struct {
	queue    Queue
	config   WorkerConfig
	logger   logging.Logger
	handlers map[string]Handler
	mu       sync.RWMutex

	cancel    context.CancelFunc
	stopped   bool
	wg        sync.WaitGroup
	running   atomic.Bool
	processed atomic.Int64
	failed    atomic.Int64
}

func NewWorker(q Queue, config WorkerConfig, logger logging.Logger) *Worker {
	if config.Count <= 0 {
		config.Count = 2
	}
	if config.DequeueTimeout <= 0 {
		config.DequeueTimeout = 5 * time.Second
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = time.Minute
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Worker{
		queue:    q,
		config:   config,
		logger:   logger.With(map[string]interface{}{"component": "queue"}),
		handlers: make(map[string]Handler),
	}
}

// Register binds a handler to a task type. Must be called before Start.
func (w *Worker) Register(taskType string, h Handler) error {
	if taskType == "" {
		return errors.New("task type cannot be empty")
	}
	if h == nil {
		return errors.New("handler cannot be nil")
	}
	if w.running.Load() {
		return errors.New("cannot register handler while worker is running")
	}
	w.mu.Lock()
	w.handlers[taskType] = h
	w.mu.Unlock()
	return nil
}

// Start runs the pool and blocks until ctx is cancelled or Stop is called.
// A stopped Worker does not start again.
func (w *Worker) Start(ctx context.Context) error {
	if w.running.Swap(true) {
		return errors.New("worker already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		cancel()
		w.running.Store(false)
		return nil
	}
	w.cancel = cancel
	// Add under mu so a concurrent Stop never waits on an empty group.
	w.wg.Add(w.config.Count)
	w.mu.Unlock()

	w.logger.Info("Starting workers", map[string]interface{}{"count": w.config.Count})
	for i := 1; i <= w.config.Count; i++ {
		go w.run(ctx, fmt.Sprintf("worker-%d", i))
	}
	w.wg.Wait()
	cancel()
	w.running.Store(false)
	w.logger.Info("Workers stopped", map[string]interface{}{
		"processed": w.processed.Load(),
		"failed":    w.failed.Load(),
	})
	return nil
}

// Stop cancels the pool and waits for in-flight tasks to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stopped = true
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Processed and Failed count finished tasks.
func (w *Worker) Processed() int64 { return w.processed.Load() }
func (w *Worker) Failed() int64    { return w.failed.Load() }

func (w *Worker) run(ctx context.Context, id string) {
	defer w.wg.Done()
	for {
		if ctx.Err() != nil {
			return
		}
		task, err := w.queue.Dequeue(ctx, w.config.DequeueTimeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrClosed) {
				return
			}
			w.logger.Warn("Dequeue failed", map[string]interface{}{"worker_id": id, "error": err})
			// back off briefly so a broken connection does not spin
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if task == nil {
			continue
		}
		w.process(ctx, id, task)
	}
}

func (w *Worker) process(ctx context.Context, workerID string, task *Task) {
	fields := map[string]interface{}{
		"worker_id": workerID,
		"task_id":   task.ID,
		"task_type": task.Type,
	}
	w.mu.RLock()
	h, ok := w.handlers[task.Type]
	w.mu.RUnlock()
	if !ok {
		w.failed.Add(1)
		w.logger.Error("Task dropped", merge(fields, map[string]interface{}{"error": ErrNoHandler}))
		return
	}

	// a task picked up before shutdown still runs to completion
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.TaskTimeout)
	defer cancel()

	start := time.Now()
	err := w.safeCall(taskCtx, h, task)
	fields["duration_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		w.failed.Add(1)
		w.logger.Error("Task failed", merge(fields, map[string]interface{}{"error": err}))
		return
	}
	w.processed.Add(1)
	w.logger.Debug("Task done", fields)
}

func (w *Worker) safeCall(ctx context.Context, h Handler, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			w.logger.Error("Task handler panicked", map[string]interface{}{
				"task_id": task.ID,
				"stack":   string(debug.Stack()),
			})
		}
	}()
	return h(ctx, task)
}

func merge(a, b map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
