package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is a buffered in-process Queue. Tasks are lost on restart.
type MemoryQueue struct {
	mu     sync.RWMutex
	ch     chan *Task
	closed bool
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 256
	}
	return &MemoryQueue{ch: make(chan *Task, size)}
}

// Enqueue never blocks: a full buffer returns ErrFull.
func (q *MemoryQueue) Enqueue(ctx context.Context, task *Task) error {
	if err := validate(task); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.ch <- task:
		return nil
	default:
		return ErrFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case task, ok := <-q.ch:
		if !ok {
			return nil, ErrClosed
		}
		return task, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports how many tasks are waiting.
func (q *MemoryQueue) Len() int { return len(q.ch) }

// Close stops further enqueues. Buffered tasks can still be dequeued.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
