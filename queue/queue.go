// Package queue is a small one-shot work queue for side effects that must not
// hold up the request that caused them, such as order confirmation mail.
//
// Delivery is at-most-once: a task leaves the queue when a worker picks it up
// and is never requeued, whatever the handler does with it.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoHandler is logged when a task type has no registered handler.
	ErrNoHandler = errors.New("no handler registered for task type")
	// ErrClosed is returned by Enqueue after a MemoryQueue has been closed.
	ErrClosed = errors.New("queue closed")
	// ErrFull is returned by Enqueue when a MemoryQueue buffer has no room.
	ErrFull = errors.New("queue full")
)

type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTask encodes payload as JSON and stamps a fresh id.
func NewTask(taskType string, payload interface{}) (*Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Queue hands tasks from producers to a Worker.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	// Dequeue blocks up to timeout and returns nil, nil when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*Task, error)
}

func validate(task *Task) error {
	if task == nil {
		return errors.New("task cannot be nil")
	}
	if task.ID == "" {
		return errors.New("task ID cannot be empty")
	}
	if task.Type == "" {
		return errors.New("task type cannot be empty")
	}
	return nil
}
