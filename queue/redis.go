package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront/logging"
)

// DefaultRedisKey is the list the storefront pushes tasks onto.
const DefaultRedisKey = "storefront:tasks"

// RedisQueue keeps tasks in a Redis list: LPUSH to enqueue, BRPOP to
// dequeue, so the oldest task comes out first.
type RedisQueue struct {
	client *redis.Client
	key    string
	logger logging.Logger
}

func NewRedisQueue(client *redis.Client, key string, logger logging.Logger) *RedisQueue {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &RedisQueue{client: client, key: key, logger: logger}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task *Task) error {
	if err := validate(task); err != nil {
		return err
	}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to serialize task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("enqueue task %s: %w", task.ID, err)
	}
	q.logger.Debug("Task enqueued", map[string]interface{}{
		"task_id":   task.ID,
		"task_type": task.Type,
		"queue_key": q.key,
	})
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Task, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	// BRPOP replies with [key, value]
	if len(result) < 2 {
		return nil, fmt.Errorf("dequeue: unexpected reply %v", result)
	}
	var task Task
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		q.logger.Error("Dropping undecodable task", map[string]interface{}{
			"queue_key": q.key,
			"error":     err,
		})
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// Len reports how many tasks are waiting in the list.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
