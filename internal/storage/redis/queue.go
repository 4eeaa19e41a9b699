package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"techconnect-matcher/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Queue is the change-event feed between writers and the fan-out workers.
// Delivery is at-least-once: a worker that dies after BRPOP loses the event,
// so every handler must be idempotent.
type Queue struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

func NewQueue(cache *Cache, key string, logger *zap.Logger) *Queue {
	return &Queue{
		client: cache.client,
		key:    key,
		logger: logger,
	}
}

// Publish pushes a change event onto the queue.
func (q *Queue) Publish(ctx context.Context, event *models.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		q.logger.Error("failed to publish event",
			zap.String("kind", event.Kind),
			zap.Error(err),
		)
		return fmt.Errorf("publish event: %w", err)
	}

	return nil
}

// Next blocks for up to timeout waiting for an event. Returns nil when the
// wait times out without one.
func (q *Queue) Next(ctx context.Context, timeout time.Duration) (*models.ChangeEvent, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop event: %w", err)
	}

	// BRPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected brpop reply of %d parts", len(result))
	}

	var event models.ChangeEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		q.logger.Error("failed to decode event",
			zap.String("raw", result[1]),
			zap.Error(err),
		)
		return nil, fmt.Errorf("decode event: %w", err)
	}

	return &event, nil
}

// Len reports the queue depth.
func (q *Queue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
