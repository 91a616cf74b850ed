package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueUnavailable wraps Redis failures seen by RedisQueue.
var ErrQueueUnavailable = errors.New("notify: mail queue unavailable")

const defaultQueueKey = "ga:mail"

// RedisQueue is a Mailer that pushes email onto a Redis list. A separate
// worker drains the list with Consume and performs the actual delivery.
type RedisQueue struct {
	redis redis.UniversalClient
	key   string
}

// NewRedisQueue returns a queue on key, or "ga:mail" when key is empty.
func NewRedisQueue(client redis.UniversalClient, key string) *RedisQueue {
	if key == "" {
		key = defaultQueueKey
	}
	return &RedisQueue{redis: client, key: key}
}

// Deliver enqueues email.
func (q *RedisQueue) Deliver(ctx context.Context, email Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}
	if err := q.redis.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return nil
}

// Len returns the number of queued messages.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.redis.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
	}
	return n, nil
}

// Consume pops messages in FIFO order and passes each to mailer until ctx
// is cancelled. A message the mailer rejects is pushed back so it is the
// next one consumed, and Consume returns the mailer's error. Payloads that
// do not decode are discarded.
func (q *RedisQueue) Consume(ctx context.Context, mailer Mailer, poll time.Duration) error {
	if poll <= 0 {
		poll = time.Second
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		res, err := q.redis.BRPop(ctx, poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: %v", ErrQueueUnavailable, err)
		}

		// res is [key, value].
		var email Email
		if err := json.Unmarshal([]byte(res[1]), &email); err != nil {
			continue
		}
		if err := mailer.Deliver(ctx, email); err != nil {
			_ = q.redis.RPush(context.WithoutCancel(ctx), q.key, res[1]).Err()
			return err
		}
	}
}
