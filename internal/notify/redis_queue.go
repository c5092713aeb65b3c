package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQueue hands e-mails to a Redis list drained by the notification worker.
// Producers LPUSH and the worker BRPOPs, so delivery is FIFO.
type RedisQueue struct {
	client *redis.Client
	key    string
	from   string
}

// NewRedisQueue builds a queue on key.
func NewRedisQueue(client *redis.Client, key, from string) *RedisQueue {
	return &RedisQueue{client: client, key: key, from: from}
}

// Notify enqueues the e-mail.
func (q *RedisQueue) Notify(ctx context.Context, email, subject, body string) error {
	if strings.TrimSpace(email) == "" {
		return errors.New("notify: empty recipient")
	}
	return q.Push(ctx, NewMessage(q.from, email, subject, body, time.Now()))
}

// Push enqueues a built message.
func (q *RedisQueue) Push(ctx context.Context, m Message) error {
	raw, err := encodeMessage(m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, raw).Err(); err != nil {
		return fmt.Errorf("enqueue message: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the next message. It returns nil, nil when the
// wait elapses with nothing queued.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*Message, error) {
	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	m, err := decodeMessage(res[1])
	if err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	return &m, nil
}
