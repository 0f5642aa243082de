package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// blpopInterval bounds each blocking pop so ctx cancellation is noticed
// promptly even while the queue is idle.
const blpopInterval = time.Second

// RedisTransport consumes ask envelopes from one Redis list and pushes
// responses onto another. BLPOP gives at-most-once delivery, matching the
// upstream producers.
type RedisTransport struct {
	client        *redis.Client
	askQueue      string
	responseQueue string
}

func NewRedisTransport(client *redis.Client, askQueue, responseQueue string) *RedisTransport {
	if askQueue == "" {
		askQueue = "hrask.ask.queue"
	}
	if responseQueue == "" {
		responseQueue = "hrask.response.queue"
	}
	return &RedisTransport{
		client:        client,
		askQueue:      askQueue,
		responseQueue: responseQueue,
	}
}

func (t *RedisTransport) Receive(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := t.client.BLPop(ctx, blpopInterval, t.askQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // idle interval elapsed, poll again
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("blpop %s: %w", t.askQueue, err)
		}
		// BLPop returns [key, value].
		if len(result) < 2 {
			continue
		}
		return []byte(result[1]), nil
	}
}

func (t *RedisTransport) Respond(ctx context.Context, payload []byte) error {
	if err := t.client.RPush(ctx, t.responseQueue, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", t.responseQueue, err)
	}
	return nil
}

func (t *RedisTransport) Close() error {
	return t.client.Close()
}
