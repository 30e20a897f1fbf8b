package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueueRepoImpl implements QueueRepository on a Redis list: LPUSH at the tail,
// BRPOP from the head.
type QueueRepoImpl struct {
	client *redis.Client
	key    string
	poll   time.Duration
}

// NewQueueRepo creates a new instance of QueueRepoImpl. poll bounds each
// BRPOP call so cancellation is noticed even without context deadlines.
func NewQueueRepo(client *redis.Client, key string, poll time.Duration) *QueueRepoImpl {
	return &QueueRepoImpl{client: client, key: key, poll: poll}
}

// Push adds a payload to the left side of the Redis list.
func (r *QueueRepoImpl) Push(ctx context.Context, payload []byte) error {
	return r.client.LPush(ctx, r.key, payload).Err()
}

// Pop blocks until a payload is available on the right side of the list.
func (r *QueueRepoImpl) Pop(ctx context.Context) ([]byte, error) {
	for {
		res, err := r.client.BRPop(ctx, r.poll, r.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		// BRPOP replies with [key, value].
		return []byte(res[1]), nil
	}
}

// Size returns the current number of items in the queue.
func (r *QueueRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, r.key).Result()
}
