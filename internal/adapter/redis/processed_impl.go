package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// ProcessedRepoImpl implements ProcessedRepository with a Redis set that never expires.
type ProcessedRepoImpl struct {
	client *redis.Client
	key    string
}

// NewProcessedRepo creates a new instance of ProcessedRepoImpl.
func NewProcessedRepo(client *redis.Client, key string) *ProcessedRepoImpl {
	return &ProcessedRepoImpl{client: client, key: key}
}

// MarkProcessed adds url to the set; SADD replies 1 only for new members.
func (r *ProcessedRepoImpl) MarkProcessed(ctx context.Context, url string) (bool, error) {
	n, err := r.client.SAdd(ctx, r.key, url).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
