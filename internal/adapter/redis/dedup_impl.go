package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/aura-service/pkg/utils"
)

const dedupKeyPrefix = "dedup:"

// DedupRepoImpl implements DedupRepository with expiring Redis keys.
type DedupRepoImpl struct {
	client *redis.Client
}

// NewDedupRepo creates a new instance of DedupRepoImpl.
func NewDedupRepo(client *redis.Client) *DedupRepoImpl {
	return &DedupRepoImpl{client: client}
}

// generateKey hashes the URL so arbitrary input makes a safe Redis key.
func (r *DedupRepoImpl) generateKey(url string) string {
	return dedupKeyPrefix + utils.HashURL(url)
}

// Acquire runs SET key 1 NX EX ttl.
func (r *DedupRepoImpl) Acquire(ctx context.Context, url string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.generateKey(url), "1", ttl).Result()
}

// Release removes the marker.
func (r *DedupRepoImpl) Release(ctx context.Context, url string) error {
	return r.client.Del(ctx, r.generateKey(url)).Err()
}
