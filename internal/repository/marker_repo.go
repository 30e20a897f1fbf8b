package repository

import (
	"context"
	"time"
)

// DedupRepository holds short-lived "already queued" markers.
type DedupRepository interface {
	// Acquire atomically sets the marker for key if absent. It reports false
	// when the marker already existed.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release removes the marker, used for forced re-crawls.
	Release(ctx context.Context, key string) error
}

// ProcessedRepository is the permanent set of URLs discovered by link expansion.
type ProcessedRepository interface {
	// MarkProcessed adds url to the set and reports whether it was new.
	MarkProcessed(ctx context.Context, url string) (bool, error)
}
