package repository

import (
	"context"

	"github.com/user/aura-service/internal/entity"
)

// FetcherRepository performs a single outbound GET.
type FetcherRepository interface {
	// Fetch returns the response for any HTTP status. Only transport
	// failures (timeouts, DNS, too many redirects) are returned as errors.
	Fetch(ctx context.Context, url string) (*entity.FetchResult, error)
}
