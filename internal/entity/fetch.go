package entity

import "time"

// FetchResult is the raw response of a single GET.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Outcome classifies a fetch result.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeBlocked   Outcome = "blocked"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeRetryable Outcome = "retryable"
)
