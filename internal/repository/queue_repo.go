package repository

import "context"

// QueueRepository defines the interface for the FIFO analysis queue.
type QueueRepository interface {
	// Push adds a payload to the tail of the queue.
	Push(ctx context.Context, payload []byte) error
	// Pop removes and returns the payload at the head of the queue, blocking
	// until one is available or ctx is done.
	Pop(ctx context.Context) ([]byte, error)
	// Size returns the current number of items in the queue.
	Size(ctx context.Context) (int64, error)
}
