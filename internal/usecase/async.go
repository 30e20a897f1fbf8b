package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const backgroundTimeout = 10 * time.Second

// backgroundTasks runs fire-and-forget work. Failures are logged and never
// reach the caller; Wait blocks until every submitted task has finished.
type backgroundTasks struct {
	wg     sync.WaitGroup
	logger *zap.Logger
}

// Go runs fn detached from ctx's cancellation but keeps its values.
func (b *backgroundTasks) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	detached := context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(detached, backgroundTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			b.logger.Warn("Background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

func (b *backgroundTasks) Wait() {
	b.wg.Wait()
}
