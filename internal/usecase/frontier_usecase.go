package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
	"github.com/user/aura-service/pkg/metrics"
	"github.com/user/aura-service/pkg/utils"
)

// EnqueueResult reports what Enqueue did with a job.
type EnqueueResult string

const (
	EnqueueResultEnqueued EnqueueResult = "enqueued"
	EnqueueResultSkipped  EnqueueResult = "skipped"
)

// Frontier is the deduplicating job queue shared by API and workers.
type Frontier interface {
	// Enqueue pushes job unless the same URL was queued within the dedup
	// window. force clears the window first and always pushes.
	Enqueue(ctx context.Context, job entity.Job, force bool) (EnqueueResult, error)
	// Dequeue blocks until a job is available. Unusable payloads are
	// reported with entity.ErrMalformedJob.
	Dequeue(ctx context.Context) (entity.Job, error)
	// Discover enqueues a URL found by link expansion. Each URL passes at
	// most once for the lifetime of the processed set.
	Discover(ctx context.Context, job entity.Job) (bool, error)
	Pending(ctx context.Context) (int64, error)
}

type frontierUseCase struct {
	queueRepo     repository.QueueRepository
	dedupRepo     repository.DedupRepository
	processedRepo repository.ProcessedRepository
	dedupTTL      time.Duration
	logger        *zap.Logger
}

// NewFrontier creates a new Frontier use case.
func NewFrontier(
	queueRepo repository.QueueRepository,
	dedupRepo repository.DedupRepository,
	processedRepo repository.ProcessedRepository,
	dedupTTL time.Duration,
	logger *zap.Logger,
) Frontier {
	return &frontierUseCase{
		queueRepo:     queueRepo,
		dedupRepo:     dedupRepo,
		processedRepo: processedRepo,
		dedupTTL:      dedupTTL,
		logger:        logger,
	}
}

func (uc *frontierUseCase) Enqueue(ctx context.Context, job entity.Job, force bool) (EnqueueResult, error) {
	key := utils.StripFragment(job.URL)

	if force {
		if err := uc.dedupRepo.Release(ctx, key); err != nil {
			// Not critical: a forced job is pushed regardless.
			uc.logger.Warn("Failed to release dedup marker", zap.String("url", key), zap.Error(err))
		}
	}

	acquired, err := uc.dedupRepo.Acquire(ctx, key, uc.dedupTTL)
	if err != nil {
		metrics.EnqueueTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("acquire dedup marker for %s: %w", key, err)
	}
	if !acquired && !force {
		metrics.EnqueueTotal.WithLabelValues(string(EnqueueResultSkipped)).Inc()
		uc.logger.Debug("URL already queued, skipping", zap.String("url", key))
		return EnqueueResultSkipped, nil
	}

	// Only the fields a worker needs travel through the queue.
	queued := entity.Job{
		ID:         job.ID,
		URL:        key,
		Interests:  job.Interests,
		Exclusions: job.Exclusions,
	}
	if queued.ID == "" {
		queued.ID = uuid.NewString()
	}
	payload, err := json.Marshal(queued)
	if err != nil {
		return "", fmt.Errorf("marshal job: %w", err)
	}
	if err := uc.queueRepo.Push(ctx, payload); err != nil {
		metrics.EnqueueTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("push job for %s: %w", key, err)
	}

	metrics.EnqueueTotal.WithLabelValues(string(EnqueueResultEnqueued)).Inc()
	uc.logger.Info("Job enqueued",
		zap.String("job_id", queued.ID),
		zap.String("url", key),
		zap.Bool("force", force),
	)
	return EnqueueResultEnqueued, nil
}

func (uc *frontierUseCase) Dequeue(ctx context.Context) (entity.Job, error) {
	payload, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		return entity.Job{}, fmt.Errorf("pop job: %w", err)
	}
	job, err := entity.ParseJob(payload)
	if err != nil {
		return entity.Job{}, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	return job, nil
}

func (uc *frontierUseCase) Discover(ctx context.Context, job entity.Job) (bool, error) {
	job.URL = utils.StripFragment(job.URL)

	added, err := uc.processedRepo.MarkProcessed(ctx, job.URL)
	if err != nil {
		return false, fmt.Errorf("mark %s processed: %w", job.URL, err)
	}
	if !added {
		return false, nil
	}

	res, err := uc.Enqueue(ctx, job, false)
	if err != nil {
		return false, err
	}
	return res == EnqueueResultEnqueued, nil
}

func (uc *frontierUseCase) Pending(ctx context.Context) (int64, error) {
	return uc.queueRepo.Size(ctx)
}
