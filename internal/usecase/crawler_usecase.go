package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/extractor"
	"github.com/user/aura-service/internal/repository"
	"github.com/user/aura-service/internal/scoring"
	"github.com/user/aura-service/pkg/metrics"
	"github.com/user/aura-service/pkg/utils"
)

// ErrRetryableFetch marks transient fetch failures. Nothing is stored for
// them and the job is not re-enqueued.
var ErrRetryableFetch = errors.New("retryable fetch failure")

// Crawler is the worker side: it drains the queue and processes jobs.
type Crawler interface {
	// Run processes jobs one at a time until ctx is canceled.
	Run(ctx context.Context) error
	// Process fetches, scores and stores one job.
	Process(ctx context.Context, job entity.Job) error
}

type crawlerUseCase struct {
	frontier     Frontier
	fetcher      repository.FetcherRepository
	auraRepo     repository.AuraRepository
	aggregator   Aggregator
	errorBackoff time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewCrawlerUseCase creates a new instance of the crawler use case.
func NewCrawlerUseCase(
	frontier Frontier,
	fetcher repository.FetcherRepository,
	auraRepo repository.AuraRepository,
	aggregator Aggregator,
	errorBackoff time.Duration,
	logger *zap.Logger,
) Crawler {
	return &crawlerUseCase{
		frontier:     frontier,
		fetcher:      fetcher,
		auraRepo:     auraRepo,
		aggregator:   aggregator,
		errorBackoff: errorBackoff,
		logger:       logger,
		now:          time.Now,
	}
}

// Classify maps an HTTP status to a crawl outcome.
func Classify(status int) entity.Outcome {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return entity.OutcomeBlocked
	case status == http.StatusNotFound:
		return entity.OutcomeNotFound
	case status >= 200 && status < 300:
		return entity.OutcomeSuccess
	default:
		return entity.OutcomeRetryable
	}
}

func (uc *crawlerUseCase) Run(ctx context.Context) error {
	uc.logger.Info("Worker is ready")
	for {
		uc.observeQueue(ctx)

		job, err := uc.frontier.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				uc.logger.Info("Worker stopping")
				return nil
			}
			if errors.Is(err, entity.ErrMalformedJob) {
				uc.logger.Warn("Skipping malformed job", zap.Error(err))
				continue
			}
			uc.logger.Error("Failed to dequeue job", zap.Error(err))
			if !uc.backoff(ctx) {
				return nil
			}
			continue
		}

		log := uc.logger.With(zap.String("job_id", job.ID), zap.String("url", job.URL))
		log.Info("Job started", zap.Strings("interests", job.Interests))

		// A dequeued job runs to completion; the fetch timeout bounds it.
		if err := uc.Process(context.WithoutCancel(ctx), job); err != nil {
			log.Error("Job failed", zap.Error(err))
			if !uc.backoff(ctx) {
				return nil
			}
			continue
		}
		log.Info("Job finished")
	}
}

// backoff sleeps for the error backoff and reports false if ctx ended first.
func (uc *crawlerUseCase) backoff(ctx context.Context) bool {
	t := time.NewTimer(uc.errorBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (uc *crawlerUseCase) observeQueue(ctx context.Context) {
	size, err := uc.frontier.Pending(ctx)
	if err != nil {
		return
	}
	metrics.URLsInQueue.Set(float64(size))
}

func (uc *crawlerUseCase) Process(ctx context.Context, job entity.Job) error {
	pageURL, ok := utils.ParseHTTPURL(job.URL)
	if !ok {
		return fmt.Errorf("%w: invalid url %q", entity.ErrMalformedJob, job.URL)
	}
	domain := pageURL.Hostname()

	start := time.Now()
	res, err := uc.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		observeCrawl(entity.OutcomeRetryable, start)
		return fmt.Errorf("%w: %w", ErrRetryableFetch, err)
	}

	outcome := Classify(res.StatusCode)
	observeCrawl(outcome, start)

	switch outcome {
	case entity.OutcomeBlocked, entity.OutcomeNotFound:
		return uc.storePlaceholder(ctx, job, pageURL, res.StatusCode)
	case entity.OutcomeRetryable:
		return fmt.Errorf("%w: HTTP %d while fetching %s", ErrRetryableFetch, res.StatusCode, job.URL)
	}

	ex, err := extractor.Extract(pageURL, res.Body)
	if err != nil {
		return fmt.Errorf("extract %s: %w", job.URL, err)
	}
	cm := ex.ContentMap
	aura := scoring.Score(cm, job.Interests, job.Exclusions)

	rec := &entity.CrawlRecord{
		Domain:          domain,
		PathKey:         utils.PathKey(pageURL),
		Title:           cm.Title,
		MetaDescription: cm.MetaDescription,
		ContentMap:      cm,
		Aura:            aura,
		ScoringVersion:  scoring.Version,
		Topics:          cm.KeyTopics,
		Links:           uc.scoreLinks(ctx, ex.Links),
		ScrapedAt:       uc.now(),
	}
	saved, err := uc.auraRepo.SaveCrawl(ctx, rec)
	if err != nil {
		return fmt.Errorf("save crawl of %s: %w", job.URL, err)
	}
	uc.logger.Info("Page stored",
		zap.String("url", job.URL),
		zap.String("color", string(aura.Circle.Color)),
		zap.Int("links", len(rec.Links)),
	)

	uc.aggregate(ctx, saved.DomainID)
	uc.expandFrontier(ctx, job, ex.Links)
	return nil
}

func observeCrawl(outcome entity.Outcome, start time.Time) {
	metrics.CrawlDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())
	metrics.CrawlsTotal.WithLabelValues(string(outcome)).Inc()
}

// storePlaceholder persists the grey verdict for 401/403/404 so the URL is
// not fetched again until someone forces it.
func (uc *crawlerUseCase) storePlaceholder(ctx context.Context, job entity.Job, pageURL *url.URL, status int) error {
	reason := scoring.BlockedReason(status)
	rec := &entity.CrawlRecord{
		Domain:         pageURL.Hostname(),
		PathKey:        utils.PathKey(pageURL),
		ContentMap:     entity.BlockedContentMap(job.URL, status, reason),
		Aura:           scoring.BlockedAura(status, reason),
		ScoringVersion: scoring.Version,
		ScrapedAt:      uc.now(),
	}
	saved, err := uc.auraRepo.SaveCrawl(ctx, rec)
	if err != nil {
		return fmt.Errorf("save placeholder for %s: %w", job.URL, err)
	}
	uc.logger.Info("Stored placeholder", zap.String("url", job.URL), zap.Int("status", status))

	uc.aggregate(ctx, saved.DomainID)
	return nil
}

// scoreLinks prefers a destination's stored aura over the URL heuristics.
func (uc *crawlerUseCase) scoreLinks(ctx context.Context, links []entity.ExtractedLink) []entity.Link {
	if len(links) == 0 {
		return nil
	}

	targets := make([]*url.URL, len(links))
	refs := make([]entity.PageRef, 0, len(links))
	for i, l := range links {
		u, err := url.Parse(l.URL)
		if err != nil {
			continue
		}
		targets[i] = u
		refs = append(refs, entity.PageRef{Domain: u.Hostname(), PathKey: utils.PathKey(u)})
	}

	stored, err := uc.auraRepo.FindAuras(ctx, refs)
	if err != nil {
		uc.logger.Warn("Failed to look up stored link auras", zap.Error(err))
		stored = nil
	}

	out := make([]entity.Link, 0, len(links))
	for i, l := range links {
		u := targets[i]
		if u == nil {
			continue
		}
		aura, ok := stored[entity.PageRef{Domain: u.Hostname(), PathKey: utils.PathKey(u)}]
		if !ok {
			aura = scoring.ScoreLink(u, l.Internal)
		}
		out = append(out, entity.Link{TargetURL: l.URL, Text: l.Text, Aura: aura})
	}
	return out
}

func (uc *crawlerUseCase) aggregate(ctx context.Context, domainID int64) {
	if _, err := uc.aggregator.Aggregate(ctx, domainID); err != nil {
		uc.logger.Error("Could not update domain aura", zap.Int64("domain_id", domainID), zap.Error(err))
	}
}

func (uc *crawlerUseCase) expandFrontier(ctx context.Context, job entity.Job, links []entity.ExtractedLink) {
	enqueued := 0
	for _, l := range links {
		if !l.Internal {
			continue
		}
		child := entity.Job{
			URL:        utils.StripFragment(l.URL),
			Interests:  job.Interests,
			Exclusions: job.Exclusions,
		}
		ok, err := uc.frontier.Discover(ctx, child)
		if err != nil {
			uc.logger.Warn("Failed to enqueue discovered link", zap.String("url", child.URL), zap.Error(err))
			continue
		}
		if ok {
			enqueued++
		}
	}
	if enqueued > 0 {
		uc.logger.Info("Discovered links enqueued", zap.String("url", job.URL), zap.Int("count", enqueued))
	}
}
