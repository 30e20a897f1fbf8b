package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
	"github.com/user/aura-service/internal/scoring"
	"github.com/user/aura-service/pkg/metrics"
	"github.com/user/aura-service/pkg/utils"
)

// ErrInvalidURL is returned for anything that is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

// Coordinator decides, per request, whether to serve cached data and whether
// to queue a (re)crawl. It never waits for a crawl.
type Coordinator interface {
	Analyze(ctx context.Context, req entity.AnalyzeRequest) (*entity.AnalyzeResult, error)
	// Wait blocks until background enqueues have finished.
	Wait()
}

type coordinatorUseCase struct {
	frontier        Frontier
	auraRepo        repository.AuraRepository
	revalidateAfter time.Duration
	tasks           *backgroundTasks
	logger          *zap.Logger
	now             func() time.Time
}

// NewCoordinator creates a new Coordinator use case.
func NewCoordinator(
	frontier Frontier,
	auraRepo repository.AuraRepository,
	revalidateAfter time.Duration,
	logger *zap.Logger,
) Coordinator {
	return &coordinatorUseCase{
		frontier:        frontier,
		auraRepo:        auraRepo,
		revalidateAfter: revalidateAfter,
		tasks:           &backgroundTasks{logger: logger},
		logger:          logger,
		now:             time.Now,
	}
}

func (uc *coordinatorUseCase) Analyze(ctx context.Context, req entity.AnalyzeRequest) (*entity.AnalyzeResult, error) {
	u, ok := utils.ParseHTTPURL(req.URL)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, req.URL)
	}
	u.Fragment = ""
	job := entity.Job{URL: u.String(), Interests: req.Interests, Exclusions: req.Exclusions}
	ref := entity.PageRef{Domain: u.Hostname(), PathKey: utils.PathKey(u)}

	res := uc.analyze(ctx, req, job, ref)
	metrics.AnalyzeTotal.WithLabelValues(string(res.Status)).Inc()
	return res, nil
}

func (uc *coordinatorUseCase) analyze(ctx context.Context, req entity.AnalyzeRequest, job entity.Job, ref entity.PageRef) *entity.AnalyzeResult {
	if req.ForceRecrawl {
		if err := uc.auraRepo.DeletePage(ctx, ref); err != nil {
			uc.logger.Warn("Failed to delete page for forced re-crawl", zap.String("url", job.URL), zap.Error(err))
		}
		uc.enqueue(ctx, job, true)
		return &entity.AnalyzeResult{
			Status:  entity.StatusAnalyzingForced,
			Message: "Forced re-analysis has been queued.",
		}
	}

	if req.LocalHints != nil {
		aura := scoring.Preliminary(*req.LocalHints, req.Interests, req.Exclusions)
		uc.enqueue(ctx, job, false)
		return &entity.AnalyzeResult{
			Status:  entity.StatusPreliminary,
			Message: "Preliminary aura from local data. Full analysis is queued.",
			PageAura: &entity.AnalyzedPage{
				Circle:     aura.Circle,
				Star:       aura.Star,
				Relevance:  aura.Relevance,
				Title:      req.LocalHints.Title,
				ContentMap: entity.ContentMap{Title: req.LocalHints.Title, Headings: []entity.Heading{}, KeyTopics: []string{}},
				Links:      []entity.LinkAuraView{},
			},
		}
	}

	domain, err := uc.auraRepo.FindDomain(ctx, ref.Domain)
	if err != nil {
		uc.logLookupError("domain", job.URL, err)
		uc.enqueue(ctx, job, false)
		return &entity.AnalyzeResult{
			Status:  entity.StatusAnalyzingDomain,
			Message: "Domain analysis initiated. Check back later for the full aura map.",
		}
	}

	page, err := uc.auraRepo.FindPage(ctx, domain.ID, ref.PathKey)
	if err != nil {
		uc.logLookupError("page", job.URL, err)
		uc.enqueue(ctx, job, false)
		return &entity.AnalyzeResult{
			Status:     entity.StatusAnalyzingPage,
			Message:    "Domain is known, this page is being analyzed.",
			DomainAura: domain.OverallAura,
		}
	}

	switch {
	case page.ScoringVersion < scoring.Version:
		uc.logger.Info("Stored aura predates current scoring rules, re-crawling",
			zap.String("url", job.URL), zap.Int("scoring_version", page.ScoringVersion))
		uc.enqueue(ctx, job, true)
	case uc.now().Sub(domain.LastAnalyzed) > uc.revalidateAfter:
		uc.logger.Info("Domain data is stale, revalidating", zap.String("url", job.URL), zap.Time("last_analyzed", domain.LastAnalyzed))
		uc.enqueue(ctx, job, false)
	}

	links, err := uc.auraRepo.FindLinks(ctx, page.ID)
	if err != nil {
		uc.logger.Warn("Failed to load links of cached page", zap.String("url", job.URL), zap.Error(err))
	}

	return &entity.AnalyzeResult{
		Status:     entity.StatusCompleted,
		DomainAura: domain.OverallAura,
		PageAura:   analyzedPage(page, links),
	}
}

func analyzedPage(page *entity.Page, links []entity.Link) *entity.AnalyzedPage {
	views := make([]entity.LinkAuraView, 0, len(links))
	for _, l := range links {
		views = append(views, entity.LinkAuraView{URL: l.TargetURL, Text: l.Text, Aura: l.Aura})
	}
	return &entity.AnalyzedPage{
		Circle:      page.Aura.Circle,
		Star:        page.Aura.Star,
		Relevance:   page.Aura.Relevance,
		Title:       page.Title,
		ContentMap:  page.ContentMap,
		Links:       views,
		LastScraped: page.LastScraped,
	}
}

// logLookupError treats a failed lookup as a miss; only unexpected errors are logged.
func (uc *coordinatorUseCase) logLookupError(what, url string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	uc.logger.Warn("Cache lookup failed, treating as miss",
		zap.String("lookup", what), zap.String("url", url), zap.Error(err))
}

func (uc *coordinatorUseCase) enqueue(ctx context.Context, job entity.Job, force bool) {
	uc.tasks.Go(ctx, "enqueue "+job.URL, func(ctx context.Context) error {
		_, err := uc.frontier.Enqueue(ctx, job, force)
		return err
	})
}

func (uc *coordinatorUseCase) Wait() {
	uc.tasks.Wait()
}
