package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
	"github.com/user/aura-service/pkg/metrics"
)

// Aggregator recomputes a domain's overall aura from its pages.
type Aggregator interface {
	// Aggregate returns the new domain circle, or nil when the domain has no
	// pages and nothing was written.
	Aggregate(ctx context.Context, domainID int64) (*entity.Circle, error)
}

type aggregatorUseCase struct {
	domainAuraRepo repository.DomainAuraRepository
	logger         *zap.Logger
}

// NewAggregator creates a new Aggregator use case.
func NewAggregator(domainAuraRepo repository.DomainAuraRepository, logger *zap.Logger) Aggregator {
	return &aggregatorUseCase{domainAuraRepo: domainAuraRepo, logger: logger}
}

func (uc *aggregatorUseCase) Aggregate(ctx context.Context, domainID int64) (*entity.Circle, error) {
	colors, err := uc.domainAuraRepo.ListPageColors(ctx, domainID)
	if err != nil {
		metrics.DomainAggregationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("list page colors of domain %d: %w", domainID, err)
	}

	dominant, ok := DominantColor(colors)
	if !ok {
		metrics.DomainAggregationsTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}

	circle := entity.Circle{
		Color:  dominant,
		Intent: fmt.Sprintf("Aggregated from %d pages", len(colors)),
	}
	if err := uc.domainAuraRepo.UpdateDomainAura(ctx, domainID, circle); err != nil {
		metrics.DomainAggregationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.DomainAggregationsTotal.WithLabelValues("updated").Inc()
	uc.logger.Info("Domain aura updated", zap.Int64("domain_id", domainID), zap.String("color", string(dominant)))
	return &circle, nil
}

// DominantColor returns the most frequent color. Ties go to the
// lexicographically smallest color so the result never depends on row order.
func DominantColor(colors []entity.Color) (entity.Color, bool) {
	counts := make(map[entity.Color]int)
	for _, c := range colors {
		if c != "" {
			counts[c]++
		}
	}

	var (
		best  entity.Color
		count int
	)
	for c, n := range counts {
		if n > count || (n == count && c < best) {
			best, count = c, n
		}
	}
	return best, count > 0
}
