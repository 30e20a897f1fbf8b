package repository

import (
	"context"
	"errors"

	"github.com/user/aura-service/internal/entity"
)

// ErrNotFound is returned when a requested domain or page does not exist.
var ErrNotFound = errors.New("not found")

// AuraRepository stores crawled domains, pages, topics and links.
type AuraRepository interface {
	// SaveCrawl writes a whole crawl in one transaction.
	SaveCrawl(ctx context.Context, rec *entity.CrawlRecord) (*entity.SavedPage, error)
	// DeletePage removes a page with its links and topics in one transaction.
	// Deleting a missing page is not an error.
	DeletePage(ctx context.Context, ref entity.PageRef) error

	FindDomain(ctx context.Context, name string) (*entity.Domain, error)
	FindPage(ctx context.Context, domainID int64, pathKey string) (*entity.Page, error)
	FindLinks(ctx context.Context, pageID int64) ([]entity.Link, error)
	// FindAuras returns the stored auras of the given pages that exist.
	FindAuras(ctx context.Context, refs []entity.PageRef) (map[entity.PageRef]entity.Aura, error)
}

// DomainAuraRepository reads and writes the aggregated domain verdict.
type DomainAuraRepository interface {
	ListPageColors(ctx context.Context, domainID int64) ([]entity.Color, error)
	UpdateDomainAura(ctx context.Context, domainID int64, circle entity.Circle) error
}
