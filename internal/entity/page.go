package entity

import "time"

// Domain mirrors the `domains` table.
type Domain struct {
	ID           int64
	Name         string
	LastAnalyzed time.Time
	OverallAura  *Circle
}

// Page mirrors the `pages` table.
type Page struct {
	ID              int64
	DomainID        int64
	PathKey         string
	Title           string
	MetaDescription string
	ContentMap      ContentMap
	Aura            PageAura
	ScoringVersion  int
	LastScraped     time.Time
}

// Link mirrors the `links` table.
type Link struct {
	SourcePageID int64
	TargetURL    string
	Text         string
	Aura         Aura
}

// PageRef addresses a page by its natural key.
type PageRef struct {
	Domain  string
	PathKey string
}

// CrawlRecord is everything a single crawl writes in one transaction.
type CrawlRecord struct {
	Domain          string
	PathKey         string
	Title           string
	MetaDescription string
	ContentMap      ContentMap
	Aura            PageAura
	ScoringVersion  int
	Topics          []string
	Links           []Link
	ScrapedAt       time.Time
}

// SavedPage identifies the rows written by a committed crawl.
type SavedPage struct {
	DomainID int64
	PageID   int64
}
