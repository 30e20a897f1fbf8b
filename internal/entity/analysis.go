package entity

import "time"

// AnalysisStatus is reported back to the caller of Analyze.
type AnalysisStatus string

const (
	StatusCompleted       AnalysisStatus = "completed"
	StatusPreliminary     AnalysisStatus = "preliminary"
	StatusAnalyzingDomain AnalysisStatus = "analyzing_domain"
	StatusAnalyzingPage   AnalysisStatus = "analyzing_page"
	StatusAnalyzingForced AnalysisStatus = "analyzing_forced"
)

// LocalHints is the cheap data a client collected from the rendered page.
type LocalHints struct {
	Title   string `json:"title"`
	H1Count int    `json:"h1Count"`
	Text    string `json:"text"`
}

// AnalyzeRequest is the inbound analyze operation.
type AnalyzeRequest struct {
	URL          string
	ForceRecrawl bool
	LocalHints   *LocalHints
	Interests    Keywords
	Exclusions   Keywords
}

// LinkAuraView is a stored link as served to clients.
type LinkAuraView struct {
	URL  string `json:"url"`
	Text string `json:"text"`
	Aura Aura   `json:"aura"`
}

// AnalyzedPage is the cached page data returned on a hit.
type AnalyzedPage struct {
	Circle      Circle         `json:"circle"`
	Star        Star           `json:"star"`
	Relevance   int            `json:"relevance"`
	Title       string         `json:"title"`
	ContentMap  ContentMap     `json:"content_map"`
	Links       []LinkAuraView `json:"links"`
	LastScraped time.Time      `json:"last_scraped"`
}

// AnalyzeResult is the outcome of the analyze operation.
type AnalyzeResult struct {
	Status     AnalysisStatus
	Message    string
	DomainAura *Circle
	PageAura   *AnalyzedPage
}
