package response

import (
	"time"

	"github.com/user/aura-service/internal/entity"
)

// AnalyzeResponse is the JSON body returned by POST /api/analyze.
type AnalyzeResponse struct {
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	DomainAura *entity.Circle `json:"domain_aura,omitempty"`
	PageAura   *PageAura      `json:"page_aura,omitempty"`
}

type PageAura struct {
	Circle      entity.Circle         `json:"circle"`
	Star        entity.Star           `json:"star"`
	Relevance   int                   `json:"relevance"`
	Title       string                `json:"title"`
	ContentMap  entity.ContentMap     `json:"content_map"`
	Links       []entity.LinkAuraView `json:"links"`
	LastScraped *time.Time            `json:"last_scraped,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FromResult maps the coordinator result onto the wire format.
func FromResult(res *entity.AnalyzeResult) AnalyzeResponse {
	out := AnalyzeResponse{
		Status:     string(res.Status),
		Message:    res.Message,
		DomainAura: res.DomainAura,
	}
	if p := res.PageAura; p != nil {
		pa := &PageAura{
			Circle:     p.Circle,
			Star:       p.Star,
			Relevance:  p.Relevance,
			Title:      p.Title,
			ContentMap: p.ContentMap,
			Links:      p.Links,
		}
		if pa.Links == nil {
			pa.Links = []entity.LinkAuraView{}
		}
		if !p.LastScraped.IsZero() {
			ts := p.LastScraped
			pa.LastScraped = &ts
		}
		out.PageAura = pa
	}
	return out
}
