package request

import "github.com/user/aura-service/internal/entity"

// AnalyzeRequest is the body of POST /api/analyze. Keywords may be sent at
// the top level or nested under preferences, as a list or a comma-separated
// string.
type AnalyzeRequest struct {
	URL          string             `json:"url"`
	ForceRecrawl bool               `json:"force_recrawl"`
	Interests    entity.Keywords    `json:"interests"`
	Exclusions   entity.Keywords    `json:"exclusions"`
	Preferences  *Preferences       `json:"preferences,omitempty"`
	LocalData    *entity.LocalHints `json:"localData,omitempty"`
}

type Preferences struct {
	Interests  entity.Keywords `json:"interests"`
	Exclusions entity.Keywords `json:"exclusions"`
}

// ToEntity converts the request into the coordinator's input. Nested
// preferences take precedence over top-level keywords.
func (r AnalyzeRequest) ToEntity() entity.AnalyzeRequest {
	out := entity.AnalyzeRequest{
		URL:          r.URL,
		ForceRecrawl: r.ForceRecrawl,
		LocalHints:   r.LocalData,
		Interests:    r.Interests,
		Exclusions:   r.Exclusions,
	}
	if r.Preferences != nil {
		if len(r.Preferences.Interests) > 0 {
			out.Interests = r.Preferences.Interests
		}
		if len(r.Preferences.Exclusions) > 0 {
			out.Exclusions = r.Preferences.Exclusions
		}
	}
	return out
}
