package scoring

import (
	"strings"

	"github.com/user/aura-service/internal/entity"
)

const (
	preliminarySaturation = 30
	preliminaryIntent     = "Preliminary estimate from locally collected page data; a full analysis is on its way."
)

// Preliminary is a cheap estimate from data a client collected itself. It
// only looks at the H1 count, the title and raw substring keyword matches.
func Preliminary(hints entity.LocalHints, interests, exclusions []string) entity.PageAura {
	text := strings.ToLower(hints.Title + " " + hints.Text)

	stability := 100
	if hints.H1Count > 1 {
		stability -= 20
	}
	if strings.TrimSpace(hints.Title) == "" {
		stability -= 10
	}

	trust, meaning := 50, 50
	relevance := entity.RelevanceNeutral
	if mentionsAny(text, interests) {
		trust += 15
		meaning += 20
		relevance = entity.RelevanceMatched
	}
	if mentionsAny(text, exclusions) {
		trust -= 30
		meaning -= 20
		relevance = entity.RelevanceExcluded
	}
	trust = clamp(trust)
	meaning = clamp(meaning)

	star := entity.UniformStar(placeholderValue, preliminarySaturation)
	star.Stability = entity.Ray{Value: stability, Saturation: preliminarySaturation}
	star.Relation = entity.Ray{Value: trust, Saturation: preliminarySaturation}
	star.Meaning = entity.Ray{Value: meaning, Saturation: preliminarySaturation}

	return entity.PageAura{
		Circle:    entity.Circle{Color: circleColor(relevance, stability, trust), Intent: preliminaryIntent},
		Star:      star,
		Relevance: relevance,
	}
}

func mentionsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
