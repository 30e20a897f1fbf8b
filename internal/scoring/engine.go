// Package scoring computes auras from extracted page content. Every function
// is pure: identical inputs always produce identical output.
package scoring

import (
	"slices"
	"strings"

	"github.com/user/aura-service/internal/entity"
)

// Version identifies the rule set below. Pages stored with an older version
// are re-crawled when they are next requested.
const Version = 2

const (
	stabilitySaturation   = 95
	relationSaturation    = 90
	meaningSaturation     = 80
	placeholderValue      = 50
	placeholderSaturation = 60
)

var (
	contactTopics = []string{"contact", "kontakt"}
	privacyTopics = []string{"privacy", "soukromí"}
)

// Score applies the page rules to a content map and the user's keywords.
func Score(cm entity.ContentMap, interests, exclusions []string) entity.PageAura {
	topics := cm.KeyTopics

	stability := 100
	if cm.H1Count() > 1 {
		stability -= 20
	}
	if cm.Title == "" {
		stability -= 10
	}
	if cm.MetaDescription == "" {
		stability -= 10
	}

	trust := 50
	if containsAny(topics, contactTopics) {
		trust += 20
	}
	if containsAny(topics, privacyTopics) {
		trust += 20
	}

	meaning := 20 + 10*len(topics)

	relevance := entity.RelevanceNeutral
	if containsAny(topics, interests) {
		trust += 15
		meaning += 20
		relevance = entity.RelevanceMatched
	}
	// Exclusions veto interests.
	if containsAny(topics, exclusions) {
		trust -= 30
		meaning -= 20
		relevance = entity.RelevanceExcluded
	}

	trust = clamp(trust)
	meaning = clamp(meaning)

	placeholder := entity.Ray{Value: placeholderValue, Saturation: placeholderSaturation}
	aura := entity.PageAura{
		Circle: entity.Circle{Color: circleColor(relevance, stability, trust)},
		Star: entity.Star{
			Stability: entity.Ray{Value: stability, Saturation: stabilitySaturation},
			Flow:      placeholder,
			Will:      placeholder,
			Relation:  entity.Ray{Value: trust, Saturation: relationSaturation},
			Voice:     placeholder,
			Meaning:   entity.Ray{Value: meaning, Saturation: meaningSaturation},
			Integrity: placeholder,
		},
		Relevance: relevance,
	}
	aura.Circle.Intent = Explain(aura, cm)
	return aura
}

func circleColor(relevance, stability, trust int) entity.Color {
	switch {
	case relevance == entity.RelevanceExcluded:
		return entity.ColorPurple
	case stability > 70 && trust > 60:
		return entity.ColorGreen
	case stability < 50:
		return entity.ColorRed
	default:
		return entity.ColorYellow
	}
}

// Explain assembles the human readable verdict. Sentence order is fixed.
func Explain(aura entity.PageAura, cm entity.ContentMap) string {
	var reasons []string

	switch aura.Relevance {
	case entity.RelevanceMatched:
		reasons = append(reasons, "The page matches your interests well.")
	case entity.RelevanceExcluded:
		reasons = append(reasons, "Warning: the content may match topics you have excluded.")
	}

	switch s := aura.Star.Stability.Value; {
	case s > 90:
		reasons = append(reasons, "The page is technically and structurally very well built.")
	case s < 60:
		reasons = append(reasons, "Technical stability has gaps that may affect the experience.")
	}

	switch t := aura.Star.Relation.Value; {
	case t > 70:
		reasons = append(reasons, "High trustworthiness thanks to the presence of key signals.")
	case t < 40:
		reasons = append(reasons, "Trustworthiness is lower; transparent information may be missing.")
	}

	switch m := aura.Star.Meaning.Value; {
	case m > 80:
		reasons = append(reasons, "The content is strongly focused and clear.")
	case m < 40:
		reasons = append(reasons, "The topical focus of the page is not entirely clear.")
	}

	if cm.H1Count() > 1 {
		reasons = append(reasons, "The content structure could be clearer (multiple H1 headings were found).")
	}
	if cm.Title == "" {
		reasons = append(reasons, "A missing page title makes orientation harder.")
	}

	if len(reasons) == 0 {
		return "The page appears balanced without strong positive or negative signals."
	}
	return strings.Join(reasons, " ")
}

func containsAny(topics, keywords []string) bool {
	for _, kw := range keywords {
		if slices.Contains(topics, kw) {
			return true
		}
	}
	return false
}

func clamp(v int) int {
	return max(0, min(v, 100))
}
