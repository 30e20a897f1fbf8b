package scoring

import (
	"fmt"
	"net/http"

	"github.com/user/aura-service/internal/entity"
)

const blockedSaturation = 15

// BlockedReason describes why a durable negative status prevents analysis.
func BlockedReason(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication required"
	case http.StatusForbidden:
		return "forbidden / bot protection"
	case http.StatusNotFound:
		return "page not found (404)"
	default:
		return http.StatusText(status)
	}
}

// BlockedAura is the grey placeholder stored for pages that cannot be examined.
// It is a limit of knowledge, not a judgement.
func BlockedAura(status int, reason string) entity.PageAura {
	code := "N/A"
	if status != 0 {
		code = fmt.Sprint(status)
	}
	return entity.PageAura{
		Circle: entity.Circle{
			Color:  entity.ColorGrey,
			Intent: fmt.Sprintf("Cannot be examined (%s): %s", code, reason),
		},
		Star:      entity.UniformStar(placeholderValue, blockedSaturation),
		Relevance: entity.RelevanceNeutral,
	}
}
