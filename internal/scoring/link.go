package scoring

import (
	"net/url"
	"strings"

	"github.com/user/aura-service/internal/entity"
)

const linkRaySaturation = 50

var (
	socialHosts  = []string{"facebook.", "twitter.", "linkedin.", "instagram."}
	videoHosts   = []string{"youtube.com", "youtu.be", "vimeo.com"}
	downloadExts = []string{".zip", ".pdf", ".exe", ".dmg", ".rar", ".tar.gz"}
)

// ScoreLink guesses an aura for a link from its URL alone. Callers prefer the
// destination page's stored aura once it has been crawled.
func ScoreLink(target *url.URL, internal bool) entity.Aura {
	host := strings.ToLower(target.Hostname())
	path := strings.ToLower(target.Path)

	circle := entity.Circle{Color: entity.ColorBlue, Intent: "Regular internal link."}
	if !internal {
		circle = entity.Circle{Color: entity.ColorIndigo, Intent: "Link to an external domain."}
	}

	switch {
	case isSocialHost(host):
		circle = entity.Circle{Color: entity.ColorIndigo, Intent: "Link to a social network."}
	case hasAnySuffix(path, downloadExts):
		circle = entity.Circle{Color: entity.ColorOrange, Intent: "File download link."}
	case containsAnyOf(host, videoHosts):
		circle = entity.Circle{Color: entity.ColorRed, Intent: "Link to a video platform."}
	}

	return entity.Aura{
		Circle: circle,
		Star:   entity.UniformStar(placeholderValue, linkRaySaturation),
	}
}

func isSocialHost(host string) bool {
	if host == "x.com" || strings.HasSuffix(host, ".x.com") {
		return true
	}
	return containsAnyOf(host, socialHosts)
}

func containsAnyOf(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}
