// Package extractor turns fetched HTML into a ContentMap and a link list.
package extractor

import (
	"bytes"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/pkg/utils"
)

const (
	maxTopics    = 5
	minTopicRune = 4
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Extract parses an HTML document fetched from pageURL.
func Extract(pageURL *url.URL, html []byte) (*entity.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	cm := entity.ContentMap{
		Title:     cleanText(doc.Find("title").First().Text()),
		Headings:  []entity.Heading{},
		KeyTopics: []string{},
	}
	desc, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	cm.MetaDescription = cleanText(desc)

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		cm.Headings = append(cm.Headings, entity.Heading{
			Level: goquery.NodeName(s),
			Text:  cleanText(s.Text()),
		})
	})

	if kw, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok && strings.TrimSpace(kw) != "" {
		cm.KeyTopics = append(cm.KeyTopics, uniqueTopics(entity.SplitKeywords(cleanText(kw)))...)
	} else {
		cm.KeyTopics = append(cm.KeyTopics, frequentWords(cm)...)
	}

	return &entity.Extraction{
		ContentMap: cm,
		Links:      extractLinks(doc, pageURL),
	}, nil
}

// cleanText trims s and drops invalid UTF-8 so every stored string is
// accepted by Postgres TEXT columns.
func cleanText(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}

// uniqueTopics drops repeated keywords, keeping the first occurrence.
func uniqueTopics(topics []string) []string {
	seen := make(map[string]struct{}, len(topics))
	out := topics[:0]
	for _, t := range topics {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// frequentWords ranks the words of the headings and title by frequency,
// keeping first-occurrence order between equal counts.
func frequentWords(cm entity.ContentMap) []string {
	texts := make([]string, 0, len(cm.Headings)+1)
	for _, h := range cm.Headings {
		texts = append(texts, h.Text)
	}
	texts = append(texts, cm.Title)
	corpus := strings.ToLower(strings.Join(texts, " "))

	counts := make(map[string]int)
	var order []string
	for _, w := range wordRe.FindAllString(corpus, -1) {
		if utf8.RuneCountInString(w) < minTopicRune {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxTopics {
		order = order[:maxTopics]
	}
	return order
}

func extractLinks(doc *goquery.Document, pageURL *url.URL) []entity.ExtractedLink {
	var links []entity.ExtractedLink
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return
		}
		abs, err := utils.ToAbsoluteURL(pageURL, href)
		if err != nil {
			return
		}
		u, ok := utils.ParseHTTPURL(abs)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, entity.ExtractedLink{
			URL:      abs,
			Text:     cleanText(s.Text()),
			Internal: strings.EqualFold(u.Hostname(), pageURL.Hostname()),
		})
	})
	return links
}
