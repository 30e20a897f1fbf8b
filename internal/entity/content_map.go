package entity

// Heading is an H1-H3 heading found on a page.
type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// ContentMap is the structured extraction of a page. The blocked_* fields are
// only set on placeholders persisted for inaccessible pages.
type ContentMap struct {
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Headings        []Heading `json:"headings"`
	KeyTopics       []string  `json:"key_topics"`

	Blocked           bool    `json:"blocked,omitempty"`
	BlockedHTTPStatus *int    `json:"blocked_http_status,omitempty"`
	BlockedReason     *string `json:"blocked_reason,omitempty"`
	BlockedURL        string  `json:"blocked_url,omitempty"`
}

// H1Count returns the number of h1 headings.
func (c ContentMap) H1Count() int {
	n := 0
	for _, h := range c.Headings {
		if h.Level == "h1" {
			n++
		}
	}
	return n
}

// BlockedContentMap builds the placeholder stored for a blocked or missing page.
func BlockedContentMap(url string, status int, reason string) ContentMap {
	cm := ContentMap{
		Headings:   []Heading{},
		KeyTopics:  []string{},
		Blocked:    true,
		BlockedURL: url,
	}
	if status != 0 {
		cm.BlockedHTTPStatus = &status
	}
	if reason != "" {
		cm.BlockedReason = &reason
	}
	return cm
}

// ExtractedLink is an anchor found on a page, resolved to an absolute URL.
type ExtractedLink struct {
	URL      string
	Text     string
	Internal bool
}

// Extraction is everything the extractor produces for one document.
type Extraction struct {
	ContentMap ContentMap
	Links      []ExtractedLink
}
