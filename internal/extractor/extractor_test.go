package extractor

import (
	"net/url"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/aura-service/internal/entity"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtractContentMap(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<title>  Garden Tools  </title>
		<meta name="description" content="All about tools">
		<meta name="keywords" content="Garden, Tools , ,Contact">
	</head><body>
		<h1>Best garden tools</h1>
		<h2> Shovels </h2>
		<h3>Rakes</h3>
		<h4>ignored</h4>
	</body></html>`

	ex, err := Extract(mustURL(t, "https://example.com/tools"), []byte(html))
	require.NoError(t, err)

	cm := ex.ContentMap
	assert.Equal(t, "Garden Tools", cm.Title)
	assert.Equal(t, "All about tools", cm.MetaDescription)
	assert.Equal(t, []entity.Heading{
		{Level: "h1", Text: "Best garden tools"},
		{Level: "h2", Text: "Shovels"},
		{Level: "h3", Text: "Rakes"},
	}, cm.Headings)
	assert.Equal(t, []string{"garden", "tools", "contact"}, cm.KeyTopics)
}

func TestExtractTopicsFromFrequency(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Privacy policy</title></head><body>
		<h1>Privacy and data</h1>
		<h2>Data retention of data</h2>
		<h2>Contact the team</h2>
		<h3>Cookie usage</h3>
	</body></html>`

	ex, err := Extract(mustURL(t, "https://example.com/privacy"), []byte(html))
	require.NoError(t, err)

	// data x3, privacy x2, then first-seen order among singletons; "and",
	// "of", "the" are too short.
	assert.Equal(t, []string{"data", "privacy", "retention", "contact", "team"}, ex.ContentMap.KeyTopics)
}

func TestExtractEmptyDocument(t *testing.T) {
	t.Parallel()

	ex, err := Extract(mustURL(t, "https://example.com/"), []byte(""))
	require.NoError(t, err)
	assert.Equal(t, "", ex.ContentMap.Title)
	assert.Empty(t, ex.ContentMap.Headings)
	assert.NotNil(t, ex.ContentMap.KeyTopics)
	assert.Empty(t, ex.Links)
}

func TestExtractLinks(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="/about"> About us </a>
		<a href="https://example.com/about">About again</a>
		<a href="#top">Top</a>
		<a href="mailto:me@example.com">Mail</a>
		<a href="tel:+420123">Call</a>
		<a href="javascript:void(0)">JS</a>
		<a href="https://twitter.com/example">Twitter</a>
		<a href="docs/guide.pdf">Guide</a>
		<a>no href</a>
	</body>`

	ex, err := Extract(mustURL(t, "https://example.com/en/index.html"), []byte(html))
	require.NoError(t, err)

	assert.Equal(t, []entity.ExtractedLink{
		{URL: "https://example.com/about", Text: "About us", Internal: true},
		{URL: "https://twitter.com/example", Text: "Twitter", Internal: false},
		{URL: "https://example.com/en/docs/guide.pdf", Text: "Guide", Internal: true},
	}, ex.Links)
}

func TestExtractLinksIgnoreHostCase(t *testing.T) {
	t.Parallel()

	html := `<body>
		<a href="https://example.com/b">B</a>
		<a href="/c">C</a>
		<a href="https://EXAMPLE.com/b">B again</a>
	</body>`

	ex, err := Extract(mustURL(t, "https://Example.com/a"), []byte(html))
	require.NoError(t, err)

	assert.Equal(t, []entity.ExtractedLink{
		{URL: "https://example.com/b", Text: "B", Internal: true},
		{URL: "https://example.com/c", Text: "C", Internal: true},
	}, ex.Links)
}

func TestExtractKeywordTopicsAreUnique(t *testing.T) {
	t.Parallel()

	html := `<head><meta name="keywords" content="go, Go, rust ,go,, RUST, web"></head>`

	ex, err := Extract(mustURL(t, "https://example.com/"), []byte(html))
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust", "web"}, ex.ContentMap.KeyTopics)
}

func TestExtractDropsInvalidUTF8(t *testing.T) {
	t.Parallel()

	html := "<head><title>Soukrom\xed</title><meta name=\"description\" content=\"z\xe1sady\"></head>" +
		"<body><h1>Ochrana \xfadaj\u016f</h1><a href=\"/p\">Dal\x9a\xed</a></body>"

	ex, err := Extract(mustURL(t, "https://example.com/"), []byte(html))
	require.NoError(t, err)

	cm := ex.ContentMap
	assert.True(t, utf8.ValidString(cm.Title))
	assert.True(t, utf8.ValidString(cm.MetaDescription))
	require.Len(t, cm.Headings, 1)
	assert.True(t, utf8.ValidString(cm.Headings[0].Text))
	for _, topic := range cm.KeyTopics {
		assert.True(t, utf8.ValidString(topic), topic)
	}
	require.Len(t, ex.Links, 1)
	assert.True(t, utf8.ValidString(ex.Links[0].Text))
}
