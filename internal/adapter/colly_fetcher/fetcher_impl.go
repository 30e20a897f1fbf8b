package colly_fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/proxy"
	"golang.org/x/net/html/charset"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
)

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Config controls the outbound request.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRedirects int
	// Proxies are rotated round-robin per request. Empty means the
	// environment's proxy settings apply.
	Proxies []string
}

// CollyFetcher performs one GET per call with a fresh collector sharing a
// pooled transport.
type CollyFetcher struct {
	cfg       Config
	transport http.RoundTripper
}

// NewCollyFetcher creates a new fetcher implementation using colly.
func NewCollyFetcher(cfg Config) (repository.FetcherRepository, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	transport, err := newHTTPTransport(cfg.Proxies)
	if err != nil {
		return nil, err
	}
	return &CollyFetcher{cfg: cfg, transport: transport}, nil
}

// Fetch returns the response for any status code. Only transport failures
// and redirect overflows are errors.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*entity.FetchResult, error) {
	var (
		result   *entity.FetchResult
		fetchErr error
	)
	start := time.Now()

	c := f.newCollector()
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
	})
	c.OnResponse(func(r *colly.Response) {
		result = &entity.FetchResult{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       toUTF8(r.Body, r.Headers.Get("Content-Type")),
			Duration:   time.Since(start),
		}
	})
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s canceled: %w", url, ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
		if result == nil {
			return nil, fmt.Errorf("fetch %s: no response", url)
		}
		return result, nil
	}
}

// toUTF8 transcodes bodies colly left alone because the charset is only
// declared in a <meta> tag (or not at all). Valid UTF-8 is kept as is.
func toUTF8(body []byte, contentType string) []byte {
	if utf8.Valid(body) {
		return append([]byte(nil), body...)
	}
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return append([]byte(nil), body...)
	}
	return decoded
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
	)
	c.WithTransport(f.transport)
	c.SetRequestTimeout(f.cfg.Timeout)

	maxRedirects := f.cfg.MaxRedirects
	c.SetRedirectHandler(func(_ *http.Request, via []*http.Request) error {
		if len(via) > maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	})
	return c
}

func newHTTPTransport(proxies []string) (*http.Transport, error) {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
	if len(proxies) > 0 {
		switcher, err := proxy.RoundRobinProxySwitcher(proxies...)
		if err != nil {
			return nil, fmt.Errorf("configure proxies: %w", err)
		}
		t.Proxy = switcher
	}
	return t, nil
}
