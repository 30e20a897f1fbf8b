package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// HashURL returns the hex SHA-256 of a URL without its fragment, so
// "/a#x" and "/a#y" share a Redis key.
func HashURL(rawURL string) string {
	sum := sha256.Sum256([]byte(StripFragment(rawURL)))
	return hex.EncodeToString(sum[:])
}

// ToAbsoluteURL resolves an href found on the page at base. Surrounding
// whitespace is ignored, as browsers do.
func ToAbsoluteURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	abs := base.ResolveReference(ref)
	abs.Host = strings.ToLower(abs.Host)
	return abs.String(), nil
}

// StripFragment drops everything from the first '#' on.
func StripFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// PathKey returns the pathname+query key a page is stored under.
// An empty path is reported as "/", like a browser would.
func PathKey(u *url.URL) string {
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}

// ParseHTTPURL parses rawURL and accepts only absolute http(s) URLs with a
// host. The host is lowercased so every spelling maps to one domain.
func ParseHTTPURL(rawURL string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	u.Host = strings.ToLower(u.Host)
	return u, true
}
