package model

import (
	"fmt"
	"net/url"
	"strings"
)

// Crawl request limits accepted from callers.
const (
	// DefaultDepth is the crawl depth used when the caller does not give one.
	DefaultDepth = 2
	// MinDepth is the smallest accepted depth (only the start page).
	MinDepth = 0
	// MaxDepth is the largest accepted depth.
	MaxDepth = 10

	// DefaultMaxPages is the page limit used when the caller does not give one.
	DefaultMaxPages = 50
	// MinPages is the smallest accepted page limit.
	MinPages = 1
	// MaxPages is the largest accepted page limit.
	MaxPages = 1000
)

// CrawlRequest describes what the crawl service should fetch.
type CrawlRequest struct {
	// URL is the absolute start URL. Use NormalizeURL before building a request
	// from user input.
	URL string

	// Depth is the maximum link depth (0 = only URL).
	Depth int

	// MaxPages is the maximum number of pages the service may return.
	MaxPages int
}

// NewCrawlRequest normalizes rawURL and validates the limits.
func NewCrawlRequest(rawURL string, depth, maxPages int) (CrawlRequest, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return CrawlRequest{}, err
	}
	req := CrawlRequest{
		URL:      normalized,
		Depth:    depth,
		MaxPages: maxPages,
	}
	if err := req.Validate(); err != nil {
		return CrawlRequest{}, err
	}
	return req, nil
}

// Validate checks the request limits. It does not touch the network.
func (r CrawlRequest) Validate() error {
	if r.URL == "" {
		return ErrMissingURL
	}
	if r.Depth < MinDepth || r.Depth > MaxDepth {
		return ErrInvalidDepth
	}
	if r.MaxPages < MinPages || r.MaxPages > MaxPages {
		return ErrInvalidMaxPages
	}
	return nil
}

// Host returns the host component (including any port) of the request URL.
func (r CrawlRequest) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// NormalizeURL trims rawURL, prepends https:// when no http(s) scheme is
// present and checks that the result has a host.
func NormalizeURL(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return "", ErrMissingURL
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawURL)
	}
	return s, nil
}
