package firecrawl

import "errors"

// Crawl service errors. None of them is retried.
var (
	// ErrMissingAPIKey is returned when a crawl is attempted without an API key.
	ErrMissingAPIKey = errors.New("FIRECRAWL_API_KEY not found in environment variables")

	// ErrCrawlService is returned when the service rejects a request or
	// answers with an unexpected HTTP status.
	ErrCrawlService = errors.New("crawl service request failed")

	// ErrCrawlFailed is returned when the service reports that the crawl job
	// itself failed or was cancelled.
	ErrCrawlFailed = errors.New("crawl job failed")

	// ErrMalformedResponse is returned when a service response cannot be decoded.
	ErrMalformedResponse = errors.New("malformed crawl service response")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
