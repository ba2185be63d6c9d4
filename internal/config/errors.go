package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers can match them with errors.Is.
var (
	// ErrInvalidTimeout is returned when the crawl service call timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidPollInterval is returned when the crawl status poll interval is not positive.
	ErrInvalidPollInterval = errors.New("invalid poll interval: must be positive")

	// ErrInvalidDepth is returned when the default crawl depth is out of range.
	ErrInvalidDepth = errors.New("invalid depth: must be between 0 and 10")

	// ErrInvalidMaxPages is returned when the default page limit is out of range.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be between 1 and 1000")

	// ErrInvalidProxyAddress is returned when the proxy is not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrMissingAPIURL is returned when the crawl service base URL is empty.
	ErrMissingAPIURL = errors.New("crawl service URL must not be empty")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
