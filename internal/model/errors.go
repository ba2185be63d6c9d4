package model

import "errors"

// Validation errors for crawl requests.
// They are reported to the caller immediately and never retried.
var (
	// ErrMissingURL is returned when no start URL was given.
	ErrMissingURL = errors.New("URL is required")

	// ErrInvalidURL is returned when the start URL cannot be parsed or has no host.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrInvalidDepth is returned when the depth is outside [MinDepth, MaxDepth].
	ErrInvalidDepth = errors.New("depth must be between 0 and 10")

	// ErrInvalidMaxPages is returned when the page limit is outside [MinPages, MaxPages].
	ErrInvalidMaxPages = errors.New("max pages must be between 1 and 1000")
)

// IsValidationError reports whether err is one of the request validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingURL) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, ErrInvalidDepth) ||
		errors.Is(err, ErrInvalidMaxPages)
}
