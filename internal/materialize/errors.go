package materialize

import "errors"

var (
	// ErrInvalidBaseURL is returned when the base URL has no scheme or host.
	ErrInvalidBaseURL = errors.New("invalid base url")

	// ErrDirectoryCreation is returned when the output root or the run
	// directory cannot be created, including when the run directory exists.
	ErrDirectoryCreation = errors.New("failed to create run directory")

	// ErrMaterialization is returned when a file of the run cannot be written.
	ErrMaterialization = errors.New("failed to write crawl results")
)
