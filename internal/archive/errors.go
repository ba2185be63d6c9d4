package archive

import "errors"

// ErrArchival is returned when the archive of a run cannot be produced.
var ErrArchival = errors.New("failed to archive crawl results")
