package model

import (
	"errors"
	"os"

	"github.com/google/uuid"
)

// Job carries one crawl-and-package request through the pipeline.
// A Job is owned by exactly one goroutine; nothing in it is shared
// between requests.
type Job struct {
	// ID correlates log lines of one request.
	ID string

	// Request is the validated crawl request.
	Request CrawlRequest

	// Result is set by the crawl step.
	Result *CrawlResult

	// RunDir is the run directory created by the materialize step.
	// It is cleared once the directory has been removed.
	RunDir string

	// DomainLabel is the host of Request.URL with '.' replaced by '_'.
	DomainLabel string

	// Timestamp is the run timestamp in YYYYMMDD_HHMMSS form.
	Timestamp string

	// Pages lists the page files written into RunDir, in encounter order.
	Pages []MaterializedPage

	// ArchivePath is the temporary zip file produced by the archive step.
	ArchivePath string

	// ArchiveName is the download file name for the archive.
	ArchiveName string
}

// NewJob creates a Job with a fresh ID.
func NewJob(req CrawlRequest) *Job {
	return &Job{
		ID:      uuid.NewString(),
		Request: req,
	}
}

// SavedCount returns the number of page files written.
func (j *Job) SavedCount() int {
	return len(j.Pages)
}

// Cleanup removes the run directory and the archive file if they exist.
// It is safe to call more than once.
func (j *Job) Cleanup() error {
	var errs []error
	if j.RunDir != "" {
		if err := os.RemoveAll(j.RunDir); err != nil {
			errs = append(errs, err)
		} else {
			j.RunDir = ""
		}
	}
	if j.ArchivePath != "" {
		if err := os.Remove(j.ArchivePath); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		} else {
			j.ArchivePath = ""
		}
	}
	return errors.Join(errs...)
}
