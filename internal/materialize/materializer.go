package materialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/crawlzip/internal/model"
)

// Layout of a run directory.
const (
	MetadataFile = "metadata.json"
	IndexFile    = "index.md"
	PagesDir     = "pages"

	// TimestampLayout formats run timestamps as YYYYMMDD_HHMMSS.
	TimestampLayout = "20060102_150405"
)

// Permissions of everything written into a run directory.
const (
	dirPerm  = 0750
	filePerm = 0600
)

// Run describes a materialized run directory.
type Run struct {
	// Dir is the path of the run directory.
	Dir string

	// BaseURL is the crawled start URL.
	BaseURL string

	// DomainLabel is the base URL host with '.' replaced by '_'.
	DomainLabel string

	// Timestamp is the run timestamp in TimestampLayout.
	Timestamp string

	// Pages lists the written page files in encounter order.
	Pages []model.MaterializedPage
}

// SavedCount returns the number of page files written.
func (r *Run) SavedCount() int {
	return len(r.Pages)
}

// ArchiveName returns the download name for this run's archive.
func (r *Run) ArchiveName() string {
	return ArchiveName(r.DomainLabel, r.Timestamp)
}

// Materializer writes crawl results to disk as markdown files with an
// index and a metadata file. It performs no network access.
// A Materializer holds no per-run state and may be shared between
// goroutines; each run works in its own directory.
type Materializer struct {
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Materializer.
type Option func(*Materializer)

// WithClock sets the time source used for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Materializer) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = logger
	}
}

// New creates a Materializer.
func New(opts ...Option) *Materializer {
	m := &Materializer{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	return m
}

// Materialize writes result under outputRoot and returns the run.
//
// The run directory is outputRoot/<domainLabel>_<timestamp>. It contains
// metadata.json, index.md and a pages directory with one file per page
// that has a markdown body, in the order of result.Pages. outputRoot is
// created if missing. The run directory itself must not exist yet; if it
// does (two runs for the same host in the same second) ErrDirectoryCreation
// is returned.
//
// Any I/O failure aborts the run. The partially written run directory is
// removed before returning.
func (m *Materializer) Materialize(result *model.CrawlResult, baseURL, outputRoot string) (run *Run, err error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if result == nil {
		result = &model.CrawlResult{}
	}

	run = &Run{
		BaseURL:     baseURL,
		DomainLabel: DomainLabel(u.Host),
		Timestamp:   m.now().Format(TimestampLayout),
		Pages:       make([]model.MaterializedPage, 0, len(result.Pages)),
	}
	run.Dir = filepath.Join(outputRoot, run.DomainLabel+"_"+run.Timestamp)

	if err := os.MkdirAll(outputRoot, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryCreation, err)
	}
	if err := os.Mkdir(run.Dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryCreation, err)
	}
	dir := run.Dir
	defer func() {
		if err != nil {
			if rmErr := os.RemoveAll(dir); rmErr != nil {
				m.logger.Warn("failed to remove partial run directory", "dir", dir, "error", rmErr)
			}
		}
	}()

	if err := writeMetadata(filepath.Join(run.Dir, MetadataFile), model.NewMetadata(result, baseURL, run.Timestamp)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaterialization, err)
	}

	pagesDir := filepath.Join(run.Dir, PagesDir)
	if err := os.Mkdir(pagesDir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaterialization, err)
	}

	for idx, page := range result.Pages {
		saved, ok, err := m.writePage(pagesDir, idx, page, run.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrMaterialization, idx, err)
		}
		if ok {
			run.Pages = append(run.Pages, saved)
		}
	}

	if err := writeIndex(filepath.Join(run.Dir, IndexFile), run); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMaterialization, err)
	}

	m.logger.Info("crawl results materialized",
		"dir", run.Dir,
		"pages", len(result.Pages),
		"saved", run.SavedCount(),
	)
	return run, nil
}

// writePage writes the page at idx and reports whether a file was written.
// Pages without a body are skipped.
func (m *Materializer) writePage(pagesDir string, idx int, page model.PageRecord, timestamp string) (model.MaterializedPage, bool, error) {
	pageURL := page.SourceURL
	if pageURL == "" {
		pageURL = "page_" + strconv.Itoa(idx)
	}

	filename, err := uniqueFilename(pagesDir, idx, SafeBaseName(pageURL, page.Title))
	if err != nil {
		return model.MaterializedPage{}, false, err
	}

	if !page.HasBody() {
		m.logger.Debug("skipping page without content", "index", idx, "url", pageURL)
		return model.MaterializedPage{}, false, nil
	}

	if err := writePageFile(filepath.Join(pagesDir, filename), page.Title, pageURL, timestamp, page.Markdown); err != nil {
		return model.MaterializedPage{}, false, err
	}

	m.logger.Debug("page saved", "index", idx, "file", filename)
	return model.MaterializedPage{
		Filename:  filename,
		SourceURL: pageURL,
		Title:     page.Title,
	}, true, nil
}

// writeMetadata writes md as indented JSON.
func writeMetadata(path string, md model.Metadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, filePerm)
}

// createFile creates path for writing and fails if it already exists.
func createFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, filePerm) //nolint:gosec // path is built from sanitized components
}

// closeFile closes f and keeps the first error.
func closeFile(f *os.File, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// ReadMetadata reads metadata.json from a run directory.
func ReadMetadata(runDir string) (model.Metadata, error) {
	var md model.Metadata
	data, err := os.ReadFile(filepath.Join(runDir, MetadataFile)) //nolint:gosec // run directory is ours
	if err != nil {
		return md, err
	}
	if err := json.Unmarshal(data, &md); err != nil {
		return md, errors.Join(ErrMaterialization, err)
	}
	return md, nil
}
