package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/crawlzip/internal/archive"
	"github.com/nao1215/crawlzip/internal/materialize"
	"github.com/nao1215/crawlzip/internal/model"
)

// ErrNoRunDirectory is returned by ArchiveStep when no run directory exists.
var ErrNoRunDirectory = errors.New("no run directory to archive")

// Crawler fetches the pages of a site. *firecrawl.Client implements it.
type Crawler interface {
	Crawl(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error)
}

// CrawlStep calls the crawl service and stores the result in the job.
type CrawlStep struct {
	crawler Crawler
}

// NewCrawlStep creates a crawl step.
func NewCrawlStep(crawler Crawler) *CrawlStep {
	return &CrawlStep{crawler: crawler}
}

// Name implements Step.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do implements Step.
func (s *CrawlStep) Do(ctx context.Context, job *model.Job) error {
	result, err := s.crawler.Crawl(ctx, job.Request)
	if err != nil {
		return err
	}
	if result == nil {
		result = &model.CrawlResult{}
	}
	job.Result = result
	return nil
}

// MaterializeStep writes the crawl result into a new run directory.
type MaterializeStep struct {
	materializer *materialize.Materializer
	outputDir    string
}

// NewMaterializeStep creates a materialize step writing under outputDir.
func NewMaterializeStep(m *materialize.Materializer, outputDir string) *MaterializeStep {
	return &MaterializeStep{materializer: m, outputDir: outputDir}
}

// Name implements Step.
func (s *MaterializeStep) Name() string {
	return "materialize"
}

// Do implements Step.
func (s *MaterializeStep) Do(_ context.Context, job *model.Job) error {
	run, err := s.materializer.Materialize(job.Result, job.Request.URL, s.outputDir)
	if err != nil {
		return err
	}
	job.RunDir = run.Dir
	job.DomainLabel = run.DomainLabel
	job.Timestamp = run.Timestamp
	job.Pages = run.Pages
	job.ArchiveName = run.ArchiveName()
	return nil
}

// ArchiveStep zips the run directory into a temporary file and removes
// the run directory.
type ArchiveStep struct {
	tempDir string
	logger  *slog.Logger
}

// NewArchiveStep creates an archive step storing zips in tempDir.
func NewArchiveStep(tempDir string, logger *slog.Logger) *ArchiveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStep{tempDir: tempDir, logger: logger}
}

// Name implements Step.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do implements Step.
func (s *ArchiveStep) Do(_ context.Context, job *model.Job) error {
	if job.RunDir == "" {
		return fmt.Errorf("%w: %w", archive.ErrArchival, ErrNoRunDirectory)
	}

	a, err := archive.Package(job.RunDir, s.tempDir)
	// Package removes the run directory on every path.
	job.RunDir = ""
	if err != nil {
		return err
	}

	job.ArchivePath = a.Path
	s.logger.Info("archive created",
		"job", job.ID,
		"archive", job.ArchiveName,
		"entries", a.Entries,
	)
	return nil
}

// NewDefaultPipeline builds crawl, materialize and, when withArchive is
// set, archive steps.
func NewDefaultPipeline(crawler Crawler, m *materialize.Materializer, outputDir, tempDir string, withArchive bool, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewCrawlStep(crawler),
		NewMaterializeStep(m, outputDir),
	)
	if withArchive {
		p.AddStep(NewArchiveStep(tempDir, logger))
	}
	return p
}
