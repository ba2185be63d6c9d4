package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/crawlzip/internal/model"
)

// Outcome is the result of one job in a batch.
type Outcome struct {
	// Job is the processed job. After a failure it holds no artifacts.
	Job *model.Job

	// Err is the error returned by the pipeline, nil on success.
	Err error
}

// BatchProcessor runs several crawl requests one after another.
// Each request gets its own pipeline and job; a failed request does not
// stop the ones after it.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each request.
	pipelineFactory func() *Pipeline

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs one job per request, in order, and returns their
// outcomes in request order. When ctx ends, the remaining requests are
// not started; their outcomes carry ctx's error, which is also returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, requests []model.CrawlRequest) ([]Outcome, error) {
	bp.logger.Info("starting batch", "requests", len(requests))
	startTime := time.Now()

	outcomes := make([]Outcome, len(requests))
	for i, req := range requests {
		job := model.NewJob(req)
		outcomes[i].Job = job

		if err := ctx.Err(); err != nil {
			outcomes[i].Err = err
			continue
		}

		bp.logger.Info("crawling",
			"url", req.URL,
			"index", i+1,
			"total", len(requests),
		)

		err := bp.pipelineFactory().Execute(ctx, job)
		outcomes[i].Err = err
		if err != nil {
			bp.logger.Warn("crawl failed", "url", req.URL, "error", err)
			continue
		}
		bp.logger.Info("crawl finished", "url", req.URL, "pages", job.SavedCount())
	}

	bp.logger.Info("batch complete",
		"requests", len(requests),
		"elapsed", time.Since(startTime),
	)
	return outcomes, ctx.Err()
}
