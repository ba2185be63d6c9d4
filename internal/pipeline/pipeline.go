package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/crawlzip/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one reading what the previous
// steps stored in the job.
type Step interface {
	// Do executes the step. Any error aborts the pipeline.
	Do(ctx context.Context, job *model.Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs the steps of one crawl-and-package request.
// It holds no per-job state and can execute many jobs concurrently.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps against job in order and stops at the first
// error or when ctx is done.
//
// There is no partial success. When Execute returns an error, everything
// the job put on disk (run directory, archive) has been removed.
func (p *Pipeline) Execute(ctx context.Context, job *model.Job) (err error) {
	defer func() {
		if err == nil {
			return
		}
		if cleanupErr := job.Cleanup(); cleanupErr != nil {
			p.logger.Warn("cleanup after failure incomplete",
				"job", job.ID,
				"error", cleanupErr,
			)
		}
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"job", job.ID,
				"step", step.Name(),
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"job", job.ID,
			"step", step.Name(),
			"url", job.Request.URL,
		)

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"job", job.ID,
				"step", step.Name(),
				"url", job.Request.URL,
				"error", err,
			)
			return err
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
