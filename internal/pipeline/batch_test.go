package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/crawlzip/internal/model"
)

func batchRequests(urls ...string) []model.CrawlRequest {
	reqs := make([]model.CrawlRequest, 0, len(urls))
	for _, u := range urls {
		reqs = append(reqs, model.CrawlRequest{URL: u, Depth: 1, MaxPages: 10})
	}
	return reqs
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(func() *Pipeline { return New() }, WithBatchLogger(nil))
	if bp.logger == nil {
		t.Error("expected default logger")
	}
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("keeps request order and isolates failures", func(t *testing.T) {
		t.Parallel()

		failure := errors.New("crawl refused")
		bp := NewBatchProcessor(func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{
				name: "fail-on-b",
				doFunc: func(_ context.Context, job *model.Job) error {
					if job.Request.URL == "https://b.example.com" {
						return failure
					}
					return nil
				},
			})
			return p
		}, WithBatchLogger(discardLogger()))

		outcomes, err := bp.ProcessBatch(context.Background(),
			batchRequests("https://a.example.com", "https://b.example.com", "https://c.example.com"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(outcomes) != 3 {
			t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
		}
		for i, want := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
			if outcomes[i].Job.Request.URL != want {
				t.Errorf("outcome %d: expected %s, got %s", i, want, outcomes[i].Job.Request.URL)
			}
		}
		if outcomes[0].Err != nil || outcomes[2].Err != nil {
			t.Errorf("expected successes, got %v and %v", outcomes[0].Err, outcomes[2].Err)
		}
		if !errors.Is(outcomes[1].Err, failure) {
			t.Errorf("expected failure for b, got %v", outcomes[1].Err)
		}
	})

	t.Run("runs one crawl at a time", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		bp := NewBatchProcessor(func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(&mockStep{
				name: "slow",
				doFunc: func(context.Context, *model.Job) error {
					n := current.Add(1)
					if n > peak.Load() {
						peak.Store(n)
					}
					time.Sleep(5 * time.Millisecond)
					current.Add(-1)
					return nil
				},
			})
			return p
		}, WithBatchLogger(discardLogger()))

		reqs := batchRequests("https://1.test", "https://2.test", "https://3.test")
		if _, err := bp.ProcessBatch(context.Background(), reqs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() != 1 {
			t.Errorf("expected sequential crawls, peak concurrency was %d", peak.Load())
		}
	})

	t.Run("reports cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		bp := NewBatchProcessor(func() *Pipeline {
			p := New(WithLogger(discardLogger()))
			p.AddStep(step)
			return p
		}, WithBatchLogger(discardLogger()))
		outcomes, err := bp.ProcessBatch(ctx, batchRequests("https://a.test", "https://b.test"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		for i, o := range outcomes {
			if !errors.Is(o.Err, context.Canceled) {
				t.Errorf("outcome %d: expected cancellation, got %v", i, o.Err)
			}
		}
		if step.callCount != 0 {
			t.Error("expected no step to run after cancellation")
		}
	})
}
