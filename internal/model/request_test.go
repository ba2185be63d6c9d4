package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestNormalizeURL tests scheme defaulting and host validation.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "https kept", input: "https://example.com", want: "https://example.com"},
		{name: "http kept", input: "http://example.com/docs", want: "http://example.com/docs"},
		{name: "scheme prepended", input: "example.com", want: "https://example.com"},
		{name: "whitespace trimmed", input: "  example.com/a  ", want: "https://example.com/a"},
		{name: "port kept", input: "localhost:8080", want: "https://localhost:8080"},
		{name: "empty", input: "", wantErr: ErrMissingURL},
		{name: "blank", input: "   ", wantErr: ErrMissingURL},
		{name: "no host", input: "https:///path", wantErr: ErrInvalidURL},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeURL(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestCrawlRequestValidate tests the depth and page limit bounds.
func TestCrawlRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		depth    int
		maxPages int
		wantErr  error
	}{
		{name: "defaults", depth: DefaultDepth, maxPages: DefaultMaxPages},
		{name: "lower bounds", depth: 0, maxPages: 1},
		{name: "upper bounds", depth: 10, maxPages: 1000},
		{name: "negative depth", depth: -1, maxPages: 50, wantErr: ErrInvalidDepth},
		{name: "depth too large", depth: 11, maxPages: 50, wantErr: ErrInvalidDepth},
		{name: "zero pages", depth: 2, maxPages: 0, wantErr: ErrInvalidMaxPages},
		{name: "too many pages", depth: 2, maxPages: 1001, wantErr: ErrInvalidMaxPages},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, err := NewCrawlRequest("example.com", tt.depth, tt.maxPages)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if !IsValidationError(err) {
					t.Error("expected IsValidationError to be true")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.URL != "https://example.com" {
				t.Errorf("expected normalized URL, got %q", req.URL)
			}
			if req.Host() != "example.com" {
				t.Errorf("expected host example.com, got %q", req.Host())
			}
		})
	}
}

// TestNewMetadata tests metadata defaults.
func TestNewMetadata(t *testing.T) {
	t.Parallel()

	t.Run("nil result uses defaults", func(t *testing.T) {
		t.Parallel()
		md := NewMetadata(nil, "https://example.com", "20250101_120000")
		if md.Status != UnknownStatus {
			t.Errorf("expected status %q, got %q", UnknownStatus, md.Status)
		}
		if md.TotalPages != 0 || md.CreditsUsed != 0 {
			t.Errorf("expected zero counters, got %+v", md)
		}
	})

	t.Run("copies result counters", func(t *testing.T) {
		t.Parallel()
		md := NewMetadata(&CrawlResult{Status: "completed", Total: 7, CreditsUsed: 3}, "https://example.com", "ts")
		if md.Status != "completed" || md.TotalPages != 7 || md.CreditsUsed != 3 {
			t.Errorf("unexpected metadata %+v", md)
		}
	})

	t.Run("empty status becomes unknown", func(t *testing.T) {
		t.Parallel()
		md := NewMetadata(&CrawlResult{Total: 1}, "https://example.com", "ts")
		if md.Status != UnknownStatus {
			t.Errorf("expected %q, got %q", UnknownStatus, md.Status)
		}
	})
}

// TestJobCleanup tests that Cleanup removes the run directory and archive.
func TestJobCleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	runDir := filepath.Join(dir, "run")
	if err := os.MkdirAll(filepath.Join(runDir, "pages"), 0750); err != nil {
		t.Fatal(err)
	}
	archivePath := filepath.Join(dir, "out.zip")
	if err := os.WriteFile(archivePath, []byte("zip"), 0600); err != nil {
		t.Fatal(err)
	}

	job := NewJob(CrawlRequest{URL: "https://example.com", Depth: 2, MaxPages: 50})
	if job.ID == "" {
		t.Error("expected job ID")
	}
	job.RunDir = runDir
	job.ArchivePath = archivePath

	if err := job.Cleanup(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(runDir); !os.IsNotExist(err) {
		t.Error("expected run directory to be removed")
	}
	if _, err := os.Stat(archivePath); !os.IsNotExist(err) {
		t.Error("expected archive to be removed")
	}

	// Second call is a no-op.
	if err := job.Cleanup(); err != nil {
		t.Errorf("unexpected error on second cleanup: %v", err)
	}
}
