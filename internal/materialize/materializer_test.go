package materialize

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/crawlzip/internal/model"
)

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestMaterializer() *Materializer {
	return New(
		WithClock(func() time.Time { return fixedTime }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test file
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func listPages(t *testing.T, runDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(runDir, PagesDir))
	if err != nil {
		t.Fatalf("failed to read pages dir: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// TestMaterialize tests a run with mixed pages.
func TestMaterialize(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "out")
	result := &model.CrawlResult{
		Status:      "completed",
		Total:       4,
		CreditsUsed: 7,
		Pages: []model.PageRecord{
			{SourceURL: "https://example.com/", Title: "Hello: World!", Markdown: "# Welcome\n\nBody text."},
			{SourceURL: "https://example.com/empty", Title: "Empty"},
			{SourceURL: "https://example.com/docs/guide/", Markdown: "Guide body"},
			{Title: "No URL", Markdown: "orphan"},
		},
	}

	run, err := newTestMaterializer().Materialize(result, "https://example.com", root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if run.Dir != filepath.Join(root, "example_com_20240102_030405") {
		t.Errorf("unexpected run dir %s", run.Dir)
	}
	if run.ArchiveName() != "example_com_20240102_030405.zip" {
		t.Errorf("unexpected archive name %s", run.ArchiveName())
	}
	if run.SavedCount() != 3 {
		t.Fatalf("expected 3 saved pages, got %d", run.SavedCount())
	}

	wantFiles := []string{"000_Hello World.md", "002_docs_guide.md", "003_No URL.md"}
	gotFiles := listPages(t, run.Dir)
	if strings.Join(gotFiles, ",") != strings.Join(wantFiles, ",") {
		t.Errorf("expected files %v, got %v", wantFiles, gotFiles)
	}
	for i, p := range run.Pages {
		if p.Filename != wantFiles[i] {
			t.Errorf("page %d: expected %s, got %s", i, wantFiles[i], p.Filename)
		}
	}
	if run.Pages[2].SourceURL != "page_3" {
		t.Errorf("expected placeholder url, got %q", run.Pages[2].SourceURL)
	}

	t.Run("page content", func(t *testing.T) {
		t.Parallel()
		content := readFile(t, filepath.Join(run.Dir, PagesDir, "000_Hello World.md"))
		for _, want := range []string{
			"# Hello: World!",
			"**URL:** https://example.com/",
			"**Crawled:** 20240102_030405",
			"---",
			"# Welcome\n\nBody text.",
		} {
			if !strings.Contains(content, want) {
				t.Errorf("page missing %q:\n%s", want, content)
			}
		}
		if strings.Index(content, "---") > strings.Index(content, "Body text.") {
			t.Error("expected body after the horizontal rule")
		}
	})

	t.Run("index content", func(t *testing.T) {
		t.Parallel()
		content := readFile(t, filepath.Join(run.Dir, IndexFile))
		for _, want := range []string{
			"# Crawl Results: example_com",
			"**Base URL:** https://example.com",
			"**Total Pages:** 3",
			"## Pages",
			"- [Hello: World!](pages/000_Hello World.md) - https://example.com/",
			"- [Untitled](pages/002_docs_guide.md) - https://example.com/docs/guide/",
			"- [No URL](pages/003_No URL.md) - page_3",
		} {
			if !strings.Contains(content, want) {
				t.Errorf("index missing %q:\n%s", want, content)
			}
		}
		if strings.Contains(content, "Empty") {
			t.Error("expected skipped page to be absent from the index")
		}
		first := strings.Index(content, "000_Hello World.md")
		last := strings.Index(content, "003_No URL.md")
		if first > last {
			t.Error("expected index entries in encounter order")
		}
	})

	t.Run("metadata", func(t *testing.T) {
		t.Parallel()
		md, err := ReadMetadata(run.Dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := model.Metadata{
			BaseURL:        "https://example.com",
			CrawlTimestamp: "20240102_030405",
			TotalPages:     4,
			Status:         "completed",
			CreditsUsed:    7,
		}
		if md != want {
			t.Errorf("expected %+v, got %+v", want, md)
		}
		raw := readFile(t, filepath.Join(run.Dir, MetadataFile))
		if !strings.Contains(raw, "\n  \"base_url\"") {
			t.Errorf("expected two-space indentation:\n%s", raw)
		}
	})
}

// TestMaterializeZeroPages tests that an empty result still produces a run.
func TestMaterializeZeroPages(t *testing.T) {
	t.Parallel()

	run, err := newTestMaterializer().Materialize(&model.CrawlResult{}, "https://example.com", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listPages(t, run.Dir)) != 0 {
		t.Error("expected empty pages directory")
	}
	if !strings.Contains(readFile(t, filepath.Join(run.Dir, IndexFile)), "**Total Pages:** 0") {
		t.Error("expected index to report zero pages")
	}

	md, err := ReadMetadata(run.Dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if md.Status != model.UnknownStatus || md.TotalPages != 0 || md.CreditsUsed != 0 {
		t.Errorf("expected defaults, got %+v", md)
	}
}

// TestMaterializeDuplicateNames tests that pages deriving the same name stay distinct.
func TestMaterializeDuplicateNames(t *testing.T) {
	t.Parallel()

	result := &model.CrawlResult{Pages: []model.PageRecord{
		{SourceURL: "https://example.com/a", Title: "Same", Markdown: "one"},
		{SourceURL: "https://example.com/b", Title: "Same", Markdown: "two"},
	}}
	run, err := newTestMaterializer().Materialize(result, "https://example.com", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.Pages[0].Filename == run.Pages[1].Filename {
		t.Errorf("expected distinct filenames, got %s twice", run.Pages[0].Filename)
	}
}

// TestMaterializeUntitledPathNames tests filenames derived from raw URL paths.
func TestMaterializeUntitledPathNames(t *testing.T) {
	t.Parallel()

	result := &model.CrawlResult{Pages: []model.PageRecord{
		{SourceURL: "https://example.com/", Title: "Hello: World!", Markdown: "A"},
		{SourceURL: "https://example.com/café/über", Markdown: "B"},
		{SourceURL: "https://example.com/a%20b", Markdown: "C"},
	}}
	run, err := newTestMaterializer().Materialize(result, "https://example.com", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"000_Hello World.md", "001_caf_ber.md", "002_a20b.md"}
	got := listPages(t, run.Dir)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("expected pages %v, got %v", want, got)
	}
}

// TestMaterializeCollision tests that an existing run directory is an error.
func TestMaterializeCollision(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	m := newTestMaterializer()
	result := &model.CrawlResult{Pages: []model.PageRecord{{Title: "x", Markdown: "x"}}}

	first, err := m.Materialize(result, "https://example.com", root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = m.Materialize(result, "https://example.com", root)
	if !errors.Is(err, ErrDirectoryCreation) {
		t.Fatalf("expected ErrDirectoryCreation, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(first.Dir, IndexFile)); statErr != nil {
		t.Errorf("expected first run to be untouched: %v", statErr)
	}
}

// TestMaterializeInvalidBaseURL tests base URL validation.
func TestMaterializeInvalidBaseURL(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "example.com", "://bad"} {
		_, err := newTestMaterializer().Materialize(&model.CrawlResult{}, base, t.TempDir())
		if !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("%q: expected ErrInvalidBaseURL, got %v", base, err)
		}
	}
}

// TestMaterializeOutputRootIsFile tests the directory creation failure path.
func TestMaterializeOutputRootIsFile(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(root, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := newTestMaterializer().Materialize(&model.CrawlResult{}, "https://example.com", root)
	if !errors.Is(err, ErrDirectoryCreation) {
		t.Errorf("expected ErrDirectoryCreation, got %v", err)
	}
}
