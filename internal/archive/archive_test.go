package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// makeRunDir creates a run directory with the given relative files.
func makeRunDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "example_com_20240102_030405")
	if err := os.MkdirAll(filepath.Join(dir, "pages"), 0750); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// readZip returns the entries of a zip file keyed by name.
func readZip(t *testing.T, path string) map[string]string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("failed to open zip: %v", err)
	}
	defer zr.Close()

	entries := map[string]string{}
	for _, f := range zr.File {
		if f.Method != zip.Deflate {
			t.Errorf("%s: expected deflate, got method %d", f.Name, f.Method)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", f.Name, err)
		}
		if _, dup := entries[f.Name]; dup {
			t.Errorf("duplicate entry %s", f.Name)
		}
		entries[f.Name] = string(data)
	}
	return entries
}

var runFiles = map[string]string{
	"metadata.json":         `{"base_url": "https://example.com"}`,
	"index.md":              "# Crawl Results: example_com\n",
	"pages/000_Home.md":     "# Home\n\nbody",
	"pages/001_About us.md": strings.Repeat("about ", 500),
}

// TestPackage tests that every file is archived and the run directory removed.
func TestPackage(t *testing.T) {
	t.Parallel()

	runDir := makeRunDir(t, runFiles)
	a, err := Package(runDir, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Remove() //nolint:errcheck // test cleanup

	if _, err := os.Stat(runDir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected run directory to be removed, stat error: %v", err)
	}
	if a.Entries != len(runFiles) {
		t.Errorf("expected %d entries, got %d", len(runFiles), a.Entries)
	}

	got := readZip(t, a.Path)
	if len(got) != len(runFiles) {
		names := make([]string, 0, len(got))
		for name := range got {
			names = append(names, name)
		}
		sort.Strings(names)
		t.Fatalf("expected %d entries, got %v", len(runFiles), names)
	}
	for name, want := range runFiles {
		if got[name] != want {
			t.Errorf("%s: content mismatch", name)
		}
	}
}

// TestPackageEmptyPages tests a run without page files.
func TestPackageEmptyPages(t *testing.T) {
	t.Parallel()

	runDir := makeRunDir(t, map[string]string{"metadata.json": "{}", "index.md": "# x\n"})
	a, err := Package(runDir, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Remove() //nolint:errcheck // test cleanup

	if a.Entries != 2 {
		t.Errorf("expected 2 entries, got %d", a.Entries)
	}
}

// TestPackageSkipsSymlinks tests that links are neither stored nor followed.
func TestPackageSkipsSymlinks(t *testing.T) {
	t.Parallel()

	runDir := makeRunDir(t, map[string]string{"index.md": "x"})
	if err := os.Symlink(runDir, filepath.Join(runDir, "pages", "loop")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	a, err := Package(runDir, t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Remove() //nolint:errcheck // test cleanup

	got := readZip(t, a.Path)
	if len(got) != 1 {
		t.Errorf("expected only index.md, got %d entries", len(got))
	}
}

// TestPackageFailure tests cleanup when the archive cannot be created.
func TestPackageFailure(t *testing.T) {
	t.Parallel()

	t.Run("missing run directory", func(t *testing.T) {
		t.Parallel()
		_, err := Package(filepath.Join(t.TempDir(), "missing"), t.TempDir())
		if !errors.Is(err, ErrArchival) {
			t.Errorf("expected ErrArchival, got %v", err)
		}
	})

	t.Run("unusable temp directory", func(t *testing.T) {
		t.Parallel()
		runDir := makeRunDir(t, runFiles)
		_, err := Package(runDir, filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrArchival) {
			t.Errorf("expected ErrArchival, got %v", err)
		}
		if _, statErr := os.Stat(runDir); !errors.Is(statErr, os.ErrNotExist) {
			t.Errorf("expected run directory to be removed, stat error: %v", statErr)
		}
	})
}

// TestDeliver tests that delivery copies and then removes the archive.
func TestDeliver(t *testing.T) {
	t.Parallel()

	a, err := Package(makeRunDir(t, runFiles), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := os.ReadFile(a.Path)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	n, err := a.Deliver(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != int64(len(want)) || !bytes.Equal(buf.Bytes(), want) {
		t.Error("delivered bytes differ from the archive")
	}
	if _, err := os.Stat(a.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected archive to be removed, stat error: %v", err)
	}
	if err := a.Remove(); err != nil {
		t.Errorf("expected second remove to succeed, got %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

// TestDeliverFailure tests that the archive is removed after a failed copy.
func TestDeliverFailure(t *testing.T) {
	t.Parallel()

	a, err := Package(makeRunDir(t, runFiles), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Deliver(failingWriter{}); err == nil {
		t.Error("expected copy error")
	}
	if _, err := os.Stat(a.Path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected archive to be removed, stat error: %v", err)
	}
}
