package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// tempPattern names temporary archive files.
const tempPattern = "crawlzip-*.zip"

// Archive is a zip file on disk waiting to be delivered.
type Archive struct {
	// Path is the location of the zip file.
	Path string

	// Entries is the number of files stored in the archive.
	Entries int
}

// Write stores every regular file under srcDir in a zip written to w.
// Entry names are relative to srcDir and use forward slashes. Symbolic
// links and other non-regular files are skipped and never followed.
// It returns the number of entries written.
func Write(srcDir string, w io.Writer) (count int, err error) {
	zw := zip.NewWriter(w)
	defer func() {
		if cerr := zw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}
		count++
		return nil
	})
	return count, err
}

// addFile copies the file at path into zw as name.
func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	src, err := os.Open(path) //nolint:gosec // path comes from walking our own run directory
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(dst, src)
	return err
}

// Package zips runDir into a new temporary file in tempDir. An empty
// tempDir means the system default.
//
// runDir is removed before Package returns, whether or not archiving
// succeeded. On failure the partial zip is removed too.
func Package(runDir, tempDir string) (a *Archive, err error) {
	defer func() {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: failed to remove run directory: %w", ErrArchival, rmErr))
			if a != nil {
				_ = a.Remove() //nolint:errcheck // already failing
				a = nil
			}
		}
	}()

	info, err := os.Stat(runDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchival, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrArchival, runDir)
	}

	f, err := os.CreateTemp(tempDir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArchival, err)
	}

	count, err := Write(runDir, f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name()) //nolint:errcheck // best effort
		return nil, fmt.Errorf("%w: %w", ErrArchival, err)
	}

	return &Archive{Path: f.Name(), Entries: count}, nil
}

// Open opens the archive for reading.
func (a *Archive) Open() (*os.File, error) {
	return os.Open(a.Path)
}

// Remove deletes the archive file. Removing a missing archive is not an error.
func (a *Archive) Remove() error {
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Deliver copies the archive to w and then removes it, also when the copy
// fails. It returns the number of bytes copied.
func (a *Archive) Deliver(w io.Writer) (n int64, err error) {
	defer func() {
		if rmErr := a.Remove(); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
	}()

	f, err := a.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrArchival, err)
	}
	defer f.Close()

	return io.Copy(w, f)
}
