package materialize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// maxSafeNameLength bounds the safe base name portion of a page filename.
	maxSafeNameLength = 100

	// fallbackSafeName is used when nothing survives filtering.
	fallbackSafeName = "page"

	// indexSafeName names pages whose URL has an empty path.
	indexSafeName = "index"
)

// SafeBaseName derives the filesystem-safe part of a page filename.
//
// The trimmed title is preferred. Without one, the URL path is used with
// surrounding slashes removed and inner slashes replaced by underscores
// ("index" for an empty path). Only ASCII letters, digits, space, '-', '_',
// '.', '(' and ')' are kept; everything else is dropped, which can make
// different titles collide. The result is cut to 100 characters and is
// "page" if empty.
func SafeBaseName(pageURL, title string) string {
	base := strings.TrimSpace(title)
	if base == "" {
		path := strings.Trim(urlPath(pageURL), "/")
		if path == "" {
			base = indexSafeName
		} else {
			base = strings.ReplaceAll(path, "/", "_")
		}
	}

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		if isSafeRune(r) {
			b.WriteRune(r)
			if b.Len() == maxSafeNameLength {
				break
			}
		}
	}

	if b.Len() == 0 {
		return fallbackSafeName
	}
	return b.String()
}

// urlPath returns the path of rawURL exactly as written: the scheme,
// authority, query and fragment are cut off and nothing is escaped or
// decoded. Strings without a scheme (such as the page_<n> placeholder) are
// treated as a bare path.
func urlPath(rawURL string) string {
	rest := rawURL
	if i := strings.IndexByte(rest, ':'); i > 0 && isScheme(rest[:i]) {
		rest = rest[i+1:]
	}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		end := strings.IndexAny(rest, "/?#")
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// isScheme reports whether s is a URL scheme name.
func isScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// isSafeRune reports whether r may appear in a safe base name.
func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-', r == '_', r == '.', r == '(', r == ')':
		return true
	default:
		return false
	}
}

// pageFilename composes the candidate name for the page at index idx.
func pageFilename(idx int, safeName string) string {
	return fmt.Sprintf("%03d_%s.md", idx, safeName)
}

// uniqueFilename returns the first of NNN_name.md, NNN_name_1.md,
// NNN_name_2.md, ... that does not exist in dir.
func uniqueFilename(dir string, idx int, safeName string) (string, error) {
	name := pageFilename(idx, safeName)
	for counter := 1; ; counter++ {
		_, err := os.Lstat(filepath.Join(dir, name))
		if os.IsNotExist(err) {
			return name, nil
		}
		if err != nil {
			return "", err
		}
		name = fmt.Sprintf("%03d_%s_%d.md", idx, safeName, counter)
	}
}

// DomainLabel turns a host into the run directory prefix by replacing
// every '.' with '_'. Ports are kept as they are.
func DomainLabel(host string) string {
	return strings.ReplaceAll(host, ".", "_")
}

// ArchiveName returns the download name of a run's archive. Colons are
// replaced as well so that host:port labels stay filesystem safe.
func ArchiveName(domainLabel, timestamp string) string {
	return strings.ReplaceAll(domainLabel, ":", "_") + "_" + timestamp + ".zip"
}
