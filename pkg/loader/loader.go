package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by GetSource when no note exists at the path.
	ErrNotFound = errors.New("note not found")
	// ErrPathEscape is returned when a relative path resolves outside the root.
	ErrPathEscape = errors.New("path escapes root")
)

// DefaultExtensions lists the note extensions used when none are configured.
var DefaultExtensions = []string{".md"}

// NoteFile represents a note discovered under a root. Path is the absolute
// location (filesystem path or object key), RelPath the location relative to
// the root using forward slashes.
//
// The content is retrieved via the associated NoteLoader.
type NoteFile struct {
	Path    string
	RelPath string
	Size    int64
	ModTime time.Time
	Loader  NoteLoader
}

// GetText retrieves the raw content of the note using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(string(text))
func (f *NoteFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("no loader for %s", f.RelPath)
	}
	return f.Loader.GetFileText(ctx, *f)
}

// SkippedPath is a part of the corpus that could not be scanned.
type SkippedPath struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Discovery is the result of scanning a root. Files has no guaranteed order.
type Discovery struct {
	Root    string
	Files   []NoteFile
	Skipped []SkippedPath
}

// NoteLoader defines the interface for enumerating and reading notes.
// Implementations may read from disk, object storage, or other sources.
type NoteLoader interface {
	// Root describes where notes are discovered from.
	Root() string
	// Discover enumerates every note under the root. It fails with a
	// *DiscoveryError only when the root itself cannot be read.
	Discover(ctx context.Context) (Discovery, error)
	// GetFileText returns the content of a discovered note.
	GetFileText(ctx context.Context, file NoteFile) ([]byte, error)
	// GetSource returns the content of the note at a root-relative path.
	GetSource(ctx context.Context, relPath string) ([]byte, error)
}

// DiscoveryError reports that the corpus root could not be read. It is fatal
// to the whole build.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover notes under %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// CacheKey identifies one version of a note's content.
func CacheKey(file NoteFile) string {
	return fmt.Sprintf("%s:%d:%d", file.Path, file.Size, file.ModTime.UnixNano())
}

// NormalizeExtensions trims, dot-prefixes and de-duplicates extensions.
// An empty input yields DefaultExtensions.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]struct{}, len(exts))
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultExtensions...)
	}
	return out
}

// HasExtension reports whether name ends with one of exts.
func HasExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

// IsHidden reports whether a path segment is hidden (dot-prefixed).
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// CleanRelPath normalizes a root-relative path and rejects anything that
// would resolve outside the root.
func CleanRelPath(rel string) (string, error) {
	rel = strings.ReplaceAll(strings.TrimSpace(rel), "\\", "/")
	if rel == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathEscape)
	}
	if strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, rel)
	}
	return cleaned, nil
}
