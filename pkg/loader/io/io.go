package io

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/signalgraph/signalgraph/pkg/loader"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// IONoteLoader discovers and reads notes directly from the local filesystem
// with content caching.
type IONoteLoader struct {
	root string
	exts []string

	cache   map[string][]byte
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewIONoteLoaderParams configures an IONoteLoader. Extensions defaults to
// loader.DefaultExtensions.
type NewIONoteLoaderParams struct {
	Root       string
	Extensions []string
}

// NewIONoteLoader creates a new filesystem-based note loader rooted at
// params.Root. The root is resolved to an absolute path but not checked for
// existence; a missing root surfaces on Discover.
func NewIONoteLoader(params NewIONoteLoaderParams) (*IONoteLoader, error) {
	root := params.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}
	return &IONoteLoader{
		root:  abs,
		exts:  loader.NormalizeExtensions(params.Extensions),
		cache: make(map[string][]byte),
	}, nil
}

// Root returns the absolute corpus root.
func (l *IONoteLoader) Root() string {
	return l.root
}

// Discover walks the root recursively. Hidden entries below the root are
// ignored and symlinked directories are not followed. Symlinked files are
// included only when their target lies inside the root. Subdirectories that
// cannot be read and escaping symlinks are reported in Discovery.Skipped.
func (l *IONoteLoader) Discover(ctx context.Context) (loader.Discovery, error) {
	result := loader.Discovery{Root: l.root}

	info, err := os.Stat(l.root)
	if err != nil {
		return result, &loader.DiscoveryError{Root: l.root, Err: err}
	}
	if !info.IsDir() {
		return result, &loader.DiscoveryError{Root: l.root, Err: errors.New("not a directory")}
	}
	realRoot, err := filepath.EvalSymlinks(l.root)
	if err != nil {
		return result, &loader.DiscoveryError{Root: l.root, Err: err}
	}

	err = filepath.WalkDir(realRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if p == realRoot {
				return &loader.DiscoveryError{Root: l.root, Err: walkErr}
			}
			l.skip(&result, realRoot, p, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if p == realRoot {
			return nil
		}
		if loader.IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !loader.HasExtension(d.Name(), l.exts) {
			return nil
		}

		var fi fs.FileInfo
		if d.Type()&fs.ModeSymlink != 0 {
			var target string
			target, err = filepath.EvalSymlinks(p)
			if err == nil && !within(realRoot, target) {
				err = fmt.Errorf("%w: symlink to %s", loader.ErrPathEscape, target)
			}
			if err == nil {
				fi, err = os.Stat(target)
			}
		} else {
			fi, err = d.Info()
		}
		if err != nil {
			l.skip(&result, realRoot, p, err)
			return nil
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(realRoot, p)
		if err != nil {
			l.skip(&result, realRoot, p, err)
			return nil
		}
		result.Files = append(result.Files, loader.NoteFile{
			Path:    p,
			RelPath: filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
			Loader:  l,
		})
		return nil
	})
	if err != nil {
		return result, err
	}

	l.prune(result.Files)
	return result, nil
}

func (l *IONoteLoader) skip(result *loader.Discovery, root, p string, err error) {
	rel, relErr := filepath.Rel(root, p)
	if relErr != nil {
		rel = p
	}
	rel = filepath.ToSlash(rel)
	logger.Warn("Skipping unreadable path", "path", rel, "err", err)
	result.Skipped = append(result.Skipped, loader.SkippedPath{Path: rel, Reason: err.Error()})
}

// prune drops cached content for notes that are no longer current.
func (l *IONoteLoader) prune(files []loader.NoteFile) {
	live := make(map[string]struct{}, len(files))
	for _, f := range files {
		live[loader.CacheKey(f)] = struct{}{}
	}

	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	for key := range l.cache {
		if _, ok := live[key]; !ok {
			delete(l.cache, key)
		}
	}
}

// GetFileText reads the note content from the filesystem. Results are cached
// per path, size and modification time.
func (l *IONoteLoader) GetFileText(ctx context.Context, file loader.NoteFile) ([]byte, error) {
	key := loader.CacheKey(file)

	l.cacheMu.RLock()
	if cached, ok := l.cache[key]; ok {
		l.cacheMu.RUnlock()
		return cached, nil
	}
	l.cacheMu.RUnlock()

	result, err, _ := l.group.Do(key, func() (any, error) {
		l.cacheMu.RLock()
		if cached, ok := l.cache[key]; ok {
			l.cacheMu.RUnlock()
			return cached, nil
		}
		l.cacheMu.RUnlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := os.ReadFile(file.Path)
		if err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[key] = content
		l.cacheMu.Unlock()

		return content, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}

// GetSource reads the file at a root-relative path. Paths resolving outside
// the root, symlinks included, fail with loader.ErrPathEscape, missing files
// with loader.ErrNotFound.
func (l *IONoteLoader) GetSource(ctx context.Context, relPath string) ([]byte, error) {
	full, err := l.safePath(relPath)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	real, err := l.resolve(full, relPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(real)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", loader.ErrNotFound, relPath)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", loader.ErrNotFound, relPath)
	}

	return os.ReadFile(real)
}

// resolve follows symlinks in full and checks the target against the
// resolved root.
func (l *IONoteLoader) resolve(full, relPath string) (string, error) {
	realRoot, err := filepath.EvalSymlinks(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", loader.ErrNotFound, relPath)
		}
		return "", err
	}
	real, err := filepath.EvalSymlinks(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", loader.ErrNotFound, relPath)
		}
		return "", err
	}
	if !within(realRoot, real) {
		return "", fmt.Errorf("%w: %s", loader.ErrPathEscape, relPath)
	}
	return real, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// safePath resolves relPath against the root and validates it stays within
// the root boundary.
func (l *IONoteLoader) safePath(relPath string) (string, error) {
	cleaned, err := loader.CleanRelPath(relPath)
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(l.root, filepath.FromSlash(cleaned)))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	prefix := l.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(full, prefix) {
		return "", fmt.Errorf("%w: %s", loader.ErrPathEscape, relPath)
	}
	return full, nil
}
