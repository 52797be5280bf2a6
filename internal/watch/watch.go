package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/signalgraph/signalgraph/pkg/loader"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher reports note changes below a root directory. Events are collected
// for a debounce window and delivered as one batch of root-relative paths.
type Watcher struct {
	root     string
	exts     []string
	debounce time.Duration
	onChange func(paths []string)
	fsw      *fsnotify.Watcher
}

type NewWatcherParams struct {
	Root       string
	Extensions []string
	Debounce   time.Duration
	OnChange   func(paths []string)
}

// NewWatcher registers the root and every non-hidden directory below it.
func NewWatcher(params NewWatcherParams) (*Watcher, error) {
	if params.OnChange == nil {
		return nil, errors.New("watch: nil change callback")
	}
	root, err := filepath.Abs(params.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", params.Root, err)
	}
	debounce := params.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		root:     root,
		exts:     loader.NormalizeExtensions(params.Extensions),
		debounce: debounce,
		onChange: params.OnChange,
		fsw:      fsw,
	}
	if err := w.addDirs(root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return w, nil
}

// addDirs adds dir and its non-hidden subdirectories.
func (w *Watcher) addDirs(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			logger.Warn("[Watch] Skipping unreadable directory", "path", p, "err", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && loader.IsHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

// Run processes events until ctx is done, then closes the watcher. A batch
// pending at that point is dropped.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("[Watch] Watcher error", "err", err)
		case <-timer.C:
			w.flush(pending)
			pending = make(map[string]struct{})
		}
	}
}

// handleEvent returns the relative path of a note the event touched.
// Directories created below the root are added to the watch list.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	for _, seg := range strings.Split(rel, "/") {
		if loader.IsHidden(seg) {
			return "", false
		}
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addDirs(event.Name); err != nil {
				logger.Warn("[Watch] Failed to watch new directory", "path", event.Name, "err", err)
			}
			// Notes moved in with the directory produce no events of their own.
			return rel, true
		}
	}

	if !loader.HasExtension(filepath.Base(event.Name), w.exts) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) flush(pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	logger.Debug("[Watch] Notes changed", "count", len(paths))
	w.onChange(paths)
}
