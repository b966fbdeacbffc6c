// # internal/watcher/watcher.go
package watcher

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"bindgen/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Options selects which files under the watched roots produce change batches.
type Options struct {
	Debounce     time.Duration
	Include      []string
	ExcludeDirs  []string
	ExcludeFiles []string
}

// Watcher reports debounced batches of changed AST documents.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	include      []glob.Glob
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	onChange     func([]string)
	callbackMu   sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
	done      chan struct{}
}

func New(opts Options, onChange func([]string)) (*Watcher, error) {
	include, err := compileAll(opts.Include)
	if err != nil {
		return nil, err
	}
	excludeDirs, err := compileAll(opts.ExcludeDirs)
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileAll(opts.ExcludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:    fsw,
		debounce:     opts.Debounce,
		include:      include,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
		onChange:     onChange,
		pending:      make(map[string]struct{}),
		done:         make(chan struct{}),
	}, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile watch pattern %q: %w", pattern, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		if err := w.watchRecursive(path); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			if w.shouldExcludeDir(event.Name) {
				return
			}
			if err := w.watchRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
				return
			}
			w.enqueueExistingFiles(event.Name)
			return
		}
	}

	if !w.accepts(event.Name) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
		w.scheduleChange(event.Name)
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)
	observability.WatcherEventsTotal.Inc()

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

// accepts reports whether a file change should be forwarded. With no include
// patterns every non-excluded file is accepted.
func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return false
		}
	}
	if len(w.include) == 0 {
		return true
	}
	for _, g := range w.include {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()

	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.accepts(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}
