package app

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bindgen/internal/binder"
	"bindgen/internal/config"
	"bindgen/internal/emit"
	"bindgen/internal/history"
	"bindgen/internal/registry"
	"bindgen/internal/shared/observability"
	"bindgen/internal/typeres"

	"github.com/gobwas/glob"
)

// Input is one AST document and the input root it was found under. The root
// decides where the binding file lands below the output directory.
type Input struct {
	Path string
	Root string
}

type App struct {
	Config  *config.Config
	visitor *binder.Visitor

	history *history.Store
	commit  string

	updateMu sync.RWMutex
	onUpdate func(Summary)

	// Skipped records of the latest run of each source, for the TSV export.
	skippedMu sync.Mutex
	skipped   map[string][]emit.SkippedRecord

	statusMu    sync.RWMutex
	lastRun     time.Time
	lastFailure string
}

func New(cfg *config.Config) (*App, error) {
	reg, err := registry.Build(cfg.Registry.Overrides)
	if err != nil {
		return nil, err
	}
	counts := reg.Count()
	slog.Debug("registry built",
		"emit", counts[registry.EmitBinding],
		"delegate", counts[registry.DelegateToParent],
		"ignore", counts[registry.Ignore],
		"needs_review", counts[registry.NeedsReview],
		"overrides", len(cfg.Registry.Overrides))

	visitor := binder.NewVisitor(binder.Options{
		Registry: reg,
		Normalizer: typeres.Normalizer{
			Keywords:   cfg.Naming.StripKeywords,
			Namespaces: cfg.Naming.StripNamespaces,
		},
		DeprecationMarkers: cfg.Naming.DeprecationMarkers,
		MaxDepth:           cfg.Engine.MaxDepth,
	})

	return &App{
		Config:  cfg,
		visitor: visitor,
		skipped: make(map[string][]emit.SkippedRecord),
	}, nil
}

// SetHistory enables run recording. The commit of the working directory is
// resolved once and attached to every run.
func (a *App) SetHistory(store *history.Store) {
	a.history = store
	if store != nil {
		a.commit = history.ResolveCommit(".")
	}
}

func (a *App) SetUpdateHandler(handler func(Summary)) {
	a.updateMu.Lock()
	defer a.updateMu.Unlock()
	a.onUpdate = handler
}

func (a *App) emitUpdate(summary Summary) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()
	if handler != nil {
		handler(summary)
	}
}

// ScanInputs expands paths into the AST documents below them. A path naming
// a file is taken as is, with its directory as root.
func (a *App) ScanInputs(paths []string) ([]Input, error) {
	include, err := compileGlobs("include", a.Config.Include)
	if err != nil {
		return nil, err
	}
	dirGlobs, err := compileGlobs("exclude dir", a.Config.Exclude.Dirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs("exclude file", a.Config.Exclude.Files)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var inputs []Input
	for _, root := range uniqueRoots(paths) {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat input %q: %w", root, err)
		}
		if !info.IsDir() {
			if !seen[root] {
				seen[root] = true
				inputs = append(inputs, Input{Path: root, Root: filepath.Dir(root)})
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && matchAny(dirGlobs, base) {
					return filepath.SkipDir
				}
				return nil
			}
			if !matchAny(include, base) || matchAny(fileGlobs, base) {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				inputs = append(inputs, Input{Path: path, Root: root})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Path < inputs[j].Path })
	return inputs, nil
}

func uniqueRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}

// containingRoot returns the configured root that holds path.
func containingRoot(path string, roots []string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve file path %q: %w", path, err)
	}

	best := ""
	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("resolve input path %q: %w", root, err)
		}
		rel, err := filepath.Rel(absRoot, absPath)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))) {
			if len(root) > len(best) {
				best = root
			}
		}
	}
	if best == "" {
		return "", fmt.Errorf("file %q is not under any input path", path)
	}
	return best, nil
}

func compileGlobs(field string, patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", field, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Health reports the outcome of the most recent generation.
func (a *App) Health(_ context.Context) observability.HealthStatus {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()

	status := observability.HealthStatus{Status: "up", LastRun: a.lastRun}
	if a.lastFailure != "" {
		status.Status = "degraded"
		status.LastFailure = a.lastFailure
	}
	return status
}

func (a *App) recordStatus(summary Summary) {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()

	a.lastRun = time.Now().UTC()
	a.lastFailure = ""
	for _, f := range summary.Files {
		if f.Err != nil {
			a.lastFailure = fmt.Sprintf("%s: %v", f.Source, f.Err)
			break
		}
	}
}
