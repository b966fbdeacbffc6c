package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"bindgen/internal/output"
	"bindgen/internal/shared/observability"
	"bindgen/internal/shared/util"
	"bindgen/internal/watcher"
)

// Watch regenerates bindings whenever AST documents below roots change. It
// blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context, roots []string) error {
	limiter := util.NewLimiter(a.Config.Watch.MaxPerSecond, a.Config.Watch.Burst)
	batches := make(chan []string, 16)

	w, err := watcher.New(watcher.Options{
		Debounce:     a.Config.Watch.Debounce,
		Include:      a.Config.Include,
		ExcludeDirs:  a.Config.Exclude.Dirs,
		ExcludeFiles: a.Config.Exclude.Files,
	}, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(roots); err != nil {
		return err
	}
	slog.Info("watching for AST changes", "paths", roots)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-batches:
			waited, err := limiter.Throttle(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return nil
				}
				return err
			}
			if waited {
				observability.WatcherThrottledTotal.Inc()
			}
			a.HandleChanges(ctx, roots, paths)
		}
	}
}

// HandleChanges regenerates the bindings of changed documents and removes
// the bindings of deleted ones.
func (a *App) HandleChanges(ctx context.Context, roots, paths []string) Summary {
	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	var inputs []Input
	for _, path := range paths {
		root, err := containingRoot(path, roots)
		if err != nil {
			slog.Warn("ignoring change outside input paths", "path", path, "error", err)
			continue
		}
		in := Input{Path: path, Root: root}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.removeBinding(in)
			continue
		}
		inputs = append(inputs, in)
	}

	summary, err := a.GenerateAll(ctx, inputs)
	if err != nil {
		slog.Warn("regeneration interrupted", "error", err)
		return Summary{Duration: time.Since(start)}
	}
	summary.Duration = time.Since(start)
	return summary
}

func (a *App) removeBinding(in Input) {
	a.skippedMu.Lock()
	delete(a.skipped, in.Path)
	a.skippedMu.Unlock()

	target := output.BindingPath(a.Config.Output.Dir, in.Root, in.Path, a.Config.Output.Extension)
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove stale binding", "path", target, "error", err)
		return
	}
	slog.Info("removed binding for deleted document", "source", in.Path, "output", target)
}
