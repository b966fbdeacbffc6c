package app

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"bindgen/internal/assemble"
	"bindgen/internal/ast"
	"bindgen/internal/binder"
	bgerrors "bindgen/internal/core/errors"
	"bindgen/internal/emit"
	"bindgen/internal/history"
	"bindgen/internal/output"
	"bindgen/internal/shared/observability"
	"bindgen/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// FileResult is the outcome of generating one binding file.
type FileResult struct {
	Source    string
	Output    string
	Header    string
	Fragments int
	Skipped   []emit.SkippedRecord
	Duration  time.Duration
	Err       error
}

type Summary struct {
	Files    []FileResult
	Duration time.Duration
}

func (s Summary) Generated() int {
	n := 0
	for _, f := range s.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

func (s Summary) Failed() []FileResult {
	var out []FileResult
	for _, f := range s.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// SkippedByReason totals the skipped records of every successful file.
func (s Summary) SkippedByReason() map[emit.Reason]int {
	counts := make(map[emit.Reason]int)
	for _, f := range s.Files {
		for reason, n := range emit.CountByReason(f.Skipped) {
			counts[reason] += n
		}
	}
	return counts
}

// GenerateFile loads one AST document, binds it and writes the assembled
// module below the output directory.
func (a *App) GenerateFile(ctx context.Context, in Input) FileResult {
	ctx, span := observability.Tracer.Start(ctx, "bindgen.generate_file")
	defer span.End()
	span.SetAttributes(attribute.String("bindgen.source", in.Path))

	start := time.Now()
	res := FileResult{
		Source: in.Path,
		Output: output.BindingPath(a.Config.Output.Dir, in.Root, in.Path, a.Config.Output.Extension),
	}

	err := a.generate(ctx, in, &res)
	res.Duration = time.Since(start)
	if err != nil {
		err = bgerrors.AddContext(err, bgerrors.CtxPath, in.Path)
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.GenerateFailuresTotal.WithLabelValues(string(bgerrors.CodeOf(err))).Inc()
		slog.Warn("failed to generate bindings", "path", in.Path, "error", err)
	} else {
		observability.FilesGeneratedTotal.Inc()
		observability.FragmentsEmittedTotal.Add(float64(res.Fragments))
		for reason, n := range emit.CountByReason(res.Skipped) {
			observability.SkippedNodesTotal.WithLabelValues(string(reason)).Add(float64(n))
		}
		span.SetAttributes(
			attribute.Int("bindgen.fragments", res.Fragments),
			attribute.Int("bindgen.skipped", len(res.Skipped)),
		)
		slog.Debug("generated bindings", "path", in.Path, "output", res.Output, "fragments", res.Fragments, "skipped", len(res.Skipped))

		a.skippedMu.Lock()
		a.skipped[in.Path] = res.Skipped
		a.skippedMu.Unlock()
	}

	a.recordRun(start, res)
	return res
}

func (a *App) generate(ctx context.Context, in Input, res *FileResult) error {
	var root *ast.Node
	if err := timeStage(ctx, "load", func() error {
		var err error
		root, err = ast.Load(in.Path)
		return err
	}); err != nil {
		return err
	}

	var bound *binder.Result
	if err := timeStage(ctx, "bind", func() error {
		var err error
		bound, err = a.visitor.Generate(root)
		return err
	}); err != nil {
		return err
	}
	if bound.Header == "" {
		bound.Header = util.ReplaceExt(filepath.Base(in.Path), ".h")
	}
	res.Header = bound.Header
	res.Fragments = len(bound.Fragments)
	res.Skipped = bound.Skipped

	var lines []string
	if err := timeStage(ctx, "assemble", func() error {
		var inclusions []string
		if a.Config.Module.EmitInclusions {
			var err error
			inclusions, err = assemble.FilterInclusions(bound.Inclusions, a.Config.Module.InclusionAllow, a.Config.Module.InclusionBlock)
			if err != nil {
				return err
			}
		}
		var err error
		lines, err = assemble.Assemble(bound, assemble.Options{
			Module:     a.Config.Module.Name,
			Preamble:   a.Config.Module.Preamble,
			Inclusions: inclusions,
		})
		return err
	}); err != nil {
		return err
	}

	return timeStage(ctx, "write", func() error {
		return output.WriteBinding(res.Output, lines)
	})
}

func timeStage(ctx context.Context, stage string, fn func() error) error {
	_, span := observability.Tracer.Start(ctx, "bindgen."+stage)
	defer span.End()

	start := time.Now()
	err := fn()
	observability.GenerateDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// GenerateAll generates every input with at most Engine.Workers files in
// flight. A failing file does not stop the others; only cancellation of ctx
// is returned as an error.
func (a *App) GenerateAll(ctx context.Context, inputs []Input) (Summary, error) {
	start := time.Now()
	results := make([]FileResult, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.Config.Engine.Workers))
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.GenerateFile(gctx, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Files: results, Duration: time.Since(start)}
	a.finishBatch(summary)
	return summary, nil
}

func (a *App) finishBatch(summary Summary) {
	if err := a.WriteReports(); err != nil {
		slog.Error("failed to write skipped report", "error", err)
	}
	a.recordStatus(summary)
	a.emitUpdate(summary)
}

// WriteReports exports the skipped records of the latest run of every
// source to the configured TSV file and markdown marker block.
func (a *App) WriteReports() error {
	tsvPath := a.Config.Output.SkippedTSV
	mdPath := a.Config.Output.ReportMarkdown
	if tsvPath == "" && mdPath == "" {
		return nil
	}
	rows := a.skippedRows()

	if tsvPath != "" {
		content, err := output.NewTSVGenerator(rows).Generate()
		if err != nil {
			return err
		}
		if err := util.WriteFileAtomic(tsvPath, []byte(content), 0o644); err != nil {
			return err
		}
	}
	if mdPath != "" {
		if err := output.InjectReport(mdPath, a.Config.Output.ReportMarker, output.SkippedMarkdown(rows)); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) skippedRows() []output.SkippedRow {
	a.skippedMu.Lock()
	defer a.skippedMu.Unlock()

	var rows []output.SkippedRow
	for _, source := range util.SortedStringKeys(a.skipped) {
		for _, rec := range a.skipped[source] {
			rows = append(rows, output.SkippedRow{Source: source, SkippedRecord: rec})
		}
	}
	return rows
}

func (a *App) recordRun(start time.Time, res FileResult) {
	if a.history == nil {
		return
	}

	run := history.Run{
		ProjectKey:    a.Config.History.ProjectKey,
		Source:        res.Source,
		Module:        a.Config.Module.Name,
		Header:        res.Header,
		CommitHash:    a.commit,
		StartedAt:     start.UTC(),
		Duration:      res.Duration,
		FragmentCount: res.Fragments,
		Status:        history.StatusOK,
	}
	skipped := res.Skipped
	if res.Err != nil {
		run.Status = history.StatusFailed
		run.ErrorCode = string(bgerrors.CodeOf(res.Err))
		skipped = nil
	}
	if err := a.history.SaveRun(run, skipped); err != nil {
		slog.Warn("failed to record history", "path", res.Source, "error", err)
	}
}
