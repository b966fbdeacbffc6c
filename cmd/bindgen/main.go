// # cmd/bindgen/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bindgen/internal/app"
	"bindgen/internal/config"
	"bindgen/internal/history"
	"bindgen/internal/shared/observability"
)

var (
	configPath = flag.String("config", defaultConfigPath, "Path to config file")
	once       = flag.Bool("once", false, "Generate once and exit (default unless -watch)")
	watch      = flag.Bool("watch", false, "Keep regenerating bindings when AST documents change")
	ui         = flag.Bool("ui", false, "Show a terminal UI while watching")
	moduleName = flag.String("module", "", "Override the Python module name")
	outDir     = flag.String("out", "", "Override the output directory")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const (
	VERSION           = "0.3.0"
	defaultConfigPath = "./bindgen.toml"
	exampleConfigPath = "./bindgen.example.toml"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("bindgen v%s\n", VERSION)
		os.Exit(0)
	}
	if *once && *watch {
		fmt.Fprintln(os.Stderr, "-once and -watch cannot be used together")
		os.Exit(2)
	}
	if *ui && !*watch {
		fmt.Fprintln(os.Stderr, "-ui requires -watch")
		os.Exit(2)
	}

	os.Exit(start())
}

// start owns the process resources so their deferred cleanup runs before
// main exits.
func start() int {
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	var logOutput io.Writer = os.Stdout
	if *ui {
		// Keep log lines out of the alternate screen.
		if f, err := openLogFile(resolveLogPath()); err == nil {
			defer f.Close()
			logOutput = f
		} else {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			logOutput = io.Discard
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: logLevel})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	applyFlags(cfg, flag.Args())
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg)
}

func run(ctx context.Context, cfg *config.Config) int {
	shutdownTracing, err := observability.InitTracer(ctx, observability.TracingOptions{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     VERSION,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			slog.Error("failed to open history", "path", cfg.History.Path, "error", err)
			return 1
		}
		defer store.Close()
		a.SetHistory(store)
	}

	if cfg.Metrics.Address != "" {
		srv := observability.NewServer(cfg.Metrics.Address, a.Health).WithVersion(VERSION)
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start metrics server", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Stop(stopCtx)
		}()
	}

	inputs, err := a.ScanInputs(cfg.InputPaths)
	if err != nil {
		slog.Error("failed to scan inputs", "error", err)
		return 1
	}
	slog.Info("generating bindings", "documents", len(inputs), "module", cfg.Module.Name, "out", cfg.Output.Dir)

	summary, err := a.GenerateAll(ctx, inputs)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		slog.Error("generation failed", "error", err)
		return 1
	}

	if !*ui {
		fmt.Print(renderSummary(summary, topSkipped(store, cfg.History.ProjectKey)))
	}

	if !*watch {
		if len(summary.Failed()) > 0 {
			return 1
		}
		return 0
	}

	if *ui {
		if err := runUI(ctx, a, cfg.InputPaths, summary); err != nil {
			slog.Error("failed to run UI", "error", err)
			return 1
		}
		return 0
	}

	a.SetUpdateHandler(func(s app.Summary) {
		fmt.Print(renderSummary(s, topSkipped(store, cfg.History.ProjectKey)))
	})
	if err := a.Watch(ctx, cfg.InputPaths); err != nil {
		slog.Error("watch failed", "error", err)
		return 1
	}
	return 0
}

// loadConfig reads path. When the default file is missing it tries the
// example config and then falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path != defaultConfigPath || !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg, err = config.Load(exampleConfigPath)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	slog.Debug("no config file found, using defaults")
	return config.Default(), nil
}

func applyFlags(cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.InputPaths = args
	}
	if *moduleName != "" {
		cfg.Module.Name = *moduleName
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
}

func topSkipped(store *history.Store, projectKey string) []history.KindCount {
	if store == nil {
		return nil
	}
	top, err := store.TopSkippedKinds(projectKey, 5)
	if err != nil {
		slog.Warn("failed to load skipped kinds", "error", err)
		return nil
	}
	return top
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bindgen", "bindgen.log")
	}
	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "bindgen", "bindgen.log")
	}
	return "bindgen.log"
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir for %s: %w", path, err)
	}
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("refusing to write logs to symlink path %s", path)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}
