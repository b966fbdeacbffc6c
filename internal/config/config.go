// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"bindgen/internal/registry"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

const CurrentVersion = 1

type Config struct {
	Version    int      `toml:"version"`
	InputPaths []string `toml:"input_paths"`
	Include    []string `toml:"include"` // AST file name patterns
	Module     Module   `toml:"module"`
	Naming     Naming   `toml:"naming"`
	Registry   Registry `toml:"registry"`
	Engine     Engine   `toml:"engine"`
	Output     Output   `toml:"output"`
	Exclude    Exclude  `toml:"exclude"`
	Watch      Watch    `toml:"watch"`
	History    History  `toml:"history"`
	Metrics    Metrics  `toml:"metrics"`
	Tracing    Tracing  `toml:"tracing"`
}

type Module struct {
	Name           string   `toml:"name"`
	Preamble       []string `toml:"preamble"`
	EmitInclusions bool     `toml:"emit_inclusions"`
	InclusionAllow []string `toml:"inclusion_allow"`
	InclusionBlock []string `toml:"inclusion_block"`
}

type Naming struct {
	StripKeywords      []string `toml:"strip_keywords"`
	StripNamespaces    []string `toml:"strip_namespaces"`
	DeprecationMarkers []string `toml:"deprecation_markers"`
}

type Registry struct {
	Overrides map[string]string `toml:"overrides"` // kind name -> ignore|delegate|needs_review
}

type Engine struct {
	MaxDepth int `toml:"max_depth"`
	Workers  int `toml:"workers"`
}

type Output struct {
	Dir        string `toml:"dir"`
	Extension  string `toml:"extension"`
	SkippedTSV string `toml:"skipped_tsv"`
	// ReportMarkdown names a markdown file whose marker block receives the
	// skipped-node review table after every run.
	ReportMarkdown string `toml:"report_markdown"`
	ReportMarker   string `toml:"report_marker"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce     time.Duration `toml:"debounce"`
	MaxPerSecond float64       `toml:"max_per_second"`
	Burst        int           `toml:"burst"`
}

type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Metrics struct {
	Address string `toml:"address"`
}

// Tracing exports spans over OTLP/gRPC when an endpoint is set.
type Tracing struct {
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if len(cfg.InputPaths) == 0 {
		cfg.InputPaths = []string{"json"}
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"*.json"}
	}

	if strings.TrimSpace(cfg.Module.Name) == "" {
		cfg.Module.Name = "pcl"
	}

	if cfg.Naming.StripKeywords == nil {
		cfg.Naming.StripKeywords = []string{"struct "}
	}
	if cfg.Naming.StripNamespaces == nil {
		cfg.Naming.StripNamespaces = []string{"pcl::"}
	}
	if cfg.Naming.DeprecationMarkers == nil {
		cfg.Naming.DeprecationMarkers = []string{"PCL_DEPRECATED"}
	}

	if cfg.Engine.MaxDepth == 0 {
		cfg.Engine.MaxDepth = 512
	}
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = 4
	}

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = "pybind11-gen"
	}
	if strings.TrimSpace(cfg.Output.Extension) == "" {
		cfg.Output.Extension = ".cpp"
	}
	if strings.TrimSpace(cfg.Output.ReportMarker) == "" {
		cfg.Output.ReportMarker = "skipped"
	}

	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxPerSecond == 0 {
		cfg.Watch.MaxPerSecond = 2
	}
	if cfg.Watch.Burst == 0 {
		cfg.Watch.Burst = 4
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/history.db"
	}
	if strings.TrimSpace(cfg.History.ProjectKey) == "" {
		cfg.History.ProjectKey = "default"
	}

	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "bindgen"
	}
}

func Validate(cfg *Config) error {
	if cfg.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}
	if err := validateModule(&cfg.Module); err != nil {
		return err
	}
	if err := validatePatterns("include", cfg.Include); err != nil {
		return err
	}
	if err := validatePatterns("exclude.dirs", cfg.Exclude.Dirs); err != nil {
		return err
	}
	if err := validatePatterns("exclude.files", cfg.Exclude.Files); err != nil {
		return err
	}
	if err := validateEngine(&cfg.Engine); err != nil {
		return err
	}
	if err := validateOutput(&cfg.Output); err != nil {
		return err
	}
	if err := validateWatch(&cfg.Watch); err != nil {
		return err
	}
	if _, err := registry.Build(cfg.Registry.Overrides); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	return nil
}

func validateModule(m *Module) error {
	if !moduleNamePattern.MatchString(m.Name) {
		return fmt.Errorf("module.name %q is not a valid identifier", m.Name)
	}
	if err := validatePatterns("module.inclusion_allow", m.InclusionAllow); err != nil {
		return err
	}
	return validatePatterns("module.inclusion_block", m.InclusionBlock)
}

func validateEngine(e *Engine) error {
	if e.MaxDepth < 0 {
		return fmt.Errorf("engine.max_depth must be >= 0, got %d", e.MaxDepth)
	}
	if e.Workers < 1 {
		return fmt.Errorf("engine.workers must be >= 1, got %d", e.Workers)
	}
	return nil
}

func validateOutput(o *Output) error {
	if !strings.HasPrefix(o.Extension, ".") {
		return fmt.Errorf("output.extension %q must start with '.'", o.Extension)
	}
	return nil
}

func validateWatch(w *Watch) error {
	if w.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if w.MaxPerSecond < 0 {
		return fmt.Errorf("watch.max_per_second must not be negative")
	}
	if w.Burst < 1 {
		return fmt.Errorf("watch.burst must be >= 1, got %d", w.Burst)
	}
	return nil
}

func validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %w", field, p, err)
		}
	}
	return nil
}
