package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"archmap/internal/pattern"
)

// Config holds the analyzer settings. Every field has a usable zero
// default, so running without a config file is fine.
type Config struct {
	// OutputDir is where documents are written, relative to the
	// analyzed project unless absolute.
	OutputDir string `yaml:"output_dir"`

	// ComponentDirs lists the subdirectories scanned as components.
	// Empty means top-level grouping: the first path segment of each
	// file names its component.
	ComponentDirs []string `yaml:"component_dirs"`

	// IgnoreDirs are skipped during crawling, on top of the built-ins.
	IgnoreDirs []string `yaml:"ignore_dirs"`

	// Patterns adds keywords to the matching rules, keyed by category.
	Patterns map[string][]string `yaml:"patterns"`

	// Workers bounds parallel per-file extraction. Zero means one
	// worker per CPU.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "analysis_results",
	}
}

// LoadConfig reads the YAML config file and applies .env plus
// environment overrides on top. A missing file is not an error; the
// defaults apply.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := DefaultConfig()

	// 2. Load YAML config
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// 3. Override with environment variables if present
	if dir := os.Getenv("ARCHMAP_OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if workers := os.Getenv("ARCHMAP_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return nil, fmt.Errorf("invalid ARCHMAP_WORKERS value %q: %w", workers, err)
		}
		cfg.Workers = n
	}

	return cfg, nil
}

// Table builds the pattern rule table with the configured keyword
// additions merged in. Unknown categories in the overlay are ignored.
func (c *Config) Table() *pattern.Table {
	t := pattern.DefaultTable()
	for cat, keywords := range c.Patterns {
		t.Extend(pattern.Category(cat), keywords...)
	}
	return t
}
