// Package config loads and merges eprotoc.toml configuration, following the
// same root-file-plus-command-line-overrides merge pattern the generator
// this project is descended from uses for its own .sidekick.toml.
package config

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the full set of parameters that affect a compile: which
// strategy to generate for, where sources and output live, and diagnostic
// report options.
type Config struct {
	General GeneralConfig `toml:"general"`
	Report  ReportConfig  `toml:"report,omitempty"`
}

// GeneralConfig mirrors the command-line flags so either a root
// eprotoc.toml or flag overrides can supply them.
type GeneralConfig struct {
	SourceDir string `toml:"source-dir,omitempty"`
	OutputDir string `toml:"output-dir,omitempty"`
	Gen       string `toml:"gen,omitempty"`
}

// ReportConfig controls the optional human-readable diagnostics dump.
type ReportConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Path    string `toml:"path,omitempty"`
}

// Load reads filename if present (ignoring a missing file) and merges it
// with overrides, where overrides wins on every field it sets non-zero.
func Load(filename string, overrides *Config) (*Config, error) {
	root := &Config{}
	if contents, err := os.ReadFile(filename); err == nil {
		if err := toml.Unmarshal(contents, root); err != nil {
			return nil, fmt.Errorf("error reading configuration %s: %w", filename, err)
		}
	}
	return merge(root, overrides), nil
}

func merge(root, local *Config) *Config {
	merged := &Config{General: root.General, Report: root.Report}
	if local.General.SourceDir != "" {
		merged.General.SourceDir = local.General.SourceDir
	}
	if local.General.OutputDir != "" {
		merged.General.OutputDir = local.General.OutputDir
	}
	if local.General.Gen != "" {
		merged.General.Gen = local.General.Gen
	}
	if local.Report.Enabled {
		merged.Report.Enabled = true
	}
	if local.Report.Path != "" {
		merged.Report.Path = local.Report.Path
	}
	return merged
}
