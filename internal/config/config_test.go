package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToOverrides(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), &Config{
		General: GeneralConfig{SourceDir: "src", OutputDir: "out", Gen: "native"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.SourceDir != "src" || cfg.General.OutputDir != "out" || cfg.General.Gen != "native" {
		t.Errorf("want overrides to pass through untouched, got %+v", cfg.General)
	}
}

func TestLoadMergesFileValuesWhenOverrideIsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eprotoc.toml")
	contents := `[general]
gen = "evolved"

[report]
enabled = true
path = "diagnostics.html"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, &Config{General: GeneralConfig{SourceDir: "src", OutputDir: "out"}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.Gen != "evolved" {
		t.Errorf("want the file's gen to fill the zero-valued override, got %q", cfg.General.Gen)
	}
	if !cfg.Report.Enabled || cfg.Report.Path != "diagnostics.html" {
		t.Errorf("want report settings from the file, got %+v", cfg.Report)
	}
}

func TestLoadOverrideWinsOverFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eprotoc.toml")
	if err := os.WriteFile(path, []byte(`[general]
gen = "evolved"
`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, &Config{General: GeneralConfig{Gen: "skip"}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.Gen != "skip" {
		t.Errorf("want the override to win over the file, got %q", cfg.General.Gen)
	}
}
