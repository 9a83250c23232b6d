package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Compile.ScratchRegisters != "a..h" {
		t.Errorf("Expected ScratchRegisters=a..h, got %s", cfg.Compile.ScratchRegisters)
	}
	if !cfg.Compile.WarnOnSaturate {
		t.Error("Expected WarnOnSaturate=true")
	}

	if cfg.Execution.MaxCycles != 1_000_000 {
		t.Errorf("Expected MaxCycles=1000000, got %d", cfg.Execution.MaxCycles)
	}
	if cfg.Execution.MemoryCells == 0 {
		t.Error("Expected MemoryCells to be non-zero")
	}

	if cfg.Trace.Enabled {
		t.Error("Expected Trace.Enabled=false by default")
	}
	if cfg.Statistics.Format != "json" {
		t.Errorf("Expected Statistics.Format=json, got %s", cfg.Statistics.Format)
	}

	if cfg.Debugger.HistorySize != 1000 {
		t.Errorf("Expected HistorySize=1000, got %d", cfg.Debugger.HistorySize)
	}
	if !cfg.Debugger.ShowRegisters {
		t.Error("Expected ShowRegisters=true")
	}
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Execution.MaxCycles != DefaultConfig().Execution.MaxCycles {
		t.Errorf("expected default MaxCycles, got %d", cfg.Execution.MaxCycles)
	}
}

func TestSaveToThenLoadFrom_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "impc.toml")

	cfg := DefaultConfig()
	cfg.Execution.MaxCycles = 42
	cfg.Trace.Enabled = true
	cfg.Trace.OutputFile = "custom.log"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Execution.MaxCycles != 42 {
		t.Errorf("got MaxCycles=%d, want 42", loaded.Execution.MaxCycles)
	}
	if !loaded.Trace.Enabled {
		t.Error("expected Trace.Enabled=true after round trip")
	}
	if loaded.Trace.OutputFile != "custom.log" {
		t.Errorf("got Trace.OutputFile=%s, want custom.log", loaded.Trace.OutputFile)
	}
}

func TestGetConfigPath_EndsInImpcToml(t *testing.T) {
	path := GetConfigPath()
	if filepath.Base(path) != "impc.toml" {
		t.Errorf("expected config path to end in impc.toml, got %s", path)
	}
}
