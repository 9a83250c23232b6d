// Package config loads and saves the compiler's TOML settings file: a
// nested, toml-tagged struct with a DefaultConfig constructor and
// platform-aware Load/Save helpers.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every setting impc reads at startup (spec.md's ambient
// stack §5): compile-time conventions, execution limits, and the
// trace/statistics/debugger toggles the CLI driver exposes as flags.
type Config struct {
	Compile struct {
		ScratchRegisters string `toml:"scratch_registers"` // "a..h", fixed by convention
		WarnOnSaturate   bool   `toml:"warn_on_saturating_subtract"`
	} `toml:"compile"`

	Execution struct {
		MaxCycles   uint64 `toml:"max_cycles"`
		MemoryCells uint64 `toml:"memory_cells"`
	} `toml:"execution"`

	Trace struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
	} `toml:"trace"`

	Statistics struct {
		Enabled    bool   `toml:"enabled"`
		OutputFile string `toml:"output_file"`
		Format     string `toml:"format"` // json, csv
	} `toml:"statistics"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowRegisters bool `toml:"show_registers"`
	} `toml:"debugger"`
}

// DefaultConfig returns a Config with the values impc runs with when no
// config file is present.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compile.ScratchRegisters = "a..h"
	cfg.Compile.WarnOnSaturate = true

	cfg.Execution.MaxCycles = 1_000_000
	cfg.Execution.MemoryCells = 1 << 20

	cfg.Trace.Enabled = false
	cfg.Trace.OutputFile = "trace.log"

	cfg.Statistics.Enabled = false
	cfg.Statistics.OutputFile = "stats.json"
	cfg.Statistics.Format = "json"

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowRegisters = true

	return cfg
}

// GetConfigPath returns the platform-specific path impc.toml lives at.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "impc")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "impc.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "impc")

	default:
		return "impc.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "impc.toml"
	}
	return filepath.Join(configDir, "impc.toml")
}

// Load reads the default config file, falling back to DefaultConfig if
// it does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads the config file at path, falling back to DefaultConfig
// if it does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes c to the default config file path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes c as TOML to path, creating its parent directory if needed.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
