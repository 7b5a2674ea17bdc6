// Package config loads the JSON settings for the ulam CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/ulam-spiral/internal/ulam"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/ulam.defaults.json"

// UlamConfig holds the settings shared by the CLI and the HTTP server. Every
// field is optional; the Get* methods supply the default for anything the
// JSON leaves out.
type UlamConfig struct {
	// Image output
	OutputDir      *string `json:"output_dir,omitempty"`
	SymbolicSuffix *string `json:"symbolic_suffix,omitempty"`
	LiteralSuffix  *string `json:"literal_suffix,omitempty"`
	Console        *bool   `json:"console,omitempty"`
	MaxSize        *int    `json:"max_size,omitempty"`

	// Reports
	DensityPlot *bool `json:"density_plot,omitempty"`
	RingChart   *bool `json:"ring_chart,omitempty"`

	// Run history and serving
	DBPath          *string `json:"db_path,omitempty"`
	Listen          *string `json:"listen,omitempty"`
	ShutdownTimeout *string `json:"shutdown_timeout,omitempty"` // duration string like "5s"
}

func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// DefaultConfig returns a config with every field set to its default.
func DefaultConfig() *UlamConfig {
	return &UlamConfig{
		OutputDir:       ptrString(""),
		SymbolicSuffix:  ptrString("1"),
		LiteralSuffix:   ptrString("2"),
		Console:         ptrBool(true),
		MaxSize:         ptrInt(4095),
		DensityPlot:     ptrBool(false),
		RingChart:       ptrBool(false),
		DBPath:          ptrString(""),
		Listen:          ptrString(":8080"),
		ShutdownTimeout: ptrString("5s"),
	}
}

// LoadConfig loads a UlamConfig from a JSON file. The path must have a .json
// extension and the file must be at most 1MB. Fields omitted from the file
// stay nil and fall back to their defaults.
func LoadConfig(path string) (*UlamConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &UlamConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded; intended for test setup.
func MustLoadDefaultConfig() *UlamConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from cmd/ulam and internal/*
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *UlamConfig) Validate() error {
	if c.SymbolicSuffix != nil && *c.SymbolicSuffix == "" {
		return fmt.Errorf("symbolic_suffix must not be empty")
	}
	if c.LiteralSuffix != nil && *c.LiteralSuffix == "" {
		return fmt.Errorf("literal_suffix must not be empty")
	}
	if c.GetSymbolicSuffix() == c.GetLiteralSuffix() {
		return fmt.Errorf("symbolic_suffix and literal_suffix must differ, both are %q", c.GetSymbolicSuffix())
	}

	if c.MaxSize != nil {
		if *c.MaxSize < 1 || *c.MaxSize > ulam.MaxSize {
			return fmt.Errorf("max_size must be between 1 and %d, got %d", ulam.MaxSize, *c.MaxSize)
		}
	}

	if c.ShutdownTimeout != nil && *c.ShutdownTimeout != "" {
		d, err := time.ParseDuration(*c.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout '%s': %w", *c.ShutdownTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("shutdown_timeout must be non-negative, got %s", d)
		}
	}

	return nil
}

// GetOutputDir returns the output_dir value or the default (current directory).
func (c *UlamConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return ""
	}
	return *c.OutputDir
}

// GetSymbolicSuffix returns the symbolic_suffix value or the default.
func (c *UlamConfig) GetSymbolicSuffix() string {
	if c.SymbolicSuffix == nil || *c.SymbolicSuffix == "" {
		return "1"
	}
	return *c.SymbolicSuffix
}

// GetLiteralSuffix returns the literal_suffix value or the default.
func (c *UlamConfig) GetLiteralSuffix() string {
	if c.LiteralSuffix == nil || *c.LiteralSuffix == "" {
		return "2"
	}
	return *c.LiteralSuffix
}

// GetConsole returns the console value or the default.
func (c *UlamConfig) GetConsole() bool {
	if c.Console == nil {
		return true
	}
	return *c.Console
}

// GetMaxSize returns the max_size value or the default.
func (c *UlamConfig) GetMaxSize() int {
	if c.MaxSize == nil {
		return 4095
	}
	return *c.MaxSize
}

// GetDensityPlot returns the density_plot value or the default.
func (c *UlamConfig) GetDensityPlot() bool {
	if c.DensityPlot == nil {
		return false
	}
	return *c.DensityPlot
}

// GetRingChart returns the ring_chart value or the default.
func (c *UlamConfig) GetRingChart() bool {
	if c.RingChart == nil {
		return false
	}
	return *c.RingChart
}

// GetDBPath returns the db_path value or the default (no run history).
func (c *UlamConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetListen returns the listen value or the default.
func (c *UlamConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetShutdownTimeout parses and returns the ShutdownTimeout as a time.Duration.
func (c *UlamConfig) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == nil || *c.ShutdownTimeout == "" {
		return 5 * time.Second // default
	}
	d, err := time.ParseDuration(*c.ShutdownTimeout)
	if err != nil {
		return 5 * time.Second // default on parse error
	}
	return d
}
