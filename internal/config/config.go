// Package config loads fieldsheet configuration.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables (FIELDSHEET_*)
//  3. Config file (.fieldsheet.yaml in the working directory or $HOME, or --config)
//  4. Built-in defaults
//
// Nested keys map to environment variables with underscores, for example
// output.log_file is FIELDSHEET_OUTPUT_LOG_FILE. List values accept a
// comma-separated string (FIELDSHEET_SOURCE_IGNORE="target/**,build/**").
package config

import (
	"github.com/mvp-joe/project-fieldsheet/internal/diag"
	"github.com/mvp-joe/project-fieldsheet/internal/sheet"
)

// Config represents the complete fieldsheet configuration.
type Config struct {
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Sheet  SheetConfig  `yaml:"sheet" mapstructure:"sheet"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Jobs   int          `yaml:"jobs" mapstructure:"jobs"` // workbooks built in parallel
}

// SourceConfig defines which files are read.
type SourceConfig struct {
	Extension string   `yaml:"extension" mapstructure:"extension"` // stripped from file names to form sheet names
	Include   []string `yaml:"include" mapstructure:"include"`     // glob patterns for source files
	Ignore    []string `yaml:"ignore" mapstructure:"ignore"`       // glob patterns pruned from traversal
}

// SheetConfig controls sheet layout.
type SheetConfig struct {
	Headers []string `yaml:"headers" mapstructure:"headers"` // field name, type, default value, comment
}

// OutputConfig controls written files.
type OutputConfig struct {
	Extension string `yaml:"extension" mapstructure:"extension"` // workbook extension in tree mode
	LogFile   string `yaml:"log_file" mapstructure:"log_file"`   // diagnostic log path
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Extension: ".java",
			Include:   []string{"**/*.java"},
			Ignore:    []string{},
		},
		Sheet: SheetConfig{
			Headers: append([]string(nil), sheet.DefaultHeader[:]...),
		},
		Output: OutputConfig{
			Extension: ".xlsx",
			LogFile:   diag.DefaultLogFile,
		},
		Jobs: 1,
	}
}

// Header returns the sheet header row. It assumes a validated config.
func (c *Config) Header() sheet.Header {
	var h sheet.Header
	copy(h[:], c.Sheet.Headers)
	return h
}
