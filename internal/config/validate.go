package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/project-fieldsheet/internal/sheet"
)

var (
	// ErrInvalidExtension indicates a file extension without a leading dot
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrEmptyInclude indicates no include patterns
	ErrEmptyInclude = errors.New("empty include patterns")

	// ErrInvalidHeaders indicates a header row that is not four non-empty labels
	ErrInvalidHeaders = errors.New("invalid sheet headers")

	// ErrEmptyLogFile indicates a missing diagnostic log path
	ErrEmptyLogFile = errors.New("empty log file")

	// ErrInvalidJobs indicates a non-positive worker count
	ErrInvalidJobs = errors.New("invalid jobs")
)

// workbookExtensions lists the workbook formats excelize writes as xlsx containers.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateSource(&cfg.Source); err != nil {
		errs = append(errs, err)
	}

	if err := validateSheet(&cfg.Sheet); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if cfg.Jobs < 1 {
		errs = append(errs, fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalidJobs, cfg.Jobs))
	}

	return joinErrors(errs)
}

func validateSource(cfg *SourceConfig) error {
	var errs []error

	if !strings.HasPrefix(cfg.Extension, ".") || len(cfg.Extension) < 2 {
		errs = append(errs, fmt.Errorf("%w: source extension must start with '.', got '%s'", ErrInvalidExtension, cfg.Extension))
	}

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: '%s': %v", ErrInvalidPattern, pattern, err))
			continue
		}
		if !bracesBalanced(pattern) {
			errs = append(errs, fmt.Errorf("%w: '%s': unbalanced braces", ErrInvalidPattern, pattern))
		}
	}

	return joinErrors(errs)
}

// bracesBalanced reports whether every '{' in pattern has a matching '}'.
// glob.Compile accepts "{a,b" as a literal. Escaped braces are ignored.
func bracesBalanced(pattern string) bool {
	depth := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return false
			}
			depth--
		}
	}
	return depth == 0
}

func validateSheet(cfg *SheetConfig) error {
	if len(cfg.Headers) != sheet.ColumnCount {
		return fmt.Errorf("%w: expected %d labels, got %d", ErrInvalidHeaders, sheet.ColumnCount, len(cfg.Headers))
	}
	for i, h := range cfg.Headers {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("%w: label %d is empty", ErrInvalidHeaders, i+1)
		}
	}
	return nil
}

func validateOutput(cfg *OutputConfig) error {
	var errs []error

	if !workbookExtensions[strings.ToLower(cfg.Extension)] {
		errs = append(errs, fmt.Errorf("%w: output extension must be .xlsx or .xlsm, got '%s'", ErrInvalidExtension, cfg.Extension))
	}

	if strings.TrimSpace(cfg.LogFile) == "" {
		errs = append(errs, fmt.Errorf("%w: log_file is required", ErrEmptyLogFile))
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error with clear
// formatting. Every input error stays reachable through errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	args := make([]any, len(errs))
	for i, err := range errs {
		args[i] = err
	}

	return fmt.Errorf("validation failed:"+strings.Repeat("\n  - %w", len(errs)), args...)
}
