package workbook

import (
	"errors"
	"fmt"
)

// ErrNoSheets indicates a workbook with nothing to write. No file is created.
var ErrNoSheets = errors.New("workbook has no sheets")

// WriteError reports a workbook that could not be assembled or saved.
type WriteError struct {
	Path  string
	Sheet string // empty when the failure is not sheet specific
	Err   error
}

func (e *WriteError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("write workbook %s (sheet %q): %v", e.Path, e.Sheet, e.Err)
	}
	return fmt.Sprintf("write workbook %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func newWriteError(path, sheet string, err error) *WriteError {
	return &WriteError{
		Path:  path,
		Sheet: sheet,
		Err:   err,
	}
}
