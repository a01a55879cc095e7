// Package planner walks an input tree and decides which source files go into
// which output workbook.
package planner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-fieldsheet/internal/diag"
)

var (
	// ErrInputRootMissing indicates the input root does not exist.
	ErrInputRootMissing = errors.New("input root does not exist")

	// ErrInputRootNotDir indicates the input root is not a directory.
	ErrInputRootNotDir = errors.New("input root is not a directory")
)

// SourceFile is one input file.
type SourceFile struct {
	Path     string
	BaseName string // file name without the source extension
}

// Batch is the ordered set of source files written into one workbook.
type Batch struct {
	Output string
	Files  []SourceFile
}

// Plan is the complete output layout of a run.
type Plan struct {
	// Dirs are output directories to create before writing, parents first.
	Dirs    []string
	Batches []Batch
}

// Files returns the number of source files across all batches.
func (p *Plan) Files() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Files)
	}
	return n
}

// FailureRecorder receives non-fatal traversal failures.
type FailureRecorder interface {
	Failure(kind diag.Kind, path string, err error)
}

// Planner computes the output plan for an input tree. Errors returned are
// fatal; recoverable failures go to the recorder.
type Planner interface {
	Plan(ctx context.Context, rec FailureRecorder) (*Plan, error)
}

// Options configures source discovery shared by both planners.
type Options struct {
	SourceExtension   string // e.g. ".java"
	WorkbookExtension string // e.g. ".xlsx", used in tree mode
	Matcher           *Matcher
}

// checkRoot verifies the input root is an existing directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrInputRootMissing, root)
		}
		return fmt.Errorf("failed to stat input root %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInputRootNotDir, root)
	}
	return nil
}

// relSlash returns path relative to root with forward slashes.
func relSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// isSourceEntry reports whether entry is a regular file, or a symlink to one,
// that the matcher includes.
func (o Options) isSourceEntry(dir string, entry os.DirEntry, relPath string) bool {
	if entry.IsDir() || !o.Matcher.Includes(relPath) {
		return false
	}
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink != 0 {
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		return err == nil && info.Mode().IsRegular()
	}
	return false
}

func (o Options) sourceFile(path string) SourceFile {
	return SourceFile{
		Path:     path,
		BaseName: strings.TrimSuffix(filepath.Base(path), o.SourceExtension),
	}
}
