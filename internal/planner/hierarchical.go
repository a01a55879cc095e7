package planner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/project-fieldsheet/internal/diag"
)

// hierarchical mirrors the input tree under an output root and plans one
// workbook per leaf directory, named after that directory.
type hierarchical struct {
	inputRoot  string
	outputRoot string
	opts       Options

	// nestedOutput is the absolute output root when it lies inside the input
	// root. It is skipped so reruns do not walk earlier output.
	nestedOutput string
}

// NewHierarchical creates the tree-mode planner.
func NewHierarchical(inputRoot, outputRoot string, opts Options) Planner {
	return &hierarchical{
		inputRoot:    filepath.Clean(inputRoot),
		outputRoot:   filepath.Clean(outputRoot),
		opts:         opts,
		nestedOutput: nestedDir(inputRoot, outputRoot),
	}
}

// Plan visits every directory once in pre-order, siblings in lexical order.
// A directory is a leaf when none of its non-ignored children is a directory
// or a symlink to one. Symlinked directories are never descended into.
func (h *hierarchical) Plan(ctx context.Context, rec FailureRecorder) (*Plan, error) {
	if err := checkRoot(h.inputRoot); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(h.inputRoot)
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	if err := h.visit(ctx, h.inputRoot, entries, plan, rec); err != nil {
		return nil, err
	}
	return plan, nil
}

func (h *hierarchical) visit(ctx context.Context, dir string, entries []os.DirEntry, plan *Plan, rec FailureRecorder) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := relSlash(h.inputRoot, dir)
	if err != nil {
		return err
	}
	outDir := filepath.Join(h.outputRoot, filepath.FromSlash(rel))
	plan.Dirs = append(plan.Dirs, outDir)

	var subdirs []string
	var files []SourceFile
	linkedDirs := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		childRel := joinRel(rel, entry.Name())

		if h.opts.Matcher.Ignores(childRel) {
			continue
		}
		if entry.IsDir() {
			if h.isNestedOutput(path) {
				continue
			}
			subdirs = append(subdirs, path)
			continue
		}
		// A symlinked directory makes its parent a non-leaf but is not walked.
		if isDirSymlink(path, entry) {
			linkedDirs++
			continue
		}
		if h.opts.isSourceEntry(dir, entry, childRel) {
			files = append(files, h.opts.sourceFile(path))
		}
	}

	if len(subdirs) == 0 && linkedDirs == 0 {
		if len(files) > 0 {
			plan.Batches = append(plan.Batches, Batch{
				Output: filepath.Join(outDir, h.leafName(dir)+h.opts.WorkbookExtension),
				Files:  files,
			})
		}
		return nil
	}

	for _, sub := range subdirs {
		children, err := os.ReadDir(sub)
		if err != nil {
			rec.Failure(diag.KindListDir, sub, err)
			// The directory exists even if it cannot be listed; mirror it anyway.
			if subRel, relErr := relSlash(h.inputRoot, sub); relErr == nil {
				plan.Dirs = append(plan.Dirs, filepath.Join(h.outputRoot, filepath.FromSlash(subRel)))
			}
			continue
		}
		if err := h.visit(ctx, sub, children, plan, rec); err != nil {
			return err
		}
	}
	return nil
}

// leafName names a leaf workbook. The root has no useful base name when given
// as "." so it is resolved first.
func (h *hierarchical) leafName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Base(dir)
}

func (h *hierarchical) isNestedOutput(dir string) bool {
	if h.nestedOutput == "" {
		return false
	}
	abs, err := filepath.Abs(dir)
	return err == nil && abs == h.nestedOutput
}

// nestedDir returns the absolute form of dir when it lies strictly inside
// root, or "" otherwise.
func nestedDir(root, dir string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ""
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absRoot, absDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return absDir
}

func isDirSymlink(path string, entry os.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func joinRel(rel, name string) string {
	if rel == "." || rel == "" {
		return name
	}
	return rel + "/" + name
}
