package planner

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/mvp-joe/project-fieldsheet/internal/diag"
)

// flat plans a single workbook holding every source file under the root.
type flat struct {
	inputRoot  string
	outputFile string
	opts       Options
}

// NewFlat creates the single-workbook planner.
func NewFlat(inputRoot, outputFile string, opts Options) Planner {
	return &flat{
		inputRoot:  filepath.Clean(inputRoot),
		outputFile: outputFile,
		opts:       opts,
	}
}

// Plan collects matching files at any depth in lexical pre-order.
func (f *flat) Plan(ctx context.Context, rec FailureRecorder) (*Plan, error) {
	if err := checkRoot(f.inputRoot); err != nil {
		return nil, err
	}

	var files []SourceFile
	err := filepath.WalkDir(f.inputRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == f.inputRoot {
				return err
			}
			rec.Failure(diag.KindListDir, path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == f.inputRoot {
			return nil
		}

		rel, err := relSlash(f.inputRoot, path)
		if err != nil {
			return err
		}

		if f.opts.Matcher.Ignores(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if f.opts.isSourceEntry(filepath.Dir(path), d, rel) {
			files = append(files, f.opts.sourceFile(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Plan{
		Dirs:    []string{filepath.Dir(f.outputFile)},
		Batches: []Batch{{Output: f.outputFile, Files: files}},
	}, nil
}
