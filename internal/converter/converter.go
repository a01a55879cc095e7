// Package converter runs the extraction pipeline: plan the output layout,
// extract fields per source file, build sheets, and write workbooks.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mvp-joe/project-fieldsheet/internal/diag"
	"github.com/mvp-joe/project-fieldsheet/internal/parsers"
	"github.com/mvp-joe/project-fieldsheet/internal/planner"
	"github.com/mvp-joe/project-fieldsheet/internal/sheet"
	"github.com/mvp-joe/project-fieldsheet/internal/workbook"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// Options configures a Converter.
type Options struct {
	Extractor parsers.FieldExtractor
	Header    sheet.Header
	Diag      *diag.Sink
	Progress  ProgressReporter // nil means no progress output
	Jobs      int              // workbooks built concurrently; < 1 means 1
	Cache     *ParseCache      // optional, reused across runs

	// FailOnWriteError makes a workbook write failure the run's error. Flat
	// mode sets it since its single workbook is the whole result.
	FailOnWriteError bool
}

// Stats tracks statistics about a conversion run.
type Stats struct {
	FilesDiscovered    int
	FilesWithFields    int // files that became sheets
	FilesWithoutFields int
	ParseFailures      int
	ReadFailures       int
	DirFailures        int
	WorkbooksWritten   int
	WorkbooksSkipped   int // planned workbooks with no sheets
	WorkbookFailures   int
	SheetsRenamed      int
	CellsTruncated     int // values longer than a cell holds
	CacheHits          int
	Outputs            []string // written workbooks, in plan order
	ProcessingTime     time.Duration
}

// FilesFailed counts files that produced no sheet, whatever the reason.
func (s *Stats) FilesFailed() int {
	return s.FilesWithoutFields + s.ParseFailures + s.ReadFailures
}

// Converter turns source trees into workbooks.
type Converter struct {
	extractor        parsers.FieldExtractor
	header           sheet.Header
	diag             *diag.Sink
	progress         ProgressReporter
	jobs             int
	cache            *ParseCache
	failOnWriteError bool
}

// New creates a Converter.
func New(opts Options) *Converter {
	c := &Converter{
		extractor:        opts.Extractor,
		header:           opts.Header,
		diag:             opts.Diag,
		progress:         opts.Progress,
		jobs:             opts.Jobs,
		cache:            opts.Cache,
		failOnWriteError: opts.FailOnWriteError,
	}
	if c.extractor == nil {
		c.extractor = parsers.NewJavaParser()
	}
	if c.header == (sheet.Header{}) {
		c.header = sheet.DefaultHeader
	}
	if c.diag == nil {
		c.diag = diag.Discard()
	}
	if c.progress == nil {
		c.progress = &NoOpProgressReporter{}
	}
	if c.jobs < 1 {
		c.jobs = 1
	}
	return c
}

// batchResult is the outcome of one workbook. Batches never share one.
type batchResult struct {
	stats    Stats
	written  string
	writeErr error
}

// Run plans the output with p and processes every batch. Only planning
// failures, cancellation, and (with FailOnWriteError) write failures are
// returned as errors; everything else is recorded in the diagnostic sink.
func (c *Converter) Run(ctx context.Context, p planner.Planner) (*Stats, error) {
	start := time.Now()

	c.progress.OnPlanStart()
	rec := &countingRecorder{sink: c.diag}
	plan, err := p.Plan(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to plan output: %w", err)
	}
	c.progress.OnPlanComplete(len(plan.Batches), plan.Files())

	stats := &Stats{
		FilesDiscovered: plan.Files(),
		DirFailures:     rec.count,
	}

	for _, dir := range plan.Dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			c.diag.Failure(diag.KindMkdir, dir, err)
			stats.DirFailures++
		}
	}

	results := make([]batchResult, len(plan.Batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for i, batch := range plan.Batches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := c.processBatch(gctx, batch)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		c.progress.OnFailed(err)
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		c.progress.OnFailed(err)
		return stats, err
	}

	var firstWriteErr error
	for _, res := range results {
		stats.merge(&res.stats)
		if res.written != "" {
			stats.Outputs = append(stats.Outputs, res.written)
		}
		if firstWriteErr == nil {
			firstWriteErr = res.writeErr
		}
	}
	stats.ProcessingTime = time.Since(start)

	if c.failOnWriteError && firstWriteErr != nil {
		c.progress.OnFailed(firstWriteErr)
		return stats, firstWriteErr
	}

	c.progress.OnComplete(stats)
	return stats, nil
}

// processBatch extracts every file of a batch and writes its workbook. The
// only error returned is context cancellation.
func (c *Converter) processBatch(ctx context.Context, batch planner.Batch) (batchResult, error) {
	var res batchResult
	var sheets []*sheet.Sheet

	for _, file := range batch.Files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		records, hit, err := c.extract(ctx, file.Path)
		c.progress.OnFileProcessed(file.Path)
		if hit {
			res.stats.CacheHits++
		}
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			var perr *parsers.ParseError
			if errors.As(err, &perr) {
				c.diag.Failure(diag.KindParse, file.Path, err)
				res.stats.ParseFailures++
			} else {
				c.diag.Failure(diag.KindRead, file.Path, err)
				res.stats.ReadFailures++
			}
			continue
		}

		if len(records) == 0 {
			res.stats.FilesWithoutFields++
			continue
		}

		sheets = append(sheets, sheet.Build(sheet.Name(file.BaseName), c.header, records))
		res.stats.FilesWithFields++
	}

	result, err := workbook.Write(batch.Output, sheets)
	switch {
	case errors.Is(err, workbook.ErrNoSheets):
		c.diag.Warn(batch.Output, "no fields extracted, workbook not written")
		res.stats.WorkbooksSkipped++
	case err != nil:
		c.diag.Failure(diag.KindWrite, batch.Output, err)
		res.stats.WorkbookFailures++
		res.writeErr = err
	default:
		for _, r := range result.Renamed {
			c.diag.Warn(batch.Output, fmt.Sprintf("sheet %q renamed to %q", r.From, r.To))
		}
		for _, tr := range result.Truncated {
			c.diag.Warn(batch.Output, fmt.Sprintf("sheet %q cell %s cut from %d to %d characters",
				tr.Sheet, tr.Cell, tr.Length, excelize.TotalCellChars))
		}
		res.stats.SheetsRenamed += len(result.Renamed)
		res.stats.CellsTruncated += len(result.Truncated)
		res.stats.WorkbooksWritten++
		res.written = batch.Output
		c.progress.OnWorkbookWritten(batch.Output, len(result.Sheets))
	}

	return res, nil
}

// extract returns the fields of path, consulting the cache when configured.
func (c *Converter) extract(ctx context.Context, path string) ([]parsers.FieldRecord, bool, error) {
	if c.cache == nil {
		records, err := c.extractor.ParseFile(ctx, path)
		return records, false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false, err
	}
	if records, ok := c.cache.Get(path, info); ok {
		return records, true, nil
	}

	records, err := c.extractor.ParseFile(ctx, path)
	if err != nil {
		return nil, false, err
	}
	c.cache.Put(path, info, records)
	return records, false, nil
}

func (s *Stats) merge(o *Stats) {
	s.FilesWithFields += o.FilesWithFields
	s.FilesWithoutFields += o.FilesWithoutFields
	s.ParseFailures += o.ParseFailures
	s.ReadFailures += o.ReadFailures
	s.WorkbooksWritten += o.WorkbooksWritten
	s.WorkbooksSkipped += o.WorkbooksSkipped
	s.WorkbookFailures += o.WorkbookFailures
	s.SheetsRenamed += o.SheetsRenamed
	s.CellsTruncated += o.CellsTruncated
	s.CacheHits += o.CacheHits
}

// countingRecorder forwards planner failures to the sink and counts them.
// Planners run on a single goroutine.
type countingRecorder struct {
	sink  *diag.Sink
	count int
}

func (r *countingRecorder) Failure(kind diag.Kind, path string, err error) {
	r.count++
	r.sink.Failure(kind, path, err)
}
