package cli

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mvp-joe/project-fieldsheet/internal/converter"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with a progress bar.
// Callbacks may arrive from several workers at once.
type CLIProgressReporter struct {
	quiet   bool
	verbose bool
	mu      sync.Mutex
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet, verbose bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:   quiet,
		verbose: verbose,
	}
}

func (c *CLIProgressReporter) OnPlanStart() {
	if c.quiet {
		return
	}
	log.Println("Scanning source tree...")
}

func (c *CLIProgressReporter) OnPlanComplete(workbooks, files int) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Printf("Processing %d source files into %d workbook(s)\n", files, workbooks)
	if files == 0 {
		c.fileBar = nil
		return
	}
	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Extracting fields"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(path string) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnWorkbookWritten(path string, sheets int) {
	if c.quiet || !c.verbose {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	log.Printf("Wrote %s (%d sheets)\n", path, sheets)
}

func (c *CLIProgressReporter) OnComplete(stats *converter.Stats) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(os.Stderr, "✓ Converted %d files into %d workbook(s) in %.1fs\n",
		stats.FilesWithFields, stats.WorkbooksWritten, stats.ProcessingTime.Seconds())
	if stats.CacheHits > 0 {
		fmt.Fprintf(os.Stderr, "  Unchanged files reused: %d\n", stats.CacheHits)
	}
	if stats.DirFailures+stats.WorkbookFailures+stats.FilesFailed() > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped: %d files, %d directories, %d workbooks\n",
			stats.FilesFailed(), stats.DirFailures, stats.WorkbookFailures)
	}
}

func (c *CLIProgressReporter) OnFailed(err error) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fileBar != nil {
		c.fileBar.Exit()
		c.fileBar = nil
		fmt.Fprintln(os.Stderr)
	}
}
