package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mvp-joe/project-fieldsheet/internal/config"
	"github.com/mvp-joe/project-fieldsheet/internal/converter"
	"github.com/mvp-joe/project-fieldsheet/internal/diag"
	"github.com/mvp-joe/project-fieldsheet/internal/parsers"
	"github.com/mvp-joe/project-fieldsheet/internal/planner"
	"github.com/mvp-joe/project-fieldsheet/internal/watcher"
	"github.com/spf13/cobra"
)

// outputMode selects the output planner.
type outputMode int

const (
	modeFlat outputMode = iota
	modeTree
)

func (m outputMode) String() string {
	if m == modeTree {
		return "tree"
	}
	return "flat"
}

// runFlags holds the flags shared by the flat and tree commands.
type runFlags struct {
	input   string
	output  string
	logFile string
	jobs    int
	quiet   bool
	watch   bool
}

func (f *runFlags) register(cmd *cobra.Command, outputFlag, outputUsage string) {
	cmd.Flags().StringVarP(&f.input, "input-folder", "i", "", "Root directory of Java sources (required)")
	cmd.Flags().StringVarP(&f.output, outputFlag, "o", "", outputUsage+" (required)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "Diagnostic log path (default "+diag.DefaultLogFile+")")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 1, "Number of workbooks built in parallel")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Watch for source changes and rerun")
	_ = cmd.MarkFlagRequired("input-folder")
	_ = cmd.MarkFlagRequired(outputFlag)
}

// loadRunConfig loads configuration and applies command-line overrides.
func loadRunConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("log-file") {
		cfg.Output.LogFile = f.logFile
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newPlanner(m outputMode, f *runFlags, cfg *config.Config) (planner.Planner, error) {
	matcher, err := planner.NewMatcher(cfg.Source.Include, cfg.Source.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile source patterns: %w", err)
	}
	opts := planner.Options{
		SourceExtension:   cfg.Source.Extension,
		WorkbookExtension: cfg.Output.Extension,
		Matcher:           matcher,
	}
	if m == modeTree {
		return planner.NewHierarchical(f.input, f.output, opts), nil
	}
	return planner.NewFlat(f.input, f.output, opts), nil
}

// runConvert is the body shared by the flat and tree commands.
func runConvert(cmd *cobra.Command, m outputMode, f *runFlags) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := loadRunConfig(cmd, f)
	if err != nil {
		return err
	}

	p, err := newPlanner(m, f, cfg)
	if err != nil {
		return err
	}

	sink, err := diag.Open(cfg.Output.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open diagnostic log: %w", err)
	}
	defer sink.Close()

	var cache *converter.ParseCache
	if f.watch {
		cache, err = converter.NewParseCache(converter.DefaultCacheCapacity)
		if err != nil {
			return err
		}
		defer cache.Close()
	}

	out := cmd.OutOrStdout()
	conv := converter.New(converter.Options{
		Extractor:        parsers.NewJavaParser(),
		Header:           cfg.Header(),
		Diag:             sink,
		Progress:         NewCLIProgressReporter(f.quiet, verbose),
		Jobs:             cfg.Jobs,
		Cache:            cache,
		FailOnWriteError: m == modeFlat,
	})

	once := func() error {
		sink.Info("run started", map[string]interface{}{
			"mode":   m.String(),
			"input":  f.input,
			"output": f.output,
		})
		stats, err := conv.Run(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("conversion cancelled")
			}
			return fmt.Errorf("conversion failed: %w", err)
		}
		printSummary(out, m, f, stats, sink.Path())
		return nil
	}

	if err := once(); err != nil {
		return err
	}
	if !f.watch {
		return nil
	}
	return watchAndRerun(ctx, f, cfg, sink, once)
}

// printSummary writes the end-of-run console report.
func printSummary(out io.Writer, m outputMode, f *runFlags, stats *converter.Stats, logPath string) {
	if m == modeTree {
		root, err := filepath.Abs(f.output)
		if err != nil {
			root = f.output
		}
		fmt.Fprintf(out, "All done. Check output under: %s\n", root)
		return
	}

	if stats.WorkbooksWritten > 0 {
		fmt.Fprintf(out, "Excel file generated: %s\n", f.output)
	} else if stats.WorkbookFailures == 0 {
		fmt.Fprintf(out, "No fields found, no workbook written: %s\n", f.output)
	}
	fmt.Fprintf(out, "Files processed: %d succeeded, %d failed\n", stats.FilesWithFields, stats.FilesFailed())
	fmt.Fprintf(out, "Error log saved to: %s\n", logPath)
}

// watchAndRerun reruns the conversion after every debounced batch of source
// changes until ctx is cancelled.
func watchAndRerun(ctx context.Context, f *runFlags, cfg *config.Config, sink *diag.Sink, rerun func() error) error {
	w, err := watcher.NewFileWatcher(watcher.Options{
		Dirs:       []string{f.input},
		Extensions: []string{cfg.Source.Extension},
		OnError: func(path string, err error) {
			sink.Failure(diag.KindWatch, path, err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	// One pending trigger is enough since every rerun covers the whole tree.
	changes := make(chan []string, 1)
	if err := w.Start(ctx, func(files []string) {
		select {
		case changes <- files:
		default:
		}
	}); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !f.quiet {
		log.Println("Watching for changes (Ctrl+C to stop)...")
	}

	for {
		select {
		case <-ctx.Done():
			if !f.quiet {
				log.Println("Watch mode stopped")
			}
			return nil

		case files := <-changes:
			w.Pause()
			if !f.quiet {
				log.Printf("%d source file(s) changed, rerunning...", len(files))
			}
			if err := rerun(); err != nil && ctx.Err() == nil {
				log.Printf("Rerun failed: %v", err)
			}
			w.Resume()
		}
	}
}
