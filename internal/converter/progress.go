package converter

// ProgressReporter provides callbacks for reporting conversion progress.
// Implementations can display progress bars, log messages, or remain silent.
// Callbacks may be invoked from several goroutines when Jobs > 1.
type ProgressReporter interface {
	// OnPlanStart is called when directory traversal begins.
	OnPlanStart()

	// OnPlanComplete is called once the output plan is known.
	OnPlanComplete(workbooks, files int)

	// OnFileProcessed is called after each source file is extracted.
	OnFileProcessed(path string)

	// OnWorkbookWritten is called after each workbook is saved.
	OnWorkbookWritten(path string, sheets int)

	// OnComplete is called when the run finishes without a fatal error.
	OnComplete(stats *Stats)

	// OnFailed is called instead of OnComplete when a run that got past
	// planning ends with an error.
	OnFailed(err error)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnPlanStart()                              {}
func (n *NoOpProgressReporter) OnPlanComplete(workbooks, files int)       {}
func (n *NoOpProgressReporter) OnFileProcessed(path string)               {}
func (n *NoOpProgressReporter) OnWorkbookWritten(path string, sheets int) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)                   {}
func (n *NoOpProgressReporter) OnFailed(err error)                        {}
