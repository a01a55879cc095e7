package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/mvp-joe/project-fieldsheet/internal/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for CLIProgressReporter:
// - A quiet reporter never creates a progress bar
// - OnFailed closes an unfinished progress bar
// - OnComplete closes the progress bar after a successful run

func TestCLIProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	r := NewCLIProgressReporter(true, false)
	r.OnPlanStart()
	r.OnPlanComplete(1, 3)
	r.OnFileProcessed("A.java")
	r.OnFailed(errors.New("write failed"))
	assert.Nil(t, r.fileBar)
}

func TestCLIProgressReporter_FailedRunClosesBar(t *testing.T) {
	t.Parallel()

	r := NewCLIProgressReporter(false, false)
	r.OnPlanComplete(1, 3)
	require.NotNil(t, r.fileBar)
	r.OnFileProcessed("A.java")

	r.OnFailed(errors.New("write failed"))
	assert.Nil(t, r.fileBar)
}

func TestCLIProgressReporter_CompleteClosesBar(t *testing.T) {
	t.Parallel()

	r := NewCLIProgressReporter(false, false)
	r.OnPlanComplete(1, 1)
	r.OnFileProcessed("A.java")
	r.OnComplete(&converter.Stats{FilesWithFields: 1, WorkbooksWritten: 1, ProcessingTime: time.Second})
	assert.Nil(t, r.fileBar)
}
