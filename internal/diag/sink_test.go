package diag

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Diagnostic Sink:
// - Failure writes an entry with kind, path and cause, and bumps tallies
// - Warn and Info write entries without counting as failures
// - Open truncates an existing log file and Close is idempotent
// - Open fails for an unwritable location
// - Concurrent Failure calls are all counted

func TestSink_FailureWritesEntry(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(&buf)

	s.Failure(KindParse, "/src/A.java", errors.New("syntax error"))
	s.Failure(KindWrite, "/out/a.xlsx", errors.New("permission denied"))

	out := buf.String()
	assert.Contains(t, out, "level=error")
	assert.Contains(t, out, "kind=parse")
	assert.Contains(t, out, "path=/src/A.java")
	assert.Contains(t, out, `cause="syntax error"`)
	assert.Contains(t, out, "kind=write")

	assert.Equal(t, 2, s.Failures())
	assert.Equal(t, 1, s.FailuresOf(KindParse))
	assert.Equal(t, 0, s.FailuresOf(KindRead))
}

func TestSink_WarnAndInfoAreNotFailures(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := New(&buf)

	s.Warn("/out/a.xlsx", "sheet renamed")
	s.Info("run complete", map[string]interface{}{"workbooks": 3})

	out := buf.String()
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, `msg="sheet renamed"`)
	assert.Contains(t, out, "workbooks=3")
	assert.Equal(t, 0, s.Failures())
}

func TestSink_OpenTruncatesAndCloses(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultLogFile)
	require.NoError(t, os.WriteFile(path, []byte("stale entry\n"), 0644))

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	s.Failure(KindRead, "/src/B.java", errors.New("boom"))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale entry")
	assert.Contains(t, string(data), "path=/src/B.java")
}

func TestSink_OpenUnwritable(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing", "log.txt"))
	assert.Error(t, err)
}

func TestSink_ConcurrentFailures(t *testing.T) {
	t.Parallel()

	s := Discard()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Failure(KindParse, "x", errors.New("e"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Failures())
}
