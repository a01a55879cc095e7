package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher fails without directories or with a missing root
// - A source file change fires the callback after the debounce period
// - Rapid changes to several files arrive as one sorted, deduplicated batch
// - Files with other extensions are ignored
// - Files created in a new sub-directory are seen
// - Deleting a source file fires the callback
// - Changes during Pause are held and delivered on Resume
// - Stop is idempotent and safe to call concurrently, with or without Start
// - Context cancellation stops the event loop

const testDebounce = 100 * time.Millisecond

type batches struct {
	mu  sync.Mutex
	got [][]string
	ch  chan struct{}
}

func newBatches() *batches {
	return &batches{ch: make(chan struct{}, 16)}
}

func (b *batches) callback(files []string) {
	b.mu.Lock()
	b.got = append(b.got, files)
	b.mu.Unlock()
	b.ch <- struct{}{}
}

func (b *batches) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-b.ch:
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called before timeout")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.got[len(b.got)-1]
}

func (b *batches) none(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case <-b.ch:
		t.Fatal("unexpected callback")
	case <-time.After(within):
	}
}

func startWatcher(t *testing.T, dir string) (FileWatcher, *batches) {
	t.Helper()
	w, err := NewFileWatcher(Options{
		Dirs:       []string{dir},
		Extensions: []string{".java"},
		Debounce:   testDebounce,
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	b := newBatches()
	require.NoError(t, w.Start(context.Background(), b.callback))
	// Let fsnotify settle before generating events.
	time.Sleep(50 * time.Millisecond)
	return w, b
}

// Test: NewFileWatcher fails without directories or with a missing root
func TestNewFileWatcher_Errors(t *testing.T) {
	t.Parallel()

	_, err := NewFileWatcher(Options{Extensions: []string{".java"}})
	assert.ErrorIs(t, err, ErrNoDirs)

	missing := filepath.Join(t.TempDir(), "missing")
	w, err := NewFileWatcher(Options{Dirs: []string{missing}})
	assert.Error(t, err)
	assert.Nil(t, w)
}

// Test: A source file change fires the callback after the debounce period
func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir)

	path := filepath.Join(dir, "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0644))

	assert.Equal(t, []string{path}, b.wait(t))
}

// Test: Rapid changes to several files arrive as one sorted, deduplicated batch
func TestFileWatcher_BatchesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir)

	pathB := filepath.Join(dir, "B.java")
	pathA := filepath.Join(dir, "A.java")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(pathB, []byte("class B {}"), 0644))
		require.NoError(t, os.WriteFile(pathA, []byte("class A {}"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, []string{pathA, pathB}, b.wait(t))
	b.none(t, 3*testDebounce)
}

// Test: Files with other extensions are ignored
func TestFileWatcher_ExtensionFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.xlsx"), []byte("x"), 0644))

	b.none(t, 4*testDebounce)
}

// Test: Files created in a new sub-directory are seen
func TestFileWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, b := startWatcher(t, dir)

	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(sub, "C.java")
	require.NoError(t, os.WriteFile(path, []byte("class C {}"), 0644))

	assert.Contains(t, b.wait(t), path)
}

// Test: Deleting a source file fires the callback
func TestFileWatcher_FileDeleted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Gone.java")
	require.NoError(t, os.WriteFile(path, []byte("class Gone {}"), 0644))

	_, b := startWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	assert.Equal(t, []string{path}, b.wait(t))
}

// Test: Changes during Pause are held and delivered on Resume
func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, b := startWatcher(t, dir)

	w.Pause()
	path := filepath.Join(dir, "Held.java")
	require.NoError(t, os.WriteFile(path, []byte("class Held {}"), 0644))
	b.none(t, 4*testDebounce)

	w.Resume()
	assert.Equal(t, []string{path}, b.wait(t))
}

// Test: Stop is idempotent and safe to call concurrently, with or without Start
func TestFileWatcher_Stop(t *testing.T) {
	t.Parallel()

	unstarted, err := NewFileWatcher(Options{Dirs: []string{t.TempDir()}})
	require.NoError(t, err)
	require.NoError(t, unstarted.Stop())
	require.NoError(t, unstarted.Stop())

	w, _ := startWatcher(t, t.TempDir())
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()
}

// Test: Context cancellation stops the event loop
func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := NewFileWatcher(Options{Dirs: []string{dir}, Extensions: []string{".java"}, Debounce: testDebounce})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	b := newBatches()
	require.NoError(t, w.Start(ctx, b.callback))
	cancel()

	fw := w.(*fileWatcher)
	select {
	case <-fw.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not exit after cancellation")
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Late.java"), []byte("class Late {}"), 0644))
	b.none(t, 3*testDebounce)
	require.NoError(t, w.Stop())
}
