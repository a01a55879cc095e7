// Package watcher reruns conversions when source files change.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered.
const DefaultDebounce = 500 * time.Millisecond

// ErrNoDirs indicates a watcher was created without directories.
var ErrNoDirs = errors.New("no directories to watch")

// Options configures a FileWatcher.
type Options struct {
	Dirs       []string      // roots, watched recursively
	Extensions []string      // e.g. []string{".java"}
	Debounce   time.Duration // zero means DefaultDebounce

	// OnError receives non-fatal failures such as an unwatchable sub-directory.
	// Nil drops them.
	OnError func(path string, err error)
}

type fileWatcher struct {
	watcher    *fsnotify.Watcher
	extensions map[string]bool
	debounce   time.Duration
	onError    func(path string, err error)

	callback func(files []string)
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex // guards pending and paused
	pending map[string]struct{}
	paused  bool
}

// NewFileWatcher creates a watcher over opts.Dirs. Every root must exist;
// unreadable sub-directories are reported through opts.OnError.
func NewFileWatcher(opts Options) (FileWatcher, error) {
	if len(opts.Dirs) == 0 {
		return nil, ErrNoDirs
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{
		watcher:    w,
		extensions: make(map[string]bool, len(opts.Extensions)),
		debounce:   opts.Debounce,
		onError:    opts.OnError,
		done:       make(chan struct{}),
		pending:    make(map[string]struct{}),
	}
	if fw.debounce <= 0 {
		fw.debounce = DefaultDebounce
	}
	if fw.onError == nil {
		fw.onError = func(string, error) {}
	}
	for _, ext := range opts.Extensions {
		fw.extensions[ext] = true
	}

	for _, dir := range opts.Dirs {
		if err := fw.addTree(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	return fw, nil
}

// Start launches the event loop. A nil callback makes Start a no-op.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	ctx, fw.cancel = context.WithCancel(ctx)

	go fw.loop(ctx)
	return nil
}

// Stop is idempotent.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.done
		}
		err = fw.watcher.Close()
	})
	return err
}

func (fw *fileWatcher) Pause() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.paused = true
}

func (fw *fileWatcher) Resume() {
	fw.mu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.mu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

func (fw *fileWatcher) loop(ctx context.Context) {
	defer close(fw.done)

	timer := time.NewTimer(fw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addTree(event.Name); err != nil {
						fw.onError(event.Name, err)
					}
				}
			}
			if !fw.relevant(event) {
				continue
			}

			fw.mu.Lock()
			fw.pending[event.Name] = struct{}{}
			fw.mu.Unlock()

			timer.Reset(fw.debounce)

		case <-timer.C:
			fw.mu.Lock()
			paused := fw.paused
			fw.mu.Unlock()
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.onError("", err)
		}
	}
}

// flush delivers and clears pending changes.
func (fw *fileWatcher) flush() {
	fw.mu.Lock()
	if len(fw.pending) == 0 {
		fw.mu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.pending))
	for f := range fw.pending {
		files = append(files, f)
	}
	fw.pending = make(map[string]struct{})
	fw.mu.Unlock()

	sort.Strings(files)
	if fw.callback != nil {
		fw.callback(files)
	}
}

// relevant reports whether event changes a monitored source file.
func (fw *fileWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return fw.extensions[filepath.Ext(event.Name)]
}

// addTree watches root and every directory below it. Only a failure on root
// itself is returned.
func (fw *fileWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			fw.onError(path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fw.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			fw.onError(path, err)
		}
		return nil
	})
}
