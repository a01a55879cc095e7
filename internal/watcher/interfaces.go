package watcher

import "context"

// FileWatcher monitors source trees and reports debounced batches of changed files.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch of
	// changed files, sorted and deduplicated.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the watcher and waits for its goroutine to exit.
	Stop() error

	// Pause holds callbacks while still collecting changes.
	Pause()

	// Resume releases held changes, firing the callback at once if any piled up.
	Resume()
}
