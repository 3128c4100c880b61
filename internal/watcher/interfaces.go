package watcher

import "context"

// FileWatcher reports changes to matched files with debouncing and pause/resume support.
type FileWatcher interface {
	// Track adds a file whose changes should be reported.
	Track(path string) error

	// Reset forgets all tracked files and pending changes.
	Reset()

	// Start begins watching, calling callback with debounced, sorted file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}
