package watcher

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 200 * time.Millisecond

// fileWatcher implements FileWatcher.
type fileWatcher struct {
	watcher       *fsnotify.Watcher
	debounceTime  time.Duration        // Quiet period before firing callback
	callback      func(files []string) // Callback to invoke with changed files
	ctx           context.Context      // Context for lifecycle management
	cancel        context.CancelFunc   // Cancel function for internal context
	trackedMu     sync.Mutex           // Protects tracked and dirs
	tracked       map[string]bool      // Matched files, cleaned absolute paths
	dirs          map[string]int       // Watched directories and their tracked file count
	paused        bool                 // Whether watching is paused
	pausedMu      sync.RWMutex         // Protects paused flag
	accumulated   map[string]bool      // Accumulated file changes
	accumulatedMu sync.Mutex           // Protects accumulated map
	debounceTimer *time.Timer          // Current debounce timer
	timerMu       sync.Mutex           // Protects debounce timer
	stopOnce      sync.Once            // Ensures Stop() is idempotent
	doneCh        chan struct{}        // Signals watch goroutine has finished
}

// NewFileWatcher creates a watcher for matched files. Files are registered
// with Track; their parent directories are watched so that editors which
// save by rename are still seen.
func NewFileWatcher(debounce time.Duration) (FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &fileWatcher{
		watcher:      watcher,
		debounceTime: debounce,
		tracked:      make(map[string]bool),
		dirs:         make(map[string]int),
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}, nil
}

// Track starts reporting changes to path.
func (fw *fileWatcher) Track(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Errorf("failed to resolve %s: %w", path, err)
	}

	fw.trackedMu.Lock()
	defer fw.trackedMu.Unlock()

	if fw.tracked[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return errors.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	fw.dirs[dir]++
	fw.tracked[abs] = true
	return nil
}

// Reset forgets every tracked file and any changes not yet reported.
func (fw *fileWatcher) Reset() {
	fw.trackedMu.Lock()
	for dir := range fw.dirs {
		// The directory may already be gone
		_ = fw.watcher.Remove(dir)
	}
	fw.tracked = make(map[string]bool)
	fw.dirs = make(map[string]int)
	fw.trackedMu.Unlock()

	fw.accumulatedMu.Lock()
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			// Never started, close doneCh manually
			close(fw.doneCh)
		}

		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.fire()
	}
}

// watch is the main event loop.
func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	logger := zerolog.Ctx(fw.ctx)
	changedCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}
			logger.Debug().Str("path", event.Name).Stringer("op", event.Op).Msg("matched file changed")

			fw.accumulatedMu.Lock()
			fw.accumulated[filepath.Clean(event.Name)] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(changedCh)

		case <-changedCh:
			fw.handleDebounceExpired()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn().Err(err).Msg("file watcher error")
		}
	}
}

// handleDebounceExpired is called when the debounce timer expires.
func (fw *fileWatcher) handleDebounceExpired() {
	fw.pausedMu.RLock()
	paused := fw.paused
	fw.pausedMu.RUnlock()

	if paused {
		return
	}
	fw.fire()
}

// fire hands every accumulated change to the callback, sorted.
func (fw *fileWatcher) fire() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(fw.accumulated))
	for file := range fw.accumulated {
		files = append(files, file)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(files)
	if fw.callback != nil {
		fw.callback(files)
	}
}

// resetDebounceTimer resets the debounce timer, properly stopping the old one.
func (fw *fileWatcher) resetDebounceTimer(changedCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case changedCh <- struct{}{}:
		default:
		}
	})
}

// stopDebounceTimer stops the debounce timer if it exists.
func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent reports whether event modifies a tracked file.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	fw.trackedMu.Lock()
	defer fw.trackedMu.Unlock()
	return fw.tracked[filepath.Clean(event.Name)]
}
