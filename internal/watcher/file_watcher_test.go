package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - Tracked file change fires callback after debounce
// - Changes to untracked files in the same directory are ignored
// - Rapid changes are coalesced into a single, deduplicated callback
// - Pause/Resume behavior (accumulate during pause, fire on resume)
// - Removed and renamed tracked files are reported
// - Reset forgets tracked files and pending changes
// - Track fails for a file in a missing directory
// - Stop() cleanup, idempotence and context cancellation

type recorder struct {
	mu     sync.Mutex
	files  []string
	calls  int
	called chan struct{}
}

func newRecorder() *recorder {
	return &recorder{called: make(chan struct{}, 10)}
}

func (r *recorder) callback(files []string) {
	r.mu.Lock()
	r.files = append(r.files, files...)
	r.calls++
	r.mu.Unlock()
	r.called <- struct{}{}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatal("Callback not called after timeout")
	}
}

func (r *recorder) snapshot() ([]string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...), r.calls
}

func startWatcher(t *testing.T, files ...string) (FileWatcher, *recorder) {
	t.Helper()

	w, err := NewFileWatcher(50 * time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })

	for _, f := range files {
		require.NoError(t, w.Track(f))
	}

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return w, rec
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// Test: Tracked file change fires callback after debounce
func TestFileWatcher_TrackedFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "match.txt")
	writeFile(t, tracked, "one")

	_, rec := startWatcher(t, tracked)
	writeFile(t, tracked, "two")
	rec.wait(t)

	files, _ := rec.snapshot()
	assert.Equal(t, []string{tracked}, files)
}

// Test: Changes to untracked files in the same directory are ignored
func TestFileWatcher_IgnoresUntracked(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "match.txt")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, tracked, "one")

	_, rec := startWatcher(t, tracked)
	writeFile(t, other, "noise")
	time.Sleep(300 * time.Millisecond)

	_, calls := rec.snapshot()
	assert.Equal(t, 0, calls)
}

// Test: Rapid changes are coalesced into a single, deduplicated callback
func TestFileWatcher_Debouncing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "")
	writeFile(t, b, "")

	w, err := NewFileWatcher(200 * time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Track(a))
	require.NoError(t, w.Track(b))
	require.NoError(t, w.Track(a))

	rec := newRecorder()
	require.NoError(t, w.Start(context.Background(), rec.callback))
	time.Sleep(50 * time.Millisecond)

	writeFile(t, b, "v1")
	time.Sleep(20 * time.Millisecond)
	writeFile(t, a, "v1")
	time.Sleep(20 * time.Millisecond)
	writeFile(t, a, "v2")
	rec.wait(t)

	// Wait a bit more to ensure no additional callbacks
	time.Sleep(400 * time.Millisecond)

	files, calls := rec.snapshot()
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{a, b}, files)
}

// Test: Pause/Resume behavior (accumulate during pause, fire on resume)
func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "match.txt")
	writeFile(t, tracked, "one")

	w, rec := startWatcher(t, tracked)
	w.Pause()

	writeFile(t, tracked, "two")
	time.Sleep(300 * time.Millisecond)
	_, calls := rec.snapshot()
	assert.Equal(t, 0, calls, "No callbacks should fire while paused")

	w.Resume()
	rec.wait(t)
	files, _ := rec.snapshot()
	assert.Equal(t, []string{tracked}, files)
}

// Test: Removed and renamed tracked files are reported
func TestFileWatcher_RemoveAndRename(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	removed := filepath.Join(dir, "removed.txt")
	renamed := filepath.Join(dir, "renamed.txt")
	writeFile(t, removed, "x")
	writeFile(t, renamed, "x")

	_, rec := startWatcher(t, removed, renamed)
	require.NoError(t, os.Remove(removed))
	require.NoError(t, os.Rename(renamed, filepath.Join(dir, "elsewhere.txt")))

	require.Eventually(t, func() bool {
		files, _ := rec.snapshot()
		return assert.ObjectsAreEqual([]string{removed, renamed}, dedupe(files))
	}, 2*time.Second, 20*time.Millisecond)
}

// Test: Reset forgets tracked files and pending changes
func TestFileWatcher_Reset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tracked := filepath.Join(dir, "match.txt")
	writeFile(t, tracked, "one")

	w, rec := startWatcher(t, tracked)
	w.Pause()
	writeFile(t, tracked, "two")
	time.Sleep(200 * time.Millisecond)

	w.Reset()
	w.Resume()
	writeFile(t, tracked, "three")
	time.Sleep(300 * time.Millisecond)

	_, calls := rec.snapshot()
	assert.Equal(t, 0, calls)
}

// Test: Track fails for a file in a missing directory
func TestFileWatcher_TrackMissingDirectory(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(0)
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.Track(filepath.Join(t.TempDir(), "missing", "file.txt")))
	assert.Equal(t, DefaultDebounce, w.(*fileWatcher).debounceTime)
}

// Test: Stop() cleanup, idempotence and context cancellation
func TestFileWatcher_Stop(t *testing.T) {
	t.Parallel()

	t.Run("never started", func(t *testing.T) {
		t.Parallel()
		w, err := NewFileWatcher(0)
		require.NoError(t, err)
		require.NoError(t, w.Stop())
		require.NoError(t, w.Stop())
	})

	t.Run("concurrent", func(t *testing.T) {
		t.Parallel()
		w, err := NewFileWatcher(0)
		require.NoError(t, err)
		require.NoError(t, w.Start(context.Background(), func([]string) {}))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = w.Stop()
			}()
		}
		wg.Wait()
	})

	t.Run("context cancellation", func(t *testing.T) {
		t.Parallel()
		w, err := NewFileWatcher(0)
		require.NoError(t, err)
		defer w.Stop()

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, w.Start(ctx, func([]string) {}))
		cancel()

		select {
		case <-w.(*fileWatcher).doneCh:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("watcher did not stop after cancel")
		}
	})
}

func dedupe(files []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
