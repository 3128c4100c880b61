// Package walk traverses root paths honoring ignore rules and file type
// filters, applying a finder to every file and emitting per-file matches.
package walk

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/rcorre/lasr/internal/finder"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidRoot indicates a root path that does not exist or cannot be
// read. It is reported before any walking starts.
var ErrInvalidRoot = errors.Base("invalid root path")

// Options controls a walk.
type Options struct {
	Paths    []string // Roots; defaults to "."
	Types    *Types   // File type selection; nil accepts everything
	Threads  int      // 0 = one worker per CPU, 1 = single-threaded and deterministic
	Hidden   bool     // Include dot files and directories
	NoIgnore bool     // Do not read ignore files
}

// Stats counts walk progress. Safe for concurrent reads.
type Stats struct {
	FilesScanned atomic.Int64
	FilesMatched atomic.Int64
	ResultsSent  atomic.Int64
}

// Walker applies a finder to every candidate file under its roots.
type Walker struct {
	opts   Options
	finder *finder.Finder
	stats  Stats
}

// New validates the roots and returns a walker ready to run.
func New(opts Options, f *finder.Finder) (*Walker, error) {
	if f == nil {
		return nil, errors.New("finder is required")
	}
	if len(opts.Paths) == 0 {
		opts.Paths = []string{"."}
	}
	if err := ValidateRoots(opts.Paths); err != nil {
		return nil, err
	}
	opts.Paths = uniqueRoots(opts.Paths)
	if opts.Threads < 0 {
		opts.Threads = 0
	}
	return &Walker{opts: opts, finder: f}, nil
}

// ValidateRoots checks that every root exists.
func ValidateRoots(paths []string) error {
	for _, root := range paths {
		if _, err := os.Stat(root); err != nil {
			return errors.Errorf("%w: %s: %s", ErrInvalidRoot, root, err.Error())
		}
	}
	return nil
}

// uniqueRoots drops roots naming the same location as an earlier root,
// whether spelled relative, absolute or through a symlink.
func uniqueRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, root := range paths {
		key := canonicalPath(root)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, root)
	}
	return out
}

// canonicalPath returns the absolute, symlink-free form of path, falling
// back to the cleaned absolute path when it cannot be resolved.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// Walk is a convenience for New followed by Run.
func Walk(ctx context.Context, opts Options, f *finder.Finder, out chan<- finder.FileMatch) error {
	w, err := New(opts, f)
	if err != nil {
		return err
	}
	return w.Run(ctx, out)
}

// Stats returns the live counters of this walker.
func (w *Walker) Stats() *Stats {
	return &w.stats
}

// Threads returns the effective worker count.
func (w *Walker) Threads() int {
	if w.opts.Threads == 0 {
		return runtime.NumCPU()
	}
	return w.opts.Threads
}

// Run walks every root and sends one FileMatch per matching file to out.
// Sends block while out is full. Run does not close out.
//
// Cancelling ctx stops the walk promptly; Run then returns nil. Per-entry
// I/O errors are logged and skipped.
func (w *Walker) Run(ctx context.Context, out chan<- finder.FileMatch) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("pattern", w.finder.Pattern()).
		Strs("paths", w.opts.Paths).
		Int("threads", w.Threads()).
		Msg("walk started")

	if w.Threads() == 1 {
		w.traverse(ctx, func(path string) bool {
			return w.search(ctx, path, out)
		})
	} else {
		w.runParallel(ctx, out)
	}

	logger.Debug().
		Int64("scanned", w.stats.FilesScanned.Load()).
		Int64("matched", w.stats.FilesMatched.Load()).
		Bool("cancelled", ctx.Err() != nil).
		Msg("walk finished")
	return nil
}

// runParallel feeds paths from a single traversal to a fixed pool of
// workers.
func (w *Walker) runParallel(ctx context.Context, out chan<- finder.FileMatch) {
	g, gctx := errgroup.WithContext(ctx)
	paths := make(chan string, w.Threads())

	g.Go(func() error {
		defer close(paths)
		w.traverse(gctx, func(path string) bool {
			select {
			case paths <- path:
				return true
			case <-gctx.Done():
				return false
			}
		})
		return nil
	})

	for i := 0; i < w.Threads(); i++ {
		g.Go(func() error {
			for path := range paths {
				if !w.search(gctx, path, out) {
					// Drain so the traversal goroutine is never stuck
					for range paths {
					}
					return nil
				}
			}
			return nil
		})
	}

	_ = g.Wait()
}

// search applies the finder to one file and sends a non-empty result. It
// returns false once the walk should stop.
func (w *Walker) search(ctx context.Context, path string, out chan<- finder.FileMatch) bool {
	if ctx.Err() != nil {
		return false
	}
	w.stats.FilesScanned.Add(1)

	lines, err := w.finder.Find(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("skipping file")
		return true
	}
	if len(lines) == 0 {
		return true
	}
	w.stats.FilesMatched.Add(1)

	select {
	case out <- finder.FileMatch{Path: path, Lines: lines}:
		w.stats.ResultsSent.Add(1)
		return true
	case <-ctx.Done():
		return false
	}
}

// traverse visits candidate files depth first, each directory's entries in
// name order. visit returning false stops the traversal. A file or
// directory reachable from several roots is visited once, under the first
// root that reaches it.
func (w *Walker) traverse(ctx context.Context, visit func(path string) bool) {
	logger := zerolog.Ctx(ctx)

	// Keyed by canonical path
	seen := make(map[string]bool)

	var walkDir func(dir, key string, ig *Ignore) bool
	walkDir = func(dir, key string, ig *Ignore) bool {
		if ctx.Err() != nil {
			return false
		}
		if seen[key] {
			return true
		}
		seen[key] = true
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.Warn().Err(err).Str("path", dir).Msg("skipping unreadable directory")
			return true
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if w.skip(path, entry, ig) {
				continue
			}
			entryKey := filepath.Join(key, entry.Name())

			if entry.IsDir() {
				child := ig
				if !w.opts.NoIgnore {
					child = ig.child(path)
				}
				if !walkDir(path, entryKey, child) {
					return false
				}
				continue
			}

			if !entry.Type().IsRegular() || !w.opts.Types.Matches(path) || seen[entryKey] {
				continue
			}
			seen[entryKey] = true
			if !visit(path) {
				return false
			}
		}
		return true
	}

	for _, root := range w.opts.Paths {
		info, err := os.Stat(root)
		if err != nil {
			logger.Warn().Err(err).Str("path", root).Msg("skipping vanished root")
			continue
		}

		key := canonicalPath(root)

		// Explicit file roots are always searched
		if !info.IsDir() {
			if seen[key] {
				continue
			}
			seen[key] = true
			if !visit(root) {
				return
			}
			continue
		}

		var ig *Ignore
		if !w.opts.NoIgnore {
			ig = newRootIgnore(root)
		}
		if !walkDir(root, key, ig) {
			return
		}
	}
}

func (w *Walker) skip(path string, entry fs.DirEntry, ig *Ignore) bool {
	name := entry.Name()
	if entry.IsDir() && name == ".git" {
		return true
	}
	if !w.opts.Hidden && strings.HasPrefix(name, ".") {
		return true
	}
	return ig.Matched(path, entry.IsDir())
}
