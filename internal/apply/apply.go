// Package apply rewrites matched files on disk with a confirmed replacement.
package apply

import (
	"context"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rcorre/lasr/internal/finder"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrNotText indicates a matched file that is no longer valid UTF-8 text.
var ErrNotText = errors.Base("file is not valid UTF-8")

// Source yields every result of a search, including those not yet pulled.
// *session.Session implements it.
type Source interface {
	Drain(ctx context.Context) ([]finder.FileMatch, error)
}

// readFile and writeFile perform whole-file I/O.
// Declared as variables to allow mocking in tests.
var (
	readFile  = os.ReadFile
	writeFile = os.WriteFile
)

type options struct {
	progress ProgressReporter
	dryRun   bool
}

// Option configures Commit.
type Option func(*options)

// WithProgress reports per-file progress.
func WithProgress(p ProgressReporter) Option {
	return func(o *options) { o.progress = p }
}

// WithDryRun computes results without writing anything.
func WithDryRun() Option {
	return func(o *options) { o.dryRun = true }
}

// Commit drains src, then rewrites every matched file from its current
// contents on disk. A failure on one file is recorded in the report and the
// remaining files are still attempted. The returned error is non-nil only
// when src could not be drained.
func Commit(ctx context.Context, src Source, f *finder.Finder, replacement string, opts ...Option) (*Report, error) {
	o := options{progress: NoOpProgressReporter{}}
	for _, opt := range opts {
		opt(&o)
	}

	if f == nil {
		return nil, errors.New("no finder to commit with")
	}

	files, err := src.Drain(ctx)
	if err != nil {
		return nil, errors.Errorf("failed to collect matches: %w", err)
	}
	files = dedupe(files)

	logger := zerolog.Ctx(ctx)
	logger.Info().Int("files", len(files)).Bool("dry_run", o.dryRun).Msg("committing replacement")

	report := &Report{Files: make([]FileResult, 0, len(files))}
	o.progress.OnCommitStart(len(files))

	for _, fm := range files {
		var result FileResult
		if err := ctx.Err(); err != nil {
			result = FileResult{Path: fm.Path, Err: err}
		} else {
			result = rewrite(ctx, f, fm, replacement, o.dryRun)
		}
		if result.Err != nil {
			logger.Warn().Err(result.Err).Str("path", fm.Path).Msg("commit failed")
		}
		report.Files = append(report.Files, result)
		o.progress.OnFileCommitted(result)
	}

	o.progress.OnCommitComplete(report)
	return report, nil
}

func rewrite(ctx context.Context, f *finder.Finder, fm finder.FileMatch, replacement string, dryRun bool) FileResult {
	result := FileResult{Path: fm.Path, Matches: fm.Count()}

	info, err := os.Stat(fm.Path)
	if err != nil {
		result.Err = errors.Errorf("failed to stat: %w", err)
		return result
	}

	data, err := readFile(fm.Path)
	if err != nil {
		result.Err = errors.Errorf("failed to read: %w", err)
		return result
	}
	if !utf8.Valid(data) {
		result.Err = ErrNotText
		return result
	}

	text := string(data)
	replaced, err := f.Replace(ctx, fm.Path, text, replacement)
	if err != nil {
		result.Err = errors.Errorf("failed to replace: %w", err)
		return result
	}
	if replaced == text {
		return result
	}
	result.Changed = true

	if dryRun {
		return result
	}
	if err := writeFile(fm.Path, []byte(replaced), info.Mode().Perm()); err != nil {
		result.Err = errors.Errorf("failed to write: %w", err)
	}
	return result
}

// dedupe drops matches for a file already listed under another spelling of
// its path.
func dedupe(files []finder.FileMatch) []finder.FileMatch {
	seen := make(map[string]bool, len(files))
	out := files[:0:0]
	for _, fm := range files {
		key := fileKey(fm.Path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, fm)
	}
	return out
}

func fileKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
