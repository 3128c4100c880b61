package mcp

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rcorre/lasr/internal/apply"
	"github.com/rcorre/lasr/internal/config"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rcorre/lasr/internal/subst"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrOutsideRoot indicates a requested path that escapes the project root.
var ErrOutsideRoot = errors.Base("path outside project root")

// Searcher runs find and replace requests against a project.
type Searcher interface {
	Find(ctx context.Context, req *FindRequest) (*FindResponse, error)
	Replace(ctx context.Context, req *ReplaceRequest) (*ReplaceResponse, error)
}

type searcher struct {
	cfg    *config.Config
	root   string
	engine pattern.Engine
}

// NewSearcher creates a Searcher for the project at root. Every request
// runs a fresh search session with cfg's settings plus the request's options.
func NewSearcher(cfg *config.Config, root string, engine pattern.Engine) (Searcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Errorf("failed to resolve project root: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &searcher{cfg: cfg, root: abs, engine: engine}, nil
}

func (s *searcher) Find(ctx context.Context, req *FindRequest) (*FindResponse, error) {
	start := time.Now()

	sess, m, err := s.start(ctx, req)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	files, err := sess.Drain(ctx)
	if err != nil {
		return nil, errors.Errorf("search failed: %w", err)
	}
	sortFiles(files)

	max := limit(req.Limit)
	resp := &FindResponse{Matches: []Match{}, Files: len(files)}
	for _, fm := range files {
		for _, lm := range fm.Lines {
			resp.Total++
			if len(resp.Matches) >= max {
				resp.Truncated = true
				continue
			}
			resp.Matches = append(resp.Matches, Match{
				Path:     s.rel(fm.Path),
				Line:     lm.Number,
				Text:     lm.Text,
				Ranges:   lm.Ranges,
				Captures: lm.Captures,
			})
		}
	}
	resp.Metadata = metadata(sess.Finder(), req.Pattern, start)

	zerolog.Ctx(ctx).Debug().Str("pattern", req.Pattern).Int("total", resp.Total).Msg("find complete")
	return resp, nil
}

func (s *searcher) Replace(ctx context.Context, req *ReplaceRequest) (*ReplaceResponse, error) {
	start := time.Now()

	sess, m, err := s.start(ctx, &req.FindRequest)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	var opts []apply.Option
	if req.DryRun {
		opts = append(opts, apply.WithDryRun())
	}
	report, err := apply.Commit(ctx, sess, sess.Finder(), req.Replacement, opts...)
	if err != nil {
		return nil, err
	}

	resp := &ReplaceResponse{
		Files:     outcomes(report),
		Succeeded: report.Succeeded(),
		Failed:    len(report.Failed()),
		Changed:   report.Changed(),
		DryRun:    req.DryRun,
		Previews:  []subst.Preview{},
		Metadata:  metadata(sess.Finder(), req.Pattern, start),
	}
	for i := range resp.Files {
		resp.Files[i].Path = s.rel(resp.Files[i].Path)
	}
	sort.Slice(resp.Files, func(i, j int) bool { return resp.Files[i].Path < resp.Files[j].Path })

	// Previews come from the matches recorded before the files were rewritten
	files := sess.Cached()
	sortFiles(files)
	model := subst.NewModel(sess.Finder(), req.Replacement)
	for _, fm := range files {
		model.Add(fm)
	}
	max := limit(req.Limit)
	resp.Previews = model.Previews(0, max)
	resp.Truncated = model.Len() > max
	for i := range resp.Previews {
		resp.Previews[i].Path = s.rel(resp.Previews[i].Path)
	}

	zerolog.Ctx(ctx).Info().Str("pattern", req.Pattern).Int("changed", resp.Changed).
		Int("failed", resp.Failed).Bool("dry_run", req.DryRun).Msg("replace complete")
	return resp, nil
}

// start runs a session for req and returns it with its manager, which the
// caller closes.
func (s *searcher) start(ctx context.Context, req *FindRequest) (*session.Session, *session.Manager, error) {
	if strings.TrimSpace(req.Pattern) == "" {
		return nil, nil, finder.ErrEmptyPattern
	}

	paths, err := s.resolve(req.Paths)
	if err != nil {
		return nil, nil, err
	}

	cfg := *s.cfg
	cfg.Search.IgnoreCase = cfg.Search.IgnoreCase || req.IgnoreCase
	cfg.Search.MultiLine = cfg.Search.MultiLine || req.MultiLine
	if len(req.Types) > 0 {
		cfg.Search.Types = req.Types
	}
	if len(req.TypesNot) > 0 {
		cfg.Search.TypesNot = req.TypesNot
	}

	sc, err := cfg.ToSessionConfig(paths, s.engine)
	if err != nil {
		return nil, nil, err
	}
	m, err := session.NewManager(sc)
	if err != nil {
		return nil, nil, err
	}

	sess := m.Start(ctx, req.Pattern)
	if sess.State() == session.Awaiting {
		m.Close()
		return nil, nil, sess.Err()
	}
	return sess, m, nil
}

// resolve maps request paths onto the project root, rejecting escapes.
// Existing paths are checked after following symlinks, so a link inside the
// root cannot reach files outside it.
func (s *searcher) resolve(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return []string{s.root}, nil
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(s.root, p)
		}
		abs = filepath.Clean(abs)
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		if !s.contains(abs) {
			return nil, errors.Errorf("%w: %s", ErrOutsideRoot, p)
		}
		out = append(out, abs)
	}
	return out, nil
}

func (s *searcher) contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// rel reports paths relative to the project root.
func (s *searcher) rel(path string) string {
	if r, err := filepath.Rel(s.root, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}

func sortFiles(files []finder.FileMatch) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

func metadata(f *finder.Finder, p string, start time.Time) Metadata {
	md := Metadata{TookMs: time.Since(start).Milliseconds(), Pattern: p}
	if f != nil {
		md.Kind = f.Kind().String()
	}
	return md
}
