// Package finder matches patterns against files. A Finder routes a pattern to
// one of two engines: regular expressions, or structural patterns delegated to
// an AST matching engine.
package finder

import (
	"context"
	"strings"

	"github.com/rcorre/lasr/internal/pattern"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrEmptyPattern indicates a blank pattern. Expected while typing.
	ErrEmptyPattern = errors.Base("empty pattern")

	// ErrInvalidPattern indicates a pattern that does not compile. Expected
	// while typing.
	ErrInvalidPattern = errors.Base("invalid pattern")

	// ErrNoEngine indicates a structural pattern with no engine to run it.
	ErrNoEngine = errors.Base("no structural engine configured")
)

// Options controls how a pattern is compiled.
type Options struct {
	IgnoreCase bool // regex only
	MultiLine  bool // regex only: '.' matches '\n', anchors span the file
	Engine     pattern.Engine
}

// Finder is an immutable compiled pattern, safe for concurrent use.
// Exactly one of regex and structural is set, according to kind.
type Finder struct {
	kind       Kind
	pattern    string
	regex      *RegexFinder
	structural *StructuralFinder
}

// New compiles pattern. Structural patterns always produce a structural
// finder, never a regex one.
func New(p string, opts Options) (*Finder, error) {
	if strings.TrimSpace(p) == "" {
		return nil, ErrEmptyPattern
	}

	f := &Finder{kind: Classify(p), pattern: p}
	switch f.kind {
	case KindStructural:
		if opts.Engine == nil {
			return nil, ErrNoEngine
		}
		f.structural = &StructuralFinder{pattern: p, engine: opts.Engine}
	default:
		rf, err := newRegexFinder(p, opts)
		if err != nil {
			return nil, errors.Errorf("%w: %s", ErrInvalidPattern, err.Error())
		}
		f.regex = rf
	}
	return f, nil
}

// Kind returns the engine the pattern was routed to.
func (f *Finder) Kind() Kind {
	return f.kind
}

// Pattern returns the pattern as typed.
func (f *Finder) Pattern() string {
	return f.pattern
}

// Find returns the matches in the file at path in document order.
//
// Unreadable, binary, non-UTF-8 files, files with no known language and
// files whose language rejects a structural pattern all yield no matches
// and no error. Errors come only from the structural engine itself.
func (f *Finder) Find(ctx context.Context, path string) ([]LineMatch, error) {
	if f.kind == KindStructural {
		if _, ok := pattern.InferLanguage(path); !ok {
			return nil, nil
		}
	}
	text, ok := readText(path)
	if !ok {
		return nil, nil
	}
	return f.FindText(ctx, path, text)
}

// FindText matches an in-memory document. path is used only to infer the
// language of structural patterns.
func (f *Finder) FindText(ctx context.Context, path, text string) ([]LineMatch, error) {
	if f.kind == KindStructural {
		return f.structural.find(ctx, path, text)
	}
	return f.regex.find(text), nil
}

// Replace returns text with every match replaced.
//
// Regex replacements use $1, ${1}, ${name} and ${0} references. Structural
// replacements use the engine's metavariable syntax ($FN, $$$ARGS).
func (f *Finder) Replace(ctx context.Context, path, text, replacement string) (string, error) {
	if f.kind == KindStructural {
		return f.structural.replace(ctx, path, text, replacement)
	}
	return f.regex.replace(text, replacement), nil
}

// Substitute returns the replacement text for each range of m, computed from
// m alone with the same capture semantics Replace uses.
func (f *Finder) Substitute(m LineMatch, replacement string) []string {
	if f.kind == KindStructural {
		return f.structural.substitute(m, replacement)
	}
	return f.regex.substitute(m, replacement)
}
