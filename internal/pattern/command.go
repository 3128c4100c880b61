package pattern

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ValidStrictnessLevels defines all valid strictness levels for ast-grep
var ValidStrictnessLevels = map[string]bool{
	"cst":       true,
	"smart":     true,
	"ast":       true,
	"relaxed":   true,
	"signature": true,
}

const DefaultStrictness = "smart"

var (
	// ErrEmptyPattern indicates a blank structural pattern.
	ErrEmptyPattern = errors.Base("pattern is required")

	// ErrUnsupportedLanguage indicates a language the engine cannot parse.
	ErrUnsupportedLanguage = errors.Base("unsupported language")

	// ErrPatternInvalid indicates the pattern does not parse in the requested
	// language. It is expected while matching many languages with one pattern.
	ErrPatternInvalid = errors.Base("pattern invalid for language")
)

// Compile binds pattern to lang after validating both.
func Compile(pattern string, lang Language) (Compiled, error) {
	if strings.TrimSpace(pattern) == "" {
		return Compiled{}, ErrEmptyPattern
	}
	if !IsSupported(lang) {
		return Compiled{}, errors.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	return Compiled{Pattern: pattern, Language: lang}, nil
}

// BuildFindArgs constructs the argv for searching a document read from stdin.
// This function NEVER uses shell execution - it builds argv directly.
func BuildFindArgs(p Compiled, strictness string) ([]string, error) {
	if _, err := Compile(p.Pattern, p.Language); err != nil {
		return nil, err
	}
	if strictness == "" {
		strictness = DefaultStrictness
	}
	if !ValidStrictnessLevels[strictness] {
		return nil, errors.Errorf("invalid strictness: %s (valid: cst, smart, ast, relaxed, signature)", strictness)
	}

	return []string{
		"run",
		"--pattern", p.Pattern,
		"--lang", string(p.Language),
		"--strictness", strictness,
		"--json=compact",
		"--stdin",
	}, nil
}

// BuildReplaceArgs constructs the argv for computing rewrites of a document
// read from stdin. ast-grep reports the rewrite per match instead of writing
// files, so edits stay under our control.
func BuildReplaceArgs(p Compiled, strictness, replacement string) ([]string, error) {
	args, err := BuildFindArgs(p, strictness)
	if err != nil {
		return nil, err
	}
	return append(args[:len(args)-1], "--rewrite", replacement, "--stdin"), nil
}
