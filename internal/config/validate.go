package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rcorre/lasr/internal/input"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidLogLevel indicates an unknown log level name
	ErrInvalidLogLevel = errors.Base("invalid log level")

	// ErrInvalidSearch indicates invalid search settings
	ErrInvalidSearch = errors.Base("invalid search settings")

	// ErrInvalidTypes indicates a file type definition or selection that cannot be used
	ErrInvalidTypes = errors.Base("invalid file types")

	// ErrInvalidColor indicates a theme color that cannot be parsed
	ErrInvalidColor = errors.Base("invalid color")

	// ErrInvalidKeys indicates a key binding to an unknown action
	ErrInvalidKeys = errors.Base("invalid key bindings")

	// ErrInvalidAstGrep indicates invalid structural search settings
	ErrInvalidAstGrep = errors.Base("invalid ast_grep settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil || cfg.LogLevel == "" {
		errs = append(errs, errors.Errorf("%w: %q", ErrInvalidLogLevel, cfg.LogLevel))
	}

	errs = append(errs, validateSearch(&cfg.Search)...)

	// Types are validated by building the registry they configure
	if _, err := cfg.FileTypes(); err != nil {
		errs = append(errs, errors.Errorf("%w: %s", ErrInvalidTypes, err.Error()))
	}

	errs = append(errs, validateTheme(&cfg.Theme)...)

	if _, err := input.ParseKeyMap(cfg.Keys); err != nil {
		errs = append(errs, errors.Errorf("%w: %s", ErrInvalidKeys, err.Error()))
	}

	errs = append(errs, validateAstGrep(&cfg.AstGrep)...)

	if len(errs) > 0 {
		return joinErrors(errs)
	}
	return nil
}

func validateSearch(cfg *SearchConfig) []error {
	var errs []error

	if cfg.Threads < 0 {
		errs = append(errs, errors.Errorf("%w: threads cannot be negative, got %d", ErrInvalidSearch, cfg.Threads))
	}
	if cfg.Prefetch < 0 {
		errs = append(errs, errors.Errorf("%w: prefetch cannot be negative, got %d", ErrInvalidSearch, cfg.Prefetch))
	}
	return errs
}

func validateTheme(cfg *ThemeConfig) []error {
	var errs []error

	styles := map[string]StyleConfig{"base": cfg.Base, "find": cfg.Find, "replace": cfg.Replace}
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := styles[name]
		for _, c := range []string{s.Fg, s.Bg} {
			if _, err := ParseColor(c); err != nil {
				errs = append(errs, errors.Errorf("theme.%s: %w", name, err))
			}
		}
	}
	return errs
}

func validateAstGrep(cfg *AstGrepConfig) []error {
	var errs []error

	if cfg.Strictness != "" && !pattern.ValidStrictnessLevels[cfg.Strictness] {
		errs = append(errs, errors.Errorf("%w: unknown strictness %q", ErrInvalidAstGrep, cfg.Strictness))
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, errors.Errorf("%w: timeout must be positive, got %d", ErrInvalidAstGrep, cfg.Timeout))
	}
	return errs
}

// validationErrors reports several problems at once while still matching
// each of them with errors.Is.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return validationErrors(errs)
}
