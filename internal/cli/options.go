package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/rcorre/lasr/internal/config"
	"github.com/rcorre/lasr/internal/logging"
	"github.com/rcorre/lasr/internal/walk"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"
)

// loadConfig loads the configuration for the working directory and applies
// every flag the user set on top of it.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.NewLoader(wd, cfgFile).Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, flags)
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides cfg with the flags that were set explicitly.
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("ignore-case") {
		cfg.Search.IgnoreCase = ignoreCase
	}
	if flags.Changed("multiline") {
		cfg.Search.MultiLine = multiLine
	}
	if flags.Changed("type") {
		cfg.Search.Types = types
	}
	if flags.Changed("type-not") {
		cfg.Search.TypesNot = typesNot
	}
	if flags.Changed("threads") {
		cfg.Search.Threads = threads
	}
	if flags.Changed("hidden") {
		cfg.Search.Hidden = hidden
	}
	if flags.Changed("no-ignore") {
		cfg.Search.NoIgnore = noIgnore
	}
}

// expandRoots returns the search roots for the given arguments: the current
// directory when there are none, and every match of an argument that
// contains glob metacharacters. A glob matching nothing is an invalid root.
func expandRoots(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"."}, nil
	}

	var roots []string
	for _, arg := range args {
		if !hasMeta(arg) {
			roots = append(roots, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, errors.Errorf("%w: %s: %s", walk.ErrInvalidRoot, arg, err.Error())
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("%w: %s: no paths match", walk.ErrInvalidRoot, arg)
		}
		sort.Strings(matches)
		roots = append(roots, matches...)
	}
	return roots, nil
}

func hasMeta(path string) bool {
	// A path that exists is taken literally even if it looks like a glob
	if _, err := os.Stat(path); err == nil {
		return false
	}
	return strings.ContainsAny(filepath.ToSlash(path), "*?[{")
}

// headlessLogger attaches a console logger on stderr to ctx.
func headlessLogger(ctx context.Context, cfg *config.Config) (context.Context, error) {
	logger, err := logging.NewConsole(os.Stderr, cfg.LogLevel, color.NoColor)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx), nil
}

// fileLogger attaches a logger writing to the log file to ctx. The returned
// function closes the file.
func fileLogger(ctx context.Context, cfg *config.Config) (context.Context, func(), error) {
	f, err := logging.OpenFile()
	if err != nil {
		return ctx, func() {}, err
	}
	logger, err := logging.New(f, cfg.LogLevel)
	if err != nil {
		f.Close()
		return ctx, func() {}, err
	}
	logger.Info().Int("pid", os.Getpid()).Msg("lasr started")
	return logger.WithContext(ctx), func() { f.Close() }, nil
}
