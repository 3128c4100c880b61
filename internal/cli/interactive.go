package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rcorre/lasr/internal/app"
	"github.com/rcorre/lasr/internal/apply"
	"github.com/rcorre/lasr/internal/highlight"
	"github.com/rcorre/lasr/internal/input"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rcorre/lasr/internal/watcher"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// newScreen creates the terminal screen.
// Declared as a variable to allow mocking in tests.
var newScreen = tcell.NewScreen

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if typeList {
		return printTypes(os.Stdout, cfg)
	}

	roots, err := expandRoots(args)
	if err != nil {
		return err
	}

	ctx, closeLog, err := fileLogger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	logger := zerolog.Ctx(ctx)

	// Everything that can fail on bad input is checked before the screen
	// takes over the terminal.
	engine := pattern.NewAstGrepProvider(cfg.ProviderConfig())
	sc, err := cfg.ToSessionConfig(roots, engine)
	if err != nil {
		return err
	}
	manager, err := session.NewManager(sc)
	if err != nil {
		return err
	}
	defer manager.Close()

	keys, err := input.ParseKeyMap(cfg.Keys)
	if err != nil {
		return err
	}
	theme, err := app.NewTheme(cfg.Theme)
	if err != nil {
		return err
	}

	hl, err := highlight.New()
	if err != nil {
		logger.Warn().Err(err).Msg("syntax highlighting disabled")
		hl = nil
	} else {
		defer hl.Close()
	}

	fw, err := watcher.NewFileWatcher(watcher.DefaultDebounce)
	if err != nil {
		logger.Warn().Err(err).Msg("file watching disabled")
		fw = nil
	}

	report, err := runScreen(ctx, app.Options{
		Manager:     manager,
		Keys:        keys,
		Theme:       &theme,
		Highlighter: hl,
		Watcher:     fw,
		Prefetch:    cfg.Search.Prefetch,
	})
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}

	newPrinter(os.Stdout, !color.NoColor).report(report)
	if n := len(report.Failed()); n > 0 {
		return errors.Errorf("%d of %d files could not be rewritten", n, len(report.Files))
	}
	return nil
}

// runScreen runs the app on a fresh screen, which is restored before
// returning so the caller can print.
func runScreen(ctx context.Context, opts app.Options) (*apply.Report, error) {
	screen, err := newScreen()
	if err != nil {
		return nil, errors.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	a, err := app.New(screen, opts)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx)
}
