package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/rcorre/lasr/internal/config"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/pattern"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// ErrNoMatches is returned by headless commands that found nothing, so the
// process exits non-zero like grep.
var ErrNoMatches = errors.Base("no matches")

var findJSON bool

var findCmd = &cobra.Command{
	Use:   "find PATTERN [paths...]",
	Short: "Print every match of a pattern",
	Long: `Search without the interactive view and print every match.

Example:
  lasr find 'fmt\.Println' ./internal
  lasr find 'errors.Wrap($ERR, $MSG)' -t go --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVar(&findJSON, "json", false, "print one JSON object per matching file")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	ctx, err := headlessLogger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	roots, err := expandRoots(args[1:])
	if err != nil {
		return err
	}

	files, err := search(ctx, cfg, roots, args[0])
	if err != nil {
		return err
	}
	if err := writeMatches(os.Stdout, files, findJSON, !color.NoColor); err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoMatches
	}
	return nil
}

// search runs one session for p to completion and returns its matches
// sorted by path.
func search(ctx context.Context, cfg *config.Config, roots []string, p string) ([]finder.FileMatch, error) {
	return runSession(ctx, cfg, roots, p, func(*session.Session, []finder.FileMatch) error { return nil })
}

// runSession starts a session for p, drains it and passes the sorted matches
// to fn while the session is still open.
func runSession(ctx context.Context, cfg *config.Config, roots []string, p string, fn func(*session.Session, []finder.FileMatch) error) ([]finder.FileMatch, error) {
	engine := pattern.NewAstGrepProvider(cfg.ProviderConfig())
	sc, err := cfg.ToSessionConfig(roots, engine)
	if err != nil {
		return nil, err
	}
	manager, err := session.NewManager(sc)
	if err != nil {
		return nil, err
	}
	defer manager.Close()

	sess := manager.Start(ctx, p)
	if sess.State() == session.Awaiting {
		return nil, sess.Err()
	}

	files, err := sess.Drain(ctx)
	if err != nil {
		return nil, errors.Errorf("search failed: %w", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	stats := sess.Stats()
	zerolog.Ctx(ctx).Debug().
		Int64("scanned", stats.FilesScanned.Load()).
		Int64("matched", stats.FilesMatched.Load()).
		Msg("search complete")

	if err := fn(sess, files); err != nil {
		return nil, err
	}
	return files, nil
}

func writeMatches(w io.Writer, files []finder.FileMatch, asJSON, colored bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, fm := range files {
			if err := enc.Encode(fm); err != nil {
				return errors.Errorf("failed to encode match: %w", err)
			}
		}
		return nil
	}

	p := newPrinter(w, colored)
	for i, fm := range files {
		if i > 0 {
			io.WriteString(w, "\n")
		}
		p.fileMatch(fm)
	}
	return nil
}
