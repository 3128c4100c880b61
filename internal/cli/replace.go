package cli

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/rcorre/lasr/internal/apply"
	"github.com/rcorre/lasr/internal/config"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rcorre/lasr/internal/subst"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var (
	replaceWrite bool
	replaceQuiet bool
)

var replaceCmd = &cobra.Command{
	Use:   "replace PATTERN REPLACEMENT [paths...]",
	Short: "Preview or apply a replacement without the interactive view",
	Long: `Print a preview of every substitution. With --write, rewrite the
matched files instead and report the outcome per file.

Example:
  lasr replace 'foo(\d+)' 'bar$1' ./src
  lasr replace 'errors.Wrap($ERR, $MSG)' 'fmt.Errorf($MSG+": %w", $ERR)' -t go --write`,
	Args: cobra.MinimumNArgs(2),
	RunE: runReplace,
}

func init() {
	replaceCmd.Flags().BoolVarP(&replaceWrite, "write", "w", false, "rewrite the matched files")
	replaceCmd.Flags().BoolVarP(&replaceQuiet, "quiet", "q", false, "suppress the progress bar")
	rootCmd.AddCommand(replaceCmd)
}

func runReplace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	ctx, err := headlessLogger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	roots, err := expandRoots(args[2:])
	if err != nil {
		return err
	}

	opts := replaceOptions{
		write:    replaceWrite,
		colored:  !color.NoColor,
		progress: NewCommitProgress(os.Stderr, replaceQuiet || !replaceWrite),
	}
	return replace(ctx, os.Stdout, cfg, roots, args[0], args[1], opts)
}

type replaceOptions struct {
	write    bool
	colored  bool
	progress apply.ProgressReporter
}

// replace previews the substitution of every match of p, or rewrites the
// files when opts.write is set.
func replace(ctx context.Context, w io.Writer, cfg *config.Config, roots []string, p, replacement string, opts replaceOptions) error {
	out := newPrinter(w, opts.colored)

	var report *apply.Report
	files, err := runSession(ctx, cfg, roots, p, func(sess *session.Session, files []finder.FileMatch) error {
		if !opts.write {
			model := subst.NewModel(sess.Finder(), replacement)
			for _, fm := range files {
				model.Add(fm)
			}
			for i, pv := range model.Previews(0, model.Len()) {
				if i > 0 {
					io.WriteString(w, "\n")
				}
				out.preview(pv)
			}
			return nil
		}

		var err error
		report, err = apply.Commit(ctx, sess, sess.Finder(), replacement, apply.WithProgress(opts.progress))
		return err
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoMatches
	}
	if report == nil {
		return nil
	}

	out.report(report)
	if n := len(report.Failed()); n > 0 {
		return errors.Errorf("%d of %d files could not be rewritten", n, len(report.Files))
	}
	return nil
}
