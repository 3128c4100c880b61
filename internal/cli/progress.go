package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/rcorre/lasr/internal/apply"
	"github.com/schollz/progressbar/v3"
)

// CommitProgress implements apply.ProgressReporter with a progress bar.
type CommitProgress struct {
	w     io.Writer
	quiet bool
	bar   *progressbar.ProgressBar
}

// NewCommitProgress creates a reporter drawing on w. A quiet reporter
// draws nothing.
func NewCommitProgress(w io.Writer, quiet bool) *CommitProgress {
	return &CommitProgress{w: w, quiet: quiet}
}

func (c *CommitProgress) OnCommitStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}
	c.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription("Replacing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

func (c *CommitProgress) OnFileCommitted(result apply.FileResult) {
	if c.bar != nil {
		c.bar.Add(1)
	}
}

func (c *CommitProgress) OnCommitComplete(report *apply.Report) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
}
