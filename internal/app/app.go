// Package app is the interactive terminal front end: two line editors for
// the pattern and the replacement above a live list of previews.
package app

import (
	"context"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/rcorre/lasr/internal/apply"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/highlight"
	"github.com/rcorre/lasr/internal/input"
	"github.com/rcorre/lasr/internal/session"
	"github.com/rcorre/lasr/internal/subst"
	"github.com/rcorre/lasr/internal/watcher"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

type focus int

const (
	focusPattern focus = iota
	focusReplacement
)

// Options configures an App. Only Manager is required.
type Options struct {
	Manager     *session.Manager
	Keys        input.KeyMap
	Theme       *Theme
	Highlighter *highlight.Highlighter
	Watcher     watcher.FileWatcher
	Events      <-chan tcell.Event // nil reads events from the screen
	Pattern     string
	Replacement string
	Prefetch    int // rows pulled beyond what fits on screen
}

// App owns the screen and the live search session.
type App struct {
	screen   tcell.Screen
	events   <-chan tcell.Event
	manager  *session.Manager
	keys     input.KeyMap
	theme    Theme
	hl       *highlight.Highlighter
	watcher  watcher.FileWatcher
	prefetch int

	pattern     *input.LineInput
	replacement *input.LineInput
	focus       focus

	mux     *Mux
	changes chan []string
	session *session.Session
	model   *subst.Model
	tracked map[string]string // absolute path -> path as reported by the walk
	offset  int
	message string

	committing int
	committed  int
	report     *apply.Report
}

// New creates an App drawing on screen. The screen must be initialized.
func New(screen tcell.Screen, opts Options) (*App, error) {
	if opts.Manager == nil {
		return nil, errors.New("session manager is required")
	}
	keys := opts.Keys
	if keys == nil {
		keys = input.DefaultKeyMap()
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	return &App{
		screen:      screen,
		events:      opts.Events,
		manager:     opts.Manager,
		keys:        keys,
		theme:       theme,
		hl:          opts.Highlighter,
		watcher:     opts.Watcher,
		prefetch:    max(opts.Prefetch, 0),
		pattern:     input.NewLineInput(opts.Pattern),
		replacement: input.NewLineInput(opts.Replacement),
		tracked:     make(map[string]string),
	}, nil
}

// Run processes events until the user quits or commits. It returns the
// commit report, or nil when the user quit without committing.
func (a *App) Run(ctx context.Context) (*apply.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger := zerolog.Ctx(ctx)

	events := a.events
	if events == nil {
		events = a.pollEvents(ctx)
	}

	if a.watcher != nil {
		a.changes = make(chan []string, 1)
		err := a.watcher.Start(ctx, func(files []string) {
			select {
			case a.changes <- files:
			default:
				go func() {
					select {
					case a.changes <- files:
					case <-ctx.Done():
					}
				}()
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("file watcher unavailable")
			a.watcher = nil
		} else {
			defer a.watcher.Stop()
		}
	}
	a.mux = NewMux(events, a.changes)

	a.restart(ctx)
	for {
		a.draw()

		var results <-chan finder.FileMatch
		if a.wantsResults() {
			results = a.session.Results()
		}
		ev, err := a.mux.Next(ctx, results)
		if err != nil {
			return nil, err
		}

		switch ev.Kind {
		case InputEvent:
			if a.handleEvent(ctx, ev.Input) {
				return a.report, nil
			}
		case ResultEvent:
			a.record(ctx, ev.Result)
		case ResultsClosed:
			a.session.Finish()
			if err := a.session.WalkErr(); err != nil {
				a.message = err.Error()
			}
			logger.Debug().Int("rows", a.model.Len()).Int("matches", a.model.Matches()).Msg("search complete")
		case ChangeEvent:
			a.markStale(ev.Changed)
		}
	}
}

// pollEvents forwards screen events until ctx is done or the screen is
// finalized.
func (a *App) pollEvents(ctx context.Context) <-chan tcell.Event {
	ch := make(chan tcell.Event)
	go func() {
		defer close(ch)
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// restart replaces the session with one for the current pattern and clears
// every result of the previous one.
func (a *App) restart(ctx context.Context) {
	a.session = a.manager.Start(ctx, a.pattern.Text())
	a.model = subst.NewModel(a.session.Finder(), a.replacement.Text())
	a.offset = 0
	a.message = ""
	clear(a.tracked)
	if a.watcher != nil {
		a.watcher.Reset()
	}
}

// wantsResults reports whether the live session should be read: only while
// fewer rows are loaded than fit on screen plus the prefetch margin.
func (a *App) wantsResults() bool {
	if a.session == nil || a.session.State() != session.Searching {
		return false
	}
	return a.model.Len() < a.offset+a.listHeight()+a.prefetch
}

func (a *App) record(ctx context.Context, fm finder.FileMatch) {
	if !a.session.Record(fm) {
		return
	}
	a.model.Add(fm)

	if a.watcher == nil {
		return
	}
	abs, err := filepath.Abs(fm.Path)
	if err != nil {
		return
	}
	a.tracked[abs] = fm.Path
	if err := a.watcher.Track(abs); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", fm.Path).Msg("cannot watch file")
	}
}

func (a *App) markStale(paths []string) {
	for _, p := range paths {
		if orig, ok := a.tracked[p]; ok {
			a.model.Stale(orig)
		}
	}
}

// handleEvent returns true when the app should exit.
func (a *App) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ctx, ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return false
}

func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if action, ok := a.keys.Lookup(ev); ok {
		switch action {
		case input.Quit:
			return true
		case input.Commit:
			return a.commit(ctx)
		case input.ToggleInput:
			if a.focus == focusPattern {
				a.focus = focusReplacement
			} else {
				a.focus = focusPattern
			}
			return false
		case input.ScrollUp:
			a.scroll(-1)
			return false
		case input.ScrollDown:
			a.scroll(1)
			return false
		case input.PageUp:
			a.scroll(-a.listHeight())
			return false
		case input.PageDown:
			a.scroll(a.listHeight())
			return false
		}
	}

	if a.focus == focusPattern {
		if _, changed := a.pattern.HandleKey(ev, a.keys); changed {
			a.restart(ctx)
		}
		return false
	}
	if text, changed := a.replacement.HandleKey(ev, a.keys); changed {
		a.model.SetReplacement(text)
	}
	return false
}

func (a *App) scroll(delta int) {
	a.offset = min(max(a.offset+delta, 0), max(a.model.Len()-1, 0))
}

// commit drains the session and rewrites every matched file. It returns
// true once the files were processed, even if some of them failed.
func (a *App) commit(ctx context.Context) bool {
	f := a.session.Finder()
	if f == nil {
		a.message = "nothing to replace"
		return false
	}
	if fm, ok := a.mux.Take(a.session.Results()); ok {
		a.record(ctx, fm)
	}

	// Our own writes are not outside changes
	if a.watcher != nil {
		a.watcher.Pause()
	}
	report, err := apply.Commit(ctx, a.session, f, a.replacement.Text(), apply.WithProgress(a))
	if err != nil {
		if a.watcher != nil {
			a.watcher.Resume()
		}
		zerolog.Ctx(ctx).Error().Err(err).Msg("commit failed")
		a.message = err.Error()
		return false
	}
	a.report = report
	return true
}

// OnCommitStart implements apply.ProgressReporter.
func (a *App) OnCommitStart(totalFiles int) {
	a.committing, a.committed = totalFiles, 0
	a.draw()
}

// OnFileCommitted implements apply.ProgressReporter.
func (a *App) OnFileCommitted(result apply.FileResult) {
	a.committed++
	a.draw()
}

// OnCommitComplete implements apply.ProgressReporter.
func (a *App) OnCommitComplete(report *apply.Report) {
	a.committing = 0
}
