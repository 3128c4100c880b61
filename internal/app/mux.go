package app

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rcorre/lasr/internal/finder"
	"gitlab.com/tozd/go/errors"
)

// ErrInputClosed is returned once the input event source is exhausted.
var ErrInputClosed = errors.Base("input closed")

// EventKind identifies which source produced an Event.
type EventKind int

const (
	InputEvent    EventKind = iota // a terminal event
	ChangeEvent                    // matched files changed on disk
	ResultEvent                    // a search result
	ResultsClosed                  // the results channel closed
)

// Event is one item delivered by Mux.Next.
type Event struct {
	Kind    EventKind
	Input   tcell.Event
	Changed []string
	Result  finder.FileMatch
}

// Mux multiplexes terminal input, file change notifications and search
// results with strict priority: a ready input event is always delivered
// before anything else. A result received in the same wakeup as an input
// event is held and delivered on a later call, but only if the caller is
// still reading the channel it came from.
type Mux struct {
	input   <-chan tcell.Event
	changes <-chan []string

	held     *finder.FileMatch
	heldFrom <-chan finder.FileMatch
}

// NewMux creates a Mux. changes may be nil.
func NewMux(input <-chan tcell.Event, changes <-chan []string) *Mux {
	return &Mux{input: input, changes: changes}
}

// Next waits for the next event. results is the live session's channel, or
// nil when the caller does not want more results right now.
func (m *Mux) Next(ctx context.Context, results <-chan finder.FileMatch) (Event, error) {
	select {
	case ev, ok := <-m.input:
		return inputEvent(ev, ok)
	default:
	}

	if m.held != nil && results != nil {
		fm, from := *m.held, m.heldFrom
		m.held, m.heldFrom = nil, nil
		if from == results {
			return Event{Kind: ResultEvent, Result: fm}, nil
		}
		// From a superseded session
	}

	select {
	case ev, ok := <-m.input:
		return inputEvent(ev, ok)
	case paths := <-m.changes:
		return Event{Kind: ChangeEvent, Changed: paths}, nil
	case fm, ok := <-results:
		if !ok {
			return Event{Kind: ResultsClosed}, nil
		}
		select {
		case ev, ok := <-m.input:
			m.held, m.heldFrom = &fm, results
			return inputEvent(ev, ok)
		default:
		}
		return Event{Kind: ResultEvent, Result: fm}, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// Take removes and returns a result held from results, so that a caller
// about to read results directly does not lose it.
func (m *Mux) Take(results <-chan finder.FileMatch) (finder.FileMatch, bool) {
	if m.held == nil || m.heldFrom != results {
		return finder.FileMatch{}, false
	}
	fm := *m.held
	m.held, m.heldFrom = nil, nil
	return fm, true
}

// Holding reports whether a result is waiting to be delivered.
func (m *Mux) Holding() bool {
	return m.held != nil
}

func inputEvent(ev tcell.Event, ok bool) (Event, error) {
	if !ok {
		return Event{}, ErrInputClosed
	}
	return Event{Kind: InputEvent, Input: ev}, nil
}
