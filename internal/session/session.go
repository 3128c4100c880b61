// Package session implements the restartable search protocol: each pattern
// edit replaces the current Session, cancelling its walk and discarding its
// results.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/walk"
	"gitlab.com/tozd/go/errors"
)

// ErrSuperseded is returned when draining a session replaced by a newer one.
var ErrSuperseded = errors.Base("session superseded")

// Session is one search generation. Results flow through a bounded channel
// that the single consumer pulls from and records.
type Session struct {
	id         uuid.UUID
	generation uint64
	pattern    string
	finder     *finder.Finder
	err        error

	walker  *walk.Walker
	results chan finder.FileMatch
	done    chan struct{}
	cancel  context.CancelFunc

	mu      sync.Mutex
	state   State
	cache   []finder.FileMatch
	walkErr error
}

func newSession(generation uint64, pattern string) *Session {
	return &Session{
		id:         uuid.New(),
		generation: generation,
		pattern:    pattern,
		done:       make(chan struct{}),
		state:      Idle,
	}
}

// ID returns the unique id of the session.
func (s *Session) ID() uuid.UUID { return s.id }

// Generation returns the pattern generation, increasing with every Start.
func (s *Session) Generation() uint64 { return s.generation }

// Pattern returns the pattern the session was started with.
func (s *Session) Pattern() string { return s.pattern }

// Finder returns the compiled finder, nil while Awaiting.
func (s *Session) Finder() *finder.Finder { return s.finder }

// Err returns why the pattern could not be compiled, if it could not.
func (s *Session) Err() error { return s.err }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results returns the receive side of the bounded results channel. It is
// nil, and blocks forever, when no walk was started. The channel closes when
// the walk ends.
func (s *Session) Results() <-chan finder.FileMatch {
	return s.results
}

// Done is closed once the walk goroutine has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns the walker counters, nil when no walk was started.
func (s *Session) Stats() *walk.Stats {
	if s.walker == nil {
		return nil
	}
	return s.walker.Stats()
}

// WalkErr returns the error that ended the walk, if any.
func (s *Session) WalkErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walkErr
}

// Record stores a result received from Results. It returns false, dropping
// fm, once the session is superseded.
func (s *Session) Record(fm finder.FileMatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Superseded || s.state == Awaiting {
		return false
	}
	s.cache = append(s.cache, fm)
	return true
}

// Cached returns a copy of the recorded results.
func (s *Session) Cached() []finder.FileMatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]finder.FileMatch(nil), s.cache...)
}

// Drain ignores backpressure and records every remaining result, then
// returns everything recorded. The caller must not read Results
// concurrently.
func (s *Session) Drain(ctx context.Context) ([]finder.FileMatch, error) {
	s.mu.Lock()
	switch s.state {
	case Superseded:
		s.mu.Unlock()
		return nil, ErrSuperseded
	case Awaiting:
		s.mu.Unlock()
		return nil, nil
	}
	s.state = Draining
	s.mu.Unlock()

	if s.results != nil {
	loop:
		for {
			select {
			case fm, ok := <-s.results:
				if !ok {
					break loop
				}
				if !s.Record(fm) {
					return nil, ErrSuperseded
				}
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Superseded {
		return nil, ErrSuperseded
	}
	s.state = Completed
	return append([]finder.FileMatch(nil), s.cache...), s.walkErr
}

// supersede cancels the walk and discards recorded results.
func (s *Session) supersede() {
	s.mu.Lock()
	s.state = Superseded
	s.cache = nil
	s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// await marks a session whose pattern did not compile.
func (s *Session) await(err error) {
	s.err = err
	s.state = Awaiting
	close(s.done)
}

// start launches the walk in the background.
func (s *Session) start(ctx context.Context, w *walk.Walker, prefetch int) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.walker = w
	s.results = make(chan finder.FileMatch, prefetch)
	s.state = Searching

	go func() {
		defer close(s.done)
		err := w.Run(ctx, s.results)

		s.mu.Lock()
		s.walkErr = err
		s.mu.Unlock()
		close(s.results)
	}()
}

// Finish marks a Searching session Completed once the consumer has seen
// Results close.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Searching {
		s.state = Completed
	}
}
