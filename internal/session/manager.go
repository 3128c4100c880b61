package session

import (
	"context"
	"sync"

	"github.com/maypok86/otter"
	"github.com/rcorre/lasr/internal/finder"
	"github.com/rcorre/lasr/internal/walk"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultPrefetch is how many results may wait in the channel beyond
	// what the consumer has pulled.
	DefaultPrefetch = 16

	finderCacheSize = 256
)

// Config is fixed for the lifetime of a Manager.
type Config struct {
	Walk     walk.Options
	Finder   finder.Options
	Prefetch int // results channel capacity; 0 makes every send a handoff
}

// Manager owns the single live Session and replaces it on every pattern
// change.
type Manager struct {
	cfg     Config
	finders otter.Cache[string, *finder.Finder]

	mu         sync.Mutex
	current    *Session
	generation uint64
	walks      sync.WaitGroup
}

// NewManager validates the walk roots and prepares the finder cache.
// An invalid root is a setup error reported before any search.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Walk.Paths) == 0 {
		cfg.Walk.Paths = []string{"."}
	}
	if err := walk.ValidateRoots(cfg.Walk.Paths); err != nil {
		return nil, err
	}
	if cfg.Prefetch < 0 {
		cfg.Prefetch = 0
	}

	cache, err := otter.MustBuilder[string, *finder.Finder](finderCacheSize).Build()
	if err != nil {
		return nil, errors.Errorf("failed to build finder cache: %w", err)
	}

	return &Manager{cfg: cfg, finders: cache}, nil
}

// Current returns the live session, nil before the first Start.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Start supersedes the live session and starts a new one for p. An empty or
// invalid pattern still yields a new session, in the Awaiting state and
// with no walk.
func (m *Manager) Start(ctx context.Context, p string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.supersede()
	}
	m.generation++
	s := newSession(m.generation, p)
	m.current = s

	logger := zerolog.Ctx(ctx).With().
		Uint64("generation", s.generation).
		Str("session", s.id.String()).
		Logger()

	f, err := m.finder(p)
	if err != nil {
		logger.Debug().Err(err).Str("pattern", p).Msg("awaiting valid pattern")
		s.await(err)
		return s
	}
	s.finder = f

	w, err := walk.New(m.cfg.Walk, f)
	if err != nil {
		logger.Error().Err(err).Msg("cannot start walk")
		s.walkErr = err
		s.await(err)
		return s
	}

	logger.Debug().Str("pattern", p).Str("kind", f.Kind().String()).Msg("search started")
	s.start(logger.WithContext(ctx), w, m.cfg.Prefetch)
	m.walks.Add(1)
	go func() {
		defer m.walks.Done()
		<-s.done
	}()
	return s
}

// finder returns a compiled finder for p, reusing one compiled earlier.
func (m *Manager) finder(p string) (*finder.Finder, error) {
	if f, ok := m.finders.Get(p); ok {
		return f, nil
	}
	f, err := finder.New(p, m.cfg.Finder)
	if err != nil {
		return nil, err
	}
	m.finders.Set(p, f)
	return f, nil
}

// Close supersedes the live session, waits for every walk goroutine to
// exit and releases the finder cache.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.current != nil {
		m.current.supersede()
	}
	m.mu.Unlock()

	m.walks.Wait()
	m.finders.Close()
}
