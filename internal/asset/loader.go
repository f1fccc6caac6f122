// Package asset loads optional tools (linter, beautifier, compiler) at most
// once per session and resumes the actions that were waiting on them.
//
// Each tool has a cache entry that moves unloaded → loading → loaded.
// Ensure on a loaded tool runs its callback immediately; on any other
// state it queues the callback and reports the action as deferred. All
// queued callbacks fire exactly once, in order, on the UI loop when the
// single underlying load completes.
//
// A failed load drops its queued callbacks and is only logged. Nothing is
// retried until some later user action calls Ensure again.
package asset

import (
	"context"
	"sync"
	"time"

	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/loop"
)

// Installer makes fetched tool source available to the rest of the
// system. Install is always called on the UI loop.
type Installer interface {
	Install(id ToolID, path string, source []byte) error
}

// InstallerFunc adapts a function to the Installer interface.
type InstallerFunc func(id ToolID, path string, source []byte) error

// Install implements Installer.
func (f InstallerFunc) Install(id ToolID, path string, source []byte) error {
	return f(id, path, source)
}

type entry struct {
	state   State
	waiters []func()
	loads   int
}

// Loader is the process-wide tool cache.
type Loader struct {
	mu      sync.Mutex
	entries map[ToolID]*entry
	paths   map[ToolID]string

	fetcher   Fetcher
	installer Installer
	poster    loop.Poster
	logger    *logging.Logger
	timeout   time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithPaths overrides the asset path of individual tools.
func WithPaths(paths map[ToolID]string) Option {
	return func(l *Loader) {
		for id, p := range paths {
			l.paths[id] = p
		}
	}
}

// WithPoster sets where completions are delivered. Defaults to
// loop.Immediate.
func WithPoster(p loop.Poster) Option {
	return func(l *Loader) {
		if p != nil {
			l.poster = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger.WithComponent("asset")
		}
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// NewLoader creates a loader that fetches with f and installs with inst.
func NewLoader(f Fetcher, inst Installer, opts ...Option) *Loader {
	l := &Loader{
		entries:   make(map[ToolID]*entry),
		paths:     make(map[ToolID]string, len(DefaultPaths)),
		fetcher:   f,
		installer: inst,
		poster:    loop.Immediate,
		logger:    logging.Null(),
		timeout:   30 * time.Second,
	}
	for id, p := range DefaultPaths {
		l.paths[id] = p
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ensure guarantees tool id is loaded before onReady runs.
//
// If the tool is already loaded onReady runs synchronously and Ensure
// returns false. Otherwise onReady is queued behind a single load and
// Ensure returns true, telling the caller to abandon the current
// synchronous action and let onReady resume it.
func (l *Loader) Ensure(id ToolID, onReady func()) bool {
	l.mu.Lock()
	e := l.entry(id)

	switch e.state {
	case StateLoaded:
		l.mu.Unlock()
		if onReady != nil {
			onReady()
		}
		return false

	case StateLoading:
		if onReady != nil {
			e.waiters = append(e.waiters, onReady)
		}
		l.mu.Unlock()
		return true
	}

	e.state = StateLoading
	e.loads++
	if onReady != nil {
		e.waiters = append(e.waiters, onReady)
	}
	path, known := l.paths[id]
	l.mu.Unlock()

	if !known {
		l.complete(id, &LoadError{Tool: id, Err: ErrUnknownTool})
		return true
	}

	l.logger.WithField("tool", id).Debug("loading %s", path)
	go l.load(id, path)
	return true
}

// entry returns the cache entry for id, creating it on first demand.
// Caller must hold l.mu.
func (l *Loader) entry(id ToolID) *entry {
	e, ok := l.entries[id]
	if !ok {
		e = &entry{}
		l.entries[id] = e
	}
	return e
}

func (l *Loader) load(id ToolID, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	source, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		l.poster.Post(func() {
			l.complete(id, &LoadError{Tool: id, Path: path, Err: err})
		})
		return
	}

	l.poster.Post(func() {
		var installErr error
		if l.installer == nil {
			installErr = ErrNoInstaller
		} else {
			installErr = l.installer.Install(id, path, source)
		}
		if installErr != nil {
			installErr = &LoadError{Tool: id, Path: path, Err: installErr}
		}
		l.complete(id, installErr)
	})
}

// complete finishes a load. It runs on the UI loop.
func (l *Loader) complete(id ToolID, err error) {
	l.mu.Lock()
	e := l.entry(id)
	waiters := e.waiters
	e.waiters = nil

	if err != nil {
		e.state = StateUnloaded
		l.mu.Unlock()
		l.logger.WithField("tool", id).Warn("load failed, %d waiting action(s) dropped: %v", len(waiters), err)
		return
	}

	e.state = StateLoaded
	l.mu.Unlock()
	l.logger.WithField("tool", id).Info("loaded")

	for _, fn := range waiters {
		fn()
	}
}

// MarkLoaded records a tool as loaded without fetching it, for tools
// that are installed ahead of time.
func (l *Loader) MarkLoaded(id ToolID) {
	l.mu.Lock()
	e := l.entry(id)
	if e.state == StateLoading {
		l.mu.Unlock()
		return
	}
	e.state = StateLoaded
	l.mu.Unlock()
}

// State returns the cache state of a tool.
func (l *Loader) State(id ToolID) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		return e.state
	}
	return StateUnloaded
}

// Loaded reports whether a tool is ready for use.
func (l *Loader) Loaded(id ToolID) bool {
	return l.State(id) == StateLoaded
}

// Loads returns how many underlying loads were started for a tool.
func (l *Loader) Loads(id ToolID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[id]; ok {
		return e.loads
	}
	return 0
}

// Path returns the asset path of a tool.
func (l *Loader) Path(id ToolID) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.paths[id]
	return p, ok
}
