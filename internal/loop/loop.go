// Package loop provides the single-goroutine event loop that every UI
// action and asynchronous continuation runs on.
//
// Work reaches the loop through Post from any goroutine; Run executes it
// in order on the calling goroutine. This keeps panel and form state
// single-threaded without locks in the components that own it.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Run once the loop has been closed.
var ErrClosed = errors.New("event loop is closed")

// DefaultQueueSize is the number of tasks buffered before Post blocks.
const DefaultQueueSize = 256

// Poster schedules a function to run on the UI loop.
type Poster interface {
	Post(fn func())
}

// PosterFunc adapts a function to the Poster interface.
type PosterFunc func(fn func())

// Post implements Poster.
func (f PosterFunc) Post(fn func()) { f(fn) }

// Immediate runs posted functions synchronously on the posting goroutine.
// Useful when the caller already serializes work, and in tests.
var Immediate Poster = PosterFunc(func(fn func()) { fn() })

// Loop serializes tasks onto one goroutine.
type Loop struct {
	queue     chan func()
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	// PanicHandler receives values recovered from panicking tasks.
	PanicHandler func(recovered any)
}

// New creates a loop with the given queue size.
func New(queueSize int) *Loop {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Post enqueues fn. Tasks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Run executes queued tasks until ctx is cancelled or Close is called.
// It must be called from the goroutine that owns UI state.
func (l *Loop) Run(ctx context.Context) error {
	if l.closed.Load() {
		return ErrClosed
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.queue:
			l.execute(fn)
		}
	}
}

// Drain runs every task currently queued and returns how many ran.
// It never blocks waiting for new work.
func (l *Loop) Drain() int {
	n := 0
	for {
		select {
		case fn := <-l.queue:
			l.execute(fn)
			n++
		default:
			return n
		}
	}
}

func (l *Loop) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil && l.PanicHandler != nil {
			l.PanicHandler(r)
		}
	}()
	fn()
}

// Close stops Run. Pending tasks are discarded.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		close(l.done)
	})
}
