// Package notify delivers action completion events to observers.
//
// Topics are dot-separated. An observer of "tool" receives "tool.lint"
// and "tool.beautify"; a global observer receives everything.
package notify

import (
	"slices"
	"strings"
	"sync"
)

// Kind classifies an event.
type Kind int

const (
	// KindDone indicates an action finished normally.
	KindDone Kind = iota

	// KindFailed indicates an action finished with an error.
	KindFailed

	// KindLoaded indicates a tool became available.
	KindLoaded
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDone:
		return "done"
	case KindFailed:
		return "failed"
	case KindLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Event is one notification.
type Event struct {
	// Topic is the action or tool name, e.g. "run" or "tool.lint".
	Topic string

	Kind Kind

	// Detail is a short human-readable summary.
	Detail string

	// Err is set for KindFailed.
	Err error
}

// Observer receives events.
type Observer func(ev Event)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type registration struct {
	topic    string
	observer Observer
}

// Notifier fans events out to observers, synchronously by default.
type Notifier struct {
	mu sync.RWMutex

	observers map[uint64]registration
	nextID    uint64

	async  bool
	buffer chan Event
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers events from a background goroutine through a buffer
// of the given size.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Event, bufferSize)
		}
	}
}

// New creates a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		observers: make(map[uint64]registration),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}
	return n
}

// Subscribe registers an observer for every event.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribeTopic("", observer)
}

// SubscribeTopic registers an observer for topic and its sub-topics.
func (n *Notifier) SubscribeTopic(topic string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.observers[id] = registration{topic: topic, observer: observer}
	return &Subscription{id: id, notifier: n}
}

// Notify sends ev to the matching observers. Events sent after Close are
// dropped.
func (n *Notifier) Notify(ev Event) {
	n.mu.RLock()
	closed := n.closed
	n.mu.RUnlock()
	if closed {
		return
	}

	if n.async {
		select {
		case n.buffer <- ev:
		case <-n.done:
		}
		return
	}
	n.deliver(ev)
}

// Done is shorthand for a KindDone event.
func (n *Notifier) Done(topic, detail string) {
	n.Notify(Event{Topic: topic, Kind: KindDone, Detail: detail})
}

// Failed is shorthand for a KindFailed event.
func (n *Notifier) Failed(topic string, err error) {
	n.Notify(Event{Topic: topic, Kind: KindFailed, Detail: err.Error(), Err: err})
}

// Close stops delivery, flushing buffered events. Safe to call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// deliver calls matching observers in subscription order, outside the lock.
func (n *Notifier) deliver(ev Event) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.observers))
	for id, reg := range n.observers {
		if matches(reg.topic, ev.Topic) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	observers := make([]Observer, len(ids))
	for i, id := range ids {
		observers[i] = n.observers[id].observer
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(ev)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()
	for {
		select {
		case ev := <-n.buffer:
			n.deliver(ev)
		case <-n.done:
			for {
				select {
				case ev := <-n.buffer:
					n.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

// matches reports whether an observer of topic receives an event on
// eventTopic.
func matches(topic, eventTopic string) bool {
	if topic == "" || topic == eventTopic {
		return true
	}
	return strings.HasPrefix(eventTopic, topic+".")
}
