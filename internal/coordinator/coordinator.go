// Package coordinator owns the workspace panels: their registry, keyboard
// focus, language rebinding and the routing of reserved keys to actions.
package coordinator

import (
	"fmt"
	"sync"

	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/panel"
	"github.com/dshills/shellpad/internal/shortcut"
)

// KeyRouter receives the action bound to a reserved key.
type KeyRouter interface {
	RouteKey(action string, ev shortcut.Event)
}

// KeyRouterFunc adapts a function to KeyRouter.
type KeyRouterFunc func(action string, ev shortcut.Event)

// RouteKey calls f.
func (f KeyRouterFunc) RouteKey(action string, ev shortcut.Event) { f(action, ev) }

// LanguageListener is called after a panel has been rebound.
type LanguageListener func(name string, lang language.Language)

// Coordinator is the single owner of panel state.
type Coordinator struct {
	Registry

	mu        sync.RWMutex
	keymap    *shortcut.Keymap
	router    KeyRouter
	listeners []LanguageListener
	focus     int
	logger    *logging.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithRouter sets the receiver of reserved keys.
func WithRouter(r KeyRouter) Option {
	return func(c *Coordinator) {
		c.router = r
	}
}

// New creates a coordinator resolving reserved keys through keymap.
func New(keymap *shortcut.Keymap, opts ...Option) *Coordinator {
	c := &Coordinator{
		keymap: keymap,
		focus:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.keymap == nil {
		c.keymap = shortcut.NewKeymap()
	}
	if c.logger == nil {
		c.logger = logging.Null()
	}
	c.logger = c.logger.WithComponent("coordinator")
	return c
}

// Seal ends setup: no further panels can be registered and every panel
// gets the reserved-key hook.
func (c *Coordinator) Seal() {
	c.seal()
	for _, p := range c.Panels() {
		p.InterceptKeys(c.IsReservedKey, c.RouteReservedKey)
	}
	c.logger.Debug("sealed with panels %v", c.Names())
}

// SetRouter replaces the receiver of reserved keys.
func (c *Coordinator) SetRouter(r KeyRouter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.router = r
}

// Keymap returns the keymap used for reserved keys.
func (c *Coordinator) Keymap() *shortcut.Keymap { return c.keymap }

// AddLanguageListener registers l to run after every language change.
func (c *Coordinator) AddLanguageListener(l LanguageListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// OnLanguageChanged rebinds the named panel to lang and notifies listeners.
func (c *Coordinator) OnLanguageChanged(name string, lang language.Language) error {
	p, ok := c.Panel(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPanel, name)
	}
	p.Rebind(lang)
	c.logger.Info("panel %s now %s", name, lang)

	c.mu.RLock()
	listeners := make([]LanguageListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(name, lang)
	}
	return nil
}

// Language returns the language of the named panel, empty if unknown.
func (c *Coordinator) Language(name string) language.Language {
	if p, ok := c.Panel(name); ok {
		return p.Language()
	}
	return ""
}

// Languages returns every bound panel language.
func (c *Coordinator) Languages() []language.Language {
	var out []language.Language
	for _, p := range c.Panels() {
		if p.Bound() {
			out = append(out, p.Language())
		}
	}
	return out
}

// SyncAllFromBackends copies every backend's text into its raw storage.
func (c *Coordinator) SyncAllFromBackends() {
	for _, p := range c.Panels() {
		p.SyncFromBackend()
	}
}

// Focused returns the focused panel, or nil.
func (c *Coordinator) Focused() *panel.Panel {
	c.mu.RLock()
	i := c.focus
	c.mu.RUnlock()
	panels := c.Panels()
	if i < 0 || i >= len(panels) {
		return nil
	}
	return panels[i]
}

// FocusedIndex returns the index of the focused panel, or -1.
func (c *Coordinator) FocusedIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.focus
}

// FocusIndex focuses panel i modulo the panel count; negative indexes
// count back from the end.
func (c *Coordinator) FocusIndex(i int) {
	panels := c.Panels()
	n := len(panels)
	if n == 0 {
		return
	}
	i = ((i % n) + n) % n

	c.mu.Lock()
	prev := c.focus
	c.focus = i
	c.mu.Unlock()

	if prev >= 0 && prev < n && prev != i {
		panels[prev].Blur()
	}
	panels[i].Focus()
}

// FocusNext moves focus to the following panel, wrapping around.
func (c *Coordinator) FocusNext() {
	c.FocusIndex(c.FocusedIndex() + 1)
}

// FocusPrevious moves focus to the preceding panel, wrapping around.
func (c *Coordinator) FocusPrevious() {
	i := c.FocusedIndex()
	if i < 0 {
		i = 0
	}
	c.FocusIndex(i - 1)
}

// FocusName focuses the named panel, as a mouse click would.
func (c *Coordinator) FocusName(name string) error {
	for i, p := range c.Panels() {
		if p.Name() == name {
			c.FocusIndex(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownPanel, name)
}

// IsReservedKey reports whether ev is bound to an action and must bypass
// the editing backends.
func (c *Coordinator) IsReservedKey(ev shortcut.Event) bool {
	return c.keymap.IsReserved(ev)
}

// RouteReservedKey delivers the action bound to ev to the router.
func (c *Coordinator) RouteReservedKey(ev shortcut.Event) {
	action, ok := c.keymap.Lookup(ev)
	if !ok {
		return
	}
	c.mu.RLock()
	router := c.router
	c.mu.RUnlock()
	if router == nil {
		c.logger.Warn("no router for %s (%s)", action, ev)
		return
	}
	c.logger.Debug("key %s -> %s", ev, action)
	router.RouteKey(action, ev)
}

// HandleKey delivers ev to the focused panel. Without focus, or when the
// panel does not consume it, a bound action is routed instead.
func (c *Coordinator) HandleKey(ev shortcut.Event) bool {
	if p := c.Focused(); p != nil && p.HandleKey(ev) {
		return true
	}
	if _, ok := c.keymap.Lookup(ev); ok {
		c.RouteReservedKey(ev)
		return true
	}
	return false
}
