// Package panel implements the editor panels of the workspace.
//
// A Panel is detached until its first Rebind, after which it is bound to a
// language and either owns a rich backend built from the capability
// registry or stores its text raw.
package panel

import (
	"errors"
	"strings"
	"sync"

	"github.com/dshills/shellpad/internal/backend"
	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/shortcut"
)

// Panel is one editable surface: markup, style or script.
type Panel struct {
	mu sync.RWMutex

	kind     backend.Kind
	registry *backend.Registry
	logger   *logging.Logger

	bound bool
	lang  language.Language
	eng   backend.Engine
	raw   string
	label string

	visible bool
	focused bool
	width   int
	height  int

	isReserved backend.ReservedFunc
	route      backend.RouteFunc
}

// Option configures a Panel.
type Option func(*Panel)

// WithLogger sets the panel logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Panel) {
		p.logger = l
	}
}

// New creates a detached, visible panel of the given kind.
func New(kind backend.Kind, registry *backend.Registry, opts ...Option) *Panel {
	p := &Panel{
		kind:     kind,
		registry: registry,
		visible:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Null()
	}
	p.logger = p.logger.WithComponent("panel." + string(kind))
	return p
}

// Name returns the fixed panel name.
func (p *Panel) Name() string { return string(p.kind) }

// Kind returns the panel kind.
func (p *Panel) Kind() backend.Kind { return p.kind }

// Bound reports whether the panel has been bound to a language.
func (p *Panel) Bound() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.bound
}

// Language returns the bound language, empty while detached.
func (p *Panel) Language() language.Language {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lang
}

// Rebind binds the panel to lang. It is a no-op when the panel is already
// bound to lang. Otherwise the current text is captured, the old backend is
// destroyed, and a new backend is built from the registry; without one the
// panel runs in raw mode. The label is re-applied either way.
func (p *Panel) Rebind(lang language.Language) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bound && p.lang == lang {
		return
	}

	if p.eng != nil {
		p.raw = p.eng.Content()
		if err := p.eng.Close(); err != nil {
			p.logger.Warn("closing %s backend: %v", p.lang, err)
		}
		p.eng = nil
	}

	p.bound = true
	p.lang = lang

	eng, err := p.registry.Build(p.kind, lang)
	switch {
	case err == nil:
		eng.SetContent(p.raw)
		eng.Reset()
		if p.isReserved != nil {
			eng.InterceptKeys(p.isReserved, p.route)
		}
		if p.focused {
			eng.Focus()
		}
		p.eng = eng
		p.logger.Debug("bound to %s", lang)
	case errors.Is(err, backend.ErrNoCapability):
		p.logger.Debug("no backend for %s, raw mode", lang)
	default:
		p.logger.Warn("building backend for %s: %v", lang, err)
	}

	p.label = lang.DisplayName()
}

// Content returns the backend text, or the raw text in raw mode.
func (p *Panel) Content() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.eng != nil {
		return p.eng.Content()
	}
	return p.raw
}

// SetContent replaces the text in both the backend and raw storage.
func (p *Panel) SetContent(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = text
	if p.eng != nil {
		p.eng.SetContent(text)
	}
}

// Clean empties the panel and resets backend tokenizer and undo state.
func (p *Panel) Clean() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = ""
	if p.eng != nil {
		p.eng.SetContent("")
		p.eng.Reset()
	}
}

// SyncFromBackend copies the backend text into raw storage.
func (p *Panel) SyncFromBackend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.eng != nil {
		p.raw = p.eng.Content()
	}
}

// Raw returns the form-facing text.
func (p *Panel) Raw() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.raw
}

// SetRaw replaces the form-facing text without touching the backend.
func (p *Panel) SetRaw(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.raw = text
}

// Backend returns the current backend, nil in raw mode.
func (p *Panel) Backend() backend.Engine {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.eng
}

// Label returns the panel caption.
func (p *Panel) Label() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.label
}

// SetLabel overrides the panel caption until the next rebind.
func (p *Panel) SetLabel(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.label = label
}

// Show makes the panel visible.
func (p *Panel) Show() { p.setVisible(true) }

// Hide hides the panel.
func (p *Panel) Hide() { p.setVisible(false) }

func (p *Panel) setVisible(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = v
}

// Visible reports whether the panel is shown.
func (p *Panel) Visible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

// SetDimensions records the panel size in cells.
func (p *Panel) SetDimensions(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = max(0, width), max(0, height)
}

// Dimensions returns the panel size in cells.
func (p *Panel) Dimensions() (width, height int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.width, p.height
}

// Focus gives the panel keyboard focus.
func (p *Panel) Focus() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = true
	if p.eng != nil {
		p.eng.Focus()
	}
}

// Blur removes keyboard focus.
func (p *Panel) Blur() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focused = false
	if b, ok := p.eng.(interface{ Blur() }); ok {
		b.Blur()
	}
}

// Focused reports whether the panel has keyboard focus.
func (p *Panel) Focused() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.focused
}

// InterceptKeys installs the reserved-key hook on the current backend and
// on every backend built by later rebinds.
func (p *Panel) InterceptKeys(isReserved backend.ReservedFunc, route backend.RouteFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.isReserved = isReserved
	p.route = route
	if p.eng != nil {
		p.eng.InterceptKeys(isReserved, route)
	}
}

// HandleKey delivers a key press. In raw mode the panel edits its raw text
// at the end, like a plain text area.
func (p *Panel) HandleKey(ev shortcut.Event) bool {
	p.mu.Lock()
	if eng := p.eng; eng != nil {
		p.mu.Unlock()
		return eng.HandleKey(ev)
	}
	if p.isReserved != nil && p.isReserved(ev) {
		route := p.route
		p.mu.Unlock()
		if route != nil {
			route(ev)
		}
		return true
	}
	defer p.mu.Unlock()

	switch {
	case ev.IsPrintable():
		p.raw += string(ev.Rune)
	case ev.Key == shortcut.KeySpace:
		p.raw += " "
	case ev.Key == shortcut.KeyEnter:
		p.raw += "\n"
	case ev.Key == shortcut.KeyTab:
		p.raw += "\t"
	case ev.Key == shortcut.KeyBackspace:
		if p.raw != "" {
			rs := []rune(p.raw)
			p.raw = string(rs[:len(rs)-1])
		}
	default:
		return false
	}
	return true
}

// RawLines returns the raw text split into lines, for rendering.
func (p *Panel) RawLines() []string {
	return strings.Split(p.Raw(), "\n")
}

// Close destroys the backend. The panel keeps its text in raw storage.
func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.eng == nil {
		return nil
	}
	p.raw = p.eng.Content()
	err := p.eng.Close()
	p.eng = nil
	return err
}
