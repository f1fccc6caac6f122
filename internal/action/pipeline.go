// Package action dispatches user-triggered workspace actions.
//
// Every action runs on the UI loop and follows the same shape: check its
// preconditions, operate on the panels and the form, restore any state it
// changed, and publish a notification named after itself. Network requests
// and tool loads complete on other goroutines and resume on the loop.
package action

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dshills/shellpad/internal/asset"
	"github.com/dshills/shellpad/internal/coordinator"
	"github.com/dshills/shellpad/internal/form"
	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/loop"
	"github.com/dshills/shellpad/internal/notify"
	"github.com/dshills/shellpad/internal/panel"
	"github.com/dshills/shellpad/internal/shortcut"
)

// Action names.
const (
	Run          = "run"
	Draft        = "draft"
	Save         = "save"
	SaveNew      = "savenew"
	Clean        = "clean"
	Lint         = "lint"
	Tidy         = "tidy"
	ShowJS       = "showjs"
	Favourite    = "favourite"
	LoadDraft    = shortcut.ActionLoadDraft
	Sidebar      = shortcut.ActionSidebar
	Shortcuts    = shortcut.ActionShortcuts
	NextPanel    = shortcut.ActionNextPanel
	PrevPanel    = shortcut.ActionPrevPanel
	Libraries    = "libraries"
	Dependencies = "dependencies"
)

// Affordances whose visibility the pipeline manages.
const (
	AffordanceLint   = "lint"
	AffordanceTidy   = "tidy"
	AffordanceShowJS = "showjs"
	AffordanceUpdate = "update"
)

// ScriptPanel is the name of the panel lint and showjs read.
const ScriptPanel = "script"

// Origin tells a handler what triggered it.
type Origin int

// Origins.
const (
	OriginButton Origin = iota
	OriginKey
	OriginDraft
)

// Event describes one trigger.
type Event struct {
	Origin Origin
	Key    shortcut.Event

	// Arg carries the selection for actions that need one, such as the
	// library group id.
	Arg string
}

// Handler performs an action.
type Handler func(ev Event) error

// Deps are the collaborators of a Pipeline. Poster defaults to
// loop.Immediate and Notifier to a fresh synchronous notifier.
type Deps struct {
	Coordinator *coordinator.Coordinator
	Form        *form.Form
	Loader      *asset.Loader
	Tools       Tools
	Submitter   form.Submitter
	Presenter   Presenter
	Confirmer   Confirmer
	Navigator   Navigator
	Notifier    *notify.Notifier
	Poster      loop.Poster
	Logger      *logging.Logger
}

// Pipeline binds action names to handlers and runs them.
type Pipeline struct {
	Deps
	settings Settings

	mu         sync.Mutex
	handlers   map[string]Handler
	affordance map[string]bool

	ctx     context.Context
	pending sync.WaitGroup
	logger  *logging.Logger
}

// New creates a pipeline with every built-in action bound.
func New(deps Deps, settings Settings) *Pipeline {
	if deps.Poster == nil {
		deps.Poster = loop.Immediate
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Null()
	}
	p := &Pipeline{
		Deps:       deps,
		settings:   settings,
		handlers:   make(map[string]Handler),
		affordance: make(map[string]bool),
		ctx:        context.Background(),
		logger:     logger.WithComponent("action"),
	}

	p.Bind(Run, p.run)
	p.Bind(Draft, func(ev Event) error {
		ev.Origin = OriginDraft
		return p.run(ev)
	})
	p.Bind(Save, p.save)
	p.Bind(SaveNew, p.saveNew)
	p.Bind(Clean, p.clean)
	p.Bind(Lint, p.lint)
	p.Bind(Tidy, p.tidy)
	p.Bind(ShowJS, p.showJS)
	p.Bind(Favourite, p.favourite)
	p.Bind(LoadDraft, p.loadDraft)
	p.Bind(Sidebar, p.toggleSidebar)
	p.Bind(Shortcuts, p.showShortcuts)
	p.Bind(NextPanel, func(Event) error {
		p.Coordinator.FocusNext()
		return nil
	})
	p.Bind(PrevPanel, func(Event) error {
		p.Coordinator.FocusPrevious()
		return nil
	})
	p.Bind(Libraries, p.loadLibraryVersions)
	p.Bind(Dependencies, p.loadDependencies)
	return p
}

// Attach wires the pipeline into the coordinator: reserved keys are routed
// here and affordances are recomputed now and after every language change.
func (p *Pipeline) Attach() {
	p.Coordinator.SetRouter(p)
	p.Coordinator.AddLanguageListener(func(string, language.Language) {
		p.RecomputeVisibility()
	})
	p.setAffordance(AffordanceUpdate, p.Form.Get(form.FieldSlug) != "")
	p.RecomputeVisibility()
}

// Bind associates name with h, replacing any previous handler.
func (p *Pipeline) Bind(name string, h Handler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[name] = h
}

// Actions returns the bound action names, sorted.
func (p *Pipeline) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.handlers))
	for name := range p.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trigger runs the action bound to name. Failures are logged and shown
// through the presenter; the returned error is for callers that need it.
func (p *Pipeline) Trigger(name string, ev Event) error {
	p.mu.Lock()
	h, ok := p.handlers[name]
	p.mu.Unlock()
	if !ok {
		return &Error{Action: name, Err: ErrUnknownAction}
	}

	p.logger.Debug("trigger %s", name)
	if err := h(ev); err != nil {
		err = &Error{Action: name, Err: err}
		p.logger.Warn("%v", err)
		p.present(func(pr Presenter) { pr.Error(err.Error()) })
		p.Notifier.Failed(name, err)
		return err
	}
	return nil
}

// RouteKey implements coordinator.KeyRouter.
func (p *Pipeline) RouteKey(action string, ev shortcut.Event) {
	if err := p.Trigger(action, Event{Origin: OriginKey, Key: ev}); err != nil {
		p.logger.Debug("key %s: %v", ev, err)
	}
}

// Affordance reports the last visibility set for an affordance.
func (p *Pipeline) Affordance(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.affordance[name]
}

// Wait blocks until every in-flight request has finished and posted its
// continuation.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

func (p *Pipeline) setAffordance(name string, visible bool) {
	p.mu.Lock()
	p.affordance[name] = visible
	p.mu.Unlock()
	p.present(func(pr Presenter) { pr.SetAffordance(name, visible) })
}

func (p *Pipeline) present(fn func(Presenter)) {
	if p.Presenter != nil {
		fn(p.Presenter)
	}
}

func (p *Pipeline) panel(name string) (*panel.Panel, error) {
	pn, ok := p.Coordinator.Panel(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPanel, name)
	}
	return pn, nil
}

// async runs work on a new goroutine and posts its continuation to the
// UI loop.
func (p *Pipeline) async(work func(ctx context.Context) func()) {
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		ctx, cancel := context.WithTimeout(p.ctx, p.timeout())
		defer cancel()
		if cont := work(ctx); cont != nil {
			p.Poster.Post(cont)
		}
	}()
}

func (p *Pipeline) timeout() time.Duration {
	if p.settings.RequestTimeout > 0 {
		return p.settings.RequestTimeout
	}
	return DefaultSettings().RequestTimeout
}
