// Package tui is the terminal front end. It renders the panels, the
// result pane and the action bar with tcell, turns terminal keys into
// shortcut events, and implements the presenter, confirmer and navigator
// the action pipeline reports through.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/shellpad/internal/action"
	"github.com/dshills/shellpad/internal/backend"
	"github.com/dshills/shellpad/internal/coordinator"
	"github.com/dshills/shellpad/internal/form"
	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/loop"
	"github.com/dshills/shellpad/internal/notify"
	"github.com/dshills/shellpad/internal/shortcut"
)

// button is one entry of the action bar.
type button struct {
	key        tcell.Key
	label      string
	action     string
	affordance string
}

var buttons = []button{
	{tcell.KeyF5, "Run", action.Run, ""},
	{tcell.KeyF6, "Draft", action.Draft, ""},
	{tcell.KeyF2, "Save", action.Save, ""},
	{tcell.KeyF3, "Save new", action.SaveNew, ""},
	{tcell.KeyF7, "JSLint", action.Lint, action.AffordanceLint},
	{tcell.KeyF8, "Tidy", action.Tidy, action.AffordanceTidy},
	{tcell.KeyF9, "Show JS", action.ShowJS, action.AffordanceShowJS},
	{tcell.KeyF10, "Clean", action.Clean, ""},
	{tcell.KeyF11, "Favourite", action.Favourite, ""},
}

// DefaultChoices are the languages each panel cycles through.
var DefaultChoices = map[backend.Kind][]language.Language{
	backend.KindMarkup: {language.HTML},
	backend.KindStyle:  {language.CSS, language.SCSS},
	backend.KindScript: {language.JavaScript, language.JavaScript17, language.CoffeeScript},
}

// Options configure a UI.
type Options struct {
	Coordinator *coordinator.Coordinator
	Pipeline    *action.Pipeline
	Form        *form.Form
	Loop        *loop.Loop
	Logger      *logging.Logger

	// Choices are the languages each panel kind cycles through.
	Choices map[backend.Kind][]language.Language

	// LibraryGroups are the library group ids the sidebar cycles through.
	LibraryGroups []string
}

// UI is the terminal workspace.
type UI struct {
	screen tcell.Screen
	coord  *coordinator.Coordinator
	pipe   *action.Pipeline
	form   *form.Form
	loop   *loop.Loop
	logger *logging.Logger

	choices map[backend.Kind][]language.Language
	groups  []string
	group   int

	mu          sync.Mutex
	resultLabel string
	resultTitle string
	resultBody  string
	status      string
	statusErr   bool
	prompt      string
	affordances map[string]bool
	sidebar     bool
	help        []shortcut.Binding
	location    string
	scroll      map[string]int

	modal       chan tcell.Event
	modalActive atomic.Bool
	drawPending atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a UI on screen. The screen must already be initialized.
func New(screen tcell.Screen, opts Options) *UI {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Null()
	}
	choices := opts.Choices
	if choices == nil {
		choices = DefaultChoices
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &UI{
		screen:      screen,
		coord:       opts.Coordinator,
		pipe:        opts.Pipeline,
		form:        opts.Form,
		loop:        opts.Loop,
		logger:      logger.WithComponent("tui"),
		choices:     choices,
		groups:      opts.LibraryGroups,
		resultLabel: action.DefaultSettings().ResultText,
		affordances: make(map[string]bool),
		scroll:      make(map[string]int),
		modal:       make(chan tcell.Event, 1),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetPipeline attaches the pipeline after construction, for callers that
// must pass the UI to the pipeline first.
func (u *UI) SetPipeline(p *action.Pipeline) {
	u.pipe = p
}

// Run pumps terminal events onto the loop and runs the loop until Quit
// or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		u.cancel()
	}()
	go u.pump()

	u.coord.FocusIndex(0)
	u.invalidate()
	err := u.loop.Run(u.ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}

// Quit stops Run.
func (u *UI) Quit() {
	u.cancel()
}

func (u *UI) pump() {
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return
		}
		u.deliver(ev)
		if u.ctx.Err() != nil {
			return
		}
	}
}

// deliver routes ev to a pending prompt or onto the loop.
func (u *UI) deliver(ev tcell.Event) {
	if u.modalActive.Load() {
		select {
		case u.modal <- ev:
		case <-u.ctx.Done():
		}
		return
	}
	u.loop.Post(func() { u.HandleEvent(ev) })
}

// HandleEvent processes one terminal event. It runs on the loop.
func (u *UI) HandleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		u.handleKey(e)
	case *tcell.EventResize:
		u.screen.Sync()
	}
	u.Draw()
}

func (u *UI) handleKey(e *tcell.EventKey) {
	for _, b := range buttons {
		if e.Key() == b.key {
			u.trigger(b.action, action.Event{Origin: action.OriginButton})
			return
		}
	}

	ev, ok := convertKey(e)
	if !ok {
		return
	}

	switch {
	case ev.Key == shortcut.KeyRune && ev.Rune == 'q' && ev.Mod == shortcut.ModCtrl:
		u.Quit()
		return
	case ev.Key == shortcut.KeyEscape && u.dismiss():
		return
	case ev.Key == shortcut.KeyRune && ev.Mod == shortcut.ModAlt:
		if u.handleAlt(ev.Rune) {
			return
		}
	}

	if !u.coord.HandleKey(ev) {
		u.logger.Debug("unhandled key %s", ev)
	}
}

// handleAlt runs the workspace commands bound to Alt.
func (u *UI) handleAlt(r rune) bool {
	switch {
	case r == 'l':
		u.cycleLanguage()
	case r == 'g' && len(u.groups) > 0:
		id := u.groups[u.group%len(u.groups)]
		u.group++
		u.trigger(action.Libraries, action.Event{Arg: id})
	case r == 'n' && u.form != nil:
		u.nextLibrary()
	case r >= '1' && r <= '9' && u.form != nil:
		deps := u.form.Dependencies()
		if i := int(r - '1'); i < len(deps) {
			u.form.CheckDependency(deps[i].ID, !u.form.Checked(deps[i].ID))
		}
	default:
		return false
	}
	return true
}

// cycleLanguage switches the focused panel to its next language.
func (u *UI) cycleLanguage() {
	p := u.coord.Focused()
	if p == nil {
		return
	}
	langs := u.choices[p.Kind()]
	if len(langs) < 2 {
		return
	}
	i := slices.Index(langs, p.Language())
	next := langs[(i+1)%len(langs)]
	if err := u.coord.OnLanguageChanged(p.Name(), next); err != nil {
		u.Error(err.Error())
	}
}

// nextLibrary selects the next library version and loads its plugins.
func (u *UI) nextLibrary() {
	libs := u.form.Libraries()
	if len(libs) == 0 {
		return
	}
	i := slices.IndexFunc(libs, func(l form.Library) bool { return l.ID == u.form.Library() })
	next := libs[(i+1)%len(libs)]
	u.trigger(action.Dependencies, action.Event{Arg: next.ID})
}

func (u *UI) trigger(name string, ev action.Event) {
	if u.pipe == nil {
		return
	}
	if err := u.pipe.Trigger(name, ev); err != nil {
		u.logger.Debug("%s: %v", name, err)
	}
}

// dismiss closes the help overlay, reporting whether one was open.
func (u *UI) dismiss() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.help == nil {
		return false
	}
	u.help = nil
	return true
}

// invalidate schedules a redraw on the loop, coalescing repeated calls.
func (u *UI) invalidate() {
	if u.loop == nil || !u.drawPending.CompareAndSwap(false, true) {
		return
	}
	u.loop.Post(func() {
		u.drawPending.Store(false)
		u.Draw()
	})
}

// Result implements action.Presenter.
func (u *UI) Result(title, body string) {
	u.mu.Lock()
	u.resultTitle = title
	u.resultBody = body
	u.mu.Unlock()
	u.invalidate()
}

// Error implements action.Presenter.
func (u *UI) Error(msg string) {
	u.setStatus(msg, true)
}

// SetAffordance implements action.Presenter.
func (u *UI) SetAffordance(name string, visible bool) {
	u.mu.Lock()
	u.affordances[name] = visible
	u.mu.Unlock()
	u.invalidate()
}

// SetResultLabel implements action.Presenter.
func (u *UI) SetResultLabel(text string) {
	u.mu.Lock()
	u.resultLabel = text
	u.resultTitle = ""
	u.resultBody = ""
	u.mu.Unlock()
	u.invalidate()
}

// ToggleSidebar implements action.Presenter.
func (u *UI) ToggleSidebar() {
	u.mu.Lock()
	u.sidebar = !u.sidebar
	u.mu.Unlock()
	u.invalidate()
}

// ShowShortcuts implements action.Presenter.
func (u *UI) ShowShortcuts(bindings []shortcut.Binding) {
	u.mu.Lock()
	u.help = append([]shortcut.Binding{}, bindings...)
	u.mu.Unlock()
	u.invalidate()
}

// Confirm implements action.Confirmer. It blocks the loop until the user
// answers y or n; Escape answers no.
func (u *UI) Confirm(question string) bool {
	u.mu.Lock()
	u.prompt = question + " (y/n)"
	u.mu.Unlock()
	u.modalActive.Store(true)
	defer func() {
		u.modalActive.Store(false)
		u.mu.Lock()
		u.prompt = ""
		u.mu.Unlock()
	}()
	u.Draw()

	for {
		select {
		case <-u.ctx.Done():
			return false
		case ev := <-u.modal:
			k, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			switch {
			case k.Key() == tcell.KeyEscape:
				return false
			case k.Key() == tcell.KeyRune && (k.Rune() == 'y' || k.Rune() == 'Y'):
				return true
			case k.Key() == tcell.KeyRune && (k.Rune() == 'n' || k.Rune() == 'N'):
				return false
			}
		}
	}
}

// Navigate implements action.Navigator. A fiddle address becomes the
// workspace identity so later saves update it.
func (u *UI) Navigate(url string) {
	u.mu.Lock()
	u.location = url
	u.mu.Unlock()
	if slug, version, ok := parseLocation(url); ok && u.form != nil {
		u.form.Set(form.FieldSlug, slug)
		u.form.Set(form.FieldVersion, version)
		u.SetAffordance(action.AffordanceUpdate, true)
	}
	u.setStatus("at "+url, false)
}

// Open implements action.Navigator.
func (u *UI) Open(url, target string) {
	u.setStatus(fmt.Sprintf("opened %s in %s", url, target), false)
}

// Observe reports pipeline notifications on the status line.
func (u *UI) Observe(ev notify.Event) {
	switch ev.Kind {
	case notify.KindDone:
		msg := ev.Topic + " done"
		if ev.Detail != "" {
			msg += ": " + ev.Detail
		}
		u.setStatus(msg, false)
	case notify.KindLoaded:
		u.setStatus(ev.Topic+" loaded", false)
	}
}

// Location returns the last navigated address.
func (u *UI) Location() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.location
}

func (u *UI) setStatus(msg string, isErr bool) {
	u.mu.Lock()
	u.status = msg
	u.statusErr = isErr
	u.mu.Unlock()
	u.invalidate()
}

// parseLocation splits "/slug/" or "/slug/version/".
func parseLocation(url string) (slug, version string, ok bool) {
	parts := strings.Split(strings.Trim(url, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		return parts[0], "0", true
	case len(parts) == 2 && parts[0] != "":
		if _, err := strconv.Atoi(parts[1]); err != nil {
			return "", "", false
		}
		return parts[0], parts[1], true
	}
	return "", "", false
}
