package shortcut

import (
	"fmt"
	"sort"
	"sync"
)

// Action names bound by the default keymap.
const (
	ActionRun       = "run"
	ActionSave      = "save"
	ActionLoadDraft = "loaddraft"
	ActionNextPanel = "nextpanel"
	ActionPrevPanel = "prevpanel"
	ActionSidebar   = "sidebar"
	ActionShortcuts = "shortcuts"
)

// Binding associates a key event with an action name.
type Binding struct {
	Event  Event
	Action string
}

// Keymap maps key events to action names. It is safe for concurrent use.
type Keymap struct {
	mu       sync.RWMutex
	bindings map[Event]string
}

// NewKeymap creates an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[Event]string)}
}

// DefaultKeymap returns the workspace shortcuts with primary as the
// primary modifier (ModCtrl, or ModMeta on macOS).
func DefaultKeymap(primary Modifier) *Keymap {
	km := NewKeymap()
	km.BindEvent(NewSpecialEvent(KeyEnter, primary), ActionRun)
	km.BindEvent(NewRuneEvent('s', primary), ActionSave)
	km.BindEvent(NewSpecialEvent(KeyEnter, primary|ModShift), ActionLoadDraft)
	km.BindEvent(NewSpecialEvent(KeyDown, primary), ActionNextPanel)
	km.BindEvent(NewSpecialEvent(KeyUp, primary), ActionPrevPanel)
	km.BindEvent(NewSpecialEvent(KeyUp, primary|ModShift), ActionSidebar)
	km.BindEvent(NewRuneEvent('?', ModNone), ActionShortcuts)
	return km
}

// Bind parses spec and binds it to action, replacing any previous
// binding for the same event.
func (km *Keymap) Bind(spec, action string) error {
	ev, err := Parse(spec)
	if err != nil {
		return fmt.Errorf("binding %s: %w", action, err)
	}
	km.BindEvent(ev, action)
	return nil
}

// BindEvent binds ev to action.
func (km *Keymap) BindEvent(ev Event, action string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	km.bindings[ev.Normalize()] = action
}

// Rebind moves action to the event described by spec, removing every
// event previously bound to it.
func (km *Keymap) Rebind(action, spec string) error {
	ev, err := Parse(spec)
	if err != nil {
		return fmt.Errorf("binding %s: %w", action, err)
	}
	km.mu.Lock()
	defer km.mu.Unlock()
	for e, a := range km.bindings {
		if a == action {
			delete(km.bindings, e)
		}
	}
	km.bindings[ev] = action
	return nil
}

// Lookup returns the action bound to ev.
func (km *Keymap) Lookup(ev Event) (string, bool) {
	km.mu.RLock()
	defer km.mu.RUnlock()
	action, ok := km.bindings[ev.Normalize()]
	return action, ok
}

// IsReserved reports whether ev must be taken away from an editing
// backend. Printable bindings such as "?" only apply outside editors.
func (km *Keymap) IsReserved(ev Event) bool {
	ev = ev.Normalize()
	if ev.IsPrintable() || ev.Key == KeySpace && ev.Mod == ModNone {
		return false
	}
	_, ok := km.Lookup(ev)
	return ok
}

// Bindings returns every binding ordered by action name, then by the
// textual form of the event.
func (km *Keymap) Bindings() []Binding {
	km.mu.RLock()
	out := make([]Binding, 0, len(km.bindings))
	for ev, action := range km.bindings {
		out = append(out, Binding{Event: ev, Action: action})
	}
	km.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].Event.String() < out[j].Event.String()
	})
	return out
}
