// Package shortcut models key events and the reserved key combinations
// that are routed to workspace actions instead of the editing backend.
package shortcut

import (
	"strings"
	"unicode"
)

// Key represents a keyboard key. Character keys use KeyRune with the
// character stored in Event.Rune.
type Key uint8

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace

	// KeyRune is used for character keys.
	KeyRune
)

var keyNames = map[Key]string{
	KeyNone:      "None",
	KeyEscape:    "Escape",
	KeyEnter:     "Enter",
	KeyTab:       "Tab",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeySpace:     "Space",
	KeyRune:      "Rune",
}

// String returns a human-readable name for the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Unknown"
}

// keyFromName maps lower-case names and common aliases to keys.
func keyFromName(name string) Key {
	switch strings.ToLower(name) {
	case "esc", "escape":
		return KeyEscape
	case "enter", "return", "cr":
		return KeyEnter
	case "tab":
		return KeyTab
	case "backspace", "bs":
		return KeyBackspace
	case "delete", "del":
		return KeyDelete
	case "home":
		return KeyHome
	case "end":
		return KeyEnd
	case "pageup", "pgup":
		return KeyPageUp
	case "pagedown", "pgdn":
		return KeyPageDown
	case "up":
		return KeyUp
	case "down":
		return KeyDown
	case "left":
		return KeyLeft
	case "right":
		return KeyRight
	case "space":
		return KeySpace
	default:
		return KeyNone
	}
}

// Modifier represents keyboard modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS).
	ModMeta
)

// Has returns true if m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// String returns the modifiers joined with "+", in Ctrl, Alt, Shift,
// Meta order.
func (m Modifier) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}

// modifierFromName maps a modifier name to its flag.
func modifierFromName(name string) Modifier {
	switch strings.ToLower(name) {
	case "ctrl", "control", "c":
		return ModCtrl
	case "alt", "opt", "option", "a":
		return ModAlt
	case "shift", "s":
		return ModShift
	case "meta", "cmd", "command", "super", "m", "d":
		return ModMeta
	default:
		return ModNone
	}
}

// Event is a single key press.
type Event struct {
	Key  Key
	Rune rune
	Mod  Modifier
}

// NewRuneEvent creates an event for a character key.
func NewRuneEvent(r rune, mod Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Mod: mod}
}

// NewSpecialEvent creates an event for a non-character key.
func NewSpecialEvent(k Key, mod Modifier) Event {
	return Event{Key: k, Mod: mod}
}

// Normalize returns the canonical form used for keymap lookups.
// With Ctrl, Alt or Meta held, letters compare case-insensitively.
func (e Event) Normalize() Event {
	if e.Key == KeyRune && e.Mod.Has(ModCtrl|ModAlt|ModMeta) {
		e.Rune = unicode.ToLower(e.Rune)
	}
	if e.Key == KeyRune && e.Rune == ' ' {
		e.Key, e.Rune = KeySpace, 0
	}
	return e
}

// IsPrintable reports whether the event inserts a character.
func (e Event) IsPrintable() bool {
	return e.Key == KeyRune && !e.Mod.Has(ModCtrl|ModAlt|ModMeta) && unicode.IsPrint(e.Rune)
}

// String returns the event in "Ctrl+Shift+Enter" notation.
func (e Event) String() string {
	var name string
	switch e.Key {
	case KeyRune:
		name = string(e.Rune)
	default:
		name = e.Key.String()
	}
	if mods := e.Mod.String(); mods != "" {
		return mods + "+" + name
	}
	return name
}
