package shortcut

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification into an Event.
//
// Supported formats:
//   - Single character: "a", "?"
//   - Key names: "Enter", "Up", "Space"
//   - With modifiers: "Ctrl+S", "Ctrl+Shift+Enter"
//   - Vim-style: "<C-s>", "<C-S-CR>"
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	if strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") && len(spec) > 2 {
		return parseParts(strings.Split(spec[1:len(spec)-1], "-"))
	}

	// A lone "+" is a character, not a separator.
	if spec == "+" {
		return NewRuneEvent('+', ModNone), nil
	}
	if strings.HasSuffix(spec, "++") {
		parts := strings.Split(strings.TrimSuffix(spec, "++"), "+")
		return parseParts(append(parts, "+"))
	}
	return parseParts(strings.Split(spec, "+"))
}

// MustParse is like Parse but panics on error. For static defaults only.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return ev
}

func parseParts(parts []string) (Event, error) {
	var mods Modifier
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimSpace(p)
		mod := modifierFromName(p)
		if mod == ModNone {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods = mods.With(mod)
	}

	keyPart := strings.TrimSpace(parts[len(parts)-1])
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}
	if k := keyFromName(keyPart); k != KeyNone {
		return NewSpecialEvent(k, mods).Normalize(), nil
	}
	if utf8.RuneCountInString(keyPart) == 1 {
		r, _ := utf8.DecodeRuneInString(keyPart)
		return NewRuneEvent(r, mods).Normalize(), nil
	}
	return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
}
