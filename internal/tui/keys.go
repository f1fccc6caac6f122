package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/shellpad/internal/shortcut"
)

// convertKey converts a tcell key event to a shortcut event. It reports
// false for keys shellpad has no name for.
func convertKey(e *tcell.EventKey) (shortcut.Event, bool) {
	mod := convertMod(e.Modifiers())

	switch k := e.Key(); k {
	case tcell.KeyRune:
		if e.Rune() == ' ' {
			return shortcut.NewSpecialEvent(shortcut.KeySpace, mod).Normalize(), true
		}
		return shortcut.NewRuneEvent(e.Rune(), mod).Normalize(), true
	case tcell.KeyEscape:
		return shortcut.NewSpecialEvent(shortcut.KeyEscape, mod), true
	case tcell.KeyEnter:
		return shortcut.NewSpecialEvent(shortcut.KeyEnter, mod), true
	case tcell.KeyTab:
		return shortcut.NewSpecialEvent(shortcut.KeyTab, mod), true
	case tcell.KeyBacktab:
		return shortcut.NewSpecialEvent(shortcut.KeyTab, mod|shortcut.ModShift), true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return shortcut.NewSpecialEvent(shortcut.KeyBackspace, mod&^shortcut.ModCtrl), true
	case tcell.KeyDelete:
		return shortcut.NewSpecialEvent(shortcut.KeyDelete, mod), true
	case tcell.KeyHome:
		return shortcut.NewSpecialEvent(shortcut.KeyHome, mod), true
	case tcell.KeyEnd:
		return shortcut.NewSpecialEvent(shortcut.KeyEnd, mod), true
	case tcell.KeyPgUp:
		return shortcut.NewSpecialEvent(shortcut.KeyPageUp, mod), true
	case tcell.KeyPgDn:
		return shortcut.NewSpecialEvent(shortcut.KeyPageDown, mod), true
	case tcell.KeyUp:
		return shortcut.NewSpecialEvent(shortcut.KeyUp, mod), true
	case tcell.KeyDown:
		return shortcut.NewSpecialEvent(shortcut.KeyDown, mod), true
	case tcell.KeyLeft:
		return shortcut.NewSpecialEvent(shortcut.KeyLeft, mod), true
	case tcell.KeyRight:
		return shortcut.NewSpecialEvent(shortcut.KeyRight, mod), true
	case tcell.KeyCtrlSpace:
		return shortcut.NewSpecialEvent(shortcut.KeySpace, mod|shortcut.ModCtrl), true
	default:
		// Control characters arrive as their own keys.
		if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
			r := 'a' + rune(k-tcell.KeyCtrlA)
			return shortcut.NewRuneEvent(r, mod|shortcut.ModCtrl).Normalize(), true
		}
		return shortcut.Event{}, false
	}
}

func convertMod(m tcell.ModMask) shortcut.Modifier {
	var mod shortcut.Modifier
	if m&tcell.ModShift != 0 {
		mod = mod.With(shortcut.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mod = mod.With(shortcut.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mod = mod.With(shortcut.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mod = mod.With(shortcut.ModMeta)
	}
	return mod
}
