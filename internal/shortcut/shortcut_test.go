package shortcut

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want Event
	}{
		{"a", NewRuneEvent('a', ModNone)},
		{"?", NewRuneEvent('?', ModNone)},
		{"+", NewRuneEvent('+', ModNone)},
		{"Enter", NewSpecialEvent(KeyEnter, ModNone)},
		{"Ctrl+S", NewRuneEvent('s', ModCtrl)},
		{"ctrl+shift+enter", NewSpecialEvent(KeyEnter, ModCtrl|ModShift)},
		{"Cmd+Down", NewSpecialEvent(KeyDown, ModMeta)},
		{"Ctrl++", NewRuneEvent('+', ModCtrl)},
		{"<C-s>", NewRuneEvent('s', ModCtrl)},
		{"<C-S-CR>", NewSpecialEvent(KeyEnter, ModCtrl|ModShift)},
		{"space", NewSpecialEvent(KeySpace, ModNone)},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("  "); !errors.Is(err, ErrEmptySpec) {
		t.Errorf("Parse(blank) error = %v", err)
	}
	for _, spec := range []string{"Hyper+S", "Ctrl+Banana", "Ctrl+"} {
		if _, err := Parse(spec); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidSpec", spec, err)
		}
	}
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{NewSpecialEvent(KeyEnter, ModCtrl|ModShift), "Ctrl+Shift+Enter"},
		{NewRuneEvent('s', ModCtrl), "Ctrl+s"},
		{NewRuneEvent('?', ModNone), "?"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefaultKeymap(t *testing.T) {
	km := DefaultKeymap(ModCtrl)

	tests := []struct {
		ev       Event
		action   string
		reserved bool
	}{
		{NewSpecialEvent(KeyEnter, ModCtrl), ActionRun, true},
		{NewRuneEvent('S', ModCtrl), ActionSave, true},
		{NewSpecialEvent(KeyEnter, ModCtrl|ModShift), ActionLoadDraft, true},
		{NewSpecialEvent(KeyDown, ModCtrl), ActionNextPanel, true},
		{NewSpecialEvent(KeyUp, ModCtrl), ActionPrevPanel, true},
		{NewSpecialEvent(KeyUp, ModCtrl|ModShift), ActionSidebar, true},
		{NewRuneEvent('?', ModNone), ActionShortcuts, false},
	}
	for _, tt := range tests {
		t.Run(tt.ev.String(), func(t *testing.T) {
			action, ok := km.Lookup(tt.ev)
			if !ok || action != tt.action {
				t.Errorf("Lookup() = %q, %v; want %q", action, ok, tt.action)
			}
			if got := km.IsReserved(tt.ev); got != tt.reserved {
				t.Errorf("IsReserved() = %v, want %v", got, tt.reserved)
			}
		})
	}

	if km.IsReserved(NewRuneEvent('x', ModNone)) {
		t.Error("plain typing must not be reserved")
	}
	if km.IsReserved(NewSpecialEvent(KeyEnter, ModNone)) {
		t.Error("plain Enter must not be reserved")
	}
}

func TestKeymapRebind(t *testing.T) {
	km := DefaultKeymap(ModCtrl)
	if err := km.Rebind(ActionSave, "Alt+W"); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if _, ok := km.Lookup(NewRuneEvent('s', ModCtrl)); ok {
		t.Error("old save binding still present")
	}
	if action, ok := km.Lookup(NewRuneEvent('w', ModAlt)); !ok || action != ActionSave {
		t.Errorf("Lookup(Alt+w) = %q, %v", action, ok)
	}
	if err := km.Rebind(ActionSave, "Hyper+W"); err == nil {
		t.Error("Rebind() with invalid spec returned nil")
	}
}

func TestBindingsSorted(t *testing.T) {
	bs := DefaultKeymap(ModMeta).Bindings()
	if len(bs) != 7 {
		t.Fatalf("Bindings() = %d entries", len(bs))
	}
	for i := 1; i < len(bs); i++ {
		if bs[i-1].Action > bs[i].Action {
			t.Errorf("Bindings() not sorted at %d: %v", i, bs)
		}
	}
}
