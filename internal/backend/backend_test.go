package backend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/shortcut"
)

func typeText(e *LineEngine, s string) {
	for _, r := range s {
		e.HandleKey(shortcut.NewRuneEvent(r, shortcut.ModNone))
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		kind Kind
		lang language.Language
		want bool
	}{
		{KindScript, language.JavaScript, true},
		{KindScript, language.JavaScript17, true},
		{KindScript, language.CoffeeScript, false},
		{KindStyle, language.CSS, true},
		{KindStyle, language.SCSS, true},
		{KindMarkup, language.HTML, true},
		{KindMarkup, language.CSS, false},
	}
	for _, tt := range tests {
		if got := r.Supports(tt.kind, tt.lang); got != tt.want {
			t.Errorf("Supports(%s, %s) = %v, want %v", tt.kind, tt.lang, got, tt.want)
		}
	}

	if _, err := r.Build(KindScript, language.CoffeeScript); !errors.Is(err, ErrNoCapability) {
		t.Errorf("Build(coffeescript) error = %v, want ErrNoCapability", err)
	}
	eng, err := r.Build(KindStyle, language.SCSS)
	if err != nil {
		t.Fatalf("Build(scss) error = %v", err)
	}
	if eng.Language() != language.SCSS {
		t.Errorf("Language() = %q", eng.Language())
	}

	want := []language.Language{language.JavaScript, language.JavaScript17}
	if got := r.Languages(KindScript); !reflect.DeepEqual(got, want) {
		t.Errorf("Languages(script) = %v, want %v", got, want)
	}
}

func TestTypingAndUndo(t *testing.T) {
	e := NewLineEngine(language.JavaScript, scriptSyntax)
	typeText(e, "x")
	e.HandleKey(shortcut.NewSpecialEvent(shortcut.KeyEnter, shortcut.ModNone))
	if got := e.Content(); got != "x\n" {
		t.Fatalf("Content() = %q", got)
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Content(); got != "x" {
		t.Errorf("after Undo Content() = %q", got)
	}
	if got := e.Cursor(); got != (Point{Line: 0, Col: 1}) {
		t.Errorf("after Undo Cursor() = %+v", got)
	}
	if err := e.Redo(); err != nil || e.Content() != "x\n" {
		t.Errorf("Redo() = %v, Content() = %q", err, e.Content())
	}

	e.HandleKey(shortcut.NewRuneEvent('z', shortcut.ModCtrl))
	if got := e.Content(); got != "x" {
		t.Errorf("Ctrl+Z Content() = %q", got)
	}
}

func TestAutoIndent(t *testing.T) {
	e := NewLineEngine(language.JavaScript, scriptSyntax, WithContent("if (a) {"))
	e.SetCursor(Point{Line: 0, Col: 8})
	e.HandleKey(shortcut.NewSpecialEvent(shortcut.KeyEnter, shortcut.ModNone))
	if got := e.Content(); got != "if (a) {\n    " {
		t.Errorf("Content() = %q", got)
	}
	if got := e.Cursor(); got != (Point{Line: 1, Col: 4}) {
		t.Errorf("Cursor() = %+v", got)
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	e := NewLineEngine(language.JavaScript, scriptSyntax, WithContent("ab\ncd"))
	e.SetCursor(Point{Line: 1, Col: 0})
	e.HandleKey(shortcut.NewSpecialEvent(shortcut.KeyBackspace, shortcut.ModNone))
	if got := e.Content(); got != "abcd" {
		t.Errorf("Content() = %q", got)
	}
	if got := e.Cursor(); got != (Point{Line: 0, Col: 2}) {
		t.Errorf("Cursor() = %+v", got)
	}
}

func TestReindent(t *testing.T) {
	tests := []struct {
		name string
		syn  *Syntax
		in   string
		want string
	}{
		{
			"script braces",
			scriptSyntax,
			"function f() {\nif (a) {\nb();\n}\n}",
			"function f() {\n    if (a) {\n        b();\n    }\n}",
		},
		{
			"else on closing line",
			scriptSyntax,
			"if (a) {\nb();\n} else {\nc();\n}",
			"if (a) {\n    b();\n} else {\n    c();\n}",
		},
		{
			"markup nesting",
			markupSyntax,
			"<div>\n<p>hi</p>\n<br>\n</div>",
			"<div>\n    <p>hi</p>\n    <br>\n</div>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLineEngine(language.JavaScript, tt.syn, WithContent(tt.in))
			e.Reindent()
			if got := e.Content(); got != tt.want {
				t.Errorf("Reindent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTokensAcrossBlockComment(t *testing.T) {
	e := NewLineEngine(language.JavaScript, scriptSyntax, WithContent("a /* start\nstill\nend */ b"))

	if got, want := e.Tokens(0), []Token{{0, 1, TokenText}, {2, 10, TokenComment}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens(0) = %v, want %v", got, want)
	}
	if got, want := e.Tokens(1), []Token{{0, 5, TokenComment}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens(1) = %v, want %v", got, want)
	}
	if got, want := e.Tokens(2), []Token{{0, 6, TokenComment}, {7, 8, TokenText}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens(2) = %v, want %v", got, want)
	}
}

func TestTokenKinds(t *testing.T) {
	toks, inBlock := scriptSyntax.Tokenize(`var s = "x";`, false)
	want := []Token{
		{0, 3, TokenKeyword},
		{4, 5, TokenText},
		{6, 7, TokenPunct},
		{8, 11, TokenString},
		{11, 12, TokenPunct},
	}
	if inBlock || !reflect.DeepEqual(toks, want) {
		t.Errorf("Tokenize() = %v, %v; want %v", toks, inBlock, want)
	}
}

func TestReservedKeysRouted(t *testing.T) {
	e := NewLineEngine(language.JavaScript, scriptSyntax)
	var routed []shortcut.Event
	e.InterceptKeys(
		func(ev shortcut.Event) bool { return ev.Key == shortcut.KeyEnter && ev.Mod.Has(shortcut.ModCtrl) },
		func(ev shortcut.Event) { routed = append(routed, ev) },
	)

	ctrlEnter := shortcut.NewSpecialEvent(shortcut.KeyEnter, shortcut.ModCtrl)
	if !e.HandleKey(ctrlEnter) {
		t.Error("reserved key not consumed")
	}
	if len(routed) != 1 || e.Content() != "" {
		t.Errorf("routed = %v, Content() = %q", routed, e.Content())
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if e.HandleKey(ctrlEnter) {
		t.Error("closed engine consumed a key")
	}
	if len(routed) != 1 {
		t.Error("closed engine still routes keys")
	}
}

func TestResetClearsHistory(t *testing.T) {
	e := NewLineEngine(language.CSS, styleSyntax)
	typeText(e, "a{}")
	if !e.CanUndo() {
		t.Fatal("CanUndo() = false after typing")
	}
	e.Reset()
	if e.CanUndo() {
		t.Error("CanUndo() = true after Reset")
	}
	if got := e.Content(); got != "a{}" {
		t.Errorf("Reset changed content to %q", got)
	}
}

func TestUndoLimit(t *testing.T) {
	e := NewLineEngine(language.JavaScript, scriptSyntax, WithMaxUndoEntries(2))
	e.SetContent("a")
	e.SetContent("b")
	e.SetContent("c")

	for _, want := range []string{"b", "a"} {
		if err := e.Undo(); err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
		if got := e.Content(); got != want {
			t.Errorf("Content() = %q, want %q", got, want)
		}
	}
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
}
