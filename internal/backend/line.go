package backend

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/shortcut"
)

// LineEngine is a line-oriented editing backend with a single cursor,
// snapshot undo, incremental tokenizer state and brace-aware reindent.
//
// All operations are safe for concurrent use.
type LineEngine struct {
	mu sync.Mutex

	lang   language.Language
	syntax *Syntax

	lines  []string
	cursor Point
	hist   *history

	// states[i] is the block-comment state at the start of line i; only
	// the first valid entries are current.
	states []bool
	valid  int

	tabWidth int
	focused  bool
	closed   bool

	isReserved ReservedFunc
	route      RouteFunc
}

// NewLineEngine creates a backend for lang highlighted with syn.
func NewLineEngine(lang language.Language, syn *Syntax, opts ...Option) *LineEngine {
	cfg := options{tabWidth: DefaultTabWidth, maxUndo: DefaultMaxUndoEntries}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &LineEngine{
		lang:     lang,
		syntax:   syn,
		lines:    strings.Split(cfg.content, "\n"),
		hist:     newHistory(cfg.maxUndo),
		tabWidth: cfg.tabWidth,
	}
	return e
}

// Language returns the language the engine was built for.
func (e *LineEngine) Language() language.Language { return e.lang }

// Content returns the full text.
func (e *LineEngine) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return strings.Join(e.lines, "\n")
}

// SetContent replaces the text and moves the cursor to the start.
func (e *LineEngine) SetContent(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record()
	e.lines = strings.Split(text, "\n")
	e.cursor = Point{}
	e.invalidate(0)
}

// Reset discards undo history and tokenizer state.
func (e *LineEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hist.clear()
	e.states = nil
	e.valid = 0
}

// Focus gives the engine keyboard focus.
func (e *LineEngine) Focus() {
	e.mu.Lock()
	e.focused = true
	e.mu.Unlock()
}

// Blur removes keyboard focus.
func (e *LineEngine) Blur() {
	e.mu.Lock()
	e.focused = false
	e.mu.Unlock()
}

// Focused reports whether the engine has keyboard focus.
func (e *LineEngine) Focused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.focused
}

// InterceptKeys installs the reserved-key hook.
func (e *LineEngine) InterceptKeys(isReserved ReservedFunc, route RouteFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isReserved = isReserved
	e.route = route
}

// Close releases the engine and drops the key hook.
func (e *LineEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.focused = false
	e.isReserved = nil
	e.route = nil
	return nil
}

// Lines returns a copy of the current lines.
func (e *LineEngine) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.lines))
	copy(out, e.lines)
	return out
}

// Cursor returns the cursor position.
func (e *LineEngine) Cursor() Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetCursor moves the cursor, clamped to the text.
func (e *LineEngine) SetCursor(p Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = e.clamp(p)
}

// Tokens returns the highlighted spans of line.
func (e *LineEngine) Tokens(line int) []Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	if line < 0 || line >= len(e.lines) || e.syntax == nil {
		return nil
	}
	toks, _ := e.syntax.Tokenize(e.lines[line], e.stateAt(line))
	return toks
}

// Undo reverts the last edit.
func (e *LineEngine) Undo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.hist.undoTo(e.snapshot())
	if err != nil {
		return err
	}
	e.restore(s)
	return nil
}

// Redo re-applies the last undone edit.
func (e *LineEngine) Redo() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.hist.redoTo(e.snapshot())
	if err != nil {
		return err
	}
	e.restore(s)
	return nil
}

// CanUndo reports whether there is anything to undo.
func (e *LineEngine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.canUndo()
}

// Reindent re-indents every line from its nesting depth.
func (e *LineEngine) Reindent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syntax == nil {
		return
	}
	e.record()
	unit := strings.Repeat(" ", e.tabWidth)
	depth := 0
	inBlock := false
	for i, line := range e.lines {
		body := strings.TrimSpace(line)
		lead, delta := e.syntax.depth(body, inBlock)
		_, inBlock = e.syntax.Tokenize(body, inBlock)
		if body == "" {
			e.lines[i] = ""
			continue
		}
		e.lines[i] = strings.Repeat(unit, max(0, depth+lead)) + body
		depth = max(0, depth+delta)
	}
	e.cursor = e.clamp(e.cursor)
	e.invalidate(0)
}

// HandleKey processes a key press. Reserved keys are routed through the
// hook installed by InterceptKeys and never edit text.
func (e *LineEngine) HandleKey(ev shortcut.Event) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	if e.isReserved != nil && e.isReserved(ev) {
		route := e.route
		e.mu.Unlock()
		if route != nil {
			route(ev)
		}
		return true
	}
	defer e.mu.Unlock()

	if ev.IsPrintable() {
		e.insert(string(ev.Rune))
		return true
	}

	switch ev.Key {
	case shortcut.KeySpace:
		e.insert(" ")
	case shortcut.KeyTab:
		e.insert(strings.Repeat(" ", e.tabWidth))
	case shortcut.KeyEnter:
		e.newline()
	case shortcut.KeyBackspace:
		e.backspace()
	case shortcut.KeyDelete:
		e.deleteForward()
	case shortcut.KeyLeft:
		e.moveHorizontal(-1)
	case shortcut.KeyRight:
		e.moveHorizontal(1)
	case shortcut.KeyUp:
		e.cursor = e.clamp(Point{Line: e.cursor.Line - 1, Col: e.cursor.Col})
	case shortcut.KeyDown:
		e.cursor = e.clamp(Point{Line: e.cursor.Line + 1, Col: e.cursor.Col})
	case shortcut.KeyHome:
		e.cursor.Col = 0
	case shortcut.KeyEnd:
		e.cursor.Col = utf8.RuneCountInString(e.lines[e.cursor.Line])
	case shortcut.KeyRune:
		if !ev.Mod.Has(shortcut.ModCtrl) {
			return false
		}
		switch ev.Normalize().Rune {
		case 'z':
			if s, err := e.hist.undoTo(e.snapshot()); err == nil {
				e.restore(s)
			}
		case 'y':
			if s, err := e.hist.redoTo(e.snapshot()); err == nil {
				e.restore(s)
			}
		default:
			return false
		}
		return true
	default:
		return false
	}
	return true
}

// Editing helpers; callers hold e.mu.

func (e *LineEngine) snapshot() snapshot {
	return snapshot{text: strings.Join(e.lines, "\n"), cursor: e.cursor}
}

func (e *LineEngine) record() {
	e.hist.push(e.snapshot())
}

func (e *LineEngine) restore(s snapshot) {
	e.lines = strings.Split(s.text, "\n")
	e.cursor = e.clamp(s.cursor)
	e.invalidate(0)
}

func (e *LineEngine) clamp(p Point) Point {
	p.Line = min(max(p.Line, 0), len(e.lines)-1)
	p.Col = min(max(p.Col, 0), utf8.RuneCountInString(e.lines[p.Line]))
	return p
}

func (e *LineEngine) invalidate(line int) {
	e.valid = min(e.valid, line)
}

// stateAt returns the tokenizer state at the start of line, extending the
// cached states as needed.
func (e *LineEngine) stateAt(line int) bool {
	if len(e.states) < len(e.lines) {
		e.states = append(e.states, make([]bool, len(e.lines)-len(e.states))...)
	}
	if e.valid == 0 {
		e.states[0] = false
		e.valid = 1
	}
	for e.valid <= line {
		_, out := e.syntax.Tokenize(e.lines[e.valid-1], e.states[e.valid-1])
		e.states[e.valid] = out
		e.valid++
	}
	return e.states[line]
}

func (e *LineEngine) insert(s string) {
	e.record()
	rs := []rune(e.lines[e.cursor.Line])
	col := e.cursor.Col
	e.lines[e.cursor.Line] = string(rs[:col]) + s + string(rs[col:])
	e.cursor.Col += utf8.RuneCountInString(s)
	e.invalidate(e.cursor.Line + 1)
}

func (e *LineEngine) newline() {
	e.record()
	rs := []rune(e.lines[e.cursor.Line])
	head, tail := string(rs[:e.cursor.Col]), string(rs[e.cursor.Col:])

	indent := head[:len(head)-len(strings.TrimLeft(head, " \t"))]
	if e.syntax != nil {
		if trimmed := strings.TrimRight(head, " \t"); trimmed != "" &&
			strings.ContainsRune(e.syntax.Open, rune(trimmed[len(trimmed)-1])) {
			indent += strings.Repeat(" ", e.tabWidth)
		}
	}

	lines := make([]string, 0, len(e.lines)+1)
	lines = append(lines, e.lines[:e.cursor.Line]...)
	lines = append(lines, head, indent+tail)
	lines = append(lines, e.lines[e.cursor.Line+1:]...)
	e.lines = lines
	e.cursor = Point{Line: e.cursor.Line + 1, Col: utf8.RuneCountInString(indent)}
	e.invalidate(e.cursor.Line - 1)
}

func (e *LineEngine) backspace() {
	if e.cursor.Col == 0 && e.cursor.Line == 0 {
		return
	}
	e.record()
	if e.cursor.Col == 0 {
		prev := e.lines[e.cursor.Line-1]
		col := utf8.RuneCountInString(prev)
		e.lines[e.cursor.Line-1] = prev + e.lines[e.cursor.Line]
		e.lines = append(e.lines[:e.cursor.Line], e.lines[e.cursor.Line+1:]...)
		e.cursor = Point{Line: e.cursor.Line - 1, Col: col}
	} else {
		rs := []rune(e.lines[e.cursor.Line])
		e.lines[e.cursor.Line] = string(rs[:e.cursor.Col-1]) + string(rs[e.cursor.Col:])
		e.cursor.Col--
	}
	e.invalidate(e.cursor.Line)
}

func (e *LineEngine) deleteForward() {
	rs := []rune(e.lines[e.cursor.Line])
	if e.cursor.Col == len(rs) && e.cursor.Line == len(e.lines)-1 {
		return
	}
	e.record()
	if e.cursor.Col == len(rs) {
		e.lines[e.cursor.Line] += e.lines[e.cursor.Line+1]
		e.lines = append(e.lines[:e.cursor.Line+1], e.lines[e.cursor.Line+2:]...)
	} else {
		e.lines[e.cursor.Line] = string(rs[:e.cursor.Col]) + string(rs[e.cursor.Col+1:])
	}
	e.invalidate(e.cursor.Line)
}

func (e *LineEngine) moveHorizontal(dir int) {
	n := utf8.RuneCountInString(e.lines[e.cursor.Line])
	switch {
	case dir < 0 && e.cursor.Col > 0:
		e.cursor.Col--
	case dir < 0 && e.cursor.Line > 0:
		e.cursor.Line--
		e.cursor.Col = utf8.RuneCountInString(e.lines[e.cursor.Line])
	case dir > 0 && e.cursor.Col < n:
		e.cursor.Col++
	case dir > 0 && e.cursor.Line < len(e.lines)-1:
		e.cursor = Point{Line: e.cursor.Line + 1}
	}
}
