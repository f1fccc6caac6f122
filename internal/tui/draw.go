package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/shellpad/internal/backend"
	"github.com/dshills/shellpad/internal/panel"
)

const sidebarWidth = 30

var (
	styleDefault = tcell.StyleDefault
	styleBar     = tcell.StyleDefault.Reverse(true)
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleFocused = tcell.StyleDefault.Reverse(true).Bold(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDim     = tcell.StyleDefault.Dim(true)
)

var tokenStyles = map[backend.TokenKind]tcell.Style{
	backend.TokenKeyword: tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	backend.TokenString:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
	backend.TokenNumber:  tcell.StyleDefault.Foreground(tcell.ColorFuchsia),
	backend.TokenComment: tcell.StyleDefault.Foreground(tcell.ColorGray),
	backend.TokenPunct:   tcell.StyleDefault.Foreground(tcell.ColorTeal),
}

// rect is a screen region.
type rect struct{ x, y, w, h int }

// Draw renders the whole workspace. It runs on the loop.
func (u *UI) Draw() {
	u.screen.Clear()
	u.screen.HideCursor()
	width, height := u.screen.Size()
	if width <= 0 || height < 4 {
		u.screen.Show()
		return
	}

	u.mu.Lock()
	sidebar := u.sidebar
	u.mu.Unlock()

	u.drawBar(width)
	main := rect{0, 1, width, height - 2}
	if sidebar && width > sidebarWidth*2 {
		main.w = width - sidebarWidth
		u.drawSidebar(rect{main.w, 1, sidebarWidth, main.h})
	}

	resultH := max(3, main.h/4)
	panels := u.coord.Panels()
	if n := len(panels); n > 0 {
		each := (main.h - resultH) / n
		for i, p := range panels {
			h := each
			if i == n-1 {
				h = main.h - resultH - each*(n-1)
			}
			u.drawPanel(p, rect{main.x, main.y + each*i, main.w, h})
		}
	}
	u.drawResult(rect{main.x, main.y + main.h - resultH, main.w, resultH})
	u.drawStatus(width, height-1)
	u.drawHelp(width, height)
	u.screen.Show()
}

func (u *UI) drawBar(width int) {
	fill(u.screen, rect{0, 0, width, 1}, styleBar)
	x := put(u.screen, 0, 0, width, " shellpad ", styleBar.Bold(true))

	u.mu.Lock()
	visible := make(map[string]bool, len(u.affordances))
	for k, v := range u.affordances {
		visible[k] = v
	}
	location := u.location
	u.mu.Unlock()

	for _, b := range buttons {
		if b.affordance != "" && !visible[b.affordance] {
			continue
		}
		label := b.label
		if b.label == "Save" && visible["update"] {
			label = "Update"
		}
		x = put(u.screen, x, 0, width, fmt.Sprintf(" [%s %s]", keyName(b.key), label), styleBar)
	}
	if location != "" && x+len(location)+2 < width {
		put(u.screen, width-len(location)-1, 0, width, location, styleBar)
	}
}

func (u *UI) drawPanel(p *panel.Panel, r rect) {
	if r.h < 1 {
		return
	}
	title := styleTitle
	if p.Focused() {
		title = styleFocused
	}
	fill(u.screen, rect{r.x, r.y, r.w, 1}, title)
	put(u.screen, r.x, r.y, r.x+r.w, fmt.Sprintf(" %s ", p.Label()), title)

	body := rect{r.x, r.y + 1, r.w, r.h - 1}
	p.SetDimensions(body.w, body.h)
	if body.h < 1 {
		return
	}

	view, ok := p.Backend().(backend.Viewer)
	if !ok {
		lines := p.RawLines()
		top := u.scrollTo(p.Name(), len(lines)-1, body.h)
		for i := 0; i < body.h && top+i < len(lines); i++ {
			put(u.screen, body.x, body.y+i, body.x+body.w, lines[top+i], styleDefault)
		}
		return
	}

	lines := view.Lines()
	cur := view.Cursor()
	top := u.scrollTo(p.Name(), cur.Line, body.h)
	for i := 0; i < body.h && top+i < len(lines); i++ {
		drawTokens(u.screen, body, body.y+i, lines[top+i], view.Tokens(top+i))
	}
	if p.Focused() && cur.Col < body.w {
		u.screen.ShowCursor(body.x+cur.Col, body.y+cur.Line-top)
	}
}

// scrollTo keeps line visible in a view of height rows and returns the
// first visible line.
func (u *UI) scrollTo(name string, line, height int) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	top := u.scroll[name]
	if line < top {
		top = line
	}
	if line >= top+height {
		top = line - height + 1
	}
	top = max(0, top)
	u.scroll[name] = top
	return top
}

func drawTokens(s tcell.Screen, r rect, y int, line string, toks []backend.Token) {
	runes := []rune(line)
	for col, ch := range runes {
		if col >= r.w {
			return
		}
		style := styleDefault
		for _, t := range toks {
			if col >= t.Start && col < t.End {
				if st, ok := tokenStyles[t.Kind]; ok {
					style = st
				}
				break
			}
		}
		s.SetContent(r.x+col, y, ch, nil, style)
	}
}

func (u *UI) drawResult(r rect) {
	u.mu.Lock()
	label, title, body := u.resultLabel, u.resultTitle, u.resultBody
	u.mu.Unlock()

	fill(u.screen, rect{r.x, r.y, r.w, 1}, styleTitle)
	header := " " + label
	if title != "" {
		header += ": " + title
	}
	put(u.screen, r.x, r.y, r.x+r.w, header, styleTitle)

	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i := 0; i < r.h-1 && i < len(lines); i++ {
		put(u.screen, r.x, r.y+1+i, r.x+r.w, lines[i], styleDefault)
	}
}

func (u *UI) drawSidebar(r rect) {
	y := r.y
	line := func(text string, style tcell.Style) {
		if y < r.y+r.h {
			put(u.screen, r.x+1, y, r.x+r.w, text, style)
			y++
		}
	}
	line("Libraries (Alt+G, Alt+N)", styleTitle)
	if u.form == nil {
		return
	}
	for _, l := range u.form.Libraries() {
		mark := "  "
		if l.ID == u.form.Library() {
			mark = "> "
		}
		line(mark+l.Label(), styleDefault)
	}
	y++
	line("Dependencies (Alt+1..9)", styleTitle)
	for i, d := range u.form.Dependencies() {
		box := "[ ]"
		if u.form.Checked(d.ID) {
			box = "[x]"
		}
		line(fmt.Sprintf("%d %s %s", i+1, box, d.Name), styleDefault)
	}
}

func (u *UI) drawStatus(width, y int) {
	u.mu.Lock()
	msg, isErr, prompt := u.status, u.statusErr, u.prompt
	u.mu.Unlock()

	switch {
	case prompt != "":
		put(u.screen, 0, y, width, prompt, styleTitle)
	case isErr:
		put(u.screen, 0, y, width, msg, styleError)
	default:
		put(u.screen, 0, y, width, msg, styleDim)
	}
}

func (u *UI) drawHelp(width, height int) {
	u.mu.Lock()
	help := u.help
	u.mu.Unlock()
	if help == nil {
		return
	}

	lines := make([]string, 0, len(help)+1)
	lines = append(lines, "Keyboard shortcuts (Esc to close)")
	for _, b := range help {
		lines = append(lines, fmt.Sprintf("%-18s %s", b.Event, b.Action))
	}
	w := 0
	for _, l := range lines {
		w = max(w, len(l))
	}
	w = min(w+4, width)
	h := min(len(lines)+2, height)
	box := rect{(width - w) / 2, (height - h) / 2, w, h}
	fill(u.screen, box, styleBar)
	for i, l := range lines {
		if i+1 >= h-1 {
			break
		}
		put(u.screen, box.x+2, box.y+1+i, box.x+box.w, l, styleBar)
	}
}

// put writes text from x on row y without passing limit and returns the
// column after the last written cell.
func put(s tcell.Screen, x, y, limit int, text string, style tcell.Style) int {
	for _, ch := range text {
		if x >= limit {
			break
		}
		if ch == '\t' {
			ch = ' '
		}
		s.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

func fill(s tcell.Screen, r rect, style tcell.Style) {
	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
}

func keyName(k tcell.Key) string {
	if name, ok := tcell.KeyNames[k]; ok {
		return name
	}
	return "?"
}
