package action

import (
	"github.com/dshills/shellpad/internal/form"
	"github.com/dshills/shellpad/internal/shortcut"
	"github.com/dshills/shellpad/internal/tool"
)

// Presenter shows the outcome of actions to the user.
type Presenter interface {
	// Result shows a titled result dialog.
	Result(title, body string)

	// Error shows an error message.
	Error(msg string)

	// SetAffordance shows or hides an action trigger.
	SetAffordance(name string, visible bool)

	// SetResultLabel replaces the caption of the result area.
	SetResultLabel(text string)

	// ToggleSidebar shows or hides the sidebar.
	ToggleSidebar()

	// ShowShortcuts lists the keyboard shortcuts.
	ShowShortcuts(bindings []shortcut.Binding)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) bool
}

// Navigator leaves the workspace for another page.
type Navigator interface {
	// Navigate replaces the workspace with url.
	Navigate(url string)

	// Open shows url in a separate named window.
	Open(url, target string)
}

// Tools runs the lazily installed lint, beautify and compile scripts.
type Tools interface {
	Lint(source string, opts tool.LintOptions) (tool.LintResult, error)
	HasFormatter(kind string) bool
	Beautify(kind, source string) (string, error)
	Compile(source string) (string, error)
}

var (
	_ Tools          = (*tool.Host)(nil)
	_ form.Submitter = (*form.HTTPSubmitter)(nil)
)
