package backend

// Default configuration values.
const (
	DefaultTabWidth       = 4
	DefaultMaxUndoEntries = 1000
)

type options struct {
	tabWidth int
	maxUndo  int
	content  string
}

// Option configures a backend during creation.
type Option func(*options)

// WithContent sets the initial content.
func WithContent(content string) Option {
	return func(o *options) {
		o.content = content
	}
}

// WithTabWidth sets the indent width used by Tab and Reindent.
func WithTabWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.tabWidth = width
		}
	}
}

// WithMaxUndoEntries bounds the undo history.
func WithMaxUndoEntries(max int) Option {
	return func(o *options) {
		if max > 0 {
			o.maxUndo = max
		}
	}
}
