package asset

// ToolID names an optional, lazily loaded tool.
type ToolID string

// Known tools.
const (
	ToolLint     ToolID = "lint"
	ToolBeautify ToolID = "beautify"
	ToolCompile  ToolID = "compile"
)

// DefaultPaths are the fixed asset paths of the known tools.
var DefaultPaths = map[ToolID]string{
	ToolLint:     "js/jslint.lua",
	ToolBeautify: "js/beautifier.lua",
	ToolCompile:  "js/coffeescript/coffeescript.lua",
}

// State is the cache state of one tool.
type State int

// Cache states. A tool only moves forward, except that a failed load
// returns it to StateUnloaded.
const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}
