package tool

import (
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// LintOptions are passed to the linter script as a table of booleans.
type LintOptions map[string]bool

// Issue is one linter diagnostic.
type Issue struct {
	Line      int
	Character int
	Reason    string
	Evidence  string
}

// LintResult is the outcome of one lint run.
type LintResult struct {
	Passed bool
	Issues []Issue
}

// Report renders the issues as plain text, one per line.
func (r LintResult) Report() string {
	if r.Passed {
		return "Your JS code is valid."
	}
	var sb strings.Builder
	for _, is := range r.Issues {
		fmt.Fprintf(&sb, "Problem at line %d character %d: %s\n", is.Line, is.Character, is.Reason)
		if is.Evidence != "" {
			fmt.Fprintf(&sb, "    %s\n", is.Evidence)
		}
	}
	return sb.String()
}

// Lint runs JSLINT.check(source, options).
func (h *Host) Lint(source string, opts LintOptions) (LintResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return LintResult{}, ErrHostClosed
	}

	optTable := h.L.NewTable()
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		optTable.RawSetString(k, lua.LBool(opts[k]))
	}

	ret, err := h.call(SymbolLint, "check", 2, lua.LString(source), optTable)
	if err != nil {
		return LintResult{}, err
	}

	result := LintResult{Passed: lua.LVAsBool(ret[0])}
	if list, ok := ret[1].(*lua.LTable); ok {
		for i := 1; i <= list.Len(); i++ {
			entry, ok := list.RawGetInt(i).(*lua.LTable)
			if !ok {
				continue
			}
			result.Issues = append(result.Issues, Issue{
				Line:      int(lua.LVAsNumber(entry.RawGetString("line"))),
				Character: int(lua.LVAsNumber(entry.RawGetString("character"))),
				Reason:    lua.LVAsString(entry.RawGetString("reason")),
				Evidence:  lua.LVAsString(entry.RawGetString("evidence")),
			})
		}
	}
	if len(result.Issues) > 0 {
		result.Passed = false
	}
	return result, nil
}
