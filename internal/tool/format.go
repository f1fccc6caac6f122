package tool

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// HasFormatter reports whether Beautifier defines a formatter for kind.
func (h *Host) HasFormatter(kind string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || kind == "" {
		return false
	}
	_, err := h.function(SymbolBeautify, kind)
	return err == nil
}

// Beautify runs Beautifier[kind](source). An empty result means the
// formatter produced nothing and callers should fall back to a reindent.
func (h *Host) Beautify(kind, source string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", ErrHostClosed
	}
	if _, err := h.function(SymbolBeautify, kind); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	ret, err := h.call(SymbolBeautify, kind, 1, lua.LString(source))
	if err != nil {
		return "", err
	}
	if s, ok := ret[0].(lua.LString); ok {
		return string(s), nil
	}
	return "", nil
}

// Compile runs CoffeeScript.compile(source). Script errors are returned
// as *CompileError carrying the message the compiler raised.
func (h *Host) Compile(source string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return "", ErrHostClosed
	}
	if _, err := h.function(SymbolCompile, "compile"); err != nil {
		return "", err
	}

	ret, err := h.call(SymbolCompile, "compile", 1, lua.LString(source))
	if err != nil {
		return "", &CompileError{Message: errorMessage(err)}
	}
	return lua.LVAsString(ret[0]), nil
}
