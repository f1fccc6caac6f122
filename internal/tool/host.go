// Package tool hosts the optional tools (linter, beautifier, compiler) in
// a sandboxed Lua state.
//
// A tool asset is a Lua script that installs one global table when run:
// JSLINT for the linter, Beautifier for the beautifier and CoffeeScript
// for the compiler. Host implements asset.Installer, so tool scripts are
// executed the first time an action needs them and stay installed for the
// rest of the session.
package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/shellpad/internal/asset"
	"github.com/dshills/shellpad/internal/logging"
)

// DefaultCallTimeout bounds each script execution.
const DefaultCallTimeout = 5 * time.Second

// Global symbols installed by tool scripts.
const (
	SymbolLint     = "JSLINT"
	SymbolBeautify = "Beautifier"
	SymbolCompile  = "CoffeeScript"
)

// symbols maps tools to the global they must define.
var symbols = map[asset.ToolID]string{
	asset.ToolLint:     SymbolLint,
	asset.ToolBeautify: SymbolBeautify,
	asset.ToolCompile:  SymbolCompile,
}

// Host owns the Lua state all tools run in.
//
// gopher-lua's LState is not goroutine-safe. Host serializes access with
// a mutex; in practice every call arrives from the UI loop.
type Host struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	logger  *logging.Logger
	closed  bool
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithCallTimeout sets the timeout for every script execution.
func WithCallTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithLogger sets the host logger.
func WithLogger(l *logging.Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l.WithComponent("tool")
		}
	}
}

// NewHost creates a sandboxed Lua state with only safe libraries open.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		timeout: DefaultCallTimeout,
		logger:  logging.Null(),
	}
	for _, opt := range opts {
		opt(h)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// io, os, debug and package are never opened.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "print"} {
		L.SetGlobal(name, lua.LNil)
	}

	h.L = L
	return h
}

// Install runs a tool script and checks that it defined the tool's
// symbol. It implements asset.Installer.
func (h *Host) Install(id asset.ToolID, path string, source []byte) error {
	symbol, ok := symbols[id]
	if !ok {
		return fmt.Errorf("%w: %s", asset.ErrUnknownTool, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	err := h.withContext(func() error {
		fn, err := h.L.Load(bytes.NewReader(source), path)
		if err != nil {
			return err
		}
		h.L.Push(fn)
		return h.L.PCall(0, lua.MultRet, nil)
	})
	if err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}

	if _, ok := h.L.GetGlobal(symbol).(*lua.LTable); !ok {
		return fmt.Errorf("%w: %s", ErrSymbolMissing, symbol)
	}

	h.logger.WithField("tool", id).Debug("installed %s from %s", symbol, path)
	return nil
}

// Installed reports whether the tool's symbol is present.
func (h *Host) Installed(id asset.ToolID) bool {
	symbol, ok := symbols[id]
	if !ok {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	_, ok = h.L.GetGlobal(symbol).(*lua.LTable)
	return ok
}

// Close releases the Lua state.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.L.Close()
	h.closed = true
	return nil
}

// withContext runs fn with a cancellable context installed on the state
// so runaway scripts are interrupted. Caller must hold h.mu.
func (h *Host) withContext(fn func() error) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.L.SetContext(ctx)
	defer h.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// function returns the named field of a tool table. Caller must hold h.mu.
func (h *Host) function(symbol, name string) (*lua.LFunction, error) {
	tbl, ok := h.L.GetGlobal(symbol).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, symbol)
	}
	fn, ok := h.L.GetField(tbl, name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotInstalled, symbol, name)
	}
	return fn, nil
}

// call invokes a tool function and returns nret results.
// Caller must hold h.mu.
func (h *Host) call(symbol, name string, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if h.closed {
		return nil, ErrHostClosed
	}
	fn, err := h.function(symbol, name)
	if err != nil {
		return nil, err
	}

	top := h.L.GetTop()
	err = h.withContext(func() error {
		return h.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
	})
	if err != nil {
		h.L.SetTop(top)
		return nil, &ScriptError{Tool: symbol, Func: name, Err: err}
	}

	results := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		results[i] = h.L.Get(top + i + 1)
	}
	h.L.SetTop(top)
	return results, nil
}

// errorMessage extracts the message a script raised with error(msg, 0).
func errorMessage(err error) string {
	var se *ScriptError
	if errors.As(err, &se) {
		err = se.Err
	}
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) && apiErr.Object != nil {
		return apiErr.Object.String()
	}
	return err.Error()
}
