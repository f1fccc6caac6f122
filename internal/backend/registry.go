package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/shellpad/internal/language"
)

// Constructor builds a backend for a language.
type Constructor func(lang language.Language) (Engine, error)

type capKey struct {
	kind Kind
	lang language.Language
}

// Registry is the capability table mapping (panel kind, language) to a
// backend constructor. A missing entry means the panel runs in raw mode.
type Registry struct {
	mu    sync.RWMutex
	ctors map[capKey]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[capKey]Constructor)}
}

// DefaultRegistry returns the built-in capability table: a LineEngine for
// html in markup panels, css and scss in style panels, and both JavaScript
// dialects in script panels. CoffeeScript and unknown languages have no
// backend.
func DefaultRegistry(opts ...Option) *Registry {
	r := NewRegistry()
	line := func(syn *Syntax) Constructor {
		return func(lang language.Language) (Engine, error) {
			return NewLineEngine(lang, syn, opts...), nil
		}
	}
	r.Register(KindMarkup, language.HTML, line(markupSyntax))
	r.Register(KindStyle, language.CSS, line(styleSyntax))
	r.Register(KindStyle, language.SCSS, line(scssSyntax))
	r.Register(KindScript, language.JavaScript, line(scriptSyntax))
	r.Register(KindScript, language.JavaScript17, line(scriptSyntax))
	return r
}

// Register adds or replaces the constructor for kind and lang.
func (r *Registry) Register(kind Kind, lang language.Language, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[capKey{kind, lang}] = ctor
}

// Supports reports whether a backend exists for kind and lang.
func (r *Registry) Supports(kind Kind, lang language.Language) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[capKey{kind, lang}]
	return ok
}

// Build constructs the backend for kind and lang. It returns
// ErrNoCapability when none is registered.
func (r *Registry) Build(kind Kind, lang language.Language) (Engine, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[capKey{kind, lang}]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s panel, %q", ErrNoCapability, kind, lang)
	}
	return ctor(lang)
}

// Languages returns the languages with a backend for kind, sorted.
func (r *Registry) Languages(kind Kind) []language.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []language.Language
	for k := range r.ctors {
		if k.kind == kind {
			out = append(out, k.lang)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
