package coordinator

import (
	"fmt"
	"sync"

	"github.com/dshills/shellpad/internal/panel"
)

// Registry is the ordered, append-only set of panels. Registration is
// only allowed until Seal is called.
type Registry struct {
	mu     sync.RWMutex
	panels []*panel.Panel
	byName map[string]*panel.Panel
	sealed bool
}

// Register appends p. Names must be unique.
func (r *Registry) Register(p *panel.Panel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return fmt.Errorf("%w: %s", ErrRegistrySealed, p.Name())
	}
	if r.byName == nil {
		r.byName = make(map[string]*panel.Panel)
	}
	if _, ok := r.byName[p.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePanel, p.Name())
	}
	r.panels = append(r.panels, p)
	r.byName[p.Name()] = p
	return nil
}

// Sealed reports whether setup has finished.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Panel returns the panel called name.
func (r *Registry) Panel(name string) (*panel.Panel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Panels returns the panels in registration order.
func (r *Registry) Panels() []*panel.Panel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*panel.Panel, len(r.panels))
	copy(out, r.panels)
	return out
}

// Names returns the panel names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.panels))
	for i, p := range r.panels {
		out[i] = p.Name()
	}
	return out
}

// Len returns the number of panels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.panels)
}
