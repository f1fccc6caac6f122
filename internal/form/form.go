// Package form models the workspace submission form: panel text fields,
// hidden metadata fields, transient per-operation fields and the library
// choices, together with its transport to the fiddle endpoints.
package form

import (
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/shellpad/internal/codec"
)

// Field names understood by the endpoints.
const (
	FieldHTML        = "code_html"
	FieldCSS         = "code_css"
	FieldJS          = "code_js"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldSlug        = "slug"
	FieldVersion     = "version"
	FieldDraftOnly   = "draftonly"
	FieldLibrary     = "js_lib"
	FieldShellID     = "shell_id"
)

// DependencyField returns the checkbox field name for a dependency.
func DependencyField(id string) string {
	return "js_dependency[" + id + "]"
}

// Source is the form-facing storage of a panel.
type Source interface {
	Raw() string
	SetRaw(text string)
}

type boundSource struct {
	field string
	src   Source
}

// Form is the shared submission form. It is safe for concurrent use.
type Form struct {
	mu      sync.Mutex
	fields  map[string]string
	text    map[string]bool
	sources []boundSource

	libraries    []Library
	dependencies []Dependency
	library      string
	checked      map[string]bool
}

// New creates an empty form.
func New() *Form {
	return &Form{
		fields:  make(map[string]string),
		text:    make(map[string]bool),
		checked: make(map[string]bool),
	}
}

// BindSource attaches a panel's storage to field.
func (f *Form) BindSource(field string, src Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sources = append(f.sources, boundSource{field: field, src: src})
}

// Set sets a hidden field.
func (f *Form) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[name] = value
}

// SetText sets a user-editable text field. Text fields are emptied by
// ClearText.
func (f *Form) SetText(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields[name] = value
	f.text[name] = true
}

// Get returns the value of a field or bound source.
func (f *Form) Get(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.sources {
		if b.field == name {
			return b.src.Raw()
		}
	}
	return f.fields[name]
}

// Has reports whether a field is present.
func (f *Form) Has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.fields[name]
	return ok
}

// Delete removes a field.
func (f *Form) Delete(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.fields, name)
	delete(f.text, name)
}

// AddTransient adds a field that exists only for one operation. The
// returned function removes it and must run on every exit path.
func (f *Form) AddTransient(name, value string) (remove func()) {
	f.Set(name, value)
	var once sync.Once
	return func() {
		once.Do(func() { f.Delete(name) })
	}
}

// Encode replaces the text of every bound source with its transport
// encoding. The returned function restores the plain text.
func (f *Form) Encode() (restore func()) {
	f.mu.Lock()
	sources := make([]boundSource, len(f.sources))
	copy(sources, f.sources)
	f.mu.Unlock()

	plain := make([]string, len(sources))
	for i, b := range sources {
		plain[i] = b.src.Raw()
		b.src.SetRaw(codec.Encode(plain[i]))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for i, b := range sources {
				b.src.SetRaw(plain[i])
			}
		})
	}
}

// ClearText empties every text field and bound source.
func (f *Form) ClearText() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for name := range f.text {
		f.fields[name] = ""
	}
	for _, b := range f.sources {
		b.src.SetRaw("")
	}
}

// Values returns the form as it would be submitted.
func (f *Form) Values() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := make(url.Values, len(f.fields)+len(f.sources)+len(f.checked)+1)
	for name, value := range f.fields {
		v[name] = []string{value}
	}
	for _, b := range f.sources {
		v[b.field] = []string{b.src.Raw()}
	}
	if f.library != "" {
		v[FieldLibrary] = []string{f.library}
	}
	for id, on := range f.checked {
		if on {
			v[DependencyField(id)] = []string{id}
		}
	}
	return v
}

// Fields returns the names of all hidden and text fields, sorted.
func (f *Form) Fields() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.fields))
	for name := range f.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Library is one selectable framework version.
type Library struct {
	ID        string
	GroupName string
	Version   string
	Selected  bool
}

// Label returns the option text, "group version".
func (l Library) Label() string {
	return strings.TrimSpace(l.GroupName + " " + l.Version)
}

// Dependency is one optional add-on of the selected library.
type Dependency struct {
	ID       string
	Name     string
	Selected bool
}

// SetLibraries replaces the library choices and their dependencies,
// applying the selection flags from the server.
func (f *Form) SetLibraries(libs []Library, deps []Dependency) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.libraries = libs
	f.library = ""
	for _, l := range libs {
		if l.Selected {
			f.library = l.ID
		}
	}
	if f.library == "" && len(libs) > 0 {
		f.library = libs[0].ID
	}
	f.setDependenciesLocked(deps)
}

// SetDependencies replaces the dependency choices.
func (f *Form) SetDependencies(deps []Dependency) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setDependenciesLocked(deps)
}

func (f *Form) setDependenciesLocked(deps []Dependency) {
	f.dependencies = deps
	f.checked = make(map[string]bool, len(deps))
	for _, d := range deps {
		if d.Selected {
			f.checked[d.ID] = true
		}
	}
}

// Libraries returns the library choices.
func (f *Form) Libraries() []Library {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Library(nil), f.libraries...)
}

// Dependencies returns the dependency choices.
func (f *Form) Dependencies() []Dependency {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Dependency(nil), f.dependencies...)
}

// Library returns the selected library id.
func (f *Form) Library() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.library
}

// SelectLibrary selects a library by id.
func (f *Form) SelectLibrary(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.library = id
}

// CheckDependency toggles a dependency checkbox.
func (f *Form) CheckDependency(id string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked[id] = on
}

// Checked reports whether a dependency is checked.
func (f *Form) Checked(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checked[id]
}
