package server

import (
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown fiddles and libraries.
var ErrNotFound = errors.New("not found")

// Fiddle is one saved version of a fiddle.
type Fiddle struct {
	Slug         string
	Version      int
	Title        string
	Description  string
	HTML         string
	CSS          string
	JS           string
	Library      string
	Dependencies []string
}

// URL is the relative address of the fiddle version.
func (f Fiddle) URL() string {
	if f.Version == 0 {
		return "/" + f.Slug + "/"
	}
	return "/" + f.Slug + "/" + strconv.Itoa(f.Version) + "/"
}

// LibraryGroup is a framework with its selectable versions.
type LibraryGroup struct {
	ID       string
	Name     string
	Versions []LibraryVersion
}

// LibraryVersion is one version of a framework and the plugins built for it.
type LibraryVersion struct {
	ID           string
	Version      string
	Dependencies []LibraryDependency
}

// LibraryDependency is an optional plugin.
type LibraryDependency struct {
	ID      string
	Name    string
	Default bool
}

// Store keeps fiddles, drafts and the library catalogue in memory.
type Store struct {
	mu         sync.RWMutex
	fiddles    map[string][]Fiddle
	drafts     map[string]Fiddle
	favourites map[string]bool
	groups     []LibraryGroup
}

// NewStore creates a store with the given library catalogue.
func NewStore(groups []LibraryGroup) *Store {
	return &Store{
		fiddles:    make(map[string][]Fiddle),
		drafts:     make(map[string]Fiddle),
		favourites: make(map[string]bool),
		groups:     groups,
	}
}

// Save stores f. An empty slug allocates a new fiddle at version 0;
// otherwise f becomes the next version of its slug.
func (s *Store) Save(f Fiddle) (Fiddle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Slug == "" {
		f.Slug = newSlug()
		f.Version = 0
		s.fiddles[f.Slug] = []Fiddle{f}
		return f, nil
	}
	versions, ok := s.fiddles[f.Slug]
	if !ok {
		return Fiddle{}, ErrNotFound
	}
	f.Version = versions[len(versions)-1].Version + 1
	s.fiddles[f.Slug] = append(versions, f)
	return f, nil
}

// Get returns a version of a fiddle. A negative version selects the latest.
func (s *Store) Get(slug string, version int) (Fiddle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions := s.fiddles[slug]
	if len(versions) == 0 {
		return Fiddle{}, ErrNotFound
	}
	if version < 0 {
		return versions[len(versions)-1], nil
	}
	for _, f := range versions {
		if f.Version == version {
			return f, nil
		}
	}
	return Fiddle{}, ErrNotFound
}

// SaveDraft keeps the latest draft of a user.
func (s *Store) SaveDraft(user string, f Fiddle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[user] = f
}

// Draft returns the latest draft of a user.
func (s *Store) Draft(user string) (Fiddle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.drafts[user]
	return f, ok
}

// MarkFavourite flags a fiddle and returns its latest version.
func (s *Store) MarkFavourite(slug string) (Fiddle, error) {
	f, err := s.Get(slug, -1)
	if err != nil {
		return Fiddle{}, err
	}
	s.mu.Lock()
	s.favourites[slug] = true
	s.mu.Unlock()
	return f, nil
}

// Favourite reports whether a fiddle is flagged.
func (s *Store) Favourite(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favourites[slug]
}

// Group returns a library group by id.
func (s *Store) Group(id string) (LibraryGroup, error) {
	for _, g := range s.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return LibraryGroup{}, ErrNotFound
}

// Version returns a library version by id.
func (s *Store) Version(id string) (LibraryVersion, error) {
	for _, g := range s.groups {
		if i := slices.IndexFunc(g.Versions, func(v LibraryVersion) bool { return v.ID == id }); i >= 0 {
			return g.Versions[i], nil
		}
	}
	return LibraryVersion{}, ErrNotFound
}

// DefaultLibraries is a small catalogue for local use.
func DefaultLibraries() []LibraryGroup {
	return []LibraryGroup{
		{ID: "1", Name: "Mootools", Versions: []LibraryVersion{
			{ID: "11", Version: "1.2.5", Dependencies: []LibraryDependency{{ID: "111", Name: "More", Default: true}}},
			{ID: "12", Version: "1.3.2", Dependencies: []LibraryDependency{
				{ID: "121", Name: "More", Default: true},
				{ID: "122", Name: "Drag"},
			}},
		}},
		{ID: "2", Name: "jQuery", Versions: []LibraryVersion{
			{ID: "21", Version: "1.4.4"},
			{ID: "22", Version: "1.6.1", Dependencies: []LibraryDependency{{ID: "221", Name: "jQuery UI"}}},
		}},
	}
}

func newSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
