package server

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/tidwall/sjson"

	"github.com/dshills/shellpad/internal/codec"
	"github.com/dshills/shellpad/internal/form"
)

var codeFields = []string{form.FieldHTML, form.FieldCSS, form.FieldJS}

// parseFiddle reads and decodes a submitted form.
func parseFiddle(r *http.Request) (Fiddle, error) {
	if err := r.ParseForm(); err != nil {
		return Fiddle{}, err
	}
	v := r.PostForm
	if err := codec.DecodeFields(v, codeFields...); err != nil {
		return Fiddle{}, err
	}
	f := Fiddle{
		Slug:        v.Get(form.FieldSlug),
		Title:       v.Get(form.FieldTitle),
		Description: v.Get(form.FieldDescription),
		HTML:        v.Get(form.FieldHTML),
		CSS:         v.Get(form.FieldCSS),
		JS:          v.Get(form.FieldJS),
		Library:     v.Get(form.FieldLibrary),
	}
	for key, vals := range v {
		if strings.HasPrefix(key, "js_dependency[") && len(vals) > 0 {
			f.Dependencies = append(f.Dependencies, vals[0])
		}
	}
	sort.Strings(f.Dependencies)
	return f, nil
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	f, err := parseFiddle(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get(form.FieldDraftOnly) != "" {
		s.store.SaveDraft(s.cfg.DraftUser, f)
	}
	s.render(w, f)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	f, err := parseFiddle(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit := s.cfg.TitleLimit; limit > 0 && utf8.RuneCountInString(f.Title) > limit {
		s.writeDoc(w, reply("error", fmt.Sprintf("Title is longer than %d characters", limit)))
		return
	}

	saved, err := s.store.Save(f)
	if errors.Is(err, ErrNotFound) {
		s.writeDoc(w, reply("error", "No such fiddle: "+f.Slug))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.logger.Info("saved %s", saved.URL())
	s.writeDoc(w, reply("pastie_url_relative", saved.URL()))
}

func (s *Server) handleFavourite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, err := s.store.MarkFavourite(r.PostForm.Get(form.FieldShellID))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.writeDoc(w, reply("url", f.URL()))
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	f, ok := s.store.Draft(s.cfg.DraftUser)
	if !ok {
		http.Error(w, "no draft", http.StatusNotFound)
		return
	}
	s.render(w, f)
}

// handleShow serves /{slug}/ as version 0 and /{slug}/{version}/ as that
// version, matching the addresses Fiddle.URL hands out.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	version := 0
	if v := chi.URLParam(r, "version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad version", http.StatusBadRequest)
			return
		}
		version = n
	}
	f, err := s.store.Get(chi.URLParam(r, "slug"), version)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	s.render(w, f)
}

// handleLibraryVersions lists the versions of a group. The newest version
// is selected and its plugins are listed as the dependencies.
func (s *Server) handleLibraryVersions(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Group(chi.URLParam(r, "group_id"))
	if err != nil || len(g.Versions) == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	selected := len(g.Versions) - 1

	doc := jsonDoc{raw: `{"libraries":[],"dependencies":[]}`}
	for i, v := range g.Versions {
		lib := jsonDoc{raw: "{}"}
		lib.set("id", v.ID)
		lib.set("group_name", g.Name)
		lib.set("version", v.Version)
		lib.set("selected", i == selected)
		doc.append("libraries", lib)
	}
	for _, d := range g.Versions[selected].Dependencies {
		doc.append("dependencies", dependency(d))
	}
	s.writeDoc(w, doc)
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	v, err := s.store.Version(chi.URLParam(r, "lib_id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	doc := jsonDoc{raw: "[]"}
	for _, d := range v.Dependencies {
		doc.append("", dependency(d))
	}
	s.writeDoc(w, doc)
}

func dependency(d LibraryDependency) jsonDoc {
	out := jsonDoc{raw: "{}"}
	out.set("id", d.ID)
	out.set("name", d.Name)
	out.set("selected", d.Default)
	return out
}

// jsonDoc accumulates sjson edits, keeping the first error.
type jsonDoc struct {
	raw string
	err error
}

func (d *jsonDoc) set(path string, value any) {
	if d.err == nil {
		d.raw, d.err = sjson.Set(d.raw, path, value)
	}
}

// append adds elem to the array at path; an empty path is the root array.
func (d *jsonDoc) append(path string, elem jsonDoc) {
	if d.err != nil {
		return
	}
	if elem.err != nil {
		d.err = elem.err
		return
	}
	if path != "" {
		path += "."
	}
	d.raw, d.err = sjson.SetRaw(d.raw, path+"-1", elem.raw)
}

// reply builds a one-field JSON object.
func reply(key, value string) jsonDoc {
	out := jsonDoc{raw: "{}"}
	out.set(key, value)
	return out
}

func (s *Server) writeDoc(w http.ResponseWriter, doc jsonDoc) {
	if doc.err != nil {
		s.logger.Error("building reply: %v", doc.err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, doc.raw)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
