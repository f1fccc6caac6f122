package form

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/shellpad/internal/codec"
)

type memSource struct{ text string }

func (m *memSource) Raw() string     { return m.text }
func (m *memSource) SetRaw(t string) { m.text = t }

func TestEncodeRestores(t *testing.T) {
	f := New()
	js := &memSource{text: "alert('héllo');\r\n"}
	f.BindSource(FieldJS, js)

	restore := f.Encode()
	if js.text != codec.Encode("alert('héllo');\r\n") {
		t.Errorf("encoded text = %q", js.text)
	}
	if got := f.Values().Get(FieldJS); got != js.text {
		t.Errorf("Values()[code_js] = %q", got)
	}
	restore()
	restore()
	if js.text != "alert('héllo');\r\n" {
		t.Errorf("restored text = %q", js.text)
	}
}

func TestTransientField(t *testing.T) {
	f := New()
	remove := f.AddTransient(FieldDraftOnly, "true")
	if f.Values().Get(FieldDraftOnly) != "true" {
		t.Fatal("transient field missing during operation")
	}
	remove()
	if f.Has(FieldDraftOnly) {
		t.Error("transient field left behind")
	}
	if _, ok := f.Values()[FieldDraftOnly]; ok {
		t.Error("transient field still submitted")
	}
}

func TestClearText(t *testing.T) {
	f := New()
	css := &memSource{text: "a{}"}
	f.BindSource(FieldCSS, css)
	f.SetText(FieldTitle, "demo")
	f.Set(FieldSlug, "abc")

	f.ClearText()

	if css.text != "" || f.Get(FieldTitle) != "" {
		t.Errorf("ClearText left css=%q title=%q", css.text, f.Get(FieldTitle))
	}
	if f.Get(FieldSlug) != "abc" {
		t.Error("ClearText emptied a hidden field")
	}
}

func TestLibraries(t *testing.T) {
	f := New()
	f.SetLibraries(
		[]Library{{ID: "1", GroupName: "Mootools", Version: "1.2"}, {ID: "2", GroupName: "Mootools", Version: "1.3", Selected: true}},
		[]Dependency{{ID: "7", Name: "More", Selected: true}, {ID: "8", Name: "Drag"}},
	)
	if f.Library() != "2" {
		t.Errorf("Library() = %q", f.Library())
	}
	f.CheckDependency("8", true)
	f.CheckDependency("7", false)

	v := f.Values()
	if v.Get(FieldLibrary) != "2" || v.Get(DependencyField("8")) != "8" {
		t.Errorf("Values() = %v", v)
	}
	if _, ok := v[DependencyField("7")]; ok {
		t.Error("unchecked dependency submitted")
	}

	f.SetDependencies([]Dependency{{ID: "9", Name: "Core"}})
	if f.Checked("8") || len(f.Dependencies()) != 1 {
		t.Error("SetDependencies did not replace choices")
	}
	if got := f.Libraries()[0].Label(); got != "Mootools 1.2" {
		t.Errorf("Label() = %q", got)
	}
}

func TestParseSaveReply(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    SaveReply
		wantErr bool
	}{
		{"success", `{"pastie_url_relative": "/abc/1/"}`, SaveReply{URL: "/abc/1/"}, false},
		{"application error", `{"error": "Title too long"}`, SaveReply{Error: "Title too long"}, false},
		{"null error", `{"error": null, "pastie_url_relative": "/x/"}`, SaveReply{URL: "/x/"}, false},
		{"not json", `<html>`, SaveReply{}, true},
		{"missing url", `{}`, SaveReply{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSaveReply([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSaveReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrBadReply) {
				t.Errorf("error = %v, want ErrBadReply", err)
			}
			if got != tt.want {
				t.Errorf("ParseSaveReply() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLibraryReplies(t *testing.T) {
	body := `{"libraries": [{"id": 11, "group_name": "jQuery", "version": "1.4", "selected": true}],
		"dependencies": [{"id": 3, "name": "UI", "selected": false}]}`
	libs, deps, err := ParseLibraryVersions([]byte(body))
	if err != nil {
		t.Fatalf("ParseLibraryVersions() error = %v", err)
	}
	if want := []Library{{ID: "11", GroupName: "jQuery", Version: "1.4", Selected: true}}; !reflect.DeepEqual(libs, want) {
		t.Errorf("libraries = %+v", libs)
	}
	if want := []Dependency{{ID: "3", Name: "UI"}}; !reflect.DeepEqual(deps, want) {
		t.Errorf("dependencies = %+v", deps)
	}

	deps, err = ParseDependencies([]byte(`[{"id": "5", "name": "Tools", "selected": true}]`))
	if err != nil || len(deps) != 1 || !deps[0].Selected {
		t.Errorf("ParseDependencies() = %+v, %v", deps, err)
	}
	if _, err := ParseDependencies([]byte(`{"id": 1}`)); !errors.Is(err, ErrBadReply) {
		t.Errorf("ParseDependencies(object) error = %v", err)
	}

	u, err := ParseFavouriteReply([]byte(`{"url": "/user/favourites/"}`))
	if err != nil || u != "/user/favourites/" {
		t.Errorf("ParseFavouriteReply() = %q, %v", u, err)
	}
}

func TestHTTPSubmitter(t *testing.T) {
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/save/":
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm: %v", err)
			}
			gotForm = r.PostForm
			io.WriteString(w, `{"pastie_url_relative": "/a/"}`)
		case "/libs/7/":
			io.WriteString(w, `[]`)
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	s, err := NewHTTPSubmitter(srv.URL, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	body, err := s.Submit(ctx, "/save/", url.Values{FieldJS: {"YQ=="}})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if string(body) != `{"pastie_url_relative": "/a/"}` || gotForm.Get(FieldJS) != "YQ==" {
		t.Errorf("body = %s, form = %v", body, gotForm)
	}

	if _, err := s.Fetch(ctx, Expand("/libs/{lib_id}/", map[string]string{"lib_id": "7"})); err != nil {
		t.Errorf("Fetch() error = %v", err)
	}

	_, err = s.Submit(ctx, "/broken/", nil)
	var te *TransportError
	if !errors.As(err, &te) || te.Status != http.StatusInternalServerError {
		t.Errorf("Submit(broken) error = %v", err)
	}
}

func TestHTTPSubmitterConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	s, err := NewHTTPSubmitter(base, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Submit(context.Background(), "/save/", url.Values{})
	var te *TransportError
	if !errors.As(err, &te) || te.Status != 0 {
		t.Errorf("Submit() error = %v, want connection TransportError", err)
	}
}

func TestExpand(t *testing.T) {
	got := Expand("/_get_library_versions/{group_id}/", map[string]string{"group_id": "a b"})
	if got != "/_get_library_versions/a%20b/" {
		t.Errorf("Expand() = %q", got)
	}
}
