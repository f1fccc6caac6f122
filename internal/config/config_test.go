package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dshills/shellpad/internal/asset"
	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/shortcut"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	s := cfg.PipelineSettings()
	if !s.LintLanguages.Contains(language.JavaScript17) {
		t.Error("default lint languages miss javascript 1.7")
	}
	if !s.ShowJSLanguages.Contains(language.CoffeeScript) {
		t.Error("default showjs languages miss coffeescript")
	}
	if s.Tidy[language.JavaScript] != "js" {
		t.Errorf("tidy[javascript] = %q", s.Tidy[language.JavaScript])
	}
	if s.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", s.RequestTimeout)
	}
	if s.Endpoints.Save != "/_save/" {
		t.Errorf("save endpoint = %q", s.Endpoints.Save)
	}
}

func TestLoadTOML(t *testing.T) {
	fsys := fstest.MapFS{
		"shellpad.toml": {Data: []byte(`
[server]
base_url = "https://fiddle.example"
timeout = "5s"

[assets]
source = "dir"
dir = "/srv/tools"

[panels]
script = "CoffeeScript"

[tidy]
css = "css"

[shortcuts.bindings]
save = "Ctrl+Shift+S"

[user]
username = "ann"
`)},
	}
	cfg, err := NewLoader(WithFS(fsys), WithEnv(noEnv)).Load("shellpad.toml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://fiddle.example" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q, want default kept", cfg.Server.Listen)
	}
	if cfg.Assets.Source != AssetsDir || cfg.Assets.Dir != "/srv/tools" {
		t.Errorf("Assets = %+v", cfg.Assets)
	}
	if got := cfg.PanelLanguages()["script"]; got != language.CoffeeScript {
		t.Errorf("script language = %q", got)
	}
	s := cfg.PipelineSettings()
	if s.Tidy[language.CSS] != "css" {
		t.Errorf("tidy[css] = %q", s.Tidy[language.CSS])
	}
	if s.RequestTimeout != 5*time.Second || s.Username != "ann" {
		t.Errorf("settings = %+v", s)
	}

	km, err := cfg.Keymap()
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := km.Lookup(shortcut.MustParse("Ctrl+Shift+S")); a != shortcut.ActionSave {
		t.Errorf("Ctrl+Shift+S -> %q", a)
	}
	if _, ok := km.Lookup(shortcut.MustParse("Ctrl+S")); ok {
		t.Error("Ctrl+S still bound after rebinding save")
	}
}

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"conf/shellpad.yaml": {Data: []byte(`
logging:
  level: debug
lint:
  languages: [javascript]
shortcuts:
  primary: meta
`)},
	}
	cfg, err := NewLoader(WithFS(fsys), WithEnv(noEnv)).Load("conf/shellpad.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LoggerConfig().Level != logging.LevelDebug {
		t.Errorf("level = %v", cfg.LoggerConfig().Level)
	}
	s := cfg.PipelineSettings()
	if s.LintLanguages.Contains(language.JavaScript17) {
		t.Error("lint languages not replaced")
	}
	km, err := cfg.Keymap()
	if err != nil {
		t.Fatal(err)
	}
	ev := shortcut.NewSpecialEvent(shortcut.KeyEnter, shortcut.ModMeta)
	if a, _ := km.Lookup(ev); a != shortcut.ActionRun {
		t.Errorf("Meta+Enter -> %q, want run", a)
	}
}

func TestLoadErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.toml":   {Data: []byte("[server\nbase_url = 1")},
		"bad.yaml":   {Data: []byte("server: [unclosed")},
		"conf.ini":   {Data: []byte("a=b")},
		"source.yml": {Data: []byte("assets:\n  source: ftp\n")},
	}
	tests := []struct {
		path  string
		check func(error) bool
	}{
		{"missing.toml", func(err error) bool { return errors.Is(err, ErrFileNotFound) }},
		{"bad.toml", func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe) && pe.Path == "bad.toml" && pe.Line > 0
		}},
		{"bad.yaml", func(err error) bool {
			var pe *ParseError
			return errors.As(err, &pe)
		}},
		{"conf.ini", func(err error) bool { return errors.Is(err, ErrUnsupportedFormat) }},
		{"source.yml", func(err error) bool {
			var ve *ValidationError
			return errors.As(err, &ve) && ve.Path == "assets.source"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := NewLoader(WithFS(fsys), WithEnv(noEnv)).Load(tt.path)
			if err == nil || !tt.check(err) {
				t.Errorf("Load(%s) error = %v", tt.path, err)
			}
		})
	}
}

func TestEnvOverridesFile(t *testing.T) {
	fsys := fstest.MapFS{
		"shellpad.toml": {Data: []byte("[logging]\nlevel = \"warn\"\n")},
	}
	env := envOf(map[string]string{
		"SHELLPAD_LOG_LEVEL":      "error",
		"SHELLPAD_TIMEOUT":        "12",
		"SHELLPAD_LINT_LANGUAGES": "javascript, JavaScript 1.7 ,",
		"SHELLPAD_EXAMPLE_ID":     "42",
	})
	cfg, err := NewLoader(WithFS(fsys), WithEnv(env)).Load("shellpad.toml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Server.Timeout != "12s" {
		t.Errorf("timeout = %q", cfg.Server.Timeout)
	}
	if len(cfg.Lint.Languages) != 2 {
		t.Errorf("lint languages = %q", cfg.Lint.Languages)
	}
	if !cfg.PipelineSettings().LintLanguages.Contains(language.JavaScript17) {
		t.Error("lint languages lost javascript 1.7")
	}
	if cfg.User.ExampleID != "42" {
		t.Errorf("example id = %q", cfg.User.ExampleID)
	}
}

func TestEnvParseError(t *testing.T) {
	_, err := NewLoader(WithEnv(envOf(map[string]string{"SHELLPAD_TITLE_LIMIT": "lots"}))).Load("")
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "SHELLPAD_TITLE_LIMIT" {
		t.Errorf("Load() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/x" }, "server.base_url"},
		{"bad timeout", func(c *Config) { c.Server.Timeout = "soon" }, "server.timeout"},
		{"zero timeout", func(c *Config) { c.Server.Timeout = "0s" }, "server.timeout"},
		{"dir without dir", func(c *Config) { c.Assets.Source = AssetsDir }, "assets.dir"},
		{"http without url", func(c *Config) { c.Assets.Source = AssetsHTTP }, "assets.base_url"},
		{"unknown tool path", func(c *Config) { c.Assets.Paths = map[string]string{"minify": "x.lua"} }, "assets.paths.minify"},
		{"bad primary", func(c *Config) { c.Shortcuts.Primary = "hyper" }, "shortcuts.primary"},
		{"bad binding", func(c *Config) { c.Shortcuts.Bindings = map[string]string{"run": "Ctrl+"} }, "shortcuts.bindings.run"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			var ve *ValidationError
			if err := cfg.Validate(); !errors.As(err, &ve) || ve.Path != tt.path {
				t.Errorf("Validate() error = %v, want path %s", err, tt.path)
			}
		})
	}
}

func TestAssetPaths(t *testing.T) {
	cfg := Default()
	cfg.Assets.Paths = map[string]string{"lint": "custom/lint.lua"}
	paths := cfg.AssetPaths()
	if paths[asset.ToolLint] != "custom/lint.lua" {
		t.Errorf("lint path = %q", paths[asset.ToolLint])
	}
	if paths[asset.ToolBeautify] != asset.DefaultPaths[asset.ToolBeautify] {
		t.Errorf("beautify path = %q", paths[asset.ToolBeautify])
	}
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	if got := Find(dir); got != "" {
		t.Errorf("Find() in empty dir = %q", got)
	}
	p := filepath.Join(dir, "shellpad.yml")
	if err := os.WriteFile(p, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Find(dir); got != p {
		t.Errorf("Find() = %q, want %q", got, p)
	}
}
