// Package config provides typed configuration for shellpad.
//
// Configuration is resolved in three layers, later layers overriding
// earlier ones:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file chosen by extension
//  3. SHELLPAD_* environment variables
//
// The result is validated once and then converted into the settings of
// the components it configures.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dshills/shellpad/internal/action"
	"github.com/dshills/shellpad/internal/asset"
	"github.com/dshills/shellpad/internal/language"
	"github.com/dshills/shellpad/internal/logging"
	"github.com/dshills/shellpad/internal/shortcut"
	"github.com/dshills/shellpad/internal/tool"
)

// Asset sources.
const (
	AssetsEmbedded = "embedded"
	AssetsDir      = "dir"
	AssetsHTTP     = "http"
)

// Config is the complete shellpad configuration.
type Config struct {
	Server    ServerConfig      `toml:"server" yaml:"server"`
	Endpoints EndpointsConfig   `toml:"endpoints" yaml:"endpoints"`
	Assets    AssetsConfig      `toml:"assets" yaml:"assets"`
	Lint      LintConfig        `toml:"lint" yaml:"lint"`
	ShowJS    ShowJSConfig      `toml:"showjs" yaml:"showjs"`
	Tidy      map[string]string `toml:"tidy" yaml:"tidy"`
	Panels    PanelsConfig      `toml:"panels" yaml:"panels"`
	Shortcuts ShortcutsConfig   `toml:"shortcuts" yaml:"shortcuts"`
	User      UserConfig        `toml:"user" yaml:"user"`
	Logging   LoggingConfig     `toml:"logging" yaml:"logging"`
}

// ServerConfig locates the fiddle server.
type ServerConfig struct {
	// BaseURL is where the editor sends its requests.
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// Listen is the address of the bundled development server.
	Listen string `toml:"listen" yaml:"listen"`

	// Timeout bounds every request, as a Go duration string.
	Timeout string `toml:"timeout" yaml:"timeout"`

	// TitleLimit is the longest title the development server accepts.
	TitleLimit int `toml:"title_limit" yaml:"title_limit"`
}

// EndpointsConfig are the server paths.
type EndpointsConfig struct {
	Run             string `toml:"run" yaml:"run"`
	Save            string `toml:"save" yaml:"save"`
	Favourite       string `toml:"favourite" yaml:"favourite"`
	LibraryVersions string `toml:"library_versions" yaml:"library_versions"`
	Dependencies    string `toml:"dependencies" yaml:"dependencies"`
	Draft           string `toml:"draft" yaml:"draft"`
	Login           string `toml:"login" yaml:"login"`
}

// AssetsConfig selects where tool scripts are fetched from.
type AssetsConfig struct {
	// Source is one of "embedded", "dir" or "http".
	Source  string `toml:"source" yaml:"source"`
	Dir     string `toml:"dir" yaml:"dir"`
	BaseURL string `toml:"base_url" yaml:"base_url"`

	// Paths overrides the asset path of a tool (lint, beautify, compile).
	Paths map[string]string `toml:"paths" yaml:"paths"`
}

// LintConfig configures the linter.
type LintConfig struct {
	Options   map[string]bool `toml:"options" yaml:"options"`
	Languages []string        `toml:"languages" yaml:"languages"`
}

// ShowJSConfig lists the languages that compile to JavaScript.
type ShowJSConfig struct {
	Languages []string `toml:"languages" yaml:"languages"`
}

// PanelsConfig sets the language each panel starts in.
type PanelsConfig struct {
	Markup string `toml:"markup" yaml:"markup"`
	Style  string `toml:"style" yaml:"style"`
	Script string `toml:"script" yaml:"script"`
}

// ShortcutsConfig configures key bindings.
type ShortcutsConfig struct {
	// Primary is the primary modifier, "ctrl" or "meta".
	Primary string `toml:"primary" yaml:"primary"`

	// Bindings maps an action name to a key spec such as "Ctrl+S".
	Bindings map[string]string `toml:"bindings" yaml:"bindings"`
}

// UserConfig identifies the session.
type UserConfig struct {
	Username  string `toml:"username" yaml:"username"`
	ExampleID string `toml:"example_id" yaml:"example_id"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	s := action.DefaultSettings()
	tidy := make(map[string]string, len(s.Tidy))
	for lang, fn := range s.Tidy {
		tidy[string(lang)] = fn
	}
	opts := make(map[string]bool, len(s.LintOptions))
	for k, v := range s.LintOptions {
		opts[k] = v
	}
	return &Config{
		Server: ServerConfig{
			BaseURL:    "http://127.0.0.1:8080",
			Listen:     "127.0.0.1:8080",
			Timeout:    s.RequestTimeout.String(),
			TitleLimit: 255,
		},
		Endpoints: EndpointsConfig{
			Run:             s.Endpoints.Run,
			Save:            s.Endpoints.Save,
			Favourite:       s.Endpoints.Favourite,
			LibraryVersions: s.Endpoints.LibraryVersions,
			Dependencies:    s.Endpoints.Dependencies,
			Draft:           s.Endpoints.Draft,
			Login:           s.Endpoints.Login,
		},
		Assets: AssetsConfig{Source: AssetsEmbedded},
		Lint: LintConfig{
			Options:   opts,
			Languages: []string{string(language.JavaScript), string(language.JavaScript17)},
		},
		ShowJS: ShowJSConfig{Languages: []string{string(language.CoffeeScript)}},
		Tidy:   tidy,
		Panels: PanelsConfig{
			Markup: string(language.HTML),
			Style:  string(language.CSS),
			Script: string(language.JavaScript),
		},
		Shortcuts: ShortcutsConfig{Primary: "ctrl"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Path: "server.base_url", Value: c.Server.BaseURL, Message: "must be an absolute URL"}
	}
	if _, err := c.RequestTimeout(); err != nil {
		return &ValidationError{Path: "server.timeout", Value: c.Server.Timeout, Message: err.Error()}
	}
	if c.Server.TitleLimit < 0 {
		return &ValidationError{Path: "server.title_limit", Value: c.Server.TitleLimit, Message: "must not be negative"}
	}

	switch c.Assets.Source {
	case AssetsEmbedded:
	case AssetsDir:
		if c.Assets.Dir == "" {
			return &ValidationError{Path: "assets.dir", Message: "required when assets.source is dir"}
		}
	case AssetsHTTP:
		if c.Assets.BaseURL == "" {
			return &ValidationError{Path: "assets.base_url", Message: "required when assets.source is http"}
		}
	default:
		return &ValidationError{Path: "assets.source", Value: c.Assets.Source, Message: "must be embedded, dir or http"}
	}
	for id := range c.Assets.Paths {
		if _, ok := asset.DefaultPaths[asset.ToolID(id)]; !ok {
			return &ValidationError{Path: "assets.paths." + id, Message: "unknown tool"}
		}
	}

	if _, err := c.primary(); err != nil {
		return err
	}
	if _, err := c.Keymap(); err != nil {
		return err
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Value: c.Logging.Level, Message: "must be debug, info, warn or error"}
	}
	return nil
}

// RequestTimeout parses Server.Timeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", d)
	}
	return d, nil
}

// PipelineSettings converts the configuration into action settings.
func (c *Config) PipelineSettings() action.Settings {
	s := action.DefaultSettings()
	s.Endpoints = action.Endpoints{
		Run:             c.Endpoints.Run,
		Save:            c.Endpoints.Save,
		Favourite:       c.Endpoints.Favourite,
		LibraryVersions: c.Endpoints.LibraryVersions,
		Dependencies:    c.Endpoints.Dependencies,
		Draft:           c.Endpoints.Draft,
		Login:           c.Endpoints.Login,
	}
	s.LintOptions = tool.LintOptions(c.Lint.Options)
	s.LintLanguages = language.ParseSet(c.Lint.Languages)
	s.ShowJSLanguages = language.ParseSet(c.ShowJS.Languages)
	s.Tidy = make(map[language.Language]string, len(c.Tidy))
	for lang, fn := range c.Tidy {
		s.Tidy[language.Parse(lang)] = fn
	}
	s.Username = c.User.Username
	s.ExampleID = c.User.ExampleID
	if d, err := c.RequestTimeout(); err == nil {
		s.RequestTimeout = d
	}
	return s
}

// AssetPaths returns the tool asset paths with overrides applied.
func (c *Config) AssetPaths() map[asset.ToolID]string {
	paths := make(map[asset.ToolID]string, len(asset.DefaultPaths))
	for id, p := range asset.DefaultPaths {
		paths[id] = p
	}
	for id, p := range c.Assets.Paths {
		paths[asset.ToolID(id)] = p
	}
	return paths
}

// PanelLanguages returns the initial language of each panel by panel name.
func (c *Config) PanelLanguages() map[string]language.Language {
	return map[string]language.Language{
		"markup": language.Parse(c.Panels.Markup),
		"style":  language.Parse(c.Panels.Style),
		"script": language.Parse(c.Panels.Script),
	}
}

// Keymap builds the shortcut keymap with configured bindings applied.
func (c *Config) Keymap() (*shortcut.Keymap, error) {
	primary, err := c.primary()
	if err != nil {
		return nil, err
	}
	km := shortcut.DefaultKeymap(primary)
	for act, spec := range c.Shortcuts.Bindings {
		if err := km.Rebind(act, spec); err != nil {
			return nil, &ValidationError{Path: "shortcuts.bindings." + act, Value: spec, Message: err.Error()}
		}
	}
	return km, nil
}

func (c *Config) primary() (shortcut.Modifier, error) {
	switch strings.ToLower(c.Shortcuts.Primary) {
	case "", "ctrl", "control":
		return shortcut.ModCtrl, nil
	case "meta", "cmd", "super":
		return shortcut.ModMeta, nil
	default:
		return 0, &ValidationError{Path: "shortcuts.primary", Value: c.Shortcuts.Primary, Message: "must be ctrl or meta"}
	}
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.Logging.Level)
	return cfg
}
