package config

import (
	"strconv"
	"strings"
	"time"
)

// envSetting applies one environment variable to a Config.
type envSetting struct {
	path  string
	apply func(c *Config, value string) error
}

func setString(field func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setList(field func(c *Config) *[]string) func(*Config, string) error {
	return func(c *Config, v string) error {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*field(c) = out
		return nil
	}
}

// envMapping maps variable names, without prefix, to settings.
var envMapping = map[string]envSetting{
	"LOG_LEVEL":      {"logging.level", setString(func(c *Config) *string { return &c.Logging.Level })},
	"BASE_URL":       {"server.base_url", setString(func(c *Config) *string { return &c.Server.BaseURL })},
	"LISTEN":         {"server.listen", setString(func(c *Config) *string { return &c.Server.Listen })},
	"ASSET_SOURCE":   {"assets.source", setString(func(c *Config) *string { return &c.Assets.Source })},
	"ASSET_DIR":      {"assets.dir", setString(func(c *Config) *string { return &c.Assets.Dir })},
	"ASSET_URL":      {"assets.base_url", setString(func(c *Config) *string { return &c.Assets.BaseURL })},
	"USERNAME":       {"user.username", setString(func(c *Config) *string { return &c.User.Username })},
	"EXAMPLE_ID":     {"user.example_id", setString(func(c *Config) *string { return &c.User.ExampleID })},
	"PRIMARY":        {"shortcuts.primary", setString(func(c *Config) *string { return &c.Shortcuts.Primary })},
	"SCRIPT":         {"panels.script", setString(func(c *Config) *string { return &c.Panels.Script })},
	"LINT_LANGUAGES": {"lint.languages", setList(func(c *Config) *[]string { return &c.Lint.Languages })},
	"TIMEOUT": {"server.timeout", func(c *Config, v string) error {
		// Bare integers are seconds.
		if n, err := strconv.Atoi(v); err == nil {
			v = (time.Duration(n) * time.Second).String()
		}
		c.Server.Timeout = v
		return nil
	}},
	"TITLE_LIMIT": {"server.title_limit", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Server.TitleLimit = n
		return nil
	}},
}

// applyEnv overlays the prefixed environment variables on cfg.
// Empty values are treated as set.
func (l *Loader) applyEnv(cfg *Config) error {
	for name, s := range envMapping {
		v, ok := l.lookupEnv(l.prefix + name)
		if !ok {
			continue
		}
		if err := s.apply(cfg, v); err != nil {
			return &ParseError{Path: l.prefix + name, Message: "setting " + s.path + ": " + err.Error(), Err: err}
		}
	}
	return nil
}
