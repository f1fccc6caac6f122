package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames are tried in order by Find.
var DefaultFileNames = []string{"shellpad.toml", "shellpad.yaml", "shellpad.yml"}

// Loader resolves a Config from defaults, a file and the environment.
type Loader struct {
	readFile  func(path string) ([]byte, error)
	lookupEnv func(key string) (string, bool)
	prefix    string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS reads config files from fsys instead of the OS file system.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.readFile = func(path string) ([]byte, error) {
			return fs.ReadFile(fsys, strings.TrimPrefix(filepath.ToSlash(path), "/"))
		}
	}
}

// WithEnv replaces os.LookupEnv.
func WithEnv(lookup func(key string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		if lookup != nil {
			l.lookupEnv = lookup
		}
	}
}

// WithEnvPrefix sets the environment variable prefix, "SHELLPAD_" by default.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.prefix = prefix
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		readFile:  os.ReadFile,
		lookupEnv: os.LookupEnv,
		prefix:    "SHELLPAD_",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the validated configuration. An empty path skips the file
// layer; a named file that does not exist is an error.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := l.loadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is shorthand for NewLoader().Load(path).
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Find returns the first default config file present in dir, or "".
func Find(dir string) string {
	for _, name := range DefaultFileNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// loadFile decodes path over cfg. Keys absent from the file keep their
// current values.
func (l *Loader) loadFile(cfg *Config, path string) error {
	data, err := l.readFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		return decodeYAML(path, data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: path, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func decodeYAML(path string, data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &ParseError{Path: path, Message: err.Error(), Err: err}
	}
	return nil
}
