package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// osFS reads paths as given, absolute ones included.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) { return os.Open(name) }

// Loader reads configuration files.
type Loader struct {
	fsys    fs.FS
	lookup  func(string) (string, bool)
	resolve bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS reads files from fsys instead of the OS file system. Relative
// [paths] entries are left as written.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fsys = fsys
		l.resolve = false
	}
}

// WithEnv sets the environment lookup. Passing nil disables overrides.
func WithEnv(lookup func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookup = lookup
	}
}

// NewLoader creates a loader over the OS file system and environment.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fsys:    osFS{},
		lookup:  os.LookupEnv,
		resolve: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads path over Default(), applies environment overrides and
// validates the result. An empty path loads the defaults alone.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := fs.ReadFile(l.fsys, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		format, err := FormatOf(path)
		if err != nil {
			return nil, err
		}
		if err := decode(cfg, path, format, bytes.NewReader(data)); err != nil {
			return nil, err
		}
		if l.resolve {
			dir, err := filepath.Abs(filepath.Dir(path))
			if err == nil {
				cfg.resolve(dir)
			}
		}
	}
	return l.finish(cfg)
}

// LoadFrom reads configuration in format from r over Default().
func (l *Loader) LoadFrom(r io.Reader, format Format) (*Config, error) {
	cfg := Default()
	if err := decode(cfg, "<reader>", format, r); err != nil {
		return nil, err
	}
	return l.finish(cfg)
}

func (l *Loader) finish(cfg *Config) (*Config, error) {
	if l.lookup != nil {
		if err := cfg.ApplyEnv(l.lookup); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode merges the document in r into cfg. Unknown keys are errors.
func decode(cfg *Config, source string, format Format, r io.Reader) error {
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return &ParseError{Path: source, Format: format, Err: err}
	}
	if cfg.Fonts == nil {
		cfg.Fonts = map[string]FontFiles{}
	}
	return nil
}

// Load reads path with a default Loader.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}
