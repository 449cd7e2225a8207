package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Measure selects how layout measures text.
const (
	MeasureCells = "cells"
	MeasureFont  = "font"
)

// Config is the complete Vex configuration.
type Config struct {
	Layout LayoutConfig         `toml:"layout" yaml:"layout"`
	Fonts  map[string]FontFiles `toml:"fonts" yaml:"fonts"`
	Editor EditorConfig         `toml:"editor" yaml:"editor"`
	Log    LogConfig            `toml:"log" yaml:"log"`
	Paths  PathsConfig          `toml:"paths" yaml:"paths"`
}

// LayoutConfig configures the layout engine.
type LayoutConfig struct {
	Width      int    `toml:"width" yaml:"width"`
	Measure    string `toml:"measure" yaml:"measure"`
	FontFamily string `toml:"font_family" yaml:"font_family"`
}

// FontFiles names the font files of one family.
type FontFiles struct {
	Regular    string `toml:"regular" yaml:"regular"`
	Bold       string `toml:"bold" yaml:"bold"`
	Italic     string `toml:"italic" yaml:"italic"`
	BoldItalic string `toml:"bold_italic" yaml:"bold_italic"`
}

// EditorConfig configures the editing session.
type EditorConfig struct {
	UndoLimit int  `toml:"undo_limit" yaml:"undo_limit"`
	ReadOnly  bool `toml:"read_only" yaml:"read_only"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// PathsConfig names the files a session loads.
type PathsConfig struct {
	Stylesheet string `toml:"stylesheet" yaml:"stylesheet"`
	Schema     string `toml:"schema" yaml:"schema"`
	Validator  string `toml:"validator" yaml:"validator"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Width:      80,
			Measure:    MeasureCells,
			FontFamily: "mono",
		},
		Fonts:  map[string]FontFiles{},
		Editor: EditorConfig{UndoLimit: 1000},
		Log:    LogConfig{Level: "info"},
	}
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.Layout.Width <= 0 {
		return fmt.Errorf("%w: layout.width must be positive, got %d", ErrInvalidValue, c.Layout.Width)
	}
	switch c.Layout.Measure {
	case MeasureCells, MeasureFont:
	default:
		return fmt.Errorf("%w: layout.measure must be %q or %q, got %q", ErrInvalidValue, MeasureCells, MeasureFont, c.Layout.Measure)
	}
	if c.Editor.UndoLimit <= 0 {
		return fmt.Errorf("%w: editor.undo_limit must be positive, got %d", ErrInvalidValue, c.Editor.UndoLimit)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}
	return nil
}

// resolve makes relative paths absolute against dir.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Paths.Stylesheet, &c.Paths.Schema, &c.Paths.Validator} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	for name, ff := range c.Fonts {
		for _, p := range []*string{&ff.Regular, &ff.Bold, &ff.Italic, &ff.BoldItalic} {
			if *p != "" && !filepath.IsAbs(*p) {
				*p = filepath.Join(dir, *p)
			}
		}
		c.Fonts[name] = ff
	}
}

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "VEX_"

// envMapping maps environment variables to the settings they override.
var envMapping = map[string]func(c *Config, v string) error{
	"VEX_WIDTH": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Layout.Width = n
		return nil
	},
	"VEX_MEASURE":     func(c *Config, v string) error { c.Layout.Measure = v; return nil },
	"VEX_FONT_FAMILY": func(c *Config, v string) error { c.Layout.FontFamily = v; return nil },
	"VEX_UNDO_LIMIT": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Editor.UndoLimit = n
		return nil
	},
	"VEX_LOG_LEVEL":  func(c *Config, v string) error { c.Log.Level = v; return nil },
	"VEX_STYLESHEET": func(c *Config, v string) error { c.Paths.Stylesheet = v; return nil },
	"VEX_SCHEMA":     func(c *Config, v string) error { c.Paths.Schema = v; return nil },
	"VEX_VALIDATOR":  func(c *Config, v string) error { c.Paths.Validator = v; return nil },
}

// ApplyEnv overrides settings from environment variables found by lookup,
// typically os.LookupEnv. Empty values count as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envMapping {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%w: %s=%q: %w", ErrInvalidValue, name, v, err)
		}
	}
	return nil
}
