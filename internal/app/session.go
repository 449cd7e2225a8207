package app

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/dshills/vex/internal/config"
	"github.com/dshills/vex/internal/engine"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/style"
	"github.com/dshills/vex/internal/validate"
	"github.com/dshills/vex/internal/validate/luavalidator"
)

// Session is a document opened for editing.
type Session struct {
	Config *config.Config
	Engine *engine.Engine
	Path   string

	sheet     *style.Sheet
	schema    *validate.Schema
	lua       *luavalidator.Validator
	validator dom.Validator
	saved     uint64
	logger    *log.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	graphics metrics.Graphics
	logger   *log.Logger
}

// WithGraphics overrides the text metrics chosen by the configuration.
func WithGraphics(g metrics.Graphics) SessionOption {
	return func(o *sessionOptions) {
		o.graphics = g
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// Open opens path for editing. A missing file starts a new document that
// is created on the first save.
func Open(cfg *config.Config, path string, opts ...SessionOption) (*Session, error) {
	o := sessionOptions{logger: logging.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Session{Config: cfg, Path: path, logger: o.logger}

	sheet, err := loadSheet(cfg.Paths.Stylesheet)
	if err != nil {
		return nil, err
	}
	s.sheet = sheet

	if err := s.loadValidators(); err != nil {
		return nil, err
	}

	g := o.graphics
	if g == nil {
		g = Graphics(cfg)
	}

	engineOpts := []engine.Option{
		engine.WithWidth(cfg.Layout.Width),
		engine.WithStyles(sheet),
		engine.WithGraphics(g),
		engine.WithValidator(s.validator),
		engine.WithMaxUndoEntries(cfg.Editor.UndoLimit),
		engine.WithLogger(o.logger),
	}
	if cfg.Editor.ReadOnly {
		engineOpts = append(engineOpts, engine.WithReadOnly())
	}

	if err := s.load(engineOpts); err != nil {
		s.closeValidators()
		return nil, err
	}
	s.saved = s.Engine.Revision()
	return s, nil
}

func (s *Session) load(opts []engine.Option) error {
	if s.Path == "" {
		s.Engine = engine.New(opts...)
		return nil
	}
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("new document", logging.FieldPath, s.Path)
		s.Engine = engine.New(opts...)
		return nil
	}
	if err != nil {
		return &FileError{Op: "open", Path: s.Path, Err: err}
	}
	defer f.Close()
	s.Engine, err = engine.NewFromReader(f, opts...)
	if err != nil {
		return &FileError{Op: "open", Path: s.Path, Err: err}
	}
	return nil
}

// Graphics returns the text metrics cfg selects: terminal cells, or the
// configured font files measured with their real glyph advances.
func Graphics(cfg *config.Config) metrics.Graphics {
	if cfg.Layout.Measure != config.MeasureFont {
		return metrics.Cells()
	}
	opts := []metrics.FacesOption{metrics.WithDefaultFamily(cfg.Layout.FontFamily)}
	for name, ff := range cfg.Fonts {
		opts = append(opts, metrics.WithFamily(name, metrics.FontFiles{
			Regular:    ff.Regular,
			Bold:       ff.Bold,
			Italic:     ff.Italic,
			BoldItalic: ff.BoldItalic,
		}))
	}
	return metrics.NewFaces(opts...)
}

func loadSheet(path string) (*style.Sheet, error) {
	if path == "" {
		return style.DefaultSheet(), nil
	}
	sheet, err := style.LoadSheet(path)
	if err != nil {
		return nil, &FileError{Op: "load stylesheet", Path: path, Err: err}
	}
	return sheet, nil
}

func (s *Session) loadValidators() error {
	var vs []dom.Validator
	if p := s.Config.Paths.Schema; p != "" {
		schema, err := validate.LoadSchema(p)
		if err != nil {
			return &FileError{Op: "load schema", Path: p, Err: err}
		}
		s.schema = schema
		vs = append(vs, schema)
	}
	if p := s.Config.Paths.Validator; p != "" {
		lv, err := luavalidator.Load(p, luavalidator.WithLogger(s.logger))
		if err != nil {
			return &FileError{Op: "load validator", Path: p, Err: err}
		}
		s.lua = lv
		vs = append(vs, lv)
	}
	switch len(vs) {
	case 0:
	case 1:
		s.validator = vs[0]
	default:
		s.validator = validate.All(vs...)
	}
	return nil
}

func (s *Session) closeValidators() {
	if s.lua != nil {
		s.lua.Close()
		s.lua = nil
	}
}

// Validator returns the session's validator, or nil if none is configured.
func (s *Session) Validator() dom.Validator { return s.validator }

// Sheet returns the active stylesheet.
func (s *Session) Sheet() *style.Sheet { return s.sheet }

// Modified reports whether the document changed since it was opened or
// last saved.
func (s *Session) Modified() bool {
	return s.Engine.Revision() != s.saved
}

// Save writes the document to its path.
func (s *Session) Save() error {
	if s.Path == "" {
		return ErrNoFilePath
	}
	var buf bytes.Buffer
	if err := s.Engine.WriteXML(&buf); err != nil {
		return &FileError{Op: "save", Path: s.Path, Err: err}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return &FileError{Op: "save", Path: s.Path, Err: err}
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return &FileError{Op: "save", Path: s.Path, Err: err}
	}
	s.saved = s.Engine.Revision()
	s.logger.Info("saved", logging.FieldPath, s.Path, logging.FieldLength, buf.Len())
	return nil
}

// ReloadStyles reads the configured stylesheet again and relayouts.
func (s *Session) ReloadStyles() error {
	sheet, err := loadSheet(s.Config.Paths.Stylesheet)
	if err != nil {
		return err
	}
	s.sheet = sheet
	s.Engine.SetStyles(sheet)
	s.logger.Debug("stylesheet reloaded", logging.FieldPath, s.Config.Paths.Stylesheet)
	return nil
}

// Check validates the whole document against the session's validator.
func (s *Session) Check() []validate.Problem {
	v := s.validator
	if v == nil {
		v = validate.AllowAll
	}
	return validate.Check(s.Engine.Document(), v)
}

// ElementNames returns the element names an insert prompt offers: those
// the schema declares and those already in the document.
func (s *Session) ElementNames() []dom.QName {
	seen := make(map[dom.QName]bool)
	var names []dom.QName
	add := func(q dom.QName) {
		if q.Local == validate.AnyElement || seen[q] {
			return
		}
		seen[q] = true
		names = append(names, q)
	}
	if s.schema != nil {
		for _, q := range s.schema.Names() {
			add(q)
		}
	}
	var walk func(el *dom.Element)
	walk = func(el *dom.Element) {
		add(el.Name())
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	if root := s.Engine.Document().Root(); root != nil {
		walk(root)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Less(names[j]) })
	return names
}

// Name returns the file name shown for the session.
func (s *Session) Name() string {
	if s.Path == "" {
		return "[new]"
	}
	return filepath.Base(s.Path)
}

// Close releases the engine and validators.
func (s *Session) Close() {
	s.Engine.Close()
	s.closeValidators()
}

// String describes the session.
func (s *Session) String() string {
	return fmt.Sprintf("%s (revision %d)", s.Name(), s.Engine.Revision())
}
