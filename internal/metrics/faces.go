package metrics

import (
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontFiles maps a font family to the font files of its styles.
type FontFiles struct {
	Regular    string
	Bold       string
	Italic     string
	BoldItalic string
}

// Path returns the file for the given style, falling back to Regular.
func (ff FontFiles) Path(bold, italic bool) string {
	switch {
	case bold && italic && ff.BoldItalic != "":
		return ff.BoldItalic
	case bold && ff.Bold != "":
		return ff.Bold
	case italic && ff.Italic != "":
		return ff.Italic
	}
	return ff.Regular
}

// Faces measures text with TrueType fonts loaded through gg. Families
// without files, and files that fail to load, use a built-in bitmap face.
type Faces struct {
	mu       sync.Mutex
	families map[string]FontFiles
	fallback string
	faces    map[Font]font.Face
	ctx      *gg.Context
}

// FacesOption configures Faces.
type FacesOption func(*Faces)

// WithFamily registers the files of a font family.
func WithFamily(name string, files FontFiles) FacesOption {
	return func(f *Faces) {
		f.families[name] = files
	}
}

// WithDefaultFamily sets the family used for unknown family names.
func WithDefaultFamily(name string) FacesOption {
	return func(f *Faces) {
		f.fallback = name
	}
}

// NewFaces creates a font-file backed Graphics.
func NewFaces(opts ...FacesOption) *Faces {
	f := &Faces{
		families: make(map[string]FontFiles),
		faces:    make(map[Font]font.Face),
		ctx:      gg.NewContext(1, 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// face returns the cached face for fnt, loading it on first use.
func (f *Faces) face(fnt Font) font.Face {
	if face, ok := f.faces[fnt]; ok {
		return face
	}
	files, ok := f.families[fnt.Family]
	if !ok {
		files = f.families[f.fallback]
	}
	var face font.Face = basicfont.Face7x13
	if path := files.Path(fnt.Bold, fnt.Italic); path != "" && fnt.Size > 0 {
		if loaded, err := gg.LoadFontFace(path, fnt.Size); err == nil {
			face = loaded
		}
	}
	f.faces[fnt] = face
	return face
}

// Metrics returns the vertical metrics of fnt.
func (f *Faces) Metrics(fnt Font) FontMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := f.face(fnt).Metrics()
	fm := FontMetrics{
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
	}
	fm.Leading = max(m.Height.Ceil()-fm.Ascent-fm.Descent, 0)
	return fm
}

// StringWidth returns the advance width of s in pixels.
func (f *Faces) StringWidth(fnt Font, s string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ctx.SetFontFace(f.face(fnt))
	w, _ := f.ctx.MeasureString(s)
	return int(math.Ceil(w))
}

// Face returns the face fnt is drawn with.
func (f *Faces) Face(fnt Font) font.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face(fnt)
}
