// Package raster draws a layout box tree into an image with gg.
package raster

import (
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/dshills/vex/internal/layout"
	"github.com/dshills/vex/internal/metrics"
)

// DefaultMargin is the blank border around the drawing, in pixels.
const DefaultMargin = 8

// FaceSource supplies the face text in a font is drawn with.
type FaceSource interface {
	Face(f metrics.Font) font.Face
}

// Option configures Render.
type Option func(*options)

type options struct {
	background color.Color
	margin     int
	faces      FaceSource
	cellW      int
	cellH      int
}

// WithBackground sets the page color.
func WithBackground(c color.Color) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithMargin sets the blank border in pixels.
func WithMargin(px int) Option {
	return func(o *options) {
		o.margin = max(px, 0)
	}
}

// WithFaces draws text with faces and takes box coordinates as pixels. Use
// it for trees laid out with the same faces' metrics.
func WithFaces(faces FaceSource) Option {
	return func(o *options) {
		o.faces = faces
		o.cellW, o.cellH = 1, 1
	}
}

// Render draws the tree rooted at root. Without WithFaces, coordinates are
// terminal cells drawn with a 7x13 bitmap font.
func Render(root layout.Box, opts ...Option) image.Image {
	o := options{
		background: color.White,
		margin:     DefaultMargin,
		cellW:      basicfont.Face7x13.Advance,
		cellH:      basicfont.Face7x13.Height,
	}
	for _, opt := range opts {
		opt(&o)
	}

	w := root.Width()*o.cellW + 2*o.margin
	h := root.Height()*o.cellH + 2*o.margin
	dc := gg.NewContext(max(w, 1), max(h, 1))
	dc.SetColor(o.background)
	dc.Clear()

	layout.Visit(root, func(b layout.Box, top, left, _ int) bool {
		var text string
		var fnt metrics.Font
		var c colorful.Color
		var baseline int
		switch b := b.(type) {
		case *layout.TextContent:
			text, fnt, c, baseline = b.Text(), b.Font(), b.Color(), b.Baseline()
		case *layout.StaticText:
			text, fnt, c, baseline = b.Text(), b.Font(), b.Color(), b.Baseline()
		default:
			return true
		}
		face := o.face(fnt)
		dc.SetFontFace(face)
		dc.SetColor(c)

		x := float64(left*o.cellW + o.margin)
		y := float64(top*o.cellH + o.margin)
		if o.faces != nil {
			y += float64(baseline)
		} else {
			y += float64(face.Metrics().Ascent.Ceil())
		}
		dc.DrawString(displayText(text), x, y)
		return true
	})
	return dc.Image()
}

func (o *options) face(f metrics.Font) font.Face {
	if o.faces != nil {
		return o.faces.Face(f)
	}
	return basicfont.Face7x13
}

// EncodePNG renders root and writes it to w as PNG.
func EncodePNG(w io.Writer, root layout.Box, opts ...Option) error {
	img := Render(root, opts...)
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

func displayText(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		return r
	}, text)
}
