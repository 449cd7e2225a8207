package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/vex/internal/metrics"
)

// measure returns the width of text, drawing control characters as spaces.
func measure(g metrics.Graphics, f metrics.Font, text string) int {
	return g.StringWidth(f, displayText(text))
}

// displayText replaces characters that have no glyph with spaces.
func displayText(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		return r
	}, text)
}

// lineSegments splits text at Unicode line break opportunities.
func lineSegments(text string) []string {
	var segs []string
	state := -1
	for text != "" {
		var seg string
		seg, text, _, state = uniseg.FirstLineSegmentInString(text, state)
		segs = append(segs, seg)
	}
	return segs
}

// breakText finds where to split text so the head fits in maxWidth once
// trailing white space is dropped. It returns the head length in runes, or
// 0 if text cannot be split that way. With force, the first break
// opportunity is used when nothing fits.
func breakText(text string, maxWidth int, force bool, width func(string) int) int {
	segs := lineSegments(text)
	if len(segs) < 2 {
		return 0
	}
	best := 0
	headBytes := 0
	for _, seg := range segs[:len(segs)-1] {
		headBytes += len(seg)
		head := text[:headBytes]
		if width(strings.TrimRightFunc(head, unicode.IsSpace)) > maxWidth {
			break
		}
		best = headBytes
	}
	if best == 0 && force {
		best = len(segs[0])
	}
	return utf8.RuneCountInString(text[:best])
}

// splitRunes splits s after n runes.
func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

// graphemeOffsets returns the rune offsets of the grapheme cluster
// boundaries of text, including 0 and the rune count.
func graphemeOffsets(text string) []int {
	offsets := []int{0}
	n := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		n += len(g.Runes())
		offsets = append(offsets, n)
	}
	return offsets
}
