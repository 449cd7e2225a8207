package layout

// ArrangeLines breaks boxes into lines no wider than maxWidth.
//
// Boxes are taken greedily. Each box is first joined onto the last box of
// the current line when the two are compatible. A box that does not fit is
// split at the last break opportunity that fits and its remainder starts
// the next line. A box that cannot be split that way moves whole to the
// next line, taking the run it was joined with along. A box that fits
// nowhere is placed alone on an overflowing line. No line holds a box of
// width zero produced by splitting.
func ArrangeLines(boxes []InlineBox, maxWidth int) [][]InlineBox {
	var (
		lines [][]InlineBox
		cur   []InlineBox
		width int
	)
	flush := func() {
		lines = append(lines, cur)
		cur, width = nil, 0
	}
	place := func(b InlineBox) {
		cur = append(cur, b)
		width += b.Width()
		if b.LineBreakAfter() {
			flush()
		}
	}

	queue := append([]InlineBox(nil), boxes...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		if n := len(cur); n > 0 && cur[n-1].CanJoin(b) {
			prev := cur[n-1]
			cur = cur[:n-1]
			width -= prev.Width()
			b = prev.Join(b)
		}

		if width+b.Width() <= maxWidth {
			place(b)
			continue
		}

		if b.CanSplit() {
			head, tail := b.Split(maxWidth-width, len(cur) == 0)
			switch {
			case head != nil && tail == nil:
				place(head)
				continue
			case head != nil && head.Width() > 0:
				place(head)
				if len(cur) > 0 {
					flush()
				}
				queue = append([]InlineBox{tail}, queue...)
				continue
			}
		}

		if len(cur) == 0 {
			place(b)
			if len(cur) > 0 {
				flush()
			}
			continue
		}
		flush()
		queue = append([]InlineBox{b}, queue...)
	}
	if len(cur) > 0 {
		flush()
	}
	return lines
}
