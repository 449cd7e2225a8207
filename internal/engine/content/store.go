package content

import (
	"fmt"
	"strings"
	"sync"
)

// Tag marker runes. They come from the Unicode private use area and are
// never accepted as part of inserted text.
const (
	OpenTag  rune = '\uE000'
	CloseTag rune = '\uE001'
)

// minGap is the smallest gap allocated when the buffer grows.
const minGap = 64

// Store is a gap buffer of runes with tracked positions.
type Store struct {
	mu sync.RWMutex

	buf      []rune
	gapStart int
	gapEnd   int

	positions map[*Position]struct{}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		positions: make(map[*Position]struct{}),
	}
	cfg := storeConfig{initialGap: minGap}
	for _, opt := range opts {
		opt(&cfg)
	}
	s.buf = make([]rune, cfg.initialGap)
	s.gapEnd = cfg.initialGap
	return s
}

// IsTagMarker reports whether r is one of the reserved marker runes.
func IsTagMarker(r rune) bool {
	return r == OpenTag || r == CloseTag
}

// Len returns the number of runes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *Store) lenLocked() int {
	return len(s.buf) - (s.gapEnd - s.gapStart)
}

// RuneAt returns the rune at offset, or false if offset is out of range.
func (s *Store) RuneAt(offset int) (rune, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 || offset >= s.lenLocked() {
		return 0, false
	}
	return s.runeAtLocked(offset), true
}

func (s *Store) runeAtLocked(offset int) rune {
	if offset < s.gapStart {
		return s.buf[offset]
	}
	return s.buf[offset+s.gapEnd-s.gapStart]
}

// Text returns the runes in r, tag markers included.
// Offsets outside the store are ignored.
func (s *Store) Text(r Range) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.textLocked(r, false)
}

// PlainText returns the runes in r with tag markers removed.
func (s *Store) PlainText(r Range) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.textLocked(r, true)
}

func (s *Store) textLocked(r Range, plain bool) string {
	n := s.lenLocked()
	start := max(r.Start, 0)
	end := min(r.End, n-1)
	if start > end {
		return ""
	}

	var sb strings.Builder
	sb.Grow(end - start + 1)
	for i := start; i <= end; i++ {
		ch := s.runeAtLocked(i)
		if plain && IsTagMarker(ch) {
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}

// InsertText inserts text before offset. The text must not contain tag
// markers.
func (s *Store) InsertText(offset int, text string) error {
	if strings.ContainsRune(text, OpenTag) || strings.ContainsRune(text, CloseTag) {
		return ErrReservedRune
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(offset, []rune(text))
}

// InsertTagPair inserts an open and a close marker before offset and
// returns their offsets.
func (s *Store) InsertTagPair(offset int) (start, end int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.insertLocked(offset, []rune{OpenTag, CloseTag}); err != nil {
		return 0, 0, err
	}
	return offset, offset + 1, nil
}

// InsertTagMarker inserts a single open or close marker before offset.
// Callers are responsible for keeping markers balanced.
func (s *Store) InsertTagMarker(offset int, open bool) error {
	m := CloseTag
	if open {
		m = OpenTag
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(offset, []rune{m})
}

// InsertMarkedText inserts text that may contain tag markers. The markers
// in text must be balanced.
func (s *Store) InsertMarkedText(offset int, text string) error {
	runes := []rune(text)
	if !balanced(runes) {
		return fmt.Errorf("%w: unbalanced tag markers in inserted text", ErrInvalidOffset)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(offset, runes)
}

func (s *Store) insertLocked(offset int, runes []rune) error {
	n := s.lenLocked()
	if offset < 0 || offset > n {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidOffset, offset, n)
	}
	if len(runes) == 0 {
		return nil
	}

	s.moveGap(offset)
	s.grow(len(runes))
	copy(s.buf[s.gapStart:], runes)
	s.gapStart += len(runes)

	for p := range s.positions {
		if p.offset >= offset {
			p.offset += len(runes)
		}
	}
	return nil
}

// Delete removes the runes in r. Every tag marker inside r must have its
// partner inside r as well.
func (s *Store) Delete(r Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lenLocked()
	if r.Start < 0 || r.Start > r.End || r.End >= n {
		return fmt.Errorf("%w: %s in store of length %d", ErrInvalidRange, r, n)
	}

	runes := make([]rune, 0, r.Len())
	for i := r.Start; i <= r.End; i++ {
		runes = append(runes, s.runeAtLocked(i))
	}
	if !balanced(runes) {
		return fmt.Errorf("%w: deleting %s would split a tag pair", ErrInvalidOffset, r)
	}

	s.moveGap(r.Start)
	s.gapEnd += r.Len()

	for p := range s.positions {
		switch {
		case p.offset > r.End:
			p.offset -= r.Len()
		case p.offset >= r.Start:
			p.offset = r.Start
		}
	}
	return nil
}

// CreatePosition returns a position tracking offset across edits.
func (s *Store) CreatePosition(offset int) (*Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offset < 0 || offset > s.lenLocked() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOffset, offset)
	}
	p := &Position{store: s, offset: offset}
	s.positions[p] = struct{}{}
	return p, nil
}

// RemovePosition stops tracking p. Its offset is frozen afterwards.
func (s *Store) RemovePosition(p *Position) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, p)
}

// PositionCount returns the number of tracked positions.
func (s *Store) PositionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions)
}

// moveGap relocates the gap so it starts at pos.
func (s *Store) moveGap(pos int) {
	switch {
	case pos < s.gapStart:
		n := s.gapStart - pos
		copy(s.buf[s.gapEnd-n:s.gapEnd], s.buf[pos:s.gapStart])
		s.gapStart -= n
		s.gapEnd -= n
	case pos > s.gapStart:
		n := pos - s.gapStart
		copy(s.buf[s.gapStart:s.gapStart+n], s.buf[s.gapEnd:s.gapEnd+n])
		s.gapStart += n
		s.gapEnd += n
	}
}

// grow ensures the gap can hold need more runes.
func (s *Store) grow(need int) {
	if s.gapEnd-s.gapStart >= need {
		return
	}
	size := max(len(s.buf)*2, len(s.buf)+need+minGap)
	buf := make([]rune, size)
	copy(buf, s.buf[:s.gapStart])
	tail := len(s.buf) - s.gapEnd
	copy(buf[size-tail:], s.buf[s.gapEnd:])
	s.gapEnd = size - tail
	s.buf = buf
}

// balanced reports whether every marker in runes has its partner in runes.
func balanced(runes []rune) bool {
	depth := 0
	for _, r := range runes {
		switch r {
		case OpenTag:
			depth++
		case CloseTag:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
