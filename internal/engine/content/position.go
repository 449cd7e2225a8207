package content

import "fmt"

// Position is an offset maintained by a Store across edits.
type Position struct {
	store  *Store
	offset int
}

// Offset returns the current offset.
func (p *Position) Offset() int {
	p.store.mu.RLock()
	defer p.store.mu.RUnlock()
	return p.offset
}

// String returns a string representation of the position.
func (p *Position) String() string {
	return fmt.Sprintf("Position(%d)", p.Offset())
}
