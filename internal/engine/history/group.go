package history

import "errors"

// WorkScope provides a convenient way to run a transaction with defer.
// Usage:
//
//	func replaceAll(s *Stack) (err error) {
//	    w := s.Work()
//	    defer w.End(&err)
//	    // ... multiple edits ...
//	}
type WorkScope struct {
	stack  *Stack
	active bool
}

// Work opens a transaction and returns its scope.
func (s *Stack) Work() *WorkScope {
	s.BeginWork()
	return &WorkScope{
		stack:  s,
		active: true,
	}
}

// End commits the transaction if *errp is nil and rolls it back otherwise.
// Safe to call multiple times; only the first call has effect.
func (w *WorkScope) End(errp *error) {
	if !w.active {
		return
	}
	w.active = false
	if errp != nil && *errp != nil {
		*errp = errors.Join(*errp, w.stack.RollbackWork())
		return
	}
	if err := w.stack.CommitWork(); err != nil && errp != nil {
		*errp = err
	}
}

// Transaction runs fn inside a transaction. If fn returns an error the
// transaction is rolled back; otherwise it is committed.
func (s *Stack) Transaction(fn func() error) (err error) {
	w := s.Work()
	defer w.End(&err)
	return fn()
}

// ApplyAll applies several edits as a single undo unit.
func (s *Stack) ApplyAll(edits ...Edit) error {
	if len(edits) == 1 {
		return s.Apply(edits[0])
	}
	return s.Transaction(func() error {
		for _, e := range edits {
			if err := s.Apply(e); err != nil {
				return err
			}
		}
		return nil
	})
}
