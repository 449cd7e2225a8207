package app

import (
	"github.com/gdamore/tcell/v2"
)

// action is a command bound to a key.
type action func(a *Application) error

// binding identifies a key with the modifiers that matter for it.
type binding struct {
	key tcell.Key
	mod tcell.ModMask
}

type keymap map[binding]action

// lookup finds the action for ev. Modifiers other than shift and ctrl are
// ignored; ctrl letter keys arrive as their own key codes.
func (m keymap) lookup(ev *tcell.EventKey) (action, bool) {
	mod := ev.Modifiers() & (tcell.ModShift | tcell.ModCtrl)
	if act, ok := m[binding{ev.Key(), mod}]; ok {
		return act, true
	}
	act, ok := m[binding{ev.Key(), 0}]
	return act, ok
}

// move wraps an engine method that takes no arguments.
func move(fn func(a *Application)) action {
	return func(a *Application) error {
		fn(a)
		return nil
	}
}

func defaultKeymap() keymap {
	return keymap{
		{tcell.KeyLeft, 0}:               move(func(a *Application) { a.session.Engine.Left() }),
		{tcell.KeyRight, 0}:              move(func(a *Application) { a.session.Engine.Right() }),
		{tcell.KeyUp, 0}:                 move(func(a *Application) { a.session.Engine.Up() }),
		{tcell.KeyDown, 0}:               move(func(a *Application) { a.session.Engine.Down() }),
		{tcell.KeyLeft, tcell.ModShift}:  move(func(a *Application) { a.session.Engine.SelectLeft() }),
		{tcell.KeyRight, tcell.ModShift}: move(func(a *Application) { a.session.Engine.SelectRight() }),
		{tcell.KeyUp, tcell.ModShift}:    move(func(a *Application) { a.session.Engine.SelectUp() }),
		{tcell.KeyDown, tcell.ModShift}:  move(func(a *Application) { a.session.Engine.SelectDown() }),
		{tcell.KeyHome, 0}:               move(func(a *Application) { a.session.Engine.LineStart() }),
		{tcell.KeyEnd, 0}:                move(func(a *Application) { a.session.Engine.LineEnd() }),
		{tcell.KeyHome, tcell.ModCtrl}:   move(func(a *Application) { a.session.Engine.DocumentStart() }),
		{tcell.KeyEnd, tcell.ModCtrl}:    move(func(a *Application) { a.session.Engine.DocumentEnd() }),
		{tcell.KeyCtrlA, 0}:              move(func(a *Application) { a.session.Engine.SelectAll() }),

		{tcell.KeyBackspace, 0}:  editing(func(a *Application) error { return a.session.Engine.DeleteBackward() }),
		{tcell.KeyBackspace2, 0}: editing(func(a *Application) error { return a.session.Engine.DeleteBackward() }),
		{tcell.KeyDelete, 0}:     editing(func(a *Application) error { return a.session.Engine.DeleteForward() }),
		{tcell.KeyCtrlZ, 0}:      editing(func(a *Application) error { return a.session.Engine.Undo() }),
		{tcell.KeyCtrlY, 0}:      editing(func(a *Application) error { return a.session.Engine.Redo() }),

		{tcell.KeyCtrlE, 0}: (*Application).startPrompt,
		{tcell.KeyCtrlS, 0}: (*Application).save,

		{tcell.KeyEscape, 0}: func(a *Application) error {
			if !a.session.Engine.Selection().IsEmpty() {
				a.session.Engine.ClearSelection()
				return nil
			}
			return ErrQuit
		},
		{tcell.KeyCtrlQ, 0}: func(*Application) error { return ErrQuit },
	}
}

// editing wraps an editing command so that its failure is shown rather than
// ending the run.
func editing(fn func(a *Application) error) action {
	return func(a *Application) error {
		a.edit(fn(a))
		return nil
	}
}

func (a *Application) save() error {
	if err := a.session.Save(); err != nil {
		a.report(err)
		return nil
	}
	a.message = "saved"
	return nil
}
