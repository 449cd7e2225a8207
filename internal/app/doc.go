// Package app ties the editing engine to configuration, files and the
// terminal.
//
// A Session is one document opened for editing with the stylesheet,
// validators and text metrics the configuration names. An Application runs
// a Session interactively on a tcell screen:
//
//	arrows              move the caret (shift extends the selection)
//	home, end           line start and end (ctrl for document)
//	backspace, delete   delete backward and forward
//	ctrl-z, ctrl-y      undo and redo
//	ctrl-a              select all
//	ctrl-e              insert an element, prompting for its name
//	ctrl-s              save
//	esc, ctrl-q         quit
package app
