package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/renderer"
)

// reloadStyles is posted to the event loop when the stylesheet changes.
type reloadStyles struct{}

// Application runs a session on a terminal screen.
type Application struct {
	session  *Session
	screen   tcell.Screen
	renderer *renderer.Renderer
	logger   *log.Logger
	keymap   keymap

	message string
	prompt  *prompt
	paste   *strings.Builder
}

// prompt collects an element name on the status line.
type prompt struct {
	input       []rune
	suggestions []dom.QName
}

// New creates an application for session on screen. The screen must be
// initialized; the caller owns it.
func New(session *Session, screen tcell.Screen) *Application {
	a := &Application{
		session:  session,
		screen:   screen,
		renderer: renderer.New(screen),
		logger:   session.logger,
		keymap:   defaultKeymap(),
	}
	a.fitWidth()
	return a
}

// Session returns the running session.
func (a *Application) Session() *Session { return a.session }

// Message returns the current status message.
func (a *Application) Message() string { return a.message }

// ReloadStyles asks the event loop to reload the stylesheet. It is safe to
// call from any goroutine.
func (a *Application) ReloadStyles() {
	_ = a.screen.PostEvent(tcell.NewEventInterrupt(reloadStyles{}))
}

// Run draws the session and handles events until the user quits or ctx is
// done.
func (a *Application) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = a.screen.PostEvent(tcell.NewEventInterrupt(ctx.Err()))
		case <-done:
		}
	}()

	a.Draw()
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if err := a.HandleEvent(ev); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
		a.Draw()
	}
}

// HandleEvent processes one screen event. It returns ErrQuit when the user
// quits and the context error when the run is cancelled.
func (a *Application) HandleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		a.fitWidth()
	case *tcell.EventPaste:
		a.handlePaste(ev)
	case *tcell.EventKey:
		if a.paste != nil {
			if ev.Key() == tcell.KeyRune {
				a.paste.WriteRune(ev.Rune())
			} else if ev.Key() == tcell.KeyEnter {
				a.paste.WriteByte('\n')
			}
			return nil
		}
		if a.prompt != nil {
			return a.handlePrompt(ev)
		}
		return a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case reloadStyles:
			if err := a.session.ReloadStyles(); err != nil {
				a.report(err)
			} else {
				a.message = "stylesheet reloaded"
			}
		case error:
			return data
		}
	}
	return nil
}

// fitWidth lays out at the configured width, narrowed to the screen.
func (a *Application) fitWidth() {
	w, _ := a.screen.Size()
	width := a.session.Config.Layout.Width
	if w > 0 {
		width = min(width, w)
	}
	if width != a.session.Engine.Width() {
		a.session.Engine.SetWidth(width)
	}
}

func (a *Application) handleKey(ev *tcell.EventKey) error {
	a.message = ""
	if act, ok := a.keymap.lookup(ev); ok {
		return act(a)
	}
	if ev.Key() == tcell.KeyRune {
		a.edit(a.session.Engine.InsertText(string(ev.Rune())))
	}
	return nil
}

func (a *Application) handlePaste(ev *tcell.EventPaste) {
	if ev.Start() {
		a.paste = &strings.Builder{}
		return
	}
	if a.paste == nil {
		return
	}
	text := a.paste.String()
	a.paste = nil
	if text != "" {
		a.edit(a.session.Engine.InsertText(text))
	}
}

func (a *Application) handleMouse(ev *tcell.EventMouse) {
	if ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := a.renderer.ScreenToDocument(ev.Position())
	if ev.Modifiers()&tcell.ModShift != 0 {
		a.session.Engine.SelectTo(a.offsetAt(x, y))
		return
	}
	a.session.Engine.MoveToCoordinates(x, y)
}

func (a *Application) offsetAt(x, y int) int {
	cm := a.session.Engine.ContentMap()
	if cm == nil {
		return a.session.Engine.Offset()
	}
	return cm.OffsetAt(x, y)
}

// edit reports the error of an edit, if any, on the status line.
func (a *Application) edit(err error) {
	if err != nil {
		a.report(err)
	}
}

func (a *Application) report(err error) {
	a.message = err.Error()
	a.logger.Debug("command failed", logging.FieldError, err)
}

// startPrompt asks for the name of an element to insert.
func (a *Application) startPrompt() error {
	a.prompt = &prompt{}
	a.updateSuggestions()
	return nil
}

func (a *Application) updateSuggestions() {
	a.prompt.suggestions = a.session.Engine.SuggestElements(string(a.prompt.input), a.session.ElementNames())
}

func (a *Application) handlePrompt(ev *tcell.EventKey) error {
	p := a.prompt
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.prompt = nil
	case tcell.KeyEnter:
		a.prompt = nil
		name := a.chosenName(p)
		if name.Local == "" {
			return nil
		}
		if _, err := a.session.Engine.InsertElement(name); err != nil {
			a.report(err)
		} else {
			a.message = fmt.Sprintf("inserted <%s>", name)
		}
	case tcell.KeyTab:
		if len(p.suggestions) > 0 {
			p.input = []rune(p.suggestions[0].String())
			a.updateSuggestions()
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(p.input) > 0 {
			p.input = p.input[:len(p.input)-1]
			a.updateSuggestions()
		}
	case tcell.KeyRune:
		p.input = append(p.input, ev.Rune())
		a.updateSuggestions()
	}
	return nil
}

// chosenName resolves the prompt input against the known names, so that
// typing a local name picks up its namespace.
func (a *Application) chosenName(p *prompt) dom.QName {
	in := strings.TrimSpace(string(p.input))
	if in == "" {
		if len(p.suggestions) > 0 {
			return p.suggestions[0]
		}
		return dom.QName{}
	}
	for _, q := range a.session.ElementNames() {
		if q.String() == in || q.Local == in {
			return q
		}
	}
	return dom.QName{Local: in}
}

// Draw renders the session and status line.
func (a *Application) Draw() {
	e := a.session.Engine
	caret, err := e.Caret()
	if err != nil {
		a.logger.Debug("no caret", logging.FieldError, err)
	}
	a.renderer.Draw(renderer.Frame{
		Root:      e.RootBox(),
		Caret:     caret,
		Selection: e.Selection(),
		Status:    a.status(),
	})
}

func (a *Application) status() string {
	if p := a.prompt; p != nil {
		var names []string
		for i, q := range p.suggestions {
			if i == 5 {
				break
			}
			names = append(names, q.String())
		}
		return fmt.Sprintf("element: %s  [%s]", string(p.input), strings.Join(names, " "))
	}

	var sb strings.Builder
	sb.WriteString(a.session.Name())
	if a.session.Modified() {
		sb.WriteString(" [+]")
	}
	if a.session.Engine.IsReadOnly() {
		sb.WriteString(" [ro]")
	}
	if el, err := a.session.Engine.ElementAtCaret(); err == nil {
		fmt.Fprintf(&sb, "  <%s>", el.Name())
	}
	fmt.Fprintf(&sb, "  %d", a.session.Engine.Offset())
	if a.message != "" {
		sb.WriteString("  ")
		sb.WriteString(a.message)
	}
	return sb.String()
}
