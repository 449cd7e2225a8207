package renderer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// NewTerminal creates and initializes a screen on the controlling terminal
// with mouse and bracketed paste enabled. Callers must Fini it.
func NewTerminal() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing screen: %w", err)
	}
	screen.EnableMouse()
	screen.EnablePaste()
	return screen, nil
}
