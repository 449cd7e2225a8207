package app

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T, src string) (*Application, tcell.SimulationScreen, string) {
	t.Helper()
	cfg, dir := testConfig(t)
	path := writeFile(t, dir, "doc.xml", src)
	s := openSession(t, cfg, path)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(30, 6)
	t.Cleanup(screen.Fini)
	return New(s, screen), screen, path
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeRune(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestTypingAndUndo(t *testing.T) {
	a, _, _ := newApp(t, `<doc><para>Hello</para></doc>`)
	e := a.Session().Engine
	e.MoveTo(8)

	for _, r := range "!?" {
		require.NoError(t, a.HandleEvent(typeRune(r)))
	}
	assert.Equal(t, "Hello!?", e.Text())

	require.NoError(t, a.HandleEvent(key(tcell.KeyBackspace2)))
	assert.Equal(t, "Hello!", e.Text())

	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlZ)))
	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlZ)))
	assert.Equal(t, "Hello", e.Text())

	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlY)))
	assert.NotEqual(t, "Hello", e.Text())
}

func TestMovesAndSelection(t *testing.T) {
	a, _, _ := newApp(t, `<doc><para>Hello</para></doc>`)
	e := a.Session().Engine
	e.MoveTo(3)

	require.NoError(t, a.HandleEvent(key(tcell.KeyRight)))
	assert.Equal(t, 4, e.Offset())

	require.NoError(t, a.HandleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModShift)))
	assert.Equal(t, "e", e.SelectedText())

	require.NoError(t, a.HandleEvent(key(tcell.KeyEscape)))
	assert.True(t, e.Selection().IsEmpty())

	require.NoError(t, a.HandleEvent(key(tcell.KeyEnd)))
	assert.Equal(t, 8, e.Offset())
	require.NoError(t, a.HandleEvent(key(tcell.KeyHome)))
	assert.Equal(t, 3, e.Offset())

	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlA)))
	assert.Equal(t, "Hello", e.SelectedText())
}

func TestQuit(t *testing.T) {
	a, _, _ := newApp(t, `<doc/>`)
	assert.ErrorIs(t, a.HandleEvent(key(tcell.KeyCtrlQ)), ErrQuit)
	assert.ErrorIs(t, a.HandleEvent(key(tcell.KeyEscape)), ErrQuit)
}

func TestSaveKey(t *testing.T) {
	a, _, path := newApp(t, `<doc><para>Hi</para></doc>`)
	a.Session().Engine.MoveTo(5)
	require.NoError(t, a.HandleEvent(typeRune('!')))
	assert.Contains(t, a.status(), "[+]")

	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlS)))
	assert.Equal(t, "saved", a.Message())
	assert.NotContains(t, a.status(), "[+]")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<doc><para>Hi!</para></doc>`, string(data))
}

func TestInsertElementPrompt(t *testing.T) {
	a, _, _ := newApp(t, `<doc><para>Hi</para></doc>`)
	e := a.Session().Engine
	e.MoveTo(5)

	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlE)))
	require.NotNil(t, a.prompt)
	for _, r := range "pa" {
		require.NoError(t, a.HandleEvent(typeRune(r)))
	}
	assert.Contains(t, a.status(), "element: pa")
	assert.Contains(t, a.status(), "para")

	require.NoError(t, a.HandleEvent(key(tcell.KeyTab)))
	assert.Equal(t, "para", string(a.prompt.input))

	require.NoError(t, a.HandleEvent(key(tcell.KeyEnter)))
	assert.Nil(t, a.prompt)
	assert.Equal(t, "inserted <para>", a.Message())

	el, err := e.ElementAtCaret()
	require.NoError(t, err)
	assert.Equal(t, "para", el.Name().Local)
	assert.True(t, el.IsEmpty())

	require.NoError(t, a.HandleEvent(key(tcell.KeyCtrlE)))
	require.NoError(t, a.HandleEvent(key(tcell.KeyEscape)))
	assert.Nil(t, a.prompt)
}

func TestPaste(t *testing.T) {
	a, _, _ := newApp(t, `<doc><para>ab</para></doc>`)
	e := a.Session().Engine
	e.MoveTo(4)

	require.NoError(t, a.HandleEvent(tcell.NewEventPaste(true)))
	for _, r := range "xyz" {
		require.NoError(t, a.HandleEvent(typeRune(r)))
	}
	assert.Equal(t, "ab", e.Text())
	require.NoError(t, a.HandleEvent(tcell.NewEventPaste(false)))
	assert.Equal(t, "axyzb", e.Text())
}

func TestDrawShowsDocumentAndStatus(t *testing.T) {
	a, screen, _ := newApp(t, `<doc><para>Hello</para></doc>`)
	a.Draw()

	r, _, _, _ := screen.GetContent(0, 0)
	assert.Equal(t, 'H', r)

	_, h := screen.Size()
	var status []rune
	for x := 0; x < 7; x++ {
		c, _, _, _ := screen.GetContent(x, h-1)
		status = append(status, c)
	}
	assert.Equal(t, "doc.xml", string(status))
}

func TestResizeNarrowsLayout(t *testing.T) {
	a, screen, _ := newApp(t, `<doc><para>Hello</para></doc>`)
	assert.Equal(t, 20, a.Session().Engine.Width())

	screen.SetSize(10, 6)
	require.NoError(t, a.HandleEvent(tcell.NewEventResize(10, 6)))
	assert.Equal(t, 10, a.Session().Engine.Width())
}

func TestRunStopsOnCancel(t *testing.T) {
	a, _, _ := newApp(t, `<doc/>`)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	a, screen, _ := newApp(t, `<doc/>`)
	errc := make(chan error, 1)
	go func() { errc <- a.Run(context.Background()) }()
	screen.InjectKey(tcell.KeyCtrlQ, 0, tcell.ModNone)

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestReloadStylesEvent(t *testing.T) {
	a, _, _ := newApp(t, `<doc/>`)
	require.NoError(t, a.HandleEvent(tcell.NewEventInterrupt(reloadStyles{})))
	assert.Equal(t, "stylesheet reloaded", a.Message())
}
