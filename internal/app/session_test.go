package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vex/internal/config"
	"github.com/dshills/vex/internal/engine/dom"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/metrics"
)

const (
	testSheet  = `{"elements": {"doc": {"display": "block"}, "para": {"display": "block"}}}`
	testSchema = "elements:\n  doc:\n    children: [para]\n  para:\n    text: true\n    children: [em]\n  em:\n    text: true\n"
	testLua    = `function validate(parent, children, partial)
  for _, c in ipairs(children) do
    if c == "forbidden" then return false end
  end
  return true
end`
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Layout.Width = 20
	cfg.Paths.Stylesheet = writeFile(t, dir, "style.json", testSheet)
	return cfg, dir
}

func openSession(t *testing.T, cfg *config.Config, path string) *Session {
	t.Helper()
	s, err := Open(cfg, path, WithLogger(logging.Discard()))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestOpenEditSave(t *testing.T) {
	cfg, dir := testConfig(t)
	path := writeFile(t, dir, "doc.xml", `<doc><para>Hello</para></doc>`)

	s := openSession(t, cfg, path)
	assert.Equal(t, "Hello", s.Engine.Text())
	assert.Equal(t, "doc.xml", s.Name())
	assert.False(t, s.Modified())

	s.Engine.MoveTo(3)
	require.NoError(t, s.Engine.InsertText("x"))
	assert.True(t, s.Modified())

	require.NoError(t, s.Save())
	assert.False(t, s.Modified())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<doc><para>xHello</para></doc>`, string(data))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestOpenMissingFileStartsNewDocument(t *testing.T) {
	cfg, dir := testConfig(t)
	path := filepath.Join(dir, "new.xml")

	s := openSession(t, cfg, path)
	assert.Equal(t, "", s.Engine.Text())
	require.NoError(t, s.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `<doc/>`, string(data))
}

func TestOpenWithoutPath(t *testing.T) {
	cfg, _ := testConfig(t)
	s := openSession(t, cfg, "")
	assert.Equal(t, "[new]", s.Name())
	assert.ErrorIs(t, s.Save(), ErrNoFilePath)
}

func TestOpenErrors(t *testing.T) {
	cfg, dir := testConfig(t)
	bad := writeFile(t, dir, "bad.xml", `<doc><para></doc>`)
	_, err := Open(cfg, bad, WithLogger(logging.Discard()))
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "open", fe.Op)

	cfg.Paths.Stylesheet = filepath.Join(dir, "missing.json")
	_, err = Open(cfg, "", WithLogger(logging.Discard()))
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "load stylesheet", fe.Op)
}

func TestValidators(t *testing.T) {
	cfg, dir := testConfig(t)
	cfg.Paths.Schema = writeFile(t, dir, "schema.yaml", testSchema)
	cfg.Paths.Validator = writeFile(t, dir, "rules.lua", testLua)
	path := writeFile(t, dir, "doc.xml", `<doc><para>a</para><em>b</em></doc>`)

	s := openSession(t, cfg, path)
	require.NotNil(t, s.Validator())

	problems := s.Check()
	require.Len(t, problems, 1)
	assert.Equal(t, "doc", problems[0].Element.Local)

	assert.False(t, s.Validator().Validate(dom.QName{Local: "para"}, []dom.QName{{Local: "forbidden"}}, true))
	assert.True(t, s.Validator().Validate(dom.QName{Local: "para"}, []dom.QName{{Local: "em"}}, true))

	names := s.ElementNames()
	assert.Equal(t, []dom.QName{{Local: "doc"}, {Local: "em"}, {Local: "para"}}, names)
}

func TestCheckWithoutValidator(t *testing.T) {
	cfg, _ := testConfig(t)
	s := openSession(t, cfg, "")
	assert.Nil(t, s.Validator())
	assert.Empty(t, s.Check())
}

func TestReloadStyles(t *testing.T) {
	cfg, dir := testConfig(t)
	path := writeFile(t, dir, "doc.xml", `<doc><para>Hello</para></doc>`)
	s := openSession(t, cfg, path)
	before := s.Sheet()

	writeFile(t, dir, "style.json", `{"elements": {"doc": {"display": "block"}, "para": {"display": "block", "margin": 1}}}`)
	require.NoError(t, s.ReloadStyles())
	assert.NotSame(t, before, s.Sheet())

	s.Engine.MoveTo(3)
	caret, err := s.Engine.Caret()
	require.NoError(t, err)
	assert.Equal(t, 1, caret.X)
	assert.Equal(t, 1, caret.Y)
}

func TestGraphics(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, metrics.Cells(), Graphics(cfg))

	cfg.Layout.Measure = config.MeasureFont
	cfg.Fonts["serif"] = config.FontFiles{Regular: "serif.ttf"}
	_, ok := Graphics(cfg).(*metrics.Faces)
	assert.True(t, ok)
}
