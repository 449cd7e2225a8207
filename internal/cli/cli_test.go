package cli

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/vex/internal/logging"
)

func TestMain(m *testing.M) {
	logging.SetDefault(logging.Discard())
	os.Exit(m.Run())
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(BuildInfo{Version: "1.2.3", Commit: "abc", Date: "today"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func TestLayoutCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.xml", `<doc>Lorem ipsum</doc>`)

	out, err := execute(t, "layout", "--width", "6", doc)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "RootBox"), lines[0])
	assert.Contains(t, out, `"Lorem `)
	assert.Contains(t, out, `"ipsum"`)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", "elements:\n  doc:\n    children: [para]\n  para:\n    text: true\n")
	good := writeFile(t, dir, "good.xml", `<doc><para>a</para></doc>`)
	bad := writeFile(t, dir, "bad.xml", `<doc><para><para/></para></doc>`)

	out, err := execute(t, "check", "--schema", schema, good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	out, err = execute(t, "check", "--schema", schema, good, bad)
	assert.ErrorIs(t, err, ErrProblemsFound)
	assert.Equal(t, ExitProblems, ExitCode(err))
	assert.Contains(t, out, bad+":2: <para> has invalid content")
	assert.Contains(t, out, "1 problem(s)")
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.xml", `<doc>Hello</doc>`)
	img := filepath.Join(dir, "doc.png")

	_, err := execute(t, "render", "-o", img, doc)
	require.NoError(t, err)

	f, err := os.Open(img)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	assert.NoError(t, err)

	_, err = execute(t, "render", doc)
	assert.Error(t, err)
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.xml", `<doc>Lorem ipsum</doc>`)

	invalid := writeFile(t, dir, "invalid.toml", "[layout]\nwidth = 0\n")
	_, err := execute(t, "--config", invalid, "layout", doc)
	assert.Error(t, err)
	assert.Equal(t, ExitError, ExitCode(err))

	narrow := writeFile(t, dir, "narrow.yaml", "layout:\n  width: 6\n")
	out, err := execute(t, "--config", narrow, "layout", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `"ipsum"`)

	out, err = execute(t, "--config", narrow, "--width", "30", "layout", doc)
	require.NoError(t, err)
	assert.Contains(t, out, `"Lorem ipsum"`)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc")
}

func TestStyleDumpLine(t *testing.T) {
	st := newStyles(false)
	line := `    TextContent [3,7] "Hello" @0,0 5x1`
	assert.Equal(t, line, styleDumpLine(st, line))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitError, ExitCode(os.ErrNotExist))
}
