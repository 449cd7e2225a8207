package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// styles holds the renderers for command output.
type styles struct {
	Path    lipgloss.Style
	Offset  lipgloss.Style
	Element lipgloss.Style
	Message lipgloss.Style
	Box     lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
}

func newStyles(colorEnabled bool) *styles {
	if !colorEnabled {
		plain := lipgloss.NewStyle()
		return &styles{plain, plain, plain, plain, plain, plain, plain, plain}
	}
	return &styles{
		Path:    lipgloss.NewStyle().Bold(true),
		Offset:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Element: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Message: lipgloss.NewStyle(),
		Box:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Failure: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// colorEnabled decides whether to colorize output written to w.
// Mode values: "auto" (default), "always", "never".
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := w.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}

// terminalWidth returns the column count of w if it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}
