package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/vex/internal/app"
	"github.com/dshills/vex/internal/logging"
)

func newLayoutCommand(g *globalFlags) *cobra.Command {
	var fit bool
	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Print the box tree of a document",
		Long: `Lay out a document and print its box tree, one box per line with its
position and size. With --fit the layout width is the terminal width.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if w, ok := terminalWidth(out); fit && ok {
				cfg.Layout.Width = w
			}

			s, err := app.Open(cfg, args[0], app.WithLogger(logging.Default()))
			if err != nil {
				return err
			}
			defer s.Close()

			var buf bytes.Buffer
			if err := s.Engine.Dump(&buf); err != nil {
				return err
			}
			st := newStyles(colorEnabled(g.color, out))
			sc := bufio.NewScanner(&buf)
			for sc.Scan() {
				fmt.Fprintln(out, styleDumpLine(st, sc.Text()))
			}
			return sc.Err()
		},
	}
	cmd.Flags().BoolVar(&fit, "fit", false, "use the terminal width")
	return cmd
}

// styleDumpLine colors the box name and dims the geometry of a dump line.
func styleDumpLine(st *styles, line string) string {
	body := strings.TrimLeft(line, " ")
	indent := line[:len(line)-len(body)]
	name, rest, _ := strings.Cut(body, " ")
	at := strings.LastIndex(rest, " @")
	if at < 0 {
		return indent + st.Box.Render(name) + " " + rest
	}
	return indent + st.Box.Render(name) + " " + rest[:at] + st.Dim.Render(rest[at:])
}
