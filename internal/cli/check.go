package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/vex/internal/app"
	"github.com/dshills/vex/internal/logging"
)

func newCheckCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate documents against the schema and validator",
		Long: `Check every element of each document against the configured schema
and Lua validator, reporting the elements whose children are invalid.
Exits with status 1 if any problem is found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := newStyles(colorEnabled(g.color, out))
			logger := logging.Default()

			total := 0
			for _, path := range args {
				s, err := app.Open(cfg, path, app.WithLogger(logger))
				if err != nil {
					return err
				}
				if s.Validator() == nil {
					logger.Warn("no schema or validator configured", logging.FieldPath, path)
				}
				for _, p := range s.Check() {
					fmt.Fprintf(out, "%s:%s: %s %s\n",
						st.Path.Render(path),
						st.Offset.Render(fmt.Sprint(p.Offset)),
						st.Element.Render("<"+p.Element.String()+">"),
						st.Message.Render(fmt.Sprintf("has invalid content %v", p.Sequence)))
					total++
				}
				s.Close()
			}

			if total > 0 {
				fmt.Fprintln(out, st.Failure.Render(fmt.Sprintf("%d problem(s)", total)))
				return ErrProblemsFound
			}
			fmt.Fprintln(out, st.Success.Render("ok"))
			return nil
		},
	}
}
