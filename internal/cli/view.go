package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/vex/internal/app"
	"github.com/dshills/vex/internal/config"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/renderer"
)

func newViewCommand(g *globalFlags) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Edit a document in the terminal",
		Long: `Open a document in the terminal editor. A missing file is created on
save. The stylesheet is reloaded whenever it changes on disk.

Keys: arrows move (shift selects), home/end, backspace/delete,
ctrl-z/ctrl-y undo/redo, ctrl-a select all, ctrl-e insert element,
ctrl-s save, esc or ctrl-q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}

			// The screen owns the terminal, so logs go to a file or nowhere.
			logger := logging.Discard()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = logging.NewWriter(f, cfg.Log.Level)
			}

			s, err := app.Open(cfg, args[0], app.WithLogger(logger), app.WithGraphics(metrics.Cells()))
			if err != nil {
				return err
			}
			defer s.Close()

			screen, err := renderer.NewTerminal()
			if err != nil {
				return err
			}
			defer screen.Fini()

			a := app.New(s, screen)
			if path := cfg.Paths.Stylesheet; path != "" {
				w, err := config.Watch(path, func(string) { a.ReloadStyles() },
					config.WithWatchLogger(logger))
				if err != nil {
					logger.Warn("stylesheet not watched", logging.FieldPath, path, logging.FieldError, err)
				} else {
					defer w.Close()
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := a.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&logFile, "log", "", "write logs to this file")
	return cmd
}
