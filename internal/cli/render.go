package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/vex/internal/app"
	"github.com/dshills/vex/internal/logging"
	"github.com/dshills/vex/internal/metrics"
	"github.com/dshills/vex/internal/renderer/raster"
)

func newRenderCommand(g *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render a document to a PNG image",
		Long: `Lay out a document and draw it into a PNG image. With measure = "font"
in the config, text is drawn with the configured font files and the width
is in pixels; otherwise each cell is drawn with a 7x13 bitmap font.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd)
			if err != nil {
				return err
			}
			graphics := app.Graphics(cfg)
			s, err := app.Open(cfg, args[0], app.WithLogger(logging.Default()), app.WithGraphics(graphics))
			if err != nil {
				return err
			}
			defer s.Close()

			var opts []raster.Option
			if faces, ok := graphics.(*metrics.Faces); ok {
				opts = append(opts, raster.WithFaces(faces))
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := raster.EncodePNG(f, s.Engine.RootBox(), opts...); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logging.Default().Info("rendered", logging.FieldPath, output, logging.FieldFormat, "png")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
