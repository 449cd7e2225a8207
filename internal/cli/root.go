// Package cli provides the Cobra command structure for vex.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dshills/vex/internal/config"
	"github.com/dshills/vex/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the flags shared by every command.
type globalFlags struct {
	configPath string
	debug      bool
	color      string
	width      int
	stylesheet string
	schema     string
	validator  string
}

// NewRootCommand creates the root vex command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "vex",
		Short: "A structured XML editor with live layout",
		Long: `vex edits XML documents as laid-out text.

Element display, fonts and colors come from a JSON stylesheet; an optional
YAML schema or Lua script decides which children an element may contain.
Documents can be edited in the terminal, checked against their schema, or
laid out and rendered without an editor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "path to config file (.toml, .yaml)")
	flags.BoolVar(&g.debug, "debug", false, "enable debug logging")
	flags.StringVar(&g.color, "color", "auto", "colorize output: auto, always, never")
	flags.IntVar(&g.width, "width", 0, "layout width, overriding the config")
	flags.StringVar(&g.stylesheet, "stylesheet", "", "stylesheet path, overriding the config")
	flags.StringVar(&g.schema, "schema", "", "schema path, overriding the config")
	flags.StringVar(&g.validator, "validator", "", "Lua validator path, overriding the config")

	rootCmd.AddCommand(newViewCommand(g))
	rootCmd.AddCommand(newLayoutCommand(g))
	rootCmd.AddCommand(newCheckCommand(g))
	rootCmd.AddCommand(newRenderCommand(g))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

// loadConfig reads the config file and applies flag overrides.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Layout.Width = g.width
	}
	if flags.Changed("stylesheet") {
		cfg.Paths.Stylesheet = g.stylesheet
	}
	if flags.Changed("schema") {
		cfg.Paths.Schema = g.schema
	}
	if flags.Changed("validator") {
		cfg.Paths.Validator = g.validator
	}
	if g.debug {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.SetLevel(cfg.Log.Level)
	logging.Default().Debug("config loaded",
		logging.FieldPath, g.configPath,
		logging.FieldWidth, cfg.Layout.Width,
		logging.FieldLevel, cfg.Log.Level)
	return cfg, nil
}
