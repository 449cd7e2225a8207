// Package config loads Vex configuration.
//
// Configuration comes from a TOML or YAML file, chosen by extension, layered
// over Default() and then over VEX_* environment variables:
//
//	[layout]
//	width = 72
//	measure = "font"          # "cells" (default) or "font"
//	font_family = "serif"
//
//	[fonts.serif]
//	regular = "/usr/share/fonts/serif.ttf"
//	bold = "/usr/share/fonts/serif-bold.ttf"
//
//	[editor]
//	undo_limit = 500
//
//	[log]
//	level = "debug"
//
//	[paths]
//	stylesheet = "book.json"
//	schema = "book.yaml"
//	validator = "book.lua"
//
// Relative paths in the [paths] section are resolved against the directory
// of the configuration file. Watcher reports changes to a file, which the
// CLI uses to reload the stylesheet.
package config
