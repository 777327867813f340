package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal reports whether f is attached to a terminal, mirroring the
// teacher's own cmd/surge isTerminal helper.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupColor resolves the --color flag (auto|on|off) against whether
// stdout is actually a terminal, and sets color.NoColor accordingly so
// fatih/color styling applied afterward respects it. version.Version is
// styled when internal/version initialises, before this runs, so its
// colors are not affected; error output is printed without styling.
func setupColor(cmd *cobra.Command) {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
}
