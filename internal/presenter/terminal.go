package presenter

import (
	"os"

	"github.com/mattn/go-isatty"
)

// DetectTerminal reports whether f is an interactive terminal and whether
// ANSI colors may be written to it. NO_COLOR disables colors.
func DetectTerminal(f *os.File) (interactive, color bool) {
	fd := f.Fd()
	interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if !interactive {
		return false, false
	}
	if err := enableVirtualTerminal(f); err != nil {
		return interactive, false
	}
	_, noColor := os.LookupEnv("NO_COLOR")
	return interactive, !noColor
}
