package presenter

import (
	"runtime"
	"strconv"
)

const (
	ansiRed        = "31"
	ansiGreen      = "32"
	ansiYellow     = "33"
	ansiBlue       = "34"
	ansiBlueBright = "94"
	ansiResetFg    = "\x1b[39m"
)

// palette wraps text in ANSI foreground colors when enabled.
type palette struct {
	enabled bool
}

func (p palette) paint(code, s string) string {
	if !p.enabled || s == "" {
		return s
	}
	return "\x1b[" + code + "m" + s + ansiResetFg
}

func (p palette) red(s string) string        { return p.paint(ansiRed, s) }
func (p palette) green(s string) string      { return p.paint(ansiGreen, s) }
func (p palette) yellow(s string) string     { return p.paint(ansiYellow, s) }
func (p palette) blue(s string) string       { return p.paint(ansiBlue, s) }
func (p palette) blueBright(s string) string { return p.paint(ansiBlueBright, s) }

type symbols struct {
	success string
	warning string
	failure string
}

// symbolsFor returns status glyphs, falling back to ones the legacy
// Windows console fonts can draw.
func symbolsFor(goos string) symbols {
	if goos == "windows" {
		return symbols{success: "√", warning: "‼", failure: "×"}
	}
	return symbols{success: "✔", warning: "⚠", failure: "✖"}
}

func defaultSymbols() symbols {
	return symbolsFor(runtime.GOOS)
}

func formatMbps(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMs(v float64) string {
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
