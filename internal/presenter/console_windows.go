//go:build windows

package presenter

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVirtualTerminal switches the console into VT mode so that ANSI
// escape sequences are interpreted.
func enableVirtualTerminal(f *os.File) error {
	h := windows.Handle(f.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return err
	}
	if mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
		return nil
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
