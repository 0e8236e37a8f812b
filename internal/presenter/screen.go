package presenter

import (
	"io"
	"strings"
)

const (
	eraseLine = "\x1b[2K"
	cursorUp  = "\x1b[1A"
)

// screen renders a live region on a terminal: update redraws the region in
// place, done freezes it so the next update starts below. On a plain writer
// every update is simply written out as a line.
type screen struct {
	w     io.Writer
	live  bool
	lines int
	last  string
}

func (s *screen) update(text string) {
	if !s.live {
		if text == s.last {
			return
		}
		s.last = text
		io.WriteString(s.w, text+"\n")
		return
	}
	var b strings.Builder
	if s.lines > 0 {
		b.WriteString("\r" + eraseLine)
		for i := 1; i < s.lines; i++ {
			b.WriteString(cursorUp + eraseLine)
		}
	}
	b.WriteString(text)
	io.WriteString(s.w, b.String())
	s.lines = strings.Count(text, "\n") + 1
}

func (s *screen) done() {
	s.last = ""
	if !s.live || s.lines == 0 {
		return
	}
	io.WriteString(s.w, "\n")
	s.lines = 0
}
