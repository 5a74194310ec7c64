package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// progressLine keeps one status line updated in place on a terminal and
// stays silent on anything else.
type progressLine struct {
	w       io.Writer
	enabled bool
}

func newProgressLine(w io.Writer) *progressLine {
	f, ok := w.(*os.File)
	return &progressLine{w: w, enabled: ok && term.IsTerminal(int(f.Fd()))}
}

// Update redraws the status line.
func (p *progressLine) Update(label string, done, total int) {
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.w, "\r\033[K%s %d/%d", label, done, total)
}

// Printf writes a full line above the status line.
func (p *progressLine) Printf(format string, args ...any) {
	p.Clear()
	fmt.Fprintf(p.w, format, args...)
}

// Clear erases the status line.
func (p *progressLine) Clear() {
	if p.enabled {
		fmt.Fprint(p.w, "\r\033[K")
	}
}
