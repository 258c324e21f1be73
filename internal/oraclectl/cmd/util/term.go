package util

import (
	"io"

	"github.com/moby/term"
)

const defaultWidth = 80

// TerminalWidth returns the width of w when it is a terminal, or 80.
func TerminalWidth(w io.Writer) int {
	fd, isTerminal := term.GetFdInfo(w)
	if !isTerminal {
		return defaultWidth
	}
	ws, err := term.GetWinsize(fd)
	if err != nil || ws.Width == 0 {
		return defaultWidth
	}
	return int(ws.Width)
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w any) bool {
	_, isTerminal := term.GetFdInfo(w)
	return isTerminal
}
