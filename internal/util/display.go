// Package util provides helpers for showing tracking data on a terminal.
package util

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks a value cut short by Truncate.
const Ellipsis = "..."

// Truncate shortens s to at most maxWidth terminal columns, ending it with
// Ellipsis when anything was dropped. Wide characters and ANSI escapes are
// measured the way the terminal will draw them. A maxWidth of zero or less
// leaves s unchanged.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 || lipgloss.Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= len(Ellipsis) {
		return Ellipsis[:maxWidth]
	}
	return ansi.Truncate(s, maxWidth, Ellipsis)
}

// Printable rewrites control characters in s as escape sequences, so a
// value holding a newline or tab stays on one table row.
func Printable(s string) string {
	if !strings.ContainsFunc(s, isControl) {
		return s
	}

	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if isControl(r) {
				fmt.Fprintf(&sb, `\u%04X`, r)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	return sb.String()
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
