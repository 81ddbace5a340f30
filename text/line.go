// Package text holds helpers for preparing server lines for display.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks a line that was cut short.
const Ellipsis = "..."

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// Clean strips escape codes and any other control characters a chat line
// should not carry into the terminal. Tabs become spaces.
func Clean(s string) string {
	s = StripANSI(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

// Truncate limits s to max characters, replacing the tail with "..." when
// it is too long. Characters are runes, not bytes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - len(Ellipsis)
	if keep <= 0 {
		return Ellipsis[:max]
	}
	n := 0
	for i := range s {
		if n == keep {
			return s[:i] + Ellipsis
		}
		n++
	}
	return s
}

// VisibleLen returns the display width of s, ignoring escape codes.
func VisibleLen(s string) int {
	return runewidth.StringWidth(StripANSI(s))
}

// FitWidth cuts s to at most width terminal cells.
func FitWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
