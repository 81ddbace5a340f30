package ui

import (
	"strings"
)

// Completer cycles through roster names that start with the word under the
// cursor. An empty word cycles through the whole roster.
type Completer struct {
	names []string

	// Active cycle; reset whenever the input changes by other means.
	matches []string
	next    int
	start   int
	end     int
}

// SetNames replaces the candidate names.
func (c *Completer) SetNames(names []string) {
	c.names = append(c.names[:0], names...)
	c.Reset()
}

// Reset ends the current cycle.
func (c *Completer) Reset() {
	c.matches = nil
	c.next = 0
}

// FindMatches returns roster names starting with prefix, ignoring case, in
// roster order without duplicates.
func (c *Completer) FindMatches(prefix string) []string {
	lower := strings.ToLower(prefix)
	seen := make(map[string]bool)
	var out []string
	for _, n := range c.names {
		if n == "" || seen[n] {
			continue
		}
		if strings.HasPrefix(strings.ToLower(n), lower) {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Complete replaces the word at cursor with the next matching name and
// returns the new text and cursor. ok is false when nothing matches.
// cursor counts runes.
func (c *Completer) Complete(text string, cursor int) (string, int, bool) {
	runes := []rune(text)
	if c.matches == nil {
		start, end := wordBounds(runes, cursor)
		m := c.FindMatches(string(runes[start:cursor]))
		if len(m) == 0 {
			return text, cursor, false
		}
		c.matches, c.next, c.start, c.end = m, 0, start, end
	}

	name := []rune(c.matches[c.next%len(c.matches)])
	c.next++

	out := make([]rune, 0, len(runes)+len(name))
	out = append(out, runes[:c.start]...)
	out = append(out, name...)
	out = append(out, runes[min(c.end, len(runes)):]...)
	c.end = c.start + len(name)
	return string(out), c.end, true
}

// wordBounds finds the start and end of the word around cursor.
func wordBounds(text []rune, cursor int) (int, int) {
	if cursor > len(text) {
		cursor = len(text)
	}
	if cursor < 0 {
		cursor = 0
	}
	start := cursor
	for start > 0 && text[start-1] != ' ' {
		start--
	}
	end := cursor
	for end < len(text) && text[end] != ' ' {
		end++
	}
	return start, end
}
