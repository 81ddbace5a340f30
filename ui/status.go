package ui

import (
	"fmt"
	"strings"

	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/text"
)

// StatusBar shows the connection state on the left and counters on the
// right.
type StatusBar struct {
	styles Styles
	width  int

	state    network.State
	address  string
	users    int
	errors   int
	scrolled bool
}

// NewStatusBar creates a new status bar.
func NewStatusBar(styles Styles, address string) StatusBar {
	return StatusBar{styles: styles, address: address}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// Update refreshes the displayed values.
func (s *StatusBar) Update(state network.State, users, errors int, scrolled bool) {
	s.state = state
	s.users = users
	s.errors = errors
	s.scrolled = scrolled
}

// View renders the status bar.
func (s StatusBar) View() string {
	var left string
	switch s.state {
	case network.StateAuthenticated:
		left = s.styles.StatusOnline.Render("● " + s.address)
	case network.StateConnected, network.StateConnecting:
		left = s.styles.StatusConnecting.Render("● " + s.state.String() + "...")
	default:
		left = s.styles.StatusOffline.Render("● Disconnected")
	}

	right := s.styles.Muted.Render(fmt.Sprintf("%d online", s.users))
	if s.errors > 0 {
		right = s.styles.Error.Render(fmt.Sprintf("%d errors", s.errors)) + "  " + right
	}
	if s.scrolled {
		right = "SCROLLED  " + right
	}

	padding := s.width - text.VisibleLen(left) - text.VisibleLen(right) - 1
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Render(left + strings.Repeat(" ", padding) + right)
}
