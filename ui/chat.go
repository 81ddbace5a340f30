// Package ui is the presentation layer: a Bubble Tea TUI and a plain
// line-mode console. Both drain session results on a timer and never
// touch the network themselves.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/drake/dmconnect/event"
	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/text"
)

// Backend is the part of session.Session the UI uses.
type Backend interface {
	SubmitCommand(text string) error
	PollResults() []event.Result
	State() network.State
	Connect(creds network.Credentials) error
	Disconnect() error
}

// Scripts lets user scripts rewrite traffic. *lua.Engine implements it.
type Scripts interface {
	OnLine(line string) (string, bool)
	OnSend(text string) (string, bool)
}

// Options configure both front ends.
type Options struct {
	Credentials     network.Credentials
	RefreshInterval time.Duration
	MaxLines        int // chat scrollback
	MaxLineLength   int // characters per chat line
}

func (o Options) withDefaults() Options {
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = time.Second
	}
	if o.MaxLines <= 0 {
		o.MaxLines = 500
	}
	if o.MaxLineLength <= 0 {
		o.MaxLineLength = 1024
	}
	return o
}

// Line kinds, for styling.
const (
	LineServer = iota
	LineEcho
	LineLocal
	LineError
)

// Line is one entry of the chat window.
type Line struct {
	Kind int
	Text string
}

// Chat turns user input into session commands and session results into
// chat lines. It keeps the bounded scrollback and the current roster. It
// also serves as the script host, so dm.print lands in the same window.
type Chat struct {
	backend Backend
	scripts Scripts
	opts    Options

	lines  []Line
	fresh  []Line
	roster []string
	errs   int
	last   error
}

// NewChat creates a Chat driving backend.
func NewChat(backend Backend, opts Options) *Chat {
	return &Chat{backend: backend, opts: opts.withDefaults()}
}

// SetScripts installs user script hooks. nil disables them.
func (c *Chat) SetScripts(s Scripts) {
	c.scripts = s
}

// Send submits text without running send hooks.
func (c *Chat) Send(text string) error {
	return c.backend.SubmitCommand(text)
}

// Print shows a local line.
func (c *Chat) Print(text string) {
	c.add(LineLocal, text)
}

// Submit handles one line typed by the user. It returns true when the user
// asked to quit.
func (c *Chat) Submit(input string) (quit bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	switch strings.ToLower(input) {
	case "/quit", "/exit":
		return true
	case "/reconnect":
		c.Reconnect()
		return false
	case "/disconnect":
		if err := c.backend.Disconnect(); err != nil {
			c.fail(err)
		}
		return false
	}

	out := input
	if c.scripts != nil {
		var ok bool
		if out, ok = c.scripts.OnSend(input); !ok {
			return false
		}
	}

	if err := c.backend.SubmitCommand(out); err != nil {
		c.fail(err)
		return false
	}
	c.add(LineEcho, "You: "+input)
	return false
}

// Reconnect starts a new connection with the configured credentials.
func (c *Chat) Reconnect() {
	creds := c.opts.Credentials
	if err := creds.Validate(); err != nil {
		c.fail(fmt.Errorf("cannot connect: %w", err))
		return
	}
	if err := c.backend.Connect(creds); err != nil {
		c.fail(err)
		return
	}
	c.Print("Connecting to " + creds.Address() + "...")
}

// Collect drains pending session results into the chat and roster. It
// reports whether anything changed.
func (c *Chat) Collect() bool {
	results := c.backend.PollResults()
	for _, r := range results {
		switch r.Kind {
		case event.Messages, event.CommandResponse:
			for _, l := range r.Lines {
				c.server(l)
			}
		case event.Users:
			c.roster = append(c.roster[:0], r.Lines...)
		case event.Error:
			c.fail(r.Err)
		}
	}
	return len(results) > 0
}

// Lines returns the scrollback, oldest first.
func (c *Chat) Lines() []Line {
	return c.lines
}

// TakeFresh returns lines added since the previous call.
func (c *Chat) TakeFresh() []Line {
	f := c.fresh
	c.fresh = nil
	return f
}

// Roster returns the last member list received.
func (c *Chat) Roster() []string {
	return c.roster
}

// State returns the connection state.
func (c *Chat) State() network.State {
	return c.backend.State()
}

// Errors returns how many errors occurred and the most recent one.
func (c *Chat) Errors() (int, error) {
	return c.errs, c.last
}

func (c *Chat) server(line string) {
	line = text.Clean(line)
	if c.scripts != nil {
		var show bool
		if line, show = c.scripts.OnLine(line); !show {
			return
		}
	}
	c.add(LineServer, line)
}

func (c *Chat) fail(err error) {
	c.errs++
	c.last = err
	msg := err.Error()
	if errors.Is(err, network.ErrNotConnected) {
		msg = "not connected, type /reconnect"
	}
	c.add(LineError, "[error] "+msg)
}

func (c *Chat) add(kind int, s string) {
	l := Line{Kind: kind, Text: text.Truncate(s, c.opts.MaxLineLength)}
	c.lines = append(c.lines, l)
	if over := len(c.lines) - c.opts.MaxLines; over > 0 {
		c.lines = append(c.lines[:0], c.lines[over:]...)
	}
	c.fresh = append(c.fresh, l)
}
