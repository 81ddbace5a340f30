package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"
)

// Console is the -simple front end: stdin lines in, chat lines out.
type Console struct {
	chat *Chat
	in   io.Reader
	out  io.Writer
}

// NewConsole creates a console reading commands from in.
func NewConsole(chat *Chat, in io.Reader, out io.Writer) *Console {
	return &Console{chat: chat, in: in, out: out}
}

// Run blocks until the user quits, input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	ticker := time.NewTicker(c.chat.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flush()
			return nil
		case err := <-scanErr:
			c.chat.Collect()
			c.flush()
			return err
		case line := <-lines:
			quit := c.chat.Submit(line)
			c.flush()
			if quit {
				return nil
			}
		case <-ticker.C:
			c.chat.Collect()
			c.flush()
		}
	}
}

// flush prints lines added since the last flush.
func (c *Console) flush() {
	for _, l := range c.chat.TakeFresh() {
		switch l.Kind {
		case LineEcho:
			// The terminal already shows what was typed.
		case LineError:
			fmt.Fprintf(c.out, "\033[31m%s\033[0m\n", l.Text)
		default:
			fmt.Fprintln(c.out, l.Text)
		}
	}
}
