package network

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
	"unicode"
)

// rawReadSize bounds a single read in raw mode.
const rawReadSize = 32 * 1024

// Framer reads one server reply off the connection.
type Framer interface {
	// ReadBlock returns the lines of one reply in arrival order. Lines
	// collected before a fatal error are returned together with it.
	ReadBlock(ctx context.Context) ([]string, error)
}

// NewFramer builds the framer for mode on top of conn.
func NewFramer(mode TransportMode, conn net.Conn, timeout time.Duration, cs Charset) Framer {
	if mode == ModeLineDelimited {
		return &lineFramer{
			conn:    conn,
			r:       bufio.NewReader(conn),
			timeout: timeout,
			cs:      cs,
		}
	}
	return &rawFramer{
		conn:    conn,
		buf:     make([]byte, rawReadSize),
		timeout: timeout,
		cs:      cs,
	}
}

// rawFramer treats one successful read as the whole reply.
type rawFramer struct {
	conn    net.Conn
	buf     []byte
	timeout time.Duration
	cs      Charset
}

func (f *rawFramer) ReadBlock(ctx context.Context) ([]string, error) {
	if ctx.Err() != nil {
		return nil, nil
	}
	f.conn.SetReadDeadline(time.Now().Add(f.timeout))
	n, err := f.conn.Read(f.buf)

	var block []string
	if n > 0 {
		line := strings.TrimRightFunc(f.cs.Decode(f.buf[:n]), unicode.IsSpace)
		if line != "" {
			block = []string{line}
		}
	}

	switch {
	case err == nil:
		return block, nil
	case errors.Is(err, io.EOF):
		return block, ErrClosedByPeer
	case IsFatal(err):
		return block, err
	default:
		// Timeouts and other transient errors end the reply quietly.
		return block, nil
	}
}

// lineFramer reads lines until a blank line, the read deadline or the end
// of the stream.
type lineFramer struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
	cs      Charset

	// partial holds a line cut off by the deadline; it is completed by the
	// next read.
	partial []byte
}

func (f *lineFramer) ReadBlock(ctx context.Context) ([]string, error) {
	var block []string
	for {
		if ctx.Err() != nil {
			return block, nil
		}

		f.conn.SetReadDeadline(time.Now().Add(f.timeout))
		chunk, err := f.r.ReadBytes('\n')
		f.partial = append(f.partial, chunk...)

		if err != nil {
			if IsTimeout(err) {
				return block, nil
			}
			if len(f.partial) > 0 {
				if line, ok := f.takeLine(); ok {
					block = append(block, line)
				}
			}
			if errors.Is(err, io.EOF) {
				return block, ErrClosedByPeer
			}
			return block, err
		}

		line, ok := f.takeLine()
		if !ok {
			// Blank line: end of reply.
			return block, nil
		}
		block = append(block, line)
	}
}

// takeLine consumes the pending line with trailing CR/LF stripped.
// ok is false for an empty line.
func (f *lineFramer) takeLine() (string, bool) {
	raw := bytes.TrimRight(f.partial, "\r\n")
	f.partial = f.partial[:0]
	if len(raw) == 0 {
		return "", false
	}
	return f.cs.Decode(raw), true
}
