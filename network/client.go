// Package network owns the DMconnect socket: connecting, logging in,
// sending commands and framing the server's replies.
package network

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/drake/dmconnect/protocol"
)

// Config controls how the client talks to the server.
type Config struct {
	Mode           TransportMode
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// Pacing is how long to wait after sending before reading the reply.
	// The server does not answer immediately.
	Pacing    time.Duration
	KeepAlive KeepAlive
	Charset   string
	Logger    *slog.Logger
}

// DefaultConfig returns the timings the public DMconnect servers work with.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeLineDelimited,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    2 * time.Second,
		WriteTimeout:   5 * time.Second,
		Pacing:         300 * time.Millisecond,
		KeepAlive: KeepAlive{
			Idle:     60 * time.Second,
			Interval: 10 * time.Second,
			Count:    3,
		},
		Charset: DefaultCharset,
	}
}

// Stats holds network statistics for monitoring.
type Stats struct {
	State        State
	BytesRead    uint64
	BytesWritten uint64
	LinesRead    uint64
	Exchanges    uint64
	LastReadTime time.Time
}

// Client is the connection manager and command executor for one server
// connection. It is driven by a single goroutine; only State and Stats may
// be called concurrently.
type Client struct {
	cfg     Config
	charset Charset
	log     *slog.Logger

	state  atomic.Int32
	conn   net.Conn
	framer Framer

	// Stats (atomic for lock-free reads)
	bytesRead    atomic.Uint64
	bytesWritten atomic.Uint64
	linesRead    atomic.Uint64
	exchanges    atomic.Uint64
	lastReadTime atomic.Int64 // Unix nano
}

// NewClient creates a disconnected client.
func NewClient(cfg Config) (*Client, error) {
	cs, err := LookupCharset(cfg.Charset)
	if err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		cfg:     cfg,
		charset: cs,
		log:     log.With("component", "network"),
	}, nil
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	if old := State(c.state.Swap(int32(s))); old != s {
		c.log.Debug("Connection state changed", "from", old, "to", s)
	}
}

// Stats returns current network statistics.
func (c *Client) Stats() Stats {
	lastRead := time.Unix(0, c.lastReadTime.Load())
	if c.lastReadTime.Load() == 0 {
		lastRead = time.Time{}
	}
	return Stats{
		State:        c.State(),
		BytesRead:    c.bytesRead.Load(),
		BytesWritten: c.bytesWritten.Load(),
		LinesRead:    c.linesRead.Load(),
		Exchanges:    c.exchanges.Load(),
		LastReadTime: lastRead,
	}
}

// Connect dials the server and logs in. An existing connection is closed
// first. On any failure the socket is released and the state is left
// Disconnected.
//
// The server has no structured login acknowledgement, so a completed
// login exchange marks the connection Authenticated whatever the reply says.
func (c *Client) Connect(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if c.conn != nil {
		c.teardown()
	}

	// Reset stats for new connection
	c.bytesRead.Store(0)
	c.bytesWritten.Store(0)
	c.linesRead.Store(0)
	c.exchanges.Store(0)
	c.lastReadTime.Store(0)

	addr := creds.Address()
	c.setState(StateConnecting)
	c.log.Info("Connecting", "address", addr, "login", creds.Login, "mode", c.cfg.Mode, "charset", c.charset.Name())

	d := net.Dialer{
		Timeout:   c.cfg.ConnectTimeout,
		KeepAlive: -1, // tuned below
		Control:   c.cfg.KeepAlive.control,
	}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	c.cfg.KeepAlive.tune(conn)

	c.conn = &meteredConn{Conn: conn, c: c}
	c.framer = NewFramer(c.cfg.Mode, c.conn, c.cfg.ReadTimeout, c.charset)
	c.setState(StateConnected)

	reply, err := c.Execute(ctx, protocol.Login(creds.Login, creds.Password))
	if err != nil {
		c.teardown()
		return fmt.Errorf("login as %s: %w", creds.Login, err)
	}
	c.log.Debug("Login reply", "lines", reply)

	c.setState(StateAuthenticated)
	c.log.Info("Connected", "address", addr, "login", creds.Login)
	return nil
}

// Close drops the connection. It is safe to call when not connected.
func (c *Client) Close() {
	if c.conn != nil {
		c.log.Info("Disconnecting")
	}
	c.teardown()
}

// Execute sends one command, waits the pacing delay and reads the reply.
// Any send or read failure closes the connection.
func (c *Client) Execute(ctx context.Context, cmd string) ([]string, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	stop := c.watch(ctx)
	defer stop()

	c.log.Debug("Sending command", "command", redact(cmd))

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	_, err := c.conn.Write(c.charset.Encode(string(protocol.Encode(cmd))))
	if err != nil {
		c.teardown()
		return nil, fmt.Errorf("send %q: %w", redact(cmd), err)
	}
	c.conn.SetWriteDeadline(time.Time{})
	c.exchanges.Add(1)

	if err := sleep(ctx, c.cfg.Pacing); err != nil {
		c.teardown()
		return nil, err
	}
	return c.read(ctx)
}

// Read collects one reply without sending anything; used to pick up chat
// traffic the server pushes on its own.
func (c *Client) Read(ctx context.Context) ([]string, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	stop := c.watch(ctx)
	defer stop()
	return c.read(ctx)
}

// Ping sends the keepalive pulse.
func (c *Client) Ping(ctx context.Context) ([]string, error) {
	return c.Execute(ctx, protocol.CmdPing)
}

func (c *Client) read(ctx context.Context) ([]string, error) {
	block, err := c.framer.ReadBlock(ctx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		c.teardown()
		return block, fmt.Errorf("read reply: %w", err)
	}
	c.linesRead.Add(uint64(len(block)))
	if len(block) > 0 {
		c.log.Debug("Reply received", "lines", len(block), "block", block)
	}
	return block, nil
}

// watch aborts blocking I/O on the current connection once ctx is done.
func (c *Client) watch(ctx context.Context) func() {
	conn := c.conn
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	return func() { stop() }
}

// teardown closes the socket, releases the handle and resets the state.
func (c *Client) teardown() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.framer = nil
	}
	c.setState(StateDisconnected)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// redact hides the password of a login command.
func redact(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) >= 3 && fields[0] == "/login" {
		return "/login " + fields[1] + " ***"
	}
	return strings.TrimSpace(cmd)
}

// meteredConn counts traffic for Stats.
type meteredConn struct {
	net.Conn
	c *Client
}

func (m *meteredConn) Read(p []byte) (int, error) {
	n, err := m.Conn.Read(p)
	if n > 0 {
		m.c.bytesRead.Add(uint64(n))
		m.c.lastReadTime.Store(time.Now().UnixNano())
	}
	return n, err
}

func (m *meteredConn) Write(p []byte) (int, error) {
	n, err := m.Conn.Write(p)
	if n > 0 {
		m.c.bytesWritten.Add(uint64(n))
	}
	return n, err
}
