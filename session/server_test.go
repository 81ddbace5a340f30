package session

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/drake/dmconnect/event"
	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/protocol"
)

// fakeServer is a one-connection DMconnect server. It records every
// command and counts commands that arrive while a reply is still pending.
type fakeServer struct {
	ln     net.Listener
	handle func(cmd string) ([]string, bool)

	mu       sync.Mutex
	conn     net.Conn
	got      []string
	overlaps int

	done chan struct{}
}

// newFakeServer starts a server. handle returns the reply lines, or false
// to reset the connection.
func newFakeServer(t *testing.T, handle func(cmd string) ([]string, bool)) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeServer{ln: ln, handle: handle, done: make(chan struct{})}
	t.Cleanup(func() {
		ln.Close()
		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.mu.Unlock()
		<-s.done
	})
	go s.serve()
	return s
}

func (s *fakeServer) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		conn.SetReadDeadline(time.Time{})
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		s.mu.Lock()
		s.got = append(s.got, cmd)
		s.mu.Unlock()

		lines, ok := s.handle(cmd)
		if !ok {
			conn.(*net.TCPConn).SetLinger(0)
			return
		}

		// Hold the reply back for a moment; a client that does not wait
		// for it would send its next command now.
		conn.SetReadDeadline(time.Now().Add(30 * time.Millisecond))
		if _, err := r.Peek(1); err == nil {
			s.mu.Lock()
			s.overlaps++
			s.mu.Unlock()
		}

		var out strings.Builder
		for _, l := range lines {
			out.WriteString(l + "\r\n")
		}
		out.WriteString("\r\n")
		if _, err := io.WriteString(conn, out.String()); err != nil {
			return
		}
	}
}

func (s *fakeServer) creds() network.Credentials {
	addr := s.ln.Addr().(*net.TCPAddr)
	return network.Credentials{Host: "127.0.0.1", Port: uint16(addr.Port), Login: "alice", Password: "pw"}
}

func (s *fakeServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func (s *fakeServer) overlapCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlaps
}

// chatServer answers like a small DMconnect room and echoes anything else.
func chatServer(cmd string) ([]string, bool) {
	switch {
	case strings.HasPrefix(cmd, "/login "):
		return []string{"Welcome"}, true
	case cmd == protocol.CmdMembers:
		return []string{"bob: hello", "Members in 'general': alice, bob"}, true
	case cmd == protocol.CmdPing:
		return nil, true
	case cmd == "boom":
		return nil, false
	default:
		return []string{"echo: " + cmd}, true
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLink(t *testing.T) *network.Client {
	t.Helper()
	cfg := network.DefaultConfig()
	cfg.ConnectTimeout = time.Second
	cfg.ReadTimeout = 200 * time.Millisecond
	cfg.Pacing = 10 * time.Millisecond
	cfg.Logger = quietLogger()
	c, err := network.NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

// newTestSession creates a session that does not poll on its own unless
// the test asks for it.
func newTestSession(t *testing.T, link Link, poll time.Duration) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.PollInterval = poll
	s := New(cfg, link, quietLogger())
	t.Cleanup(func() { s.Shutdown() })
	return s
}

// collect polls until n results arrived or the timeout expires.
func collect(t *testing.T, s *Session, n int, timeout time.Duration) []event.Result {
	t.Helper()
	var got []event.Result
	deadline := time.Now().Add(timeout)
	for len(got) < n && time.Now().Before(deadline) {
		got = append(got, s.PollResults()...)
		time.Sleep(5 * time.Millisecond)
	}
	if len(got) < n {
		t.Fatalf("got %d results, want %d: %+v", len(got), n, got)
	}
	return got
}

// waitState polls until the session reaches want.
func waitState(t *testing.T, s *Session, want network.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("State() = %v, want %v", s.State(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
