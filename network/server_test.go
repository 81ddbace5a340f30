package network

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// reply is what the scripted server does with one received command.
type reply struct {
	lines []string
	reset bool // abort the connection with RST instead of answering
	close bool // close the connection cleanly instead of answering
}

// scriptServer is a one-connection DMconnect stand-in driven by a handler.
type scriptServer struct {
	ln         net.Listener
	terminator bool // append the blank end-of-reply line

	mu  sync.Mutex
	got []string

	done chan struct{}
}

func newScriptServer(t *testing.T, terminator bool, handle func(cmd string) reply) *scriptServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &scriptServer{ln: ln, terminator: terminator, done: make(chan struct{})}
	t.Cleanup(func() {
		ln.Close()
		<-s.done
	})

	go func() {
		defer close(s.done)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.TrimRight(line, "\r\n")
			s.mu.Lock()
			s.got = append(s.got, cmd)
			s.mu.Unlock()

			rep := handle(cmd)
			switch {
			case rep.reset:
				if tcpConn, ok := conn.(*net.TCPConn); ok {
					tcpConn.SetLinger(0)
				}
				return
			case rep.close:
				return
			}

			var out strings.Builder
			for _, l := range rep.lines {
				out.WriteString(l + "\r\n")
			}
			if s.terminator {
				out.WriteString("\r\n")
			}
			if out.Len() > 0 {
				if _, err := conn.Write([]byte(out.String())); err != nil {
					return
				}
			}
		}
	}()
	return s
}

func (s *scriptServer) creds(login, password string) Credentials {
	addr := s.ln.Addr().(*net.TCPAddr)
	return Credentials{Host: "127.0.0.1", Port: uint16(addr.Port), Login: login, Password: password}
}

func (s *scriptServer) commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func testConfig(mode TransportMode) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.ConnectTimeout = time.Second
	cfg.ReadTimeout = 200 * time.Millisecond
	cfg.Pacing = 10 * time.Millisecond
	return cfg
}

// freePort returns a port nothing listens on.
func freePort(t *testing.T) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()
	p, _ := strconv.Atoi(port)
	return uint16(p)
}
