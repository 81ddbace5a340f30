package network

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

var (
	ErrNotConnected = errors.New("not connected")
	// ErrClosedByPeer is returned when the server ends the stream.
	ErrClosedByPeer = errors.New("connection closed by server")
)

// fatalErrnos end the connection outright: the peer is gone or the network
// path to it is.
var fatalErrnos = []error{
	syscall.ECONNRESET,
	syscall.ECONNABORTED,
	syscall.EPIPE,
	syscall.ENETDOWN,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
	syscall.ECONNREFUSED,
}

// IsFatal reports whether err means the connection cannot be used again.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, ErrClosedByPeer) || errors.Is(err, net.ErrClosed) {
		return true
	}
	for _, errno := range fatalErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// IsTimeout reports whether err is a deadline expiry.
func IsTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
