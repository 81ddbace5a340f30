//go:build !linux && !darwin

package network

import (
	"net"
	"syscall"
)

func (k KeepAlive) control(network, address string, rc syscall.RawConn) error {
	return nil
}

// tune falls back to the portable keepalive switch; probe interval and
// count stay at the system defaults.
func (k KeepAlive) tune(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetKeepAlive(true)
		if k.Idle > 0 {
			tcpConn.SetKeepAlivePeriod(k.Idle)
		}
	}
}
