//go:build linux

package network

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

func (k KeepAlive) control(network, address string, rc syscall.RawConn) error {
	_ = rc.Control(func(fd uintptr) {
		s := int(fd)
		_ = unix.SetsockoptInt(s, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
		if k.Idle > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, seconds(k.Idle))
		}
		if k.Interval > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, seconds(k.Interval))
		}
		if k.Count > 0 {
			_ = unix.SetsockoptInt(s, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, k.Count)
		}
	})
	return nil
}

func (k KeepAlive) tune(net.Conn) {}
