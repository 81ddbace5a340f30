package network

import "time"

// KeepAlive tunes TCP keepalive probing on the server socket. Options the
// platform does not support are skipped.
type KeepAlive struct {
	Idle     time.Duration // idle time before the first probe
	Interval time.Duration // time between probes
	Count    int           // unanswered probes before the connection drops
}

func seconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
