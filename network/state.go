package network

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// State is the lifecycle state of the server connection.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateAuthenticated:
		return "Authenticated"
	default:
		return "Unknown"
	}
}

// Online reports whether the connection can carry protocol exchanges.
func (s State) Online() bool {
	return s == StateConnected || s == StateAuthenticated
}

// TransportMode selects how a server reply is framed.
type TransportMode int

const (
	// ModeRaw treats one successful read as the whole reply.
	ModeRaw TransportMode = iota
	// ModeLineDelimited reads lines until a blank line or the read deadline,
	// the way Telnet-style interactive servers answer.
	ModeLineDelimited
)

func (m TransportMode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeLineDelimited:
		return "line"
	default:
		return "unknown"
	}
}

// MaxPort is the highest port accepted by the connect form.
const MaxPort = 65534

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials identify the server and the account to log in with.
type Credentials struct {
	Host     string
	Port     uint16
	Login    string
	Password string
}

// Validate checks that every field is filled in and the port is in range.
func (c Credentials) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: host is required", ErrInvalidCredentials)
	case c.Port < 1 || c.Port > MaxPort:
		return fmt.Errorf("%w: port must be between 1 and %d", ErrInvalidCredentials, MaxPort)
	case c.Login == "":
		return fmt.Errorf("%w: login is required", ErrInvalidCredentials)
	case c.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidCredentials)
	}
	return nil
}

// Address returns host:port.
func (c Credentials) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
