package network

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync/atomic"

	"github.com/drake/dmconnect/protocol"
)

// CannedRoster is the member line served in offline mode.
const CannedRoster = protocol.RosterPrefix + "'general': Bepyaka, logger, arson-test, pro_O, Khrich, kopor'je, Archie, guester, 0010, root, dm906, Peacemaker, ZiNc"

var cannedChat = []string{
	"Alex: Привет всем!",
	"Guest: Как дела?",
	"Admin: Не забывайте про правила.",
}

// Canned stands in for Client when the network must not be touched. It
// answers /members with a fixed roster and now and then produces chat lines.
type Canned struct {
	state atomic.Int32
	rng   *rand.Rand
}

// NewCanned creates an offline link. The seed makes the chat lines
// reproducible.
func NewCanned(seed uint64) *Canned {
	return &Canned{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Connect validates the credentials and goes straight to Authenticated.
func (m *Canned) Connect(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	m.state.Store(int32(StateAuthenticated))
	return nil
}

// Execute answers /members; every other command gets an empty reply.
func (m *Canned) Execute(ctx context.Context, cmd string) ([]string, error) {
	if !m.State().Online() {
		return nil, ErrNotConnected
	}
	if strings.TrimSpace(cmd) == protocol.CmdMembers {
		return []string{CannedRoster, "user01: test2"}, nil
	}
	return nil, nil
}

// Read returns each canned chat line with a one in three chance.
func (m *Canned) Read(ctx context.Context) ([]string, error) {
	if !m.State().Online() {
		return nil, ErrNotConnected
	}
	var lines []string
	for _, line := range cannedChat {
		if m.rng.IntN(3) == 0 {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// Ping is a no-op exchange.
func (m *Canned) Ping(ctx context.Context) ([]string, error) {
	return m.Execute(ctx, protocol.CmdPing)
}

// Close goes back to Disconnected.
func (m *Canned) Close() {
	m.state.Store(int32(StateDisconnected))
}

// State returns the simulated connection state.
func (m *Canned) State() State {
	return State(m.state.Load())
}
