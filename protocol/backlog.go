package protocol

import "sync"

// DefaultBacklogLimit matches the chat window's line limit.
const DefaultBacklogLimit = 500

// Backlog accumulates reply lines that are not roster data until the
// consumer drains them. When full, the oldest lines are dropped.
type Backlog struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	dropped uint64
}

// NewBacklog creates a backlog holding at most limit lines.
// A non-positive limit selects DefaultBacklogLimit.
func NewBacklog(limit int) *Backlog {
	if limit <= 0 {
		limit = DefaultBacklogLimit
	}
	return &Backlog{limit: limit}
}

// Add appends lines in order.
func (b *Backlog) Add(lines ...string) {
	if len(lines) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, lines...)
	if over := len(b.lines) - b.limit; over > 0 {
		b.lines = b.lines[over:]
		b.dropped += uint64(over)
	}
}

// Drain returns all pending lines and empties the backlog.
func (b *Backlog) Drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.lines
	b.lines = nil
	return out
}

// Len returns the number of pending lines.
func (b *Backlog) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Dropped returns how many lines were discarded because the backlog was full.
func (b *Backlog) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
