// Package debug provides runtime monitoring and diagnostics.
package debug

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/drake/dmconnect/session"
)

// Enabled returns true if tracing is active (DMCONNECT_TRACE=1).
func Enabled() bool {
	return os.Getenv("DMCONNECT_TRACE") == "1"
}

// Source is anything that reports session statistics.
type Source interface {
	Stats() session.Stats
}

// Monitor periodically logs session statistics when tracing is enabled.
type Monitor struct {
	source   Source
	interval time.Duration
	ctx      context.Context
	logger   *slog.Logger
}

// NewMonitor creates a new monitor for the given session.
// If tracing is not enabled, returns nil.
func NewMonitor(ctx context.Context, s Source, logger *slog.Logger) *Monitor {
	if !Enabled() {
		return nil
	}
	return newMonitor(ctx, s, logger, 5*time.Second)
}

func newMonitor(ctx context.Context, s Source, logger *slog.Logger, interval time.Duration) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		source:   s,
		interval: interval,
		ctx:      ctx,
		logger:   logger.With("component", "monitor"),
	}
}

// Start begins the monitoring loop in a goroutine.
func (m *Monitor) Start() {
	if m == nil {
		return
	}
	go m.run()
}

func (m *Monitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("Monitor started", "interval", m.interval)

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Debug("Monitor stopped")
			return
		case <-ticker.C:
			m.logStats()
		}
	}
}

func (m *Monitor) logStats() {
	s := m.source.Stats()

	lastRead := "never"
	if !s.Network.LastReadTime.IsZero() {
		lastRead = time.Since(s.Network.LastReadTime).Round(time.Second).String() + " ago"
	}

	m.logger.Debug("Stats",
		slog.Group("session",
			"state", s.State.String(),
			"worker", s.Worker.String(),
			"tasks", s.TasksDone,
			"queue", s.TaskQueueLen,
			"queue_cap", s.TaskQueueCap,
			"polls", s.Polls,
			"published", s.ResultsPublished,
			"dropped", s.ResultsDropped,
			"backlog", s.BacklogLen,
			"backlog_dropped", s.BacklogDropped,
			"goroutines", s.Goroutines,
		),
		slog.Group("net",
			"read", s.Network.BytesRead,
			"written", s.Network.BytesWritten,
			"lines", s.Network.LinesRead,
			"exchanges", s.Network.Exchanges,
			"last_read", lastRead,
		),
	)
}
