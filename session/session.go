// Package session is the asynchronous front of the DMconnect client. A
// single worker goroutine owns the connection; callers submit intents and
// collect results without ever blocking on the network.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drake/dmconnect/event"
	"github.com/drake/dmconnect/internal/buffer"
	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/protocol"
)

var (
	ErrEmptyCommand = errors.New("session: empty command")
	ErrQueueFull    = errors.New("session: task queue is full")
	ErrClosed       = errors.New("session: closed")
)

// Config holds the worker and queue settings.
type Config struct {
	PollInterval time.Duration // idle time before the worker polls the server
	JoinTimeout  time.Duration // how long Shutdown waits for the worker
	TaskQueue    int
	ResultLimit  int
	BacklogLimit int
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		JoinTimeout:  2 * time.Second,
		TaskQueue:    64,
		ResultLimit:  10000,
		BacklogLimit: protocol.DefaultBacklogLimit,
	}
}

// Stats is a snapshot for monitoring.
type Stats struct {
	State            network.State
	Worker           WorkerState
	TaskQueueLen     int
	TaskQueueCap     int
	TasksDone        uint64
	Polls            uint64
	ResultsPublished uint64
	ResultsDropped   uint64
	BacklogLen       int
	BacklogDropped   uint64
	Goroutines       int
	Network          network.Stats // zero unless the link keeps statistics
}

// Session is the client facade. All methods are safe for concurrent use.
type Session struct {
	cfg  Config
	log  *slog.Logger
	link Link

	tasks      chan event.Task
	resultsIn  chan<- event.Result
	resultsOut <-chan event.Result

	worker *worker
	cancel context.CancelFunc

	// mu guards stopped and the result input channel.
	mu      sync.Mutex
	stopped bool

	published atomic.Uint64
	dropped   atomic.Uint64

	shutdownOnce sync.Once
	shutdownErr  error
}

// New creates a session around link and starts its worker. The link is
// owned by the worker from here on and must not be used by the caller.
func New(cfg Config, link Link, logger *slog.Logger) *Session {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = def.JoinTimeout
	}
	if cfg.TaskQueue <= 0 {
		cfg.TaskQueue = def.TaskQueue
	}
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = def.ResultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		cfg:   cfg,
		log:   logger.With("component", "session"),
		link:  link,
		tasks: make(chan event.Task, cfg.TaskQueue),
	}
	s.resultsIn, s.resultsOut = buffer.Unbounded[event.Result](64, cfg.ResultLimit, func(n int) {
		s.dropped.Store(uint64(n))
		s.log.Warn("Result queue full, dropping oldest result", "limit", cfg.ResultLimit, "dropped", n)
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.worker = &worker{
		link:    link,
		tasks:   s.tasks,
		publish: s.publish,
		backlog: protocol.NewBacklog(cfg.BacklogLimit),
		every:   cfg.PollInterval,
		log:     logger.With("component", "worker"),
		done:    make(chan struct{}),
	}
	go s.worker.run(ctx)

	return s
}

// SubmitCommand queues text to be sent to the server. The reply arrives as a
// CommandResponse result.
func (s *Session) SubmitCommand(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyCommand
	}
	return s.submit(event.Task{Kind: event.TaskExecute, Command: text})
}

// Connect queues a connect and login followed by an initial roster and
// message poll. Failures arrive as Error results.
func (s *Session) Connect(creds network.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	if err := s.submit(event.Task{Kind: event.TaskConnect, Credentials: creds}); err != nil {
		return err
	}
	return s.submit(event.Task{Kind: event.TaskInitialPoll})
}

// Poll queues an immediate roster and message poll.
func (s *Session) Poll() error {
	return s.submit(event.Task{Kind: event.TaskInitialPoll})
}

// Disconnect queues closing the connection. The worker keeps running.
func (s *Session) Disconnect() error {
	return s.submit(event.Task{Kind: event.TaskDisconnect})
}

func (s *Session) submit(task event.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrClosed
	}
	select {
	case s.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// PollResults returns every result published so far, oldest first. It never
// blocks.
func (s *Session) PollResults() []event.Result {
	var out []event.Result
	for {
		select {
		case r, ok := <-s.resultsOut:
			if !ok {
				return out
			}
			out = append(out, r)
		default:
			return out
		}
	}
}

// Results exposes the result stream for callers that prefer to block.
// The channel is closed after Shutdown once drained.
func (s *Session) Results() <-chan event.Result {
	return s.resultsOut
}

// State returns the connection state.
func (s *Session) State() network.State {
	return s.link.State()
}

// Shutdown stops the worker, which closes the connection on its way out.
// It waits at most the configured join timeout; results published before it
// returns can still be collected, nothing is published afterwards.
func (s *Session) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		select {
		case s.tasks <- event.Task{Kind: event.TaskShutdown}:
		default:
		}
		s.mu.Unlock()
		s.cancel()

		select {
		case <-s.worker.done:
		case <-time.After(s.cfg.JoinTimeout):
			s.shutdownErr = fmt.Errorf("session: worker did not stop within %v", s.cfg.JoinTimeout)
			s.log.Warn("Worker join timed out", "timeout", s.cfg.JoinTimeout)
		}

		s.mu.Lock()
		s.stopped = true
		close(s.resultsIn)
		s.mu.Unlock()
	})
	return s.shutdownErr
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() Stats {
	st := Stats{
		State:            s.link.State(),
		Worker:           s.worker.State(),
		TaskQueueLen:     len(s.tasks),
		TaskQueueCap:     cap(s.tasks),
		TasksDone:        s.worker.tasksDone.Load(),
		Polls:            s.worker.polls.Load(),
		ResultsPublished: s.published.Load(),
		ResultsDropped:   s.dropped.Load(),
		BacklogLen:       s.worker.backlog.Len(),
		BacklogDropped:   s.worker.backlog.Dropped(),
		Goroutines:       runtime.NumGoroutine(),
	}
	if ns, ok := s.link.(interface{ Stats() network.Stats }); ok {
		st.Network = ns.Stats()
	}
	return st
}

func (s *Session) publish(r event.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.resultsIn <- r
	s.published.Add(1)
}
