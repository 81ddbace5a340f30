package session

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/drake/dmconnect/event"
	"github.com/drake/dmconnect/network"
	"github.com/drake/dmconnect/protocol"
)

// Link is the connection the worker drives. network.Client talks to a real
// server, network.Canned serves fixed data offline.
type Link interface {
	Connect(ctx context.Context, creds network.Credentials) error
	Execute(ctx context.Context, cmd string) ([]string, error)
	Read(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) ([]string, error)
	Close()
	State() network.State
}

var (
	_ Link = (*network.Client)(nil)
	_ Link = (*network.Canned)(nil)
)

// WorkerState reports what the worker goroutine is doing.
type WorkerState int32

const (
	WorkerIdle WorkerState = iota
	WorkerExecuting
	WorkerStopped
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerExecuting:
		return "executing"
	case WorkerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// worker is the only goroutine that touches the link. It runs tasks in
// submission order and polls the server whenever the queue stays empty for
// a full poll interval.
type worker struct {
	link    Link
	tasks   <-chan event.Task
	publish func(event.Result)
	backlog *protocol.Backlog
	every   time.Duration
	log     *slog.Logger

	state     atomic.Int32
	tasksDone atomic.Uint64
	polls     atomic.Uint64
	done      chan struct{}
}

func (w *worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

func (w *worker) run(ctx context.Context) {
	defer close(w.done)
	defer w.state.Store(int32(WorkerStopped))
	defer w.link.Close()

	w.log.Debug("Worker started", "poll_interval", w.every)
	defer w.log.Debug("Worker stopped")

	idle := time.NewTimer(w.every)
	defer idle.Stop()

	for {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return

		case task := <-w.tasks:
			if task.Kind == event.TaskShutdown {
				return
			}
			w.state.Store(int32(WorkerExecuting))
			w.handle(ctx, task)
			w.tasksDone.Add(1)
			w.state.Store(int32(WorkerIdle))
			idle.Reset(w.every)

		case <-idle.C:
			if w.link.State().Online() {
				w.state.Store(int32(WorkerExecuting))
				w.poll(ctx)
				w.polls.Add(1)
				w.state.Store(int32(WorkerIdle))
			}
			idle.Reset(w.every)
		}
	}
}

func (w *worker) handle(ctx context.Context, task event.Task) {
	switch task.Kind {
	case event.TaskExecute:
		lines, err := w.link.Execute(ctx, task.Command)
		if err != nil {
			if len(lines) > 0 {
				w.publish(event.Result{Kind: event.CommandResponse, Lines: lines})
			}
			w.fail(ctx, "execute", err)
			return
		}
		w.publish(event.Result{Kind: event.CommandResponse, Lines: lines})

	case event.TaskInitialPoll:
		if !w.link.State().Online() {
			return
		}
		if w.roster(ctx) {
			w.messages(ctx)
		}

	case event.TaskConnect:
		w.log.Info("Connecting", "address", task.Credentials.Address(), "login", task.Credentials.Login)
		if err := w.link.Connect(ctx, task.Credentials); err != nil {
			w.fail(ctx, "connect", err)
			return
		}
		w.log.Info("Connected", "address", task.Credentials.Address())

	case event.TaskDisconnect:
		w.link.Close()
		w.flush()

	default:
		w.log.Warn("Unknown task", "kind", task.Kind)
	}
}

// poll is the idle cycle: keepalive pulse, roster query, message read.
func (w *worker) poll(ctx context.Context) {
	lines, err := w.link.Ping(ctx)
	w.backlog.Add(lines...)
	if err != nil {
		w.fail(ctx, "keepalive", err)
		return
	}
	if w.roster(ctx) {
		w.messages(ctx)
	}
}

// roster asks for the member list, publishes the names and keeps every
// other line for the next Messages result. It reports whether the cycle
// may continue.
func (w *worker) roster(ctx context.Context) bool {
	block, err := w.link.Execute(ctx, protocol.CmdMembers)
	line, ok, rest := protocol.Classify(block)
	w.backlog.Add(rest...)
	if err != nil {
		w.fail(ctx, "roster", err)
		return false
	}
	if ok {
		if names := protocol.ParseRoster(line); len(names) > 0 {
			w.publish(event.Result{Kind: event.Users, Lines: names})
		}
	}
	return true
}

// messages reads pushed chat lines and publishes them after the backlog.
func (w *worker) messages(ctx context.Context) {
	lines, err := w.link.Read(ctx)
	w.backlog.Add(lines...)
	if err != nil {
		w.fail(ctx, "read", err)
		return
	}
	w.flush()
}

// flush publishes whatever the backlog holds.
func (w *worker) flush() {
	if lines := w.backlog.Drain(); len(lines) > 0 {
		w.publish(event.Result{Kind: event.Messages, Lines: lines})
	}
}

// fail reports err after delivering lines that arrived with it. Errors
// caused by the worker being stopped are only logged.
func (w *worker) fail(ctx context.Context, op string, err error) {
	w.flush()
	if ctx.Err() != nil {
		w.log.Debug("Operation aborted", "op", op, "error", err)
		return
	}
	w.log.Warn("Network operation failed", "op", op, "error", err, "state", w.link.State())
	w.publish(event.Result{Kind: event.Error, Err: err})
}
