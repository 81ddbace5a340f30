package event

import "github.com/drake/dmconnect/network"

// TaskKind identifies the intent carried by a Task.
type TaskKind int

const (
	TaskExecute     TaskKind = iota // Send Command and report the reply
	TaskInitialPoll                 // Roster query plus message read after connecting
	TaskShutdown                    // Stop the worker
	TaskConnect                     // Dial and log in with Credentials
	TaskDisconnect                  // Drop the connection, keep the worker
)

func (k TaskKind) String() string {
	switch k {
	case TaskExecute:
		return "execute"
	case TaskInitialPoll:
		return "initial-poll"
	case TaskShutdown:
		return "shutdown"
	case TaskConnect:
		return "connect"
	case TaskDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// Task is a unit of work for the network worker. Tasks are consumed exactly
// once, in submission order.
type Task struct {
	Kind        TaskKind
	Command     string              // TaskExecute
	Credentials network.Credentials // TaskConnect
}

// ResultKind identifies what a Result carries.
type ResultKind int

const (
	Messages        ResultKind = iota // Chat lines, backlog first
	Users                             // Parsed roster names
	CommandResponse                   // Reply block of an Execute task, possibly empty
	Error                             // Err is set
)

func (k ResultKind) String() string {
	switch k {
	case Messages:
		return "messages"
	case Users:
		return "users"
	case CommandResponse:
		return "response"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is published by the worker for the presentation layer.
type Result struct {
	Kind  ResultKind
	Lines []string
	Err   error
}
