package ui

import (
	"strings"

	"github.com/drake/dmconnect/event"
	"github.com/drake/dmconnect/network"
)

// fakeBackend stands in for the session.
type fakeBackend struct {
	submitted []string
	connects  []network.Credentials
	pending   []event.Result
	state     network.State
	submitErr error
}

func (f *fakeBackend) SubmitCommand(text string) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, text)
	return nil
}

func (f *fakeBackend) PollResults() []event.Result {
	out := f.pending
	f.pending = nil
	return out
}

func (f *fakeBackend) State() network.State { return f.state }

func (f *fakeBackend) Connect(creds network.Credentials) error {
	f.connects = append(f.connects, creds)
	return nil
}

func (f *fakeBackend) Disconnect() error { return nil }

func (f *fakeBackend) push(r ...event.Result) {
	f.pending = append(f.pending, r...)
}

// upperScripts shouts every line and hides lines from "bot".
type upperScripts struct{}

func (upperScripts) OnLine(line string) (string, bool) {
	if strings.HasPrefix(line, "bot:") {
		return "", false
	}
	return strings.ToUpper(line), true
}

func (upperScripts) OnSend(text string) (string, bool) {
	if text == "nope" {
		return "", false
	}
	return "[" + text + "]", true
}

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
