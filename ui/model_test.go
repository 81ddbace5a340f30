package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/dmconnect/event"
	"github.com/drake/dmconnect/network"
)

func sizedModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := NewModel(NewChat(b, Options{}))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	return next.(Model)
}

func TestModelTickShowsResults(t *testing.T) {
	b := &fakeBackend{state: network.StateAuthenticated}
	m := sizedModel(t, b)

	b.push(
		event.Result{Kind: event.Users, Lines: []string{"alice", "bob"}},
		event.Result{Kind: event.Messages, Lines: []string{"bob: hi there"}},
	)
	next, cmd := m.Update(tickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}

	view := m.View()
	for _, want := range []string{"bob: hi there", "alice", "Members", "2 online"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}
}

func TestModelEnterSubmits(t *testing.T) {
	b := &fakeBackend{}
	m := sizedModel(t, b)

	m.input.SetValue("hello")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if len(b.submitted) != 1 || b.submitted[0] != "hello" {
		t.Errorf("submitted = %q", b.submitted)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
	if !strings.Contains(m.View(), "You: hello") {
		t.Error("echo missing from view")
	}
}

func TestModelQuit(t *testing.T) {
	b := &fakeBackend{}
	m := sizedModel(t, b)

	m.input.SetValue("/quit")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("no command returned for /quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("/quit did not quit")
	}
	if next.(Model).View() != "" {
		t.Error("view not empty after quitting")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c did not quit")
	}
}

func TestModelTabCompletes(t *testing.T) {
	b := &fakeBackend{}
	m := sizedModel(t, b)

	b.push(event.Result{Kind: event.Users, Lines: []string{"alice", "bob"}})
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(Model)

	m.input.SetValue("hi al")
	m.input.CursorEnd()
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	if got := m.input.Value(); got != "hi alice" {
		t.Errorf("input = %q, want %q", got, "hi alice")
	}
}

func TestModelNarrowHidesRoster(t *testing.T) {
	b := &fakeBackend{}
	m := NewModel(NewChat(b, Options{}))
	if m.View() != "Starting..." {
		t.Errorf("view before size = %q", m.View())
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	if strings.Contains(next.(Model).View(), "Members") {
		t.Error("roster shown on a narrow terminal")
	}
}
