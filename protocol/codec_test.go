package protocol

import (
	"reflect"
	"testing"
)

func TestParseRoster(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"trims names", "Members in 'general': A, B,  C", []string{"A", "B", "C"}},
		{"keeps duplicates", "Members in 'x': bob, alice, bob", []string{"bob", "alice", "bob"}},
		{"no colon", "Members in general", nil},
		{"empty after colon", "Members in 'general':   ", nil},
		{"only first colon splits", "Members in 'a:b': c, d", []string{"b': c", "d"}},
		{"single name", "Members in 'general': alice", []string{"alice"}},
		{"unicode", "Members in 'ru': Вася,   Пётр,Mark", []string{"Вася", "Пётр", "Mark"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRoster(tt.line)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRoster(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	block := []string{
		"user01: test2",
		"Members in 'general': alice, bob",
		"bob: hi",
		"Members in 'other': carol",
		"members in 'lower': nope",
	}

	roster, ok, backlog := Classify(block)
	if !ok {
		t.Fatal("expected a roster line")
	}
	if roster != "Members in 'general': alice, bob" {
		t.Errorf("roster = %q, want first roster line", roster)
	}

	want := []string{"user01: test2", "bob: hi", "members in 'lower': nope"}
	if !reflect.DeepEqual(backlog, want) {
		t.Errorf("backlog = %q, want %q", backlog, want)
	}
}

func TestClassifyMalformedPrefixGoesToBacklog(t *testing.T) {
	_, ok, backlog := Classify([]string{"Member in 'general': alice"})
	if ok {
		t.Fatal("malformed prefix must not be treated as roster")
	}
	if len(backlog) != 1 {
		t.Fatalf("backlog len = %d, want 1", len(backlog))
	}
}

func TestClassifyBacklogIsNMinusOne(t *testing.T) {
	block := []string{"a", "b", "Members in 'g': x", "c", "d"}
	_, ok, backlog := Classify(block)
	if !ok {
		t.Fatal("expected roster")
	}
	if len(backlog) != len(block)-1 {
		t.Fatalf("backlog len = %d, want %d", len(backlog), len(block)-1)
	}

	b := NewBacklog(0)
	b.Add(backlog...)
	if got := b.Drain(); len(got) != len(block)-1 {
		t.Fatalf("drained %d lines, want %d", len(got), len(block)-1)
	}
	if got := b.Drain(); len(got) != 0 {
		t.Fatalf("second drain returned %q, want empty", got)
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/members", "/members\n"},
		{"  hello there \t", "hello there\n"},
		{"/", "/\n"},
		{"", "\n"},
	}
	for _, tt := range tests {
		if got := string(Encode(tt.in)); got != tt.want {
			t.Errorf("Encode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLogin(t *testing.T) {
	if got := Login("alice", "pw"); got != "/login alice pw" {
		t.Errorf("Login() = %q", got)
	}
}
