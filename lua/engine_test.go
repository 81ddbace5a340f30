package lua

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// mockHost records what scripts do.
type mockHost struct {
	sent    []string
	printed []string
	sendErr error
}

func (h *mockHost) Send(text string) error {
	h.sent = append(h.sent, text)
	return h.sendErr
}

func (h *mockHost) Print(text string) {
	h.printed = append(h.printed, text)
}

func setupTest(t *testing.T, script string) (*Engine, *mockHost) {
	t.Helper()
	host := &mockHost{}
	e := NewEngine(host, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(e.Close)
	if script != "" {
		if err := e.DoString("test", script); err != nil {
			t.Fatalf("DoString: %v", err)
		}
	}
	return e, host
}

func TestOnLineWithoutHooks(t *testing.T) {
	e, _ := setupTest(t, "")
	line, show := e.OnLine("bob: hi")
	if !show || line != "bob: hi" {
		t.Errorf("OnLine = %q, %v", line, show)
	}
}

func TestLineHooks(t *testing.T) {
	e, host := setupTest(t, `
		dm.on_line(function(line)
			if line:find("^spam:") then return false end
		end)
		dm.on_line(function(line)
			return (line:gsub("darn", "****"))
		end)
		dm.on_line(function(line)
			if line:find("alice") then dm.print("mentioned: " .. line) end
		end)
	`)

	tests := []struct {
		in   string
		want string
		show bool
	}{
		{"spam: buy now", "", false},
		{"bob: darn it", "bob: **** it", true},
		{"carol: hi alice", "carol: hi alice", true},
	}
	for _, tt := range tests {
		got, show := e.OnLine(tt.in)
		if got != tt.want || show != tt.show {
			t.Errorf("OnLine(%q) = %q, %v; want %q, %v", tt.in, got, show, tt.want, tt.show)
		}
	}
	if !reflect.DeepEqual(host.printed, []string{"mentioned: carol: hi alice"}) {
		t.Errorf("printed = %q", host.printed)
	}
	if l, s := e.Hooks(); l != 3 || s != 0 {
		t.Errorf("Hooks() = %d, %d", l, s)
	}
}

func TestSendHooksAndAliases(t *testing.T) {
	e, host := setupTest(t, `
		dm.alias("w", "/members")
		dm.alias("gm", "good morning")
		dm.on_send(function(text)
			if text == "secret" then
				dm.send("/msg admin secret")
				return false
			end
		end)
	`)

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"w", "/members", true},
		{"gm all", "good morning all", true},
		{"hello", "hello", true},
		{"secret", "", false},
	}
	for _, tt := range tests {
		got, ok := e.OnSend(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("OnSend(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if !reflect.DeepEqual(host.sent, []string{"/msg admin secret"}) {
		t.Errorf("sent = %q", host.sent)
	}

	if err := e.DoString("unalias", `dm.alias("w")`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got, _ := e.OnSend("w"); got != "w" {
		t.Errorf("alias not removed: %q", got)
	}
}

func TestFailingHookIsSkipped(t *testing.T) {
	e, host := setupTest(t, `
		dm.on_line(function(line) error("boom") end)
		dm.on_line(function(line) return line .. "!" end)
	`)
	got, show := e.OnLine("hi")
	if !show || got != "hi!" {
		t.Errorf("OnLine = %q, %v", got, show)
	}
	if len(host.printed) != 1 {
		t.Errorf("expected the error to be printed, got %q", host.printed)
	}
}

func TestSendErrorRaises(t *testing.T) {
	e, host := setupTest(t, "")
	host.sendErr = errors.New("queue full")
	if err := e.DoString("send", `dm.send("x")`); err == nil {
		t.Fatal("expected Lua error from dm.send")
	}
}

func TestRegex(t *testing.T) {
	e, host := setupTest(t, `
		local re = dm.regex("^(%w+): (.*)$")
		local bad, err = dm.regex("(")
		if bad ~= nil or err == nil then error("expected compile error") end
	`)

	if err := e.DoString("match", `
		local re = dm.regex("^(\\w+): (.*)$")
		local m = re:match("bob: hello there")
		dm.print(m[2] .. "|" .. m[3])
		dm.print(re:replace("bob: hi", "<$1> $2"))
		dm.print(re:pattern())
		if re:match("no colon") ~= nil then error("unexpected match") end
	`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	want := []string{"bob|hello there", "<bob> hi", `^(\w+): (.*)$`}
	if !reflect.DeepEqual(host.printed, want) {
		t.Errorf("printed = %q, want %q", host.printed, want)
	}
	if e.regexCache.Len() != 2 {
		t.Errorf("regex cache size = %d, want 2", e.regexCache.Len())
	}
}

func TestLoadInit(t *testing.T) {
	e, host := setupTest(t, "")
	dir := t.TempDir()

	if err := e.LoadInit(filepath.Join(dir, "missing.lua")); err != nil {
		t.Fatalf("missing init.lua: %v", err)
	}

	os.WriteFile(filepath.Join(dir, "helper.lua"), []byte(`return { greet = function() dm.print("hi") end }`), 0644)
	os.WriteFile(filepath.Join(dir, "init.lua"), []byte(`require("helper").greet()`), 0644)
	if err := e.LoadInit(filepath.Join(dir, "init.lua")); err != nil {
		t.Fatalf("LoadInit: %v", err)
	}
	if !reflect.DeepEqual(host.printed, []string{"hi"}) {
		t.Errorf("printed = %q", host.printed)
	}

	os.WriteFile(filepath.Join(dir, "broken.lua"), []byte(`this is not lua`), 0644)
	if err := e.LoadInit(filepath.Join(dir, "broken.lua")); err == nil {
		t.Error("expected syntax error")
	}
}

func TestInitResetsState(t *testing.T) {
	e, _ := setupTest(t, `dm.on_line(function() return false end)`)
	if err := e.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, show := e.OnLine("x"); !show {
		t.Error("hooks survived Init")
	}
}
