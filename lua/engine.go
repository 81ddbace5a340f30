// Package lua runs the user's init.lua. Scripts can rewrite or hide chat
// lines, rewrite or swallow outgoing messages and define aliases.
package lua

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	glua "github.com/yuin/gopher-lua"
)

const regexCacheSize = 100

// Engine wraps gopher-lua. It is not safe for concurrent use; the UI loop
// owns it.
type Engine struct {
	L          *glua.LState
	regexCache *lru.Cache[string, *regexp.Regexp]
	dmTable    *glua.LTable

	host Host
	log  *slog.Logger

	lineHooks []*glua.LFunction
	sendHooks []*glua.LFunction
	aliases   map[string]string
}

// NewEngine creates an Engine with the given Host. Call Init before use.
func NewEngine(host Host, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		host: host,
		log:  logger.With("component", "lua"),
	}
}

// Init creates a fresh VM, dropping every hook and alias.
func (e *Engine) Init() error {
	if e.L != nil {
		e.L.Close()
	}
	e.L = glua.NewState()

	cache, err := lru.New[string, *regexp.Regexp](regexCacheSize)
	if err != nil {
		return err
	}
	e.regexCache = cache
	e.lineHooks = nil
	e.sendHooks = nil
	e.aliases = make(map[string]string)

	registerRegexType(e.L)
	e.registerAPIs()
	return nil
}

// Close releases the VM.
func (e *Engine) Close() {
	if e.L != nil {
		e.L.Close()
		e.L = nil
	}
}

// DoString executes a chunk of Lua code. name shows up in error messages.
func (e *Engine) DoString(name, code string) error {
	fn, err := e.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	e.L.Push(fn)
	return e.L.PCall(0, 0, nil)
}

// DoFile executes a Lua file. The file's directory is searched first by
// require while it runs.
func (e *Engine) DoFile(path string) error {
	path = expandTilde(path)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	pkg := e.L.GetGlobal("package").(*glua.LTable)
	oldPath := e.L.GetField(pkg, "path").String()
	e.L.SetField(pkg, "path", glua.LString(dir+"/?.lua;"+oldPath))
	defer e.L.SetField(pkg, "path", glua.LString(oldPath))

	return e.L.DoFile(absPath)
}

// LoadInit runs path if it exists. A missing file is not an error.
func (e *Engine) LoadInit(path string) error {
	if _, err := os.Stat(expandTilde(path)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := e.DoFile(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	e.log.Info("Loaded script", "path", path)
	return nil
}

// OnLine passes a received chat line through the line hooks. It returns
// the possibly rewritten line and whether to show it.
func (e *Engine) OnLine(line string) (string, bool) {
	return e.run(e.lineHooks, "on_line", line)
}

// OnSend expands aliases and passes outgoing text through the send hooks.
// It returns the text to submit and whether to submit it at all.
func (e *Engine) OnSend(text string) (string, bool) {
	return e.run(e.sendHooks, "on_send", e.expandAlias(text))
}

// Hooks reports how many line and send hooks are registered.
func (e *Engine) Hooks() (line, send int) {
	return len(e.lineHooks), len(e.sendHooks)
}

// run calls each hook in registration order. A hook returning false stops
// the chain and drops the text; a string replaces it; anything else keeps
// it. A failing hook is reported and skipped.
func (e *Engine) run(hooks []*glua.LFunction, name, text string) (string, bool) {
	if e.L == nil {
		return text, true
	}
	for _, fn := range hooks {
		if err := e.L.CallByParam(glua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, glua.LString(text)); err != nil {
			e.log.Warn("Script hook failed", "hook", name, "error", err)
			e.host.Print(fmt.Sprintf("[lua] %s: %v", name, err))
			continue
		}

		ret := e.L.Get(-1)
		e.L.Pop(1)

		switch v := ret.(type) {
		case glua.LBool:
			if !bool(v) {
				return "", false
			}
		case glua.LString:
			text = string(v)
		}
	}
	return text, true
}

// expandAlias replaces a leading alias name with its expansion.
func (e *Engine) expandAlias(text string) string {
	if len(e.aliases) == 0 {
		return text
	}
	name, rest, _ := strings.Cut(text, " ")
	exp, ok := e.aliases[name]
	if !ok {
		return text
	}
	if rest == "" {
		return exp
	}
	return exp + " " + rest
}

// compile returns a cached compiled pattern.
func (e *Engine) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := e.regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	e.regexCache.Add(pattern, re)
	return re, nil
}

// expandTilde expands ~ to home directory.
func expandTilde(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
