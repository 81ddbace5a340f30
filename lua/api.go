package lua

import (
	glua "github.com/yuin/gopher-lua"
)

// registerAPIs installs the global dm table.
func (e *Engine) registerAPIs() {
	e.dmTable = e.L.NewTable()
	e.L.SetGlobal("dm", e.dmTable)

	// dm.on_line(fn): fn(line) runs for every received chat line
	e.L.SetField(e.dmTable, "on_line", e.L.NewFunction(func(L *glua.LState) int {
		e.lineHooks = append(e.lineHooks, L.CheckFunction(1))
		return 0
	}))

	// dm.on_send(fn): fn(text) runs for everything the user sends
	e.L.SetField(e.dmTable, "on_send", e.L.NewFunction(func(L *glua.LState) int {
		e.sendHooks = append(e.sendHooks, L.CheckFunction(1))
		return 0
	}))

	// dm.alias(name, expansion)
	e.L.SetField(e.dmTable, "alias", e.L.NewFunction(func(L *glua.LState) int {
		name := L.CheckString(1)
		if L.GetTop() < 2 || L.Get(2) == glua.LNil {
			delete(e.aliases, name)
			return 0
		}
		e.aliases[name] = L.CheckString(2)
		return 0
	}))

	// dm.send(text): submit to the server, bypassing send hooks
	e.L.SetField(e.dmTable, "send", e.L.NewFunction(func(L *glua.LState) int {
		if err := e.host.Send(L.CheckString(1)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))

	// dm.print(text): show text locally
	e.L.SetField(e.dmTable, "print", e.L.NewFunction(func(L *glua.LState) int {
		e.host.Print(L.CheckString(1))
		return 0
	}))

	// dm.regex(pattern): compiled, cached Regex
	e.L.SetField(e.dmTable, "regex", e.L.NewFunction(func(L *glua.LState) int {
		re, err := e.compile(L.CheckString(1))
		if err != nil {
			L.Push(glua.LNil)
			L.Push(glua.LString(err.Error()))
			return 2
		}
		ud := L.NewUserData()
		ud.Value = re
		L.SetMetatable(ud, L.GetTypeMetatable(luaRegexTypeName))
		L.Push(ud)
		return 1
	}))
}
