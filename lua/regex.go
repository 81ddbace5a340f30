package lua

import (
	"regexp"

	glua "github.com/yuin/gopher-lua"
)

const luaRegexTypeName = "Regex"

func registerRegexType(L *glua.LState) {
	mt := L.NewTypeMetatable(luaRegexTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]glua.LGFunction{
		"match":   regexMatch,
		"replace": regexReplace,
		"pattern": regexPattern,
	}))
}

func checkRegex(L *glua.LState) *regexp.Regexp {
	ud := L.CheckUserData(1)
	re, ok := ud.Value.(*regexp.Regexp)
	if !ok {
		L.ArgError(1, "Regex expected")
	}
	return re
}

// re:match(text) returns a table of the match and its groups, or nil.
func regexMatch(L *glua.LState) int {
	re := checkRegex(L)
	matches := re.FindStringSubmatch(L.CheckString(2))
	if matches == nil {
		L.Push(glua.LNil)
		return 1
	}
	tbl := L.NewTable()
	for i, m := range matches {
		tbl.RawSetInt(i+1, glua.LString(m))
	}
	L.Push(tbl)
	return 1
}

// re:replace(text, repl) uses Go's $1 expansion syntax.
func regexReplace(L *glua.LState) int {
	re := checkRegex(L)
	L.Push(glua.LString(re.ReplaceAllString(L.CheckString(2), L.CheckString(3))))
	return 1
}

func regexPattern(L *glua.LState) int {
	L.Push(glua.LString(checkRegex(L).String()))
	return 1
}
