// Package protocol encodes DMconnect commands and decodes server replies.
package protocol

import (
	"strings"
)

// RosterPrefix marks the reply line that lists channel members.
const RosterPrefix = "Members in "

// Terminator ends every command and every line on the wire.
const Terminator = "\n"

// Well-known commands.
const (
	CmdMembers = "/members"
	CmdPing    = "/"
)

// Login builds the authentication command.
func Login(user, password string) string {
	return "/login " + user + " " + password
}

// Encode trims the command and appends the line terminator.
func Encode(cmd string) []byte {
	return []byte(strings.TrimSpace(cmd) + Terminator)
}

// IsRosterLine reports whether line carries the member list.
func IsRosterLine(line string) bool {
	return strings.HasPrefix(line, RosterPrefix)
}

// Classify splits a response block into the authoritative roster line and
// the remaining chat/status lines. Only the first roster line counts; any
// later roster lines are dropped.
func Classify(block []string) (roster string, ok bool, backlog []string) {
	for _, line := range block {
		if IsRosterLine(line) {
			if !ok {
				roster, ok = line, true
			}
			continue
		}
		backlog = append(backlog, line)
	}
	return roster, ok, backlog
}

// ParseRoster extracts user names from a roster line:
//
//	Members in 'general': alice, bob,  carol
//
// Everything after the first colon is split on commas and each name is
// trimmed. Order and duplicates are kept as sent.
func ParseRoster(line string) []string {
	_, rest, found := strings.Cut(line, ":")
	if !found {
		return nil
	}
	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return nil
	}

	parts := strings.Split(rest, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	return names
}
