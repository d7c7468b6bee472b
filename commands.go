// HubBridge - Command Indexing
// Copyright (c) 2025 - Open Source Project

package hubbridge

import "strings"

// actionDelimiter separates the fields of a hub action string. The same
// character is reused as an argument separator when actions are sent, so raw
// actions containing it must be escaped before they are stored.
const actionDelimiter = ":"

// CommandsFromControlGroups flattens a hub's nested control-group structure
// into a slug-keyed command map. Every group and every function is walked
// exactly once. Functions whose labels collapse to the same slug overwrite
// earlier ones; last write wins.
//
// The action delimiter is escaped here, at index time, so that escaping is
// applied exactly once no matter how often a command is dispatched.
func CommandsFromControlGroups(groups []ControlGroup) map[string]Command {
	commands := make(map[string]Command)

	for _, group := range groups {
		for _, fn := range group.Function {
			slug := Slugify(fn.Label)
			commands[slug] = Command{
				Name:   fn.Name,
				Slug:   slug,
				Label:  fn.Label,
				Action: strings.ReplaceAll(fn.Action, actionDelimiter, actionDelimiter+actionDelimiter),
			}
		}
	}

	return commands
}
