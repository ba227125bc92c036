package models

import "strings"

// CommandType enumerates supported top-level command categories.
type CommandType string

const (
	CommandFarm      CommandType = "farm"
	CommandPasture   CommandType = "pasture"
	CommandPregnancy CommandType = "pregnancy"
	CommandDisease   CommandType = "disease"
	CommandHistory   CommandType = "history"
	CommandReset     CommandType = "reset"
	CommandUnknown   CommandType = "unknown"
)

// Command represents a parsed instruction extracted from the command line.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from argv-style tokens. The head
// token selects the category; remaining tokens are passed through verbatim so
// names and free-text values keep their casing.
func ParseCommand(args []string) Command {
	cmd := Command{Type: CommandUnknown, Raw: strings.Join(args, " ")}
	if len(args) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(args[0]), "/"))
	switch head {
	case string(CommandFarm):
		cmd.Type = CommandFarm
	case string(CommandPasture):
		cmd.Type = CommandPasture
	case string(CommandPregnancy):
		cmd.Type = CommandPregnancy
	case string(CommandDisease):
		cmd.Type = CommandDisease
	case string(CommandHistory):
		cmd.Type = CommandHistory
	case string(CommandReset):
		cmd.Type = CommandReset
	}

	if len(args) > 1 {
		cmd.Args = args[1:]
	}
	return cmd
}
