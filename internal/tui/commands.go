package tui

import "strings"

// Command represents a parsed command-bar input.
type Command struct {
	Name string
	Args []string
}

// ParseCommand parses command-bar input into a Command. The leading slash
// is optional. Returns nil for empty input.
func ParseCommand(input string) *Command {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "/")
	if input == "" {
		return nil
	}

	parts := strings.Fields(input)
	return &Command{
		Name: parts[0],
		Args: parts[1:],
	}
}
