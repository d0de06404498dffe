package command

import "strings"

// ParseResult holds the parsed command name and arguments from a text line.
type ParseResult struct {
	// Command is the first word of the input, lowercased.
	Command string
	// Args are the remaining words after the command.
	Args []string
}

// Parse splits a host input line into a command and arguments. Anything
// after a '#' is a comment, so scripted command files can be annotated.
//
// Postcondition: Returns a ParseResult. If the line is blank or only a
// comment, Command is empty.
func Parse(line string) ParseResult {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	result := ParseResult{Command: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		result.Args = fields[1:]
	}
	return result
}
