package console

import "fmt"

// ANSI escape codes used by the renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// palette applies colors when enabled and passes text through otherwise.
type palette bool

// Colorize wraps text with color and a reset suffix.
//
// Postcondition: Returns text unchanged when the palette is disabled.
func (p palette) Colorize(color, text string) string {
	if !p {
		return text
	}
	return color + text + Reset
}

// Colorf formats and colorizes in one step.
func (p palette) Colorf(color, format string, args ...any) string {
	return p.Colorize(color, fmt.Sprintf(format, args...))
}
