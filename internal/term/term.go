// Package term maps output roles (log levels, duplicate notices, the
// banner, unresolved table cells) to ANSI styles and detects terminals.
//
// [Configure] resolves the color mode once during startup. With colors off
// every style renders as plain text, so callers never branch on color
// state themselves.
package term

import (
	"os"
	"strconv"
	"strings"

	"github.com/backmassage/fontsort/internal/config"
)

// Style is an output role. Its escape sequence is fixed; whether it is
// emitted depends on the configured color mode.
type Style int

const (
	Plain      Style = iota
	Info             // blue
	Success          // green
	Warn             // yellow
	Error            // red
	Duplicate        // orange: duplicates left in place or moved aside
	Debug            // cyan
	Banner           // magenta
	Unresolved       // orange: foundry fell back to Unknown
	Invalid          // red: file could not be read as a font
)

const reset = "\033[0m"

var codes = [...]string{
	Plain:      "",
	Info:       "\033[1;94m",
	Success:    "\033[1;92m",
	Warn:       "\033[1;93m",
	Error:      "\033[1;91m",
	Duplicate:  "\033[1;38;5;208m",
	Debug:      "\033[1;96m",
	Banner:     "\033[1;95m",
	Unresolved: "\033[38;5;208m",
	Invalid:    "\033[91m",
}

var enabled bool

// Configure resolves the color mode. Call once during startup (from
// [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled = resolve(mode)
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return enabled }

// Code returns the escape sequence for s, or "" when colors are off.
func (s Style) Code() string {
	if !enabled || s < 0 || int(s) >= len(codes) {
		return ""
	}
	return codes[s]
}

// Paint wraps text in the escape sequence for s and a reset. With colors
// off, or for Plain, text is returned unchanged.
func Paint(s Style, text string) string {
	code := s.Code()
	if code == "" {
		return text
	}
	return code + text + reset
}

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// Width returns the terminal width from $COLUMNS, or DefaultWidth when it
// is unset, not a number, or implausibly narrow.
func Width() int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS")))
	if err != nil || n < 40 {
		return DefaultWidth
	}
	return n
}
