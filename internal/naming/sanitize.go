package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Unknown replaces segments that sanitize to nothing.
const Unknown = "Unknown"

// maxSegmentBytes keeps a segment plus a " (n)" suffix and extension under
// the common 255-byte file name limit.
const maxSegmentBytes = 200

// reservedNames are device names Windows refuses as file names, with or
// without an extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// Sanitize makes s safe as a single path segment on common filesystems.
// The result is never empty and never contains a path separator.
func Sanitize(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			return '_'
		case r == utf8.RuneError:
			return '_'
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	s = truncate(s, maxSegmentBytes)
	s = strings.Trim(s, ". ")
	if s == "" {
		return Unknown
	}

	base, rest, _ := strings.Cut(s, ".")
	if reservedNames[strings.ToUpper(strings.TrimSpace(base))] {
		s = base + "_"
		if rest != "" {
			s += "." + rest
		}
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
