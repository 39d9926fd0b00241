package common

import (
	"regexp"
	"strings"
)

// ansiRegex matches ANSI escape sequences (colors, cursor movement, etc.)
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// moreRegex matches the pagination marker, e.g. "  ---- More ----", together
// with what Comware prints to wipe it: cursor-left, spaces, cursor-left (V7)
// or CR, spaces, CR (V5 over Telnet). A marker without an erase sequence eats
// the line break after it. Indentation of the next page is left alone.
var moreRegex = regexp.MustCompile(`[ \t]*-{2,}[ \t]*(?i:more)[ \t]*-{2,}(?:\x1b\[\d*D[ \t]*\x1b\[\d*D|\r[ \t]+\r|[ \t]*\r?\n)?`)

// StripANSI removes ANSI escape codes from a string.
// Useful for parsing CLI output that may contain terminal formatting.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// StripPaging removes pager markers and the erase sequences that follow them,
// so consecutive pages join in their original order.
func StripPaging(s string) string {
	return moreRegex.ReplaceAllString(s, "")
}

// NormalizeNewlines converts CRLF and stray CR to LF
func NormalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n\r", "\n")
	return strings.ReplaceAll(s, "\r", "")
}

// CleanOutput applies paging removal, ANSI stripping and newline normalization
func CleanOutput(s string) string {
	return NormalizeNewlines(StripANSI(StripPaging(s)))
}

// Lines splits normalized output into lines
func Lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(NormalizeNewlines(s), "\n")
}
