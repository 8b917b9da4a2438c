// Package stringtest provides helpers for constructing and normalizing
// expected multi-line test output.
package stringtest

import "strings"

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"Initialization:",
//		"  catalog.xml: ok",
//	) // -> "Initialization:\n  catalog.xml: ok"
func JoinLF(ss ...string) string {
	var sb strings.Builder
	for i, s := range ss {
		if i > 0 {
			sb.WriteByte('\n')
		}

		sb.WriteString(s)
	}

	return sb.String()
}

// TrimLines splits s into lines, trims trailing whitespace from each, and
// drops leading and trailing blank lines. Use this to compare command
// output without being sensitive to incidental trailing spaces.
func TrimLines(s string) []string {
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}

	start := 0
	for start < len(lines) && lines[start] == "" {
		start++
	}

	end := len(lines)
	for end > start && lines[end-1] == "" {
		end--
	}

	return lines[start:end]
}
