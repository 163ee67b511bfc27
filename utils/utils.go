package utils

import (
	"strings"
	"unicode"
)

// FirstInt extracts the first run of decimal digits in s and returns its
// value. The second result is false when s contains no digits. Values are
// capped at 6 digits, which is plenty for classifier codes and keeps a
// pathological reply from overflowing.
func FirstInt(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			start = i
			break
		}
	}
	if start == -1 {
		return 0, false
	}
	value := 0
	digits := 0
	for _, r := range s[start:] {
		if !unicode.IsDigit(r) {
			break
		}
		if digits >= 6 {
			break
		}
		value = value*10 + int(r-'0')
		digits++
	}
	return value, true
}

// NonEmptyLines splits s on newlines and returns the trimmed, non-empty
// lines in order.
func NonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
