package gsheets

import (
	"strings"
)

// quote returns the worksheet title as an A1 notation sheet name e.g. 'Network Errors'.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// column converts a 1-based column index to letters e.g. 1 -> A, 27 -> AA.
func column(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}

	return s
}
