package slug

import (
	"regexp"
	"strings"
)

const maxLen = 60

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make turns a book title into a file-name friendly slug of at most maxLen bytes.
func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLen {
		s = strings.TrimRight(s[:maxLen], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}
