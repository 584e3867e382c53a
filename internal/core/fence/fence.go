// Package fence removes markdown code fences that models wrap around output.
package fence

import (
	"strings"
	"unicode"
)

const marker = "```"

// Strip returns the body of the first fenced block in text, dropping any
// prose before the opening fence line and after the closing one. The opening
// line may carry a language tag. Text without a fence at the start of a line
// is returned trimmed.
func Strip(text string) string {
	s := strings.TrimSpace(text)
	open := openingFence(s)
	if open < 0 {
		return s
	}
	rest := s[open+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isLangTag(rest[:nl]) {
		rest = rest[nl+1:]
	}
	if end := strings.Index(rest, "\n"+marker); end >= 0 {
		return strings.TrimSpace(rest[:end])
	}
	if strings.HasPrefix(rest, marker) {
		return ""
	}
	rest = strings.TrimRight(rest, " \t\r\n")
	return strings.TrimSpace(strings.TrimSuffix(rest, marker))
}

// openingFence is the index of the first marker that begins a line, or -1.
func openingFence(s string) int {
	from := 0
	for {
		i := strings.Index(s[from:], marker)
		if i < 0 {
			return -1
		}
		i += from
		if i == 0 || s[i-1] == '\n' {
			return i
		}
		from = i + len(marker)
	}
}

func isLangTag(line string) bool {
	for _, r := range strings.TrimSpace(line) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("-+_.#", r) {
			return false
		}
	}
	return true
}
