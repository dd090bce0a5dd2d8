package util

import (
	"strings"
)

// LineText returns the 1-based line of content, or "" when out of range.
func LineText(content string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if line > len(lines) {
		return ""
	}
	return strings.TrimRight(lines[line-1], "\r")
}

// ExtractSnippet returns up to maxLines lines centred on [start,end].
func ExtractSnippet(content string, start, end, maxLines int) string {
	if content == "" {
		return ""
	}
	if maxLines <= 0 {
		maxLines = 8
	}
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	s := max(0, start-1-maxLines/2)
	e := min(len(lines)-1, end-1+maxLines/2)
	if s > e {
		return ""
	}
	return strings.Join(lines[s:e+1], "\n")
}
