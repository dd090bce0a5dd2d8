package solidity

import (
	"strings"
)

// ParseError reports a source that could not be turned into a SourceUnit,
// either because solc rejected it or because its AST output was unreadable.
type ParseError struct {
	Path string
	// Stderr holds the compiler diagnostics, if solc ran.
	Stderr string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse")
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString("\n" + msg)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }
