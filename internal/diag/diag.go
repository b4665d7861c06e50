// Package diag provides shared source-position error formatting used by the
// lexer, parser, compiler, and executor.
package diag

import (
	"fmt"
	"strings"
)

// Pos is a source position expressed in rune counts, not byte offsets.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is a single diagnosed problem with enough context to render a
// caret-annotated message.
type Error struct {
	Pos     Pos
	Message string
	Source  string // the full offending line, for display
	File    string
}

func New(pos Pos, source, file, format string, args ...any) *Error {
	return &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		Source:  source,
		File:    file,
	}
}

func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the diagnostic with a line/column header, the source line,
// and a caret pointing at the column. When color is true ANSI red/bold codes
// wrap the caret.
func (e *Error) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s:%d:%d: %s\n", e.File, e.Pos.Line, e.Pos.Column, e.Message)
	} else {
		fmt.Fprintf(&sb, "line %d:%d: %s\n", e.Pos.Line, e.Pos.Column, e.Message)
	}

	if e.Source != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(e.Source)
		sb.WriteString("\n")

		pad := strings.Repeat(" ", len(prefix)+max(e.Pos.Column-1, 0))
		sb.WriteString(pad)
		if color {
			sb.WriteString("\033[1;31m^\033[0m")
		} else {
			sb.WriteString("^")
		}
	}

	return sb.String()
}

// List aggregates diagnostics so every stage can keep scanning after the
// first failure, the way the lexer/parser do.
type List struct {
	Errors []*Error
}

func (l *List) Add(e *Error) {
	l.Errors = append(l.Errors, e)
}

func (l *List) Addf(pos Pos, source, file, format string, args ...any) {
	l.Add(New(pos, source, file, format, args...))
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *List) Error() string {
	parts := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
