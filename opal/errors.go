package opal

import (
	"fmt"
	"strconv"
	"strings"
)

// LexError reports a malformed token. Lexing aborts at the first one.
type LexError struct {
	Pos Position
	Msg string

	source string
}

func (e *LexError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "lex error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// ParseError reports the first token mismatch. There is no resynchronization;
// parsing stops where the error occurred.
type ParseError struct {
	Pos Position
	Msg string

	source string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// ErrorKind tags semantic failures from the interpreter and code generator.
type ErrorKind string

const (
	// NameError: undefined variable or unregistered class.
	NameError ErrorKind = "NameError"
	// TypeError: wrong arity, non-object receiver, unsupported operand type.
	TypeError ErrorKind = "TypeError"
	// AttributeError: method not found on a class or its recognized parent.
	AttributeError ErrorKind = "AttributeError"
	// ScopeError: this/super used where no receiver is bound.
	ScopeError ErrorKind = "ScopeError"
)

// RuntimeError is the kind-tagged error produced by both back-ends. Every
// failure aborts the run in progress; there is no recovery.
type RuntimeError struct {
	Kind      ErrorKind
	Message   string
	Pos       Position
	CodeFrame string
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, " (at %d:%d)", e.Pos.Line, e.Pos.Column)
	}
	if e.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(e.CodeFrame)
	}
	return b.String()
}

func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := lines[pos.Line-1]
	lineRunes := []rune(lineText)

	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
	)
}
