package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"modernc.org/mathutil"
)

// ErrorKind identifies the compiler phase and class of a failure.
type ErrorKind string

const (
	KindLex         ErrorKind = "lex"         // bad characters, unterminated literals
	KindSyntax      ErrorKind = "syntax"      // grammar violations
	KindResolve     ErrorKind = "resolve"     // named type not in the registry
	KindSemantic    ErrorKind = "semantic"    // well-formed but meaningless input
	KindUnsupported ErrorKind = "unsupported" // recognised construct with no generation rule
)

// Error is the single structured failure type returned by Lex, Parse and
// Generate. Compilation stops at the first one.
type Error struct {
	Kind ErrorKind
	Line int
	Msg  string

	// Incomplete is set when the failure was caused by input ending early,
	// so that an interactive caller can ask for more lines.
	Incomplete bool

	// Snippet is the trimmed source line, filled in by WithSource.
	Snippet string
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s error: %s", e.Line, e.Kind, e.Msg)
	if e.Snippet != "" {
		width := mathutil.Max(4, len(strconv.Itoa(e.Line)))
		fmt.Fprintf(&sb, "\n%*d |> %s", width, e.Line, e.Snippet)
	}
	return sb.String()
}

func errorf(kind ErrorKind, line int, format string, args ...any) *Error {
	return &Error{Kind: kind, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// WithSource attaches the offending source line to err when it is an *Error.
// Other errors are returned unchanged.
func WithSource(err error, src string) error {
	var ce *Error
	if !errors.As(err, &ce) {
		return err
	}
	lines := strings.Split(src, "\n")
	if idx := ce.Line - 1; idx >= 0 && idx < len(lines) {
		ce.Snippet = strings.TrimSpace(lines[idx])
	}
	return err
}

// IsIncomplete reports whether err means the input stopped in the middle of
// a construct rather than containing a mistake.
func IsIncomplete(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Incomplete
}

// KindOf returns the kind of err, or "" when err is not a compiler error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
