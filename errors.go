// errors.go: user-facing error rendering with caret snippets.
//
// WrapErrorWithSource turns the three error types of this package into a
// readable snippet with one line of context on each side and a caret under
// the offending column:
//
//	PARSE ERROR at 2:4: expected expression, found end of input
//
//	   1 | let x = 1
//	   2 | x +
//	     |    ^
//
// Other errors are returned unchanged. The wrapper keeps the original error
// reachable through errors.As / errors.Is.
package olang

import (
	"errors"
	"fmt"
	"strings"
)

// SourceError is a lexer, parser or runtime error paired with its rendered
// snippet.
type SourceError struct {
	Err     error
	Snippet string
}

func (e *SourceError) Error() string { return e.Snippet }
func (e *SourceError) Unwrap() error { return e.Err }

// WrapErrorWithSource renders err against src. See WrapErrorWithName.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name (usually a file
// path) included in the header.
func WrapErrorWithName(err error, srcName, src string) error {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		return err
	}

	var (
		lexErr   *LexError
		parseErr *ParseError
		runErr   *RuntimeError
	)
	switch {
	case errors.As(err, &lexErr):
		return &SourceError{Err: err, Snippet: snippet(src, "LEXICAL ERROR", srcName, lexErr.Line, lexErr.Col, lexErr.Msg)}
	case errors.As(err, &parseErr):
		return &SourceError{Err: err, Snippet: snippet(src, "PARSE ERROR", srcName, parseErr.Line, parseErr.Col, parseErr.Msg)}
	case errors.As(err, &runErr):
		line, col := NewLineIndex(src).Position(runErr.Span.Start)
		return &SourceError{Err: err, Snippet: snippet(src, "RUNTIME ERROR", srcName, line, col, runErr.Msg)}
	default:
		return err
	}
}

// snippet builds the header and context lines. Coordinates are 1-based and
// clamped to the source.
func snippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
