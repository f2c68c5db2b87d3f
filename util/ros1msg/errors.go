package ros1msg

import (
	"errors"
	"fmt"
	"strings"
)

/*
Errors returned by the ros1msg package. Each kind is terminal for the
operation that produced it; the codec is deterministic, so retrying with the
same input reproduces the same error.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrUnknownType is returned when a message type referenced by a field cannot
// be found.
var ErrUnknownType = errors.New("unknown message type")

// MalformedDefinitionError is returned when a definition sequence violates the
// definition model, for instance a constant without a value or a dependency
// without a name.
type MalformedDefinitionError struct {
	Index  int
	Field  string
	Reason string
}

// Error returns a string representation of the error.
func (e MalformedDefinitionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed definition %d, field %q: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed definition %d: %s", e.Index, e.Reason)
}

// Is returns true if the target error is a MalformedDefinitionError.
func (e MalformedDefinitionError) Is(target error) bool {
	_, ok := target.(MalformedDefinitionError)
	return ok
}

// ParseError is returned when text does not match the concatenated definition
// grammar. Line is 1-based.
type ParseError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

// Error returns a string representation of the error.
func (e ParseError) Error() string {
	msg := "parse error"
	if e.Line > 0 {
		msg = fmt.Sprintf("parse error on line %d", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Detail returns the offending input line, if known.
func (e ParseError) Detail() string {
	if e.Line == 0 {
		return ""
	}
	return fmt.Sprintf("line %d: %q", e.Line, e.Text)
}

// Unwrap returns the underlying error.
func (e ParseError) Unwrap() error {
	return e.Err
}

// Is returns true if the target error is a ParseError.
func (e ParseError) Is(target error) bool {
	_, ok := target.(ParseError)
	return ok
}

// CyclicDependencyError is returned when a message type transitively
// references itself. Path lists the types on the cycle, starting and ending
// with the repeated type.
type CyclicDependencyError struct {
	Path []string
}

// Error returns a string representation of the error.
func (e CyclicDependencyError) Error() string {
	return "cyclic dependency: " + strings.Join(e.Path, " -> ")
}

// Is returns true if the target error is a CyclicDependencyError.
func (e CyclicDependencyError) Is(target error) bool {
	_, ok := target.(CyclicDependencyError)
	return ok
}
