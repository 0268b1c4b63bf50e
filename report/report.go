// Package report implements diagnostic plumbing: errors attached to a
// query's result cell, each carrying a severity level and an optional
// source location, so a caller can render them as a snippet with a caret
// under the offending span rather than a bare string.
//
// This is intentionally a small slice of a full diagnostics package: it
// renders one span at a time in plain text, rather than multi-span,
// colorized, word-wrapped terminal output.
package report

import "fmt"

// Level is the severity of a diagnostic. Input and semantic errors are
// both user-visible and leveled; internal invariant violations are not
// represented here at all, since they abort via panic rather than being
// collected as a report.Error.
type Level int8

const (
	// Error indicates a semantic constraint violation or malformed input.
	Error Level = iota
	// Warning indicates something that probably should not be ignored.
	Warning
	// Remark is the diagnostics equivalent of an informational note.
	Remark
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	default:
		return fmt.Sprintf("report.Level(%d)", int8(l))
	}
}

// Location is a source position: the file it belongs to, plus a 1-based
// line and column. The zero Location has no file and renders as a bare
// message with no snippet.
type Location struct {
	File   string
	Line   int
	Column int
}

// IsZero reports whether loc carries no file, and therefore no snippet.
func (loc Location) IsZero() bool { return loc.File == "" }

func (loc Location) String() string {
	if loc.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Column)
}

// Error is a diagnostic emitted by a query body, suitable for attachment
// to a progdb.Task via Task.Error. It implements
// the standard error interface so it can be stored in a result cell's
// error list untyped, and recovered with errors.As when a caller wants the
// structured form back.
type Error struct {
	Level   Level
	Where   Location
	Message string

	// Source is the full text of the line Where points into, if known. It
	// is used only for rendering a caret under the offending column; it is
	// not consulted for equality or hashing.
	Source string
}

// Error implements the error interface. It omits the source snippet;
// use Render for a caret-annotated rendering.
func (e *Error) Error() string {
	if e.Where.IsZero() {
		return fmt.Sprintf("%s: %s", e.Level, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Where, e.Level, e.Message)
}

// Errorf builds an *Error at level with no location, formatting Message
// like fmt.Sprintf.
func Errorf(level Level, format string, args ...any) *Error {
	return &Error{Level: level, Message: fmt.Sprintf(format, args...)}
}

// At returns a copy of e relocated to where, with source attached for
// rendering. It is the usual way a query body turns a bare Errorf into a
// located diagnostic once it knows which line produced it.
func (e *Error) At(where Location, source string) *Error {
	cp := *e
	cp.Where = where
	cp.Source = source
	return &cp
}
