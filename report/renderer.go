package report

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Render formats e as a three-line diagnostic: a header ("path:line:col:
// level: message") followed by the source line and a line holding a caret
// placed under the offending column (just the header when e has no
// location or no source). Column is a rune (not byte) offset, and the caret is placed by
// measuring grapheme-cluster display width up to that rune with uniseg
// rather than assuming one column per byte, so multi-byte identifiers
// (this front-end's source files are not restricted to ASCII) still line
// up the caret correctly.
func Render(e *Error) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.Where.IsZero() || e.Source == "" {
		return b.String()
	}

	b.WriteByte('\n')
	b.WriteString(e.Source)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", caretOffset(e.Source, e.Where.Column)))
	b.WriteByte('^')
	return b.String()
}

// caretOffset returns the display-column offset of the col-th rune (1
// based) in line, measuring the prefix's on-screen width with uniseg so
// wide or combining runes don't throw off the caret the way counting
// bytes or even runes would.
func caretOffset(line string, col int) int {
	if col <= 1 {
		return 0
	}

	n := 0
	for i := range line {
		if n == col-1 {
			return uniseg.StringWidth(line[:i])
		}
		n++
	}
	return uniseg.StringWidth(line)
}
