// Package uast implements the identifier-assigning AST builder: given a
// list of top-level expressions handed over by an external parser, it
// synthesises an implicit wrapping module when the list is not already
// entirely modular, then walks every top-level module in postorder,
// assigning each node a structured, interned identifier that stays stable
// across edits that do not change symbol nesting or local postorder.
package uast

import (
	"strings"

	"github.com/shubhamkmr04/chapel/intern"
)

// ID is a stable identifier for an AST node: the dotted path of the symbol
// it belongs to (or, for a declaration, the symbol it introduces), its
// index in a postorder walk local to that symbol, and the number of
// descendants that precede it in that same walk.
type ID struct {
	SymbolPath     intern.String
	PostOrderIndex int
	ContainedCount int
}

// IsZero reports whether id was never assigned by a Builder.
func (id ID) IsZero() bool { return id.SymbolPath.IsZero() }

// ModuleName returns the prefix of id's symbol path up to the first '.',
// i.e. the name of the module the symbol belongs to. If the path has no
// '.', the whole path is the module name.
func (id ID) ModuleName() string {
	s := id.SymbolPath.String()
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

func extendPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
