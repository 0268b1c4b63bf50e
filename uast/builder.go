package uast

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/shubhamkmr04/chapel/intern"
)

// Location pairs an assigned ID with the source position of the node it
// was assigned to, for diagnostics that need to point at a symbol by ID
// alone.
type Location struct {
	ID  ID
	Pos Position
}

// Result is everything a Builder produces from one list of top-level
// expressions: the (possibly now-wrapped) top-level list itself, any
// errors raised while building it, and the ID/location pairs for every
// node that was assigned one.
type Result struct {
	Top       []Node
	Errors    []error
	Locations []Location
}

// Builder assigns IDs to a tree of Nodes, interning the symbol path of
// every ID through a shared Interner so that equal paths are pointer-equal
// handles.
type Builder struct {
	interner *intern.Interner
}

// NewBuilder returns a Builder that interns symbol paths through in.
func NewBuilder(in *intern.Interner) *Builder {
	return &Builder{interner: in}
}

// Build wraps top in an implicit module when necessary and assigns IDs to
// every node reachable from it. inferredName names the implicit module,
// if one is needed; it is typically the input file's basename with its
// extension stripped.
func (b *Builder) Build(top []Node, inferredName string) Result {
	allModules := true
	for _, n := range top {
		if _, ok := n.(*ModuleDecl); !ok {
			allModules = false
			break
		}
	}
	if !allModules {
		top = []Node{&ModuleDecl{
			Name:       inferredName,
			Kind:       ModuleImplicit,
			Visibility: VisibilityDefault,
			Body:       top,
		}}
	}

	var locs []Location
	for _, m := range top {
		counter := 0
		names := make(map[string]int)
		b.walk(m, "", &counter, names, &locs)
	}

	return Result{Top: top, Locations: locs}
}

// walk assigns IDs to n and everything reachable from it. path is the
// dotted symbol path of the symbol n is nested directly inside; counter
// and names are that symbol's running postorder counter and
// names-declared-here map, shared across n's siblings.
func (b *Builder) walk(n Node, path string, counter *int, names map[string]int, locs *[]Location) {
	if name, isDecl := n.Declaration(); isDecl {
		rep := names[name]
		names[name] = rep + 1

		declName := name
		if rep > 0 {
			declName = fmt.Sprintf("%s#%d", name, rep)
		}
		symbolPath := extendPath(path, declName)

		// n introduces symbolPath, so its own ID is local to that symbol:
		// a fresh counter, reset to 0, walks n's children the same way the
		// non-declaration case below walks its own. The enclosing symbol's
		// counter only advances once, after n's ID is already fixed, so
		// that value never leaks into n's own PostOrderIndex/ContainedCount.
		childCounter := 0
		childNames := make(map[string]int)
		for _, c := range n.Children() {
			if c.IsComment() {
				continue
			}
			b.walk(c, symbolPath, &childCounter, childNames, locs)
		}

		id := ID{
			SymbolPath:     b.interner.Unique(symbolPath),
			PostOrderIndex: childCounter,
			ContainedCount: childCounter,
		}
		n.SetID(id)
		*locs = append(*locs, Location{ID: id, Pos: n.Pos()})
		*counter++
		return
	}

	first := *counter
	for _, c := range n.Children() {
		if c.IsComment() {
			continue
		}
		b.walk(c, path, counter, names, locs)
	}

	id := ID{
		SymbolPath:     b.interner.Unique(path),
		PostOrderIndex: *counter,
		ContainedCount: *counter - first,
	}
	n.SetID(id)
	*locs = append(*locs, Location{ID: id, Pos: n.Pos()})
	*counter++
}

var ignoreAssignedIDs = cmp.Options{
	cmpopts.IgnoreFields(VarDecl{}, "ID"),
	cmpopts.IgnoreFields(ModuleDecl{}, "ID"),
	cmpopts.IgnoreFields(Block{}, "ID"),
}

// contentEqual reports whether a and b would produce the same ID if built
// in the same position, i.e. they are equal ignoring whatever ID a
// previous Build call stamped onto them.
func contentEqual(a, b Node) bool {
	return cmp.Equal(a, b, ignoreAssignedIDs)
}

// MergeResult implements the merge rule of a Result: errors and locations
// are always replaced with candidate's, while the top-level node list is
// merged position-by-position, keeping keep's pointer wherever the node at
// that position is content-equal to candidate's, so that unrelated
// downstream queries that hold a pointer into keep's tree are unaffected
// by edits elsewhere in the file. Reports whether anything changed.
func MergeResult(keep, candidate *Result) bool {
	changed := len(keep.Top) != len(candidate.Top) ||
		!equalErrors(keep.Errors, candidate.Errors) ||
		!equalLocations(keep.Locations, candidate.Locations)

	n := len(candidate.Top)
	merged := make([]Node, n)
	for i := 0; i < n; i++ {
		if i < len(keep.Top) && contentEqual(keep.Top[i], candidate.Top[i]) {
			merged[i] = keep.Top[i]
			continue
		}
		merged[i] = candidate.Top[i]
		changed = true
	}

	keep.Top = merged
	keep.Errors = candidate.Errors
	keep.Locations = candidate.Locations
	return changed
}

func equalErrors(a, b []error) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Error() != b[i].Error() {
			return false
		}
	}
	return true
}

func equalLocations(a, b []Location) bool {
	return cmp.Equal(a, b, cmp.Comparer(func(x, y intern.String) bool { return x == y }))
}
