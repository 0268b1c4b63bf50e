package progdb

import "fmt"

// cellBase is the revision bookkeeping shared by every result cell,
// regardless of the query's argument or result type. Keeping it free of
// type parameters lets dependency lists span queries of different types,
// and lets internal/topo walk the dependency graph without knowing any of
// them.
type cellBase struct {
	lastComputed         uint64
	lastChanged          uint64
	lastCheckedAndReused uint64

	dependencies []*cellBase
	errors       []error
	computing    bool

	// desc is a human-readable "name(arg)" label, used only for debug
	// dumps and panic messages.
	desc string
}

// cell is one query's memoized result: its bookkeeping plus the value
// itself.
type cell[T any] struct {
	base  cellBase
	value T
}

// frame is the active-query-stack entry pushed for a cell whose body is
// currently executing; it accumulates the dependencies and errors the body
// observes before they are installed into the cell at End.
type frame struct {
	label string
	deps  []*cellBase
	errs  []error
}

// canReuse implements the can-reuse decision: c is reusable at the
// current revision if it was already validated this revision, or if it has
// at least one dependency, every one of which is itself reusable, none of
// which changed more recently than c was last computed. A dependency-free
// cell is an input: checked on its own, it is reusable only if it was set
// this revision. As a dependency of c, an input always holds the value its
// setter last installed, so it only invalidates c if it changed in or after
// the revision c was last computed (a setter may run after c was computed
// within that same revision).
func (ctx *Context) canReuse(c *cellBase) bool {
	if c.lastComputed == ctx.revision || c.lastCheckedAndReused == ctx.revision {
		return true
	}
	if len(c.dependencies) == 0 {
		return false
	}
	for _, dep := range c.dependencies {
		if len(dep.dependencies) == 0 {
			if dep.lastChanged >= c.lastComputed {
				return false
			}
			continue
		}
		if !ctx.canReuse(dep) {
			return false
		}
		if dep.lastChanged > c.lastComputed {
			return false
		}
	}
	c.lastCheckedAndReused = ctx.revision
	return true
}

// recordAsDependency appends c to the frame of the query currently on top
// of the stack, if any, and propagates c's errors into it, so a parent
// query's error list always includes every error of every query it
// transitively consulted, whether that query's body ran or was reused.
func (ctx *Context) recordAsDependency(c *cellBase) {
	if len(ctx.stack) == 0 {
		return
	}
	parent := ctx.stack[len(ctx.stack)-1]
	parent.deps = append(parent.deps, c)
	parent.errs = append(parent.errs, c.errors...)
}

func cyclePanic(stack []*frame, label string) {
	chain := make([]string, 0, len(stack)+1)
	for _, f := range stack {
		chain = append(chain, f.label)
	}
	chain = append(chain, label)
	msg := chain[0]
	for _, s := range chain[1:] {
		msg += " -> " + s
	}
	panic(fmt.Sprintf("progdb: cyclic query invocation: %s", msg))
}
