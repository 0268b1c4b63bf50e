package progdb

import (
	"fmt"
	"iter"
	"strings"

	"github.com/shubhamkmr04/chapel/internal/arena"
	"github.com/shubhamkmr04/chapel/internal/topo"
)

// QueryTable is the memo table for one query: a hashtable from argument to
// result cell, plus the query's body and its merge rule. Cells themselves
// live in an arena rather than being allocated one at a time with new, so
// that a query with many distinct argument values doesn't scatter one
// heap object per call: the arena's append-only growth guarantees the same
// "address never moves" property a bare pointer would, at a fraction of the
// allocation count. Construct one per distinct
// query with NewQueryTable and keep it around for the lifetime of the
// Context it is used with; query authors call Query (from outside any other
// query) or Call (from inside one) to invoke it.
type QueryTable[Arg comparable, T any] struct {
	name  string
	merge func(keep, candidate *T) bool
	body  func(t Task, arg Arg) T
	cells map[Arg]*cell[T]
	arena arena.Arena[cell[T]]
}

// NewQueryTable registers a query named name, computed by body, with merge
// as its change-detection rule. merge must, on return, leave keep holding
// the surviving value and candidate holding the displaced one, and report
// via its bool whether they differed. DefaultMerge
// is the right choice whenever T is comparable; types with their own
// pointer-preserving substitution (uast.Result, via uast.MergeResult)
// should pass that instead.
func NewQueryTable[Arg comparable, T any](
	name string,
	merge func(keep, candidate *T) bool,
	body func(t Task, arg Arg) T,
) *QueryTable[Arg, T] {
	return &QueryTable[Arg, T]{
		name:  name,
		merge: merge,
		body:  body,
		cells: make(map[Arg]*cell[T]),
	}
}

// DefaultMerge is the merge rule for any comparable result type:
// changed is true iff keep and candidate differ, in which case candidate's
// value is swapped into keep.
func DefaultMerge[T comparable](keep, candidate *T) bool {
	if *keep == *candidate {
		return false
	}
	*keep = *candidate
	return true
}

// Query invokes q with arg from outside any other query. Use Call instead
// when invoking a query from within another query's body.
func Query[Arg comparable, T any](ctx *Context, q *QueryTable[Arg, T], arg Arg) T {
	return get(ctx, q, arg)
}

// Call invokes q with arg from within the body of the query that produced
// t, recording q(arg) as one of its dependencies.
func Call[Arg comparable, T any](t Task, q *QueryTable[Arg, T], arg Arg) T {
	return get(t.ctx, q, arg)
}

// Errors returns the error list recorded for q(arg) the last time it was
// computed, or nil if it has never been invoked.
func Errors[Arg comparable, T any](q *QueryTable[Arg, T], arg Arg) []error {
	c, ok := q.cells[arg]
	if !ok {
		return nil
	}
	return c.base.errors
}

// DumpDependencies renders the dependency subgraph rooted at q(arg) in
// topological (dependencies-first) order, one "name(arg)" label per line.
// It is a debugging aid; nothing in this module calls it.
func DumpDependencies[Arg comparable, T any](q *QueryTable[Arg, T], arg Arg) string {
	c, ok := q.cells[arg]
	if !ok {
		return ""
	}
	var b strings.Builder
	for dep := range dependencyOrder(&c.base) {
		b.WriteString(dep.desc)
		b.WriteByte('\n')
	}
	return b.String()
}

func dependencyOrder(root *cellBase) iter.Seq[*cellBase] {
	return topo.Sort(
		[]*cellBase{root},
		func(c *cellBase) *cellBase { return c },
		func(c *cellBase) iter.Seq[*cellBase] {
			return func(yield func(*cellBase) bool) {
				for _, d := range c.dependencies {
					if !yield(d) {
						return
					}
				}
			}
		},
	)
}

// get implements the four-phase lifecycle for one query
// invocation: Begin locates or creates the cell; the can-reuse check
// either short-circuits or pushes a stack frame; Body execution runs q's
// body with that frame active; End merges the candidate in, updates
// revision bookkeeping, and records the cell (and its errors) as a
// dependency of whichever query is now on top of the stack, if any.
//
// The stack frame pushed for Body execution is popped, and computing
// cleared, by a deferred func around the call to q.body, so a panicking
// body still leaves the stack and c.base in the state Begin found them
// in rather than wedging every later call with a leftover frame.
func get[Arg comparable, T any](ctx *Context, q *QueryTable[Arg, T], arg Arg) T {
	ctx.checkGoroutine()

	c, existed := q.cells[arg]
	if !existed {
		c = q.arena.New(cell[T]{})
		c.base.desc = fmt.Sprintf("%s(%v)", q.name, arg)
		q.cells[arg] = c
	}

	if existed && ctx.canReuse(&c.base) {
		c.base.lastCheckedAndReused = ctx.revision
		ctx.tracer.Event("reuse", q.name, arg)
	} else {
		if c.base.computing {
			cyclePanic(ctx.stack, c.base.desc)
		}
		c.base.computing = true
		ctx.tracer.Event("begin", q.name, arg)

		ctx.stack = append(ctx.stack, &frame{label: c.base.desc})
		var candidate T
		top := func() *frame {
			defer func() {
				ctx.stack = ctx.stack[:len(ctx.stack)-1]
				c.base.computing = false
			}()
			candidate = q.body(Task{ctx: ctx}, arg)
			return ctx.stack[len(ctx.stack)-1]
		}()

		changed := q.merge(&c.value, &candidate)
		c.base.dependencies = top.deps
		c.base.errors = top.errs
		c.base.lastComputed = ctx.revision
		if changed || !existed {
			c.base.lastChanged = ctx.revision
		}
		c.base.lastCheckedAndReused = ctx.revision

		ctx.tracer.Event("end", q.name, arg)
	}

	ctx.recordAsDependency(&c.base)
	return c.value
}
