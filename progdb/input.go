package progdb

import (
	"fmt"

	"github.com/shubhamkmr04/chapel/internal/arena"
)

// InputTable is a memo table for an external input: a value supplied by
// the host between revisions (file text, a module-to-path mapping)
// rather than computed by a query body. Reading one participates in
// dependency tracking exactly like any other cell, but writing one is
// only legal outside of any running query. Like QueryTable, cells are
// allocated from an arena so their addresses stay stable as the table
// grows.
type InputTable[Key comparable, T any] struct {
	name  string
	merge func(keep, candidate *T) bool
	cells map[Key]*cell[T]
	arena arena.Arena[cell[T]]
}

// NewInputTable registers an input table named name with the given merge
// rule. Most inputs are comparable (plain text, a path string), so
// DefaultMerge is the usual choice.
func NewInputTable[Key comparable, T any](name string, merge func(keep, candidate *T) bool) *InputTable[Key, T] {
	return &InputTable[Key, T]{
		name:  name,
		merge: merge,
		cells: make(map[Key]*cell[T]),
	}
}

// Set installs value for key as of the current revision. It panics if a
// query is active: setters may only run between query invocations, never
// nested inside one, so that a query body can never observe an input
// changing out from under it mid-computation.
func (in *InputTable[Key, T]) Set(ctx *Context, key Key, value T) bool {
	ctx.checkGoroutine()
	if len(ctx.stack) != 0 {
		panic(fmt.Sprintf("progdb: %s.Set called while a query is active", in.name))
	}

	c, existed := in.cells[key]
	if !existed {
		c = in.arena.New(cell[T]{})
		c.base.desc = fmt.Sprintf("%s(%v)", in.name, key)
		in.cells[key] = c
	}

	changed := in.merge(&c.value, &value)
	c.base.lastComputed = ctx.revision
	if changed || !existed {
		c.base.lastChanged = ctx.revision
	}
	return changed || !existed
}

// Input reads the value most recently set for key, recording in's cell as
// a dependency of the query running as t. It panics if key has never been
// set: an input table has no fallback-compute path, it only ever reflects
// what the host last wrote with Set.
func Input[Key comparable, T any](t Task, in *InputTable[Key, T], key Key) T {
	c, ok := in.cells[key]
	if !ok {
		panic(fmt.Sprintf("progdb: %s has no value set for %v", in.name, key))
	}
	t.ctx.recordAsDependency(&c.base)
	return c.value
}
