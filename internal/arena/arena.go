// Package arena defines an Arena type that hands out stable pointers.
//
// An Arena[T] never moves a T once it has been allocated: growth is done by
// appending a new, larger backing slice to a table rather than reallocating
// an existing one. Other packages in this module rely on that to hand out
// raw *T values whose identity (pointer equality) stays meaningful, and
// whose addresses survive the table growing around them, for as long as the
// Arena itself is alive.
package arena

import (
	"fmt"
	"strings"
)

// minLen is the size of the smallest backing slice in an Arena.
const minLen = 16

// Arena is stable-address storage for values of type T: a value allocated
// with New is never relocated, so pointers returned by New remain valid for
// the lifetime of the Arena, and two pointers to the same logical value
// always compare equal with ==.
//
// It does this by keeping a table of logarithmically-growing slices, similar
// to the growth strategy of a slice itself, except that old slices are never
// copied into a bigger one.
//
// The zero Arena is empty and ready to use.
type Arena[T any] struct {
	table [][]T
}

// New allocates value on the arena and returns a stable pointer to it.
func (a *Arena[T]) New(value T) *T {
	if a.table == nil {
		a.table = [][]T{make([]T, 0, minLen)}
	}

	last := &a.table[len(a.table)-1]
	if len(*last) == cap(*last) {
		// If the last slice is full, grow by doubling the size of the next
		// slice, same as append would for an ordinary slice.
		a.table = append(a.table, make([]T, 0, 2*cap(*last)))
		last = &a.table[len(a.table)-1]
	}

	*last = append(*last, value)
	return &(*last)[len(*last)-1]
}

// Len returns the number of values allocated in the arena so far.
func (a *Arena[T]) Len() int {
	n := 0
	for _, s := range a.table {
		n += len(s)
	}
	return n
}

// All calls yield once for every value currently stored in the arena, in
// allocation order, stopping early if yield returns false.
func (a *Arena[T]) All(yield func(*T) bool) {
	for _, s := range a.table {
		for i := range s {
			if !yield(&s[i]) {
				return
			}
		}
	}
}

// String implements fmt.Stringer, primarily for debugging and tests.
func (a *Arena[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range a.table {
		if i != 0 {
			b.WriteByte('|')
		}
		for j, v := range s {
			if j != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, v)
		}
	}
	b.WriteByte(']')
	return b.String()
}
