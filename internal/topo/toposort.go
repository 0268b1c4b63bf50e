// Package topo provides a generic topological sort, used to render and
// sanity-check the dependency graph a program database accumulates between
// revisions.
package topo

import (
	"fmt"
	"iter"
	"strings"
)

const (
	unsorted byte = iota
	walking
	sorted
)

// Sort sorts a DAG topologically.
//
// Roots are the nodes whose dependencies we are querying. key returns a
// comparable key for each node. dag returns the children of a node.
//
// Panics if the graph reachable from roots contains a cycle.
func Sort[Node any, Key comparable](
	roots []Node,
	key func(Node) Key,
	dag func(Node) iter.Seq[Node],
) iter.Seq[Node] {
	s := Sorter[Node, Key]{Key: key}
	return s.Sort(roots, dag)
}

// Sorter is reusable scratch space for a particular stencil of [Sort], which
// needs to allocate memory for book-keeping. This struct allows amortizing
// that cost across many calls.
type Sorter[Node any, Key comparable] struct {
	// A function to extract a unique key from each node, for marking.
	Key func(Node) Key

	state     map[Key]byte
	stack     []Node
	iterating bool
}

// Sort is like [Sort], but reuses allocated resources stored in s.
func (s *Sorter[Node, Key]) Sort(
	roots []Node,
	dag func(Node) iter.Seq[Node],
) iter.Seq[Node] {
	if s.state == nil {
		s.state = make(map[Key]byte)
	}

	return func(yield func(Node) bool) {
		if s.iterating {
			panic("internal/topo: Sort() called reentrantly")
		}
		s.iterating = true
		defer func() {
			clear(s.state)
			s.stack = s.stack[:0]
			s.iterating = false
		}()

		for _, root := range roots {
			s.push(root)
			// This algorithm is DFS that has been tail-call-optimized into a
			// loop. Each node is visited twice: once to push its children,
			// and once to pop it and yield it. The state map tracks whether
			// a node has been visited yet, and if so, which visit it's on.
			for len(s.stack) > 0 {
				node := s.stack[len(s.stack)-1]
				k := s.Key(node)
				state := s.state[k]

				if state == unsorted {
					s.state[k] = walking
					for child := range dag(node) {
						s.push(child)
					}
					continue
				}

				s.stack = s.stack[:len(s.stack)-1]
				if state != sorted {
					if !yield(node) {
						return
					}
					s.state[k] = sorted
				}
			}
		}
	}
}

func (s *Sorter[Node, Key]) push(v Node) {
	k := s.Key(v)
	switch s.state[k] {
	case unsorted:
		s.stack = append(s.stack, v)

	case walking:
		prev := lastIndexFunc(s.stack, func(n Node) bool { return s.Key(n) == k })
		suffix := s.stack[prev:]
		panic(fmt.Sprintf("internal/topo: cycle detected: %v -> %v", joinString(suffix), v))

	case sorted:
		return
	}
}

func lastIndexFunc[T any](s []T, f func(T) bool) int {
	for i := len(s) - 1; i >= 0; i-- {
		if f(s[i]) {
			return i
		}
	}
	return -1
}

func joinString[T any](s []T) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "->")
}
