package main

import (
	"fmt"
	"io"
)

// stderrTracer implements progdb.Tracer by writing one line per lifecycle
// event, in the style of ad hoc trace printfs
// ("QUERY COMPUTING %s (...)", "QUERY END %s (...) REUSING"). It is
// installed only when -v is passed; otherwise the Context falls back to
// its own no-op tracer.
type stderrTracer struct {
	w io.Writer
}

func (tr stderrTracer) Event(kind, queryName string, arg any) {
	switch kind {
	case "begin":
		fmt.Fprintf(tr.w, "QUERY COMPUTING %s(%v)\n", queryName, arg)
	case "reuse":
		fmt.Fprintf(tr.w, "QUERY END %s(%v) REUSING\n", queryName, arg)
	case "end":
		fmt.Fprintf(tr.w, "QUERY END %s(%v)\n", queryName, arg)
	}
}
