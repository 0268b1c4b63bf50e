package main

import (
	"regexp"
	"strings"

	"github.com/shubhamkmr04/chapel/progdb"
	"github.com/shubhamkmr04/chapel/report"
	"github.com/shubhamkmr04/chapel/uast"
)

// This file defines two illustrative query authors: a lexer-free "reader"
// that normalizes a file's raw text, and an AST-building query layered on
// top of it. Neither is meant to stand in for a real Chapel parser (that
// remains explicitly out of scope); they exist only to give the engine,
// interner, and builder a realistic end-to-end caller.

// moduleStmt recognizes the single-module-per-file shape this reader
// understands: "module NAME { ...body... }" spanning the whole file.
var moduleStmt = regexp.MustCompile(`(?s)^\s*module\s+(\w+)\s*\{(.*)\}\s*$`)

// varDecl recognizes a bare "var NAME = ..." statement; it is the only
// statement shape this reader understands inside a module body.
var varDecl = regexp.MustCompile(`var\s+(\w+)`)

// Queries holds the Read and Parse query tables, scoped to one
// Context's lifetime. Query tables are not process-wide singletons: a
// QueryTable's cell cache is keyed only by argument, not by Context, so
// sharing one across contexts would let one Context's cached results leak
// into another's revision bookkeeping. A fresh Queries value is
// constructed once per Context (here, once per chapelquery invocation)
// rather than shared across contexts the way a package-level var would.
type Queries struct {
	Read  *progdb.QueryTable[string, string]
	Parse *progdb.QueryTable[string, uast.Result]
}

// NewQueries builds the Read/Parse query tables for one Context's
// lifetime.
func NewQueries() *Queries {
	q := &Queries{}

	// Read normalizes a file's raw text (set via Context.SetFileText): it
	// trims trailing newlines and rejects an empty file with an input
	// error, but otherwise passes the text through unchanged. It exists so
	// Parse has a query to depend on, exercising dependency tracking
	// across two distinct query identities rather than folding everything
	// into one body.
	q.Read = progdb.NewQueryTable("read", progdb.DefaultMerge[string], func(t progdb.Task, path string) string {
		text := t.Context().FileText(t, path)
		text = strings.TrimRight(text, "\n")
		if text == "" {
			t.Error(report.Errorf(report.Error, "%s: empty file", path))
		}
		return text
	})

	// Parse builds an identifier-addressed AST for the file at path,
	// depending on Read for its (normalized) text. It understands exactly
	// one module shape and one statement shape (see moduleStmt and varDecl
	// above); anything else in the file is silently ignored rather than
	// reported, since diagnosing malformed syntax is a parser's job and
	// parsers are out of scope here.
	q.Parse = progdb.NewQueryTable("parse", uast.MergeResult, func(t progdb.Task, path string) uast.Result {
		text := progdb.Call(t, q.Read, path)
		ctx := t.Context()
		b := uast.NewBuilder(ctx.Interner())

		inferredName := inferModuleName(path)

		if m := moduleStmt.FindStringSubmatch(text); m != nil {
			name, body := m[1], m[2]
			var stmts []uast.Node
			for _, v := range varDecl.FindAllStringSubmatch(body, -1) {
				stmts = append(stmts, &uast.VarDecl{Name: v[1]})
			}
			mod := &uast.ModuleDecl{Name: name, Kind: uast.ModuleExplicit, Body: stmts}
			return b.Build([]uast.Node{mod}, inferredName)
		}

		var top []uast.Node
		for _, v := range varDecl.FindAllStringSubmatch(text, -1) {
			top = append(top, &uast.VarDecl{Name: v[1]})
		}
		return b.Build(top, inferredName)
	})

	return q
}

// inferModuleName strips a path down to its basename without extension,
// the name a file's implicit module takes when it declares no module of
// its own.
func inferModuleName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
