// Package progdb implements the program database: a revision-scoped,
// memoizing query engine. Callers feed it inputs through setter-backed
// input tables, register queries as QueryTables, and invoke them through
// Query (from outside any query) or Call (from within one); the engine
// decides on every invocation whether a saved result can be reused or
// must be recomputed, tracking dependencies and errors as it goes.
//
// A Context is not safe for concurrent use, and enforces that with a
// checked invariant rather than a comment: the first goroutine to touch it
// is the only one ever allowed to, for the lifetime of the Context.
package progdb

import (
	"fmt"

	"github.com/petermattis/goid"

	"github.com/shubhamkmr04/chapel/intern"
	"github.com/shubhamkmr04/chapel/uast"
)

// Tracer observes query lifecycle events. NewContext(nil) installs a no-op
// tracer; cmd/chapelquery's -v flag installs one that prints events
// instead.
type Tracer interface {
	// Event is called with a lifecycle kind ("begin", "reuse", "end"), the
	// query's registered name, and the argument the query was called
	// with.
	Event(kind, queryName string, arg any)
}

type noopTracer struct{}

func (noopTracer) Event(string, string, any) {}

// Context is the program database: the interner, every query's memo
// table, the active-query stack, and the current revision.
type Context struct {
	interner *intern.Interner
	tracer   Tracer

	revision       uint64
	prepareToGCRev uint64

	stack []*frame

	fileTexts *InputTable[string, string]
	filePaths *InputTable[string, string]

	goroutineID  int64
	goroutineSet bool
}

// NewContext returns an empty, ready-to-use Context. A nil tracer installs
// a no-op one.
func NewContext(tracer Tracer) *Context {
	if tracer == nil {
		tracer = noopTracer{}
	}
	return &Context{
		interner:  intern.New(),
		tracer:    tracer,
		fileTexts: NewInputTable[string, string]("fileText", DefaultMerge[string]),
		filePaths: NewInputTable[string, string]("filePathForModuleName", DefaultMerge[string]),
	}
}

// Interner returns the string interner this Context's queries should use
// to build interned symbol paths (e.g. via uast.NewBuilder).
func (ctx *Context) Interner() *intern.Interner { return ctx.interner }

// UniqueString interns text through this Context's Interner.
func (ctx *Context) UniqueString(text string) intern.String {
	ctx.checkGoroutine()
	return ctx.interner.Unique(text)
}

// SetFileText records the text of the file at path as of the current
// revision. It may only be called when no query is active.
func (ctx *Context) SetFileText(path, text string) bool {
	return ctx.fileTexts.Set(ctx, path, text)
}

// FileText reads the text most recently set for path with SetFileText.
// Panics if no text has been set for path yet.
func (ctx *Context) FileText(t Task, path string) string {
	return Input(t, ctx.fileTexts, path)
}

// SetFilePathForModuleName records the file that defines module modName.
// It may only be called when no query is active.
func (ctx *Context) SetFilePathForModuleName(modName, path string) bool {
	return ctx.filePaths.Set(ctx, modName, path)
}

// FilePathForModuleName resolves modName to the path set for it with
// SetFilePathForModuleName. This is precondition-only, matching the
// original engine's implementation: calling it before the corresponding
// setter panics rather than computing a fallback.
func (ctx *Context) FilePathForModuleName(t Task, modName string) string {
	return Input(t, ctx.filePaths, modName)
}

// ModuleNameForID returns the prefix of id's symbol path up to the first
// '.', i.e. the name of the module id's symbol belongs to.
func (ctx *Context) ModuleNameForID(id uast.ID) string {
	return id.ModuleName()
}

// FilePathForID resolves id to the path of the file that defines its
// enclosing module, via FilePathForModuleName. Like that call, this
// panics if the module's path has not been set yet.
func (ctx *Context) FilePathForID(t Task, id uast.ID) string {
	return ctx.FilePathForModuleName(t, ctx.ModuleNameForID(id))
}

// AdvanceToNextRevision moves the Context to its next revision. When
// prepareToGC is set, this revision is recorded as the one during which a
// subsequent CollectGarbage call is expected to run, and the interner's
// generation counter is bumped so that strings looked up from here on are
// marked as reachable through the collection.
func (ctx *Context) AdvanceToNextRevision(prepareToGC bool) {
	ctx.checkGoroutine()
	if len(ctx.stack) != 0 {
		panic("progdb: AdvanceToNextRevision called while a query is active")
	}
	ctx.revision++
	if prepareToGC {
		ctx.prepareToGCRev = ctx.revision
	}
	ctx.interner.Advance(prepareToGC)
}

// CollectGarbage reclaims interned strings that were not looked up since
// the most recent prepare-to-GC revision. It has no effect unless the
// active-query stack is empty and the current revision equals that
// prepare-to-GC revision; in particular, calling it twice in a row with no
// intervening AdvanceToNextRevision(true) is a harmless no-op the second
// time.
//
// Query result cells need no analogous sweep: unlike the engine this is
// modeled on, a cell never retains a stale candidate past the End phase of
// the call that produced it (see QueryTable.merge), so there is no "old
// candidate buffer" left lying around for GC to discard.
func (ctx *Context) CollectGarbage() {
	ctx.checkGoroutine()
	if len(ctx.stack) != 0 || ctx.revision != ctx.prepareToGCRev {
		return
	}
	ctx.interner.CollectUnreachable()
}

func (ctx *Context) checkGoroutine() {
	id := goid.Get()
	if !ctx.goroutineSet {
		ctx.goroutineID = id
		ctx.goroutineSet = true
		return
	}
	if id != ctx.goroutineID {
		panic(fmt.Sprintf(
			"progdb: Context used from goroutine %d, but was first used from goroutine %d; "+
				"a Context is single-threaded and cooperative, never concurrent",
			id, ctx.goroutineID))
	}
}
